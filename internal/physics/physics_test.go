package physics

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	if got := Distance(0, 0, 3, 4); math.Abs(got-5) > 1e-9 {
		t.Fatalf("Distance = %f, want 5", got)
	}
	if got := DistanceSquared(1, 1, 4, 5); math.Abs(got-25) > 1e-9 {
		t.Fatalf("DistanceSquared = %f, want 25", got)
	}
}

func TestToward(t *testing.T) {
	nx, ny, d := Toward(0, 0, 0, 10)
	if nx != 0 || math.Abs(ny-1) > 1e-9 || math.Abs(d-10) > 1e-9 {
		t.Fatalf("Toward = (%f,%f,%f), want (0,1,10)", nx, ny, d)
	}

	nx, ny, d = Toward(5, 5, 5, 5)
	if nx != 0 || ny != 0 || d != 0 {
		t.Fatalf("Toward on coincident points = (%f,%f,%f), want zeros", nx, ny, d)
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name string
		x2   float64
		want bool
	}{
		{"overlapping", 15, true},
		{"touching", 20, false},
		{"apart", 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CirclesOverlap(0, 0, 10, tt.x2, 0, 10); got != tt.want {
				t.Fatalf("CirclesOverlap = %v, want %v", got, tt.want)
			}
		})
	}

	if !PointInCircle(1, 1, 0, 0, 2) {
		t.Fatal("expected point inside circle")
	}
	if PointInCircle(2, 0, 0, 0, 2) {
		t.Fatal("expected point on the rim to be outside")
	}
}

func TestDecayComposes(t *testing.T) {
	// Two steps at dt=1 must equal one step at dt=2.
	one := Decay(0.96, 1) * Decay(0.96, 1)
	two := Decay(0.96, 2)
	if math.Abs(one-two) > 1e-12 {
		t.Fatalf("decay not frame-rate independent: %f vs %f", one, two)
	}
}

func TestClampAndLerp(t *testing.T) {
	if got := Clamp(12, 0, 10); got != 10 {
		t.Fatalf("Clamp high = %f, want 10", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Fatalf("Clamp low = %f, want 0", got)
	}
	if got := Lerp(0, 10, 0.25); got != 2.5 {
		t.Fatalf("Lerp = %f, want 2.5", got)
	}
}
