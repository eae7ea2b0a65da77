package draw

import (
	"bytes"
	"strings"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ffd700", RGB(0xff, 0xd7, 0x00)},
		{"50fa7b", RGB(0x50, 0xfa, 0x7b)},
		{"#fff", RGB(255, 255, 255)},
		{"nope", RGB(255, 255, 255)},
	}
	for _, tt := range tests {
		if got := Hex(tt.in); got != tt.want {
			t.Errorf("Hex(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestCanvasScaling(t *testing.T) {
	c := NewCanvas(80, 30, 800, 600)
	red := RGB(255, 0, 0)

	c.Set(400, 300, red)
	if got := c.At(40, 30); got != red {
		t.Fatalf("expected center pixel set, got %+v", got)
	}
	col, row := c.LogicalToTerminal(400, 300)
	if col != 41 || row != 16 {
		t.Fatalf("LogicalToTerminal = (%d, %d), want (41, 16)", col, row)
	}

	// Out of range writes are ignored
	c.Set(-100, 5000, red)
}

func TestCircle(t *testing.T) {
	c := NewCanvas(100, 50, 100, 100)
	white := RGB(255, 255, 255)

	c.Circle(50, 50, 10, white, true)
	if !c.At(50, 50).Set {
		t.Fatal("filled circle must cover its center")
	}
	if c.At(65, 50).Set {
		t.Fatal("pixel outside radius was set")
	}

	c.Clear()
	c.Circle(50, 50, 10, white, false)
	if c.At(50, 50).Set {
		t.Fatal("outline circle must leave the center empty")
	}
	if !c.At(60, 50).Set {
		t.Fatal("outline circle must cover its edge")
	}
}

func TestRenderSkipsEmptyCells(t *testing.T) {
	c := NewCanvas(10, 5, 10, 10)
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty canvas rendered %d bytes", buf.Len())
	}

	c.Set(0, 0, RGB(1, 2, 3))
	if err := c.Render(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\033[1;1H") || !strings.ContainsRune(out, BlockUpperHalf) {
		t.Fatalf("unexpected render output %q", out)
	}
}

func TestChunkWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, 2, 3)

	cw.WriteAt(1, 1, "hi")
	if buf.Len() != 0 {
		t.Fatal("output written before flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\033[4;3Hhi" {
		t.Fatalf("got %q", got)
	}
	if cw.Len() != 0 {
		t.Fatal("buffer not reset after flush")
	}
}

func TestClampTermSize(t *testing.T) {
	w, h, oc, or := ClampTermSize(200, 60, 160, 50)
	if w != 160 || h != 50 || oc != 20 || or != 5 {
		t.Fatalf("got %d %d %d %d", w, h, oc, or)
	}
	w, h, oc, or = ClampTermSize(80, 24, 160, 50)
	if w != 80 || h != 24 || oc != 0 || or != 0 {
		t.Fatalf("got %d %d %d %d", w, h, oc, or)
	}
}
