package leaderboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func score(v float64) *float64 { return &v }

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		in      Submission
		want    Entry
		wantErr error
	}{
		{"plain", Submission{Name: "ann", Score: score(120)}, Entry{Name: "ann", Score: 120}, nil},
		{"trims and cuts name", Submission{Name: "  abcdefghijklmnopqrstuvwxyz ", Score: score(1)}, Entry{Name: "abcdefghijklmnopqrst", Score: 1}, nil},
		{"cuts message", Submission{Name: "a", Score: score(1), Message: " " + strings.Repeat("m", 40)}, Entry{Name: "a", Score: 1, Message: strings.Repeat("m", 30)}, nil},
		{"floors score", Submission{Name: "a", Score: score(41.9)}, Entry{Name: "a", Score: 41}, nil},
		{"caps score", Submission{Name: "a", Score: score(1e9)}, Entry{Name: "a", Score: MaxScore}, nil},
		{"counts runes", Submission{Name: strings.Repeat("é", 25), Score: score(0)}, Entry{Name: strings.Repeat("é", 20), Score: 0}, nil},
		{"missing name", Submission{Score: score(3)}, Entry{}, ErrNameRequired},
		{"blank name", Submission{Name: "   ", Score: score(3)}, Entry{}, ErrNameEmpty},
		{"missing score", Submission{Name: "a"}, Entry{}, ErrInvalidScore},
		{"negative score", Submission{Name: "a", Score: score(-1)}, Entry{}, ErrInvalidScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func table(scores ...int) []Entry {
	out := make([]Entry, len(scores))
	for i, s := range scores {
		out[i] = Entry{ID: uint64(i + 1), Score: s}
	}
	return out
}

func TestCheck(t *testing.T) {
	full := make([]int, TopN)
	for i := range full {
		full[i] = 1000 - i*10 // 1000 .. 810
	}

	tests := []struct {
		name      string
		score     int
		top       []Entry
		wouldRank bool
		rank      int
	}{
		{"empty table", 0, nil, true, 1},
		{"beats all", 500, table(300, 200), true, 1},
		{"between", 250, table(300, 200), true, 2},
		{"tie ranks below", 200, table(300, 200), true, 3},
		{"last in short table", 1, table(300, 200), true, 3},
		{"makes full table", 815, table(full...), true, 20},
		{"misses full table", 810, table(full...), false, 0},
		{"negative", -5, nil, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.score, tt.top)
			if got.WouldRank != tt.wouldRank {
				t.Fatalf("wouldRank = %v, want %v", got.WouldRank, tt.wouldRank)
			}
			if !tt.wouldRank {
				if got.Rank != nil {
					t.Fatalf("rank = %d, want null", *got.Rank)
				}
				return
			}
			if got.Rank == nil || *got.Rank != tt.rank {
				t.Fatalf("rank = %v, want %d", got.Rank, tt.rank)
			}
		})
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"120", 120, true},
		{"12abc", 12, true},
		{"12.9", 12, true},
		{"  7", 7, true},
		{"-3", -3, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseScore(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseScore(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func testStore(t *testing.T, open func(now func() time.Time) Store) {
	ctx := context.Background()
	clock := &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := open(clock.now)
	defer s.Close()

	for _, e := range []Entry{
		{Name: "low", Score: 10},
		{Name: "high", Score: 900},
		{Name: "tie-first", Score: 500},
		{Name: "tie-second", Score: 500},
	} {
		stored, err := s.Add(ctx, e)
		if err != nil {
			t.Fatal(err)
		}
		if stored.ID == 0 || stored.CreatedAt.IsZero() {
			t.Fatalf("Add did not assign id and time: %+v", stored)
		}
	}

	top, err := s.Top(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range top {
		names = append(names, e.Name)
	}
	if got := strings.Join(names, ","); got != "high,tie-first,tie-second" {
		t.Fatalf("order = %s", got)
	}
	if !top[1].CreatedAt.Before(top[2].CreatedAt) {
		t.Fatal("CreatedAt not preserved")
	}

	all, err := s.Top(ctx, TopN)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, func(now func() time.Time) Store { return NewMemoryStore(now) })
}

func TestBoltStore(t *testing.T) {
	path := t.TempDir() + "/scores.db"
	testStore(t, func(now func() time.Time) Store {
		s, err := OpenBoltStore(path, now)
		if err != nil {
			t.Fatal(err)
		}
		return s
	})

	// Entries survive a reopen
	s, err := OpenBoltStore(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	top, err := s.Top(context.Background(), TopN)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 4 || top[0].Name != "high" || top[0].Score != 900 {
		t.Fatalf("after reopen: %+v", top)
	}
	e, err := s.Add(context.Background(), Entry{Name: "next", Score: 1})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != 5 {
		t.Fatalf("id after reopen = %d, want 5", e.ID)
	}
}
