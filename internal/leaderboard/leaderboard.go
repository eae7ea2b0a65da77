// Package leaderboard keeps the global high score table: input sanitation,
// ranking, storage backends, the REST handler and a client for it.
package leaderboard

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Table limits.
const (
	TopN          = 20
	MaxNameLen    = 20
	MaxMessageLen = 30
	MaxScore      = 99999
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrInvalidScore = errors.New("valid score is required")
	ErrNameEmpty    = errors.New("name cannot be empty")
)

// Entry is one stored score.
type Entry struct {
	ID        uint64    `json:"id" msgpack:"id"`
	Rank      int       `json:"rank,omitempty" msgpack:"-"`
	Name      string    `json:"name" msgpack:"name"`
	Score     int       `json:"score" msgpack:"score"`
	Message   string    `json:"message" msgpack:"message"`
	CreatedAt time.Time `json:"created_at" msgpack:"createdAt"`
}

// Submission is an unvalidated score submission. Score is a pointer so a
// missing score can be told apart from zero.
type Submission struct {
	Name    string   `json:"name"`
	Score   *float64 `json:"score"`
	Message string   `json:"message"`
}

// Sanitize validates s and returns the entry to store: name and message are
// trimmed and cut, the score is clamped to [0, MaxScore] and floored.
func Sanitize(s Submission) (Entry, error) {
	if s.Name == "" {
		return Entry{}, ErrNameRequired
	}
	if s.Score == nil || math.IsNaN(*s.Score) || *s.Score < 0 {
		return Entry{}, ErrInvalidScore
	}

	name := truncate(strings.TrimSpace(s.Name), MaxNameLen)
	if name == "" {
		return Entry{}, ErrNameEmpty
	}
	return Entry{
		Name:    name,
		Message: truncate(strings.TrimSpace(s.Message), MaxMessageLen),
		Score:   int(math.Floor(math.Max(0, math.Min(*s.Score, MaxScore)))),
	}, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Less orders entries for the table: higher score first, then the earlier
// submission, then the lower id.
func Less(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Ranked sets Rank on each entry of an ordered slice, starting at 1.
func Ranked(entries []Entry) []Entry {
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// CheckResult tells where a score would land in the table.
type CheckResult struct {
	WouldRank bool `json:"wouldRank"`
	Rank      *int `json:"rank"`
}

// Check ranks score against the ordered top entries. A score ties below the
// entries it equals.
func Check(score int, top []Entry) CheckResult {
	if score < 0 {
		return CheckResult{}
	}
	rank := 1
	for _, e := range top {
		if score > e.Score {
			break
		}
		rank++
	}
	if rank > TopN && len(top) >= TopN {
		return CheckResult{}
	}
	return CheckResult{WouldRank: true, Rank: &rank}
}

// ParseScore reads a leading integer the way a lenient URL parameter parser
// does: "12abc" is 12, "  7" is 7. ok is false when there are no digits.
func ParseScore(s string) (score int, ok bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if score < math.MaxInt32 {
			score = score*10 + int(s[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		score = -score
	}
	return score, true
}
