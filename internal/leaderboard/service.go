package leaderboard

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

// SubmitResult is the reply to a stored submission.
type SubmitResult struct {
	Success    bool  `json:"success"`
	Entry      Entry `json:"entry"`
	IsTopScore bool  `json:"isTopScore"`
}

// Service applies the table rules on top of a Store.
type Service struct {
	store  Store
	logger *log.Logger
}

// NewService creates a service over store. A nil logger discards output.
func NewService(store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{store: store, logger: logger}
}

// Top returns the ranked table.
func (s *Service) Top(ctx context.Context) ([]Entry, error) {
	top, err := s.store.Top(ctx, TopN)
	if err != nil {
		return nil, err
	}
	return Ranked(top), nil
}

// Submit validates and stores a submission. Validation failures return one of
// the package's sentinel errors.
func (s *Service) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	e, err := Sanitize(sub)
	if err != nil {
		return SubmitResult{}, err
	}
	stored, err := s.store.Add(ctx, e)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("save score: %w", err)
	}

	top, err := s.store.Top(ctx, TopN)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("read top scores: %w", err)
	}
	isTop := slices.ContainsFunc(top, func(t Entry) bool { return t.ID == stored.ID })

	s.logger.Info("score submitted", "name", stored.Name, "score", stored.Score, "top", isTop)
	return SubmitResult{Success: true, Entry: stored, IsTopScore: isTop}, nil
}

// Check tells whether score would make the table.
func (s *Service) Check(ctx context.Context, score int) (CheckResult, error) {
	top, err := s.store.Top(ctx, TopN)
	if err != nil {
		return CheckResult{}, err
	}
	return Check(score, top), nil
}
