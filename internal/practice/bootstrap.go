package practice

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/samples"
)

// Source provides the problem list and the per-problem records.
type Source interface {
	ListProblems(ctx context.Context) ([]model.Problem, error)
	ListRecords(ctx context.Context) (map[string]model.Record, error)
}

// OfflineNotice is shown when the built-in samples replace the problem list.
const OfflineNotice = "Failed to load problems, check that the backend is running. Showing built-in samples."

// Bootstrap fetches problems and records concurrently and loads them. The
// two fetches fail independently: missing records become an empty map and
// a failed problem list is replaced by the built-in samples. The returned
// error reports the problem list failure.
func (s *Session) Bootstrap(ctx context.Context, src Source) error {
	var (
		problems    []model.Problem
		records     map[string]model.Record
		problemsErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		problems, problemsErr = src.ListProblems(ctx)
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = src.ListRecords(ctx)
		if err != nil {
			slog.Warn("failed to load records", "error", err)
			records = map[string]model.Record{}
		}
		return nil
	})
	_ = g.Wait()

	notice := ""
	if problemsErr != nil {
		slog.Warn("failed to load problems, using samples", "error", problemsErr)
		problems = samples.Problems()
		notice = OfflineNotice
	}

	s.mu.Lock()
	s.records = copyRecords(records)
	s.loadLocked(problems)
	s.notice = notice
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	if problemsErr != nil {
		return fmt.Errorf("failed to load problems: %w", problemsErr)
	}
	return nil
}
