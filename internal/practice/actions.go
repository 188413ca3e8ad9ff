package practice

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/verte-zerg/jsoj/internal/api"
	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/review"
)

// ErrEmptyCode is returned when an action has no problem or no code.
var ErrEmptyCode = errors.New("select a problem and write some code first")

var errNoBackend = errors.New("no backend configured")

// Judge is the backend used by Run, Submit and FullJudge.
type Judge interface {
	Run(ctx context.Context, problemID, code string) (*model.JudgeResult, error)
	Analyze(ctx context.Context, problemID, code string) (*model.JudgeResult, error)
	Judge(ctx context.Context, problemID, code string) (*model.JudgeResult, error)
}

type judgeFunc func(ctx context.Context, problemID, code string) (*model.JudgeResult, error)

type action struct {
	label string
	pick  func(Judge) judgeFunc
	track bool
}

var (
	runAction    = action{label: "Run", pick: func(j Judge) judgeFunc { return j.Run }}
	submitAction = action{label: "Submit", pick: func(j Judge) judgeFunc { return j.Analyze }, track: true}
	judgeAction  = action{label: "Judge", pick: func(j Judge) judgeFunc { return j.Judge }, track: true}
)

// Run executes the buffer against the problem's examples.
func (s *Session) Run(ctx context.Context) (*model.JudgeResult, error) {
	return s.execute(ctx, runAction)
}

// Submit sends the buffer for AI analysis. A successful submit queues the
// problem for review and counts it as attempted today.
func (s *Session) Submit(ctx context.Context) (*model.JudgeResult, error) {
	return s.execute(ctx, submitAction)
}

// FullJudge runs every test case and requests analysis. It tracks progress
// like Submit.
func (s *Session) FullJudge(ctx context.Context) (*model.JudgeResult, error) {
	return s.execute(ctx, judgeAction)
}

// execute converts backend failures into an Error result. The returned
// error is only set when the request was rejected before any network call.
func (s *Session) execute(ctx context.Context, a action) (*model.JudgeResult, error) {
	s.mu.Lock()
	if s.current == nil || strings.TrimSpace(s.code) == "" {
		s.notice = capitalize(ErrEmptyCode.Error())
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.publish(snap)
		return nil, ErrEmptyCode
	}
	problem := *s.current
	code := s.code
	selection := s.selection
	s.runs++
	run := s.runs
	s.notice = ""
	s.judge.Clear()
	s.judge.SetJudging(true)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	result, err := s.call(ctx, a, problem.ID, code)
	if err != nil {
		slog.Warn("judge call failed", "action", a.label, "problem", problem.ID, "error", err)
		result = &model.JudgeResult{
			Status:  model.StatusError,
			Message: a.label + " failed: " + api.Message(err),
		}
	} else if a.track {
		s.queue.Enqueue(model.KindCode, review.Item{ID: problem.ID, Title: problem.Title})
		s.attempts.Log(model.KindCode, model.Attempt{ID: problem.ID, Title: problem.Title})
	}

	s.mu.Lock()
	if err == nil && result.Record != nil {
		s.records[problem.ID] = *result.Record
	}
	// A result for a problem the user left is not shown.
	if s.selection == selection && s.runs == run {
		s.judge.SetResult(result)
		s.judge.SetJudging(false)
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return result, nil
}

func (s *Session) call(ctx context.Context, a action, problemID, code string) (*model.JudgeResult, error) {
	if s.client == nil {
		return nil, errNoBackend
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	result, err := a.pick(s.client)(ctx, problemID, code)
	if err == nil && result == nil {
		result = &model.JudgeResult{}
	}
	return result, err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
