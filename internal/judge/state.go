// Package judge holds the in-memory state of the current judge call.
package judge

import "github.com/verte-zerg/jsoj/internal/model"

// State is the judging flag plus the latest result. It is never persisted.
// The zero value is ready to use. State is not safe for concurrent use; the
// owning session serializes access.
type State struct {
	judging     bool
	result      *model.JudgeResult
	testResults []model.TestResult
}

// SetJudging marks a call as in flight or finished.
func (s *State) SetJudging(judging bool) {
	s.judging = judging
}

// SetResult stores result and derives the per-case outcomes from it.
func (s *State) SetResult(result *model.JudgeResult) {
	if result == nil {
		s.Clear()
		return
	}
	copied := *result
	copied.TestResults = append([]model.TestResult(nil), result.TestResults...)
	s.result = &copied
	s.testResults = append([]model.TestResult{}, result.TestResults...)
}

// Clear drops the result and its test outcomes.
func (s *State) Clear() {
	s.result = nil
	s.testResults = []model.TestResult{}
}

// Judging reports whether a call is in flight.
func (s *State) Judging() bool { return s.judging }

// Result returns a copy of the latest result, or nil.
func (s *State) Result() *model.JudgeResult {
	if s.result == nil {
		return nil
	}
	copied := *s.result
	copied.TestResults = append([]model.TestResult(nil), s.result.TestResults...)
	return &copied
}

// TestResults returns the per-case outcomes of the latest result. It is
// never nil.
func (s *State) TestResults() []model.TestResult {
	return append([]model.TestResult{}, s.testResults...)
}

// Passed counts passing cases.
func (s *State) Passed() int {
	n := 0
	for _, r := range s.testResults {
		if r.Passed {
			n++
		}
	}
	return n
}
