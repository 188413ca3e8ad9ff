// Package model defines shared data structures.
package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Difficulty grades a problem or quiz.
type Difficulty string

// Difficulty values used by the backend.
const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Kind is the category of a reviewable item.
type Kind string

// Reviewable item kinds.
const (
	KindCode     Kind = "code"
	KindQuiz     Kind = "quiz"
	KindLeetCode Kind = "leetcode"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindCode, KindQuiz, KindLeetCode}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Label returns the human readable name of a kind.
func (k Kind) Label() string {
	switch k {
	case KindCode:
		return "Handwritten"
	case KindQuiz:
		return "Quiz"
	case KindLeetCode:
		return "LeetCode"
	default:
		return string(k)
	}
}

// Example is a sample input/output pair shown with a problem.
type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// Problem is a coding exercise fetched from the backend.
type Problem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Difficulty  Difficulty `json:"difficulty"`
	Description string     `json:"description"`
	Examples    []Example  `json:"examples,omitempty"`
	Constraints []string   `json:"constraints,omitempty"`
	Hints       []string   `json:"hints,omitempty"`
	Template    string     `json:"template"`
}

// ReviewEntry is one item in the review queue.
type ReviewEntry struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Link           string     `json:"link,omitempty"`
	AddedAt        time.Time  `json:"addedAt"`
	LastReviewedAt *time.Time `json:"lastReviewedAt"`
}

// Attempt is an item attempted on a given day.
type Attempt struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Record summarises the backend's per-problem history.
type Record struct {
	IsPassed      bool `json:"isPassed"`
	PassedCount   int  `json:"passedCount"`
	TotalAttempts int  `json:"totalAttempts"`
}

// TestResult is the outcome of one test case.
type TestResult struct {
	Passed        bool            `json:"passed"`
	Input         json.RawMessage `json:"input,omitempty"`
	Expected      json.RawMessage `json:"expected,omitempty"`
	Actual        json.RawMessage `json:"actual,omitempty"`
	Error         string          `json:"error,omitempty"`
	ExecutionTime float64         `json:"executionTime,omitempty"`
}

// JudgeResult is the response of a run, analyze or judge call.
type JudgeResult struct {
	Status        string       `json:"status"`
	Message       string       `json:"message,omitempty"`
	PassedTests   *int         `json:"passedTests,omitempty"`
	TotalTests    *int         `json:"totalTests,omitempty"`
	AIAnalysis    string       `json:"aiAnalysis,omitempty"`
	HasAIAnalysis bool         `json:"hasAIAnalysis,omitempty"`
	Record        *Record      `json:"record,omitempty"`
	Error         string       `json:"error,omitempty"`
	TestResults   []TestResult `json:"testResults,omitempty"`
}

// StatusError is the status of a judge result produced by a failed call.
const StatusError = "Error"

// Quiz is a trivia-style question.
type Quiz struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Difficulty      Difficulty `json:"difficulty,omitempty"`
	Category        string     `json:"category,omitempty"`
	Question        string     `json:"question"`
	ReferenceAnswer string     `json:"referenceAnswer,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Hints           []string   `json:"hints,omitempty"`
	Points          int        `json:"points,omitempty"`
}

// QuizAnalysis is the backend's assessment of a quiz answer.
type QuizAnalysis struct {
	Success       bool   `json:"success"`
	HasAIAnalysis bool   `json:"hasAIAnalysis"`
	AIAnalysis    string `json:"aiAnalysis,omitempty"`
	Quiz          *Quiz  `json:"quiz,omitempty"`
}

// FlexID is an identifier the backend may send as a JSON string or number.
type FlexID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

// Submission is one historical submission of a problem.
type Submission struct {
	ID            FlexID    `json:"id"`
	ProblemID     FlexID    `json:"problemId"`
	Status        string    `json:"status"`
	PassedTests   int       `json:"passedTests"`
	TotalTests    int       `json:"totalTests"`
	ExecutionTime float64   `json:"executionTime,omitempty"`
	SubmittedAt   time.Time `json:"submittedAt"`
	SubmittedCode string    `json:"submittedCode,omitempty"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
}
