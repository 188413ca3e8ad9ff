// Package quiz handles quiz answers, voice transcription and the remembered
// quiz selection.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/jsoj/internal/api"
	"github.com/verte-zerg/jsoj/internal/daily"
	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/review"
)

var (
	// ErrEmptyAnswer is returned for a blank answer. Nothing is sent.
	ErrEmptyAnswer = errors.New("enter an answer first")
	// ErrAnalysisUnavailable is returned when the backend answered without
	// an analysis.
	ErrAnalysisUnavailable = errors.New("AI analysis is unavailable, try again later")
	// ErrTranscriptionFailed is returned when speech to text found no text.
	ErrTranscriptionFailed = errors.New("speech recognition failed, try again")
)

// Backend is the part of the API used by quiz sessions.
type Backend interface {
	AnalyzeQuiz(ctx context.Context, quizID, answer string) (*model.QuizAnalysis, error)
	SpeechToText(ctx context.Context, audio []byte, mimeType string) (*api.Transcription, error)
}

// Session submits quiz answers and records progress.
type Session struct {
	backend  Backend
	queue    *review.Queue
	attempts *daily.AttemptLog
	timeout  time.Duration
}

// NewSession returns a quiz session.
func NewSession(backend Backend, queue *review.Queue, attempts *daily.AttemptLog) *Session {
	return &Session{backend: backend, queue: queue, attempts: attempts, timeout: api.DefaultTimeout}
}

// Answer submits answer for q. Only an analysed answer queues the quiz for
// review and counts it as attempted today.
func (s *Session) Answer(ctx context.Context, q model.Quiz, answer string) (*model.QuizAnalysis, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, ErrEmptyAnswer
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	analysis, err := s.backend.AnalyzeQuiz(ctx, q.ID, answer)
	if err != nil {
		return nil, fmt.Errorf("submit failed: %s: %w", api.Message(err), err)
	}
	if !analysis.Success || !analysis.HasAIAnalysis {
		return analysis, ErrAnalysisUnavailable
	}
	title := q.Title
	if title == "" && analysis.Quiz != nil {
		title = analysis.Quiz.Title
	}
	s.queue.Enqueue(model.KindQuiz, review.Item{ID: q.ID, Title: title})
	s.attempts.Log(model.KindQuiz, model.Attempt{ID: q.ID, Title: title})
	return analysis, nil
}

// Transcribe converts recorded audio to text.
func (s *Session) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.backend.SpeechToText(ctx, audio, mimeType)
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %s: %w", api.Message(err), err)
	}
	if !out.Success || strings.TrimSpace(out.Text) == "" {
		return "", ErrTranscriptionFailed
	}
	return out.Text, nil
}

// AppendTranscript appends text to an answer draft, separated by a space.
func AppendTranscript(answer, text string) string {
	if answer == "" {
		return text
	}
	return answer + " " + text
}

// ReferenceAnswer prefers the answer returned with an analysis.
func ReferenceAnswer(q model.Quiz, analysis *model.QuizAnalysis) string {
	if analysis != nil && analysis.Quiz != nil {
		if ref := strings.TrimSpace(analysis.Quiz.ReferenceAnswer); ref != "" {
			return ref
		}
	}
	if ref := strings.TrimSpace(q.ReferenceAnswer); ref != "" {
		return ref
	}
	return "> No reference answer configured."
}
