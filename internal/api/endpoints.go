package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strconv"

	"github.com/verte-zerg/jsoj/internal/model"
)

// CodeRequest is the body of the run, analyze and judge calls.
type CodeRequest struct {
	ProblemID string `json:"problemId"`
	Code      string `json:"code"`
}

// Transcription is the speech-to-text response.
type Transcription struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}

// ListProblems fetches every problem.
func (c *Client) ListProblems(ctx context.Context) ([]model.Problem, error) {
	var out struct {
		Problems []model.Problem `json:"problems"`
	}
	if err := c.do(ctx, http.MethodGet, "/problems", nil, &out); err != nil {
		return nil, err
	}
	if out.Problems == nil {
		out.Problems = []model.Problem{}
	}
	return out.Problems, nil
}

// GetProblem fetches one problem.
func (c *Client) GetProblem(ctx context.Context, id string) (*model.Problem, error) {
	var out model.Problem
	if err := c.do(ctx, http.MethodGet, "/problems/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analyze requests an AI review of code without running tests.
func (c *Client) Analyze(ctx context.Context, problemID, code string) (*model.JudgeResult, error) {
	return c.codeCall(ctx, "/analyze", problemID, code)
}

// Run executes code against the problem's examples.
func (c *Client) Run(ctx context.Context, problemID, code string) (*model.JudgeResult, error) {
	return c.codeCall(ctx, "/run", problemID, code)
}

// Judge runs every test case and requests an AI review.
func (c *Client) Judge(ctx context.Context, problemID, code string) (*model.JudgeResult, error) {
	return c.codeCall(ctx, "/judge", problemID, code)
}

func (c *Client) codeCall(ctx context.Context, path, problemID, code string) (*model.JudgeResult, error) {
	var out model.JudgeResult
	if err := c.do(ctx, http.MethodPost, path, CodeRequest{ProblemID: problemID, Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRecords fetches the record of every attempted problem.
func (c *Client) ListRecords(ctx context.Context) (map[string]model.Record, error) {
	var out struct {
		Records map[string]model.Record `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, "/records", nil, &out); err != nil {
		return nil, err
	}
	if out.Records == nil {
		out.Records = map[string]model.Record{}
	}
	return out.Records, nil
}

// GetRecord fetches the record of one problem.
func (c *Client) GetRecord(ctx context.Context, problemID string) (*model.Record, error) {
	var out model.Record
	if err := c.do(ctx, http.MethodGet, "/records/"+url.PathEscape(problemID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetRecord clears the record of one problem.
func (c *Client) ResetRecord(ctx context.Context, problemID string) error {
	return c.do(ctx, http.MethodDelete, "/records/"+url.PathEscape(problemID), nil, nil)
}

// ListQuizzes fetches every quiz.
func (c *Client) ListQuizzes(ctx context.Context) ([]model.Quiz, error) {
	var out struct {
		Quizzes []model.Quiz `json:"quizzes"`
	}
	if err := c.do(ctx, http.MethodGet, "/quizzes", nil, &out); err != nil {
		return nil, err
	}
	if out.Quizzes == nil {
		out.Quizzes = []model.Quiz{}
	}
	return out.Quizzes, nil
}

// GetQuiz fetches one quiz.
func (c *Client) GetQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	var out model.Quiz
	if err := c.do(ctx, http.MethodGet, "/quizzes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeQuiz submits an answer for AI assessment.
func (c *Client) AnalyzeQuiz(ctx context.Context, quizID, answer string) (*model.QuizAnalysis, error) {
	body := struct {
		QuizID     string `json:"quizId"`
		UserAnswer string `json:"userAnswer"`
	}{QuizID: quizID, UserAnswer: answer}
	var out model.QuizAnalysis
	if err := c.do(ctx, http.MethodPost, "/quizzes/analyze", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SpeechToText transcribes audio. The audio is sent as a base64 data URL.
func (c *Client) SpeechToText(ctx context.Context, audio []byte, mimeType string) (*Transcription, error) {
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	body := struct {
		AudioData string `json:"audioData"`
	}{AudioData: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(audio)}
	var out Transcription
	if err := c.do(ctx, http.MethodPost, "/speech-to-text", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSubmissions fetches the latest submissions of a problem.
func (c *Client) ListSubmissions(ctx context.Context, problemID string, limit int) ([]model.Submission, error) {
	query := url.Values{}
	query.Set("problemId", problemID)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Data []model.Submission `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/submissions?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []model.Submission{}
	}
	return out.Data, nil
}
