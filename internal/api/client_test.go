package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/jsoj/internal/model"
)

func newBackend(t *testing.T, routes func(g *echo.Group)) *Client {
	t.Helper()
	e := echo.New()
	e.HideBanner = true
	routes(e.Group("/api"))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", WithLimiter(nil))
}

func TestListProblems(t *testing.T) {
	var requestID string
	client := newBackend(t, func(g *echo.Group) {
		g.GET("/problems", func(c echo.Context) error {
			requestID = c.Request().Header.Get("X-Request-ID")
			return c.JSON(http.StatusOK, map[string]any{
				"problems": []model.Problem{
					{ID: "1", Title: "Two Sum", Difficulty: model.Easy, Template: "function twoSum() {}"},
				},
			})
		})
	})

	problems, err := client.ListProblems(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "Two Sum", problems[0].Title)
	assert.Equal(t, model.Easy, problems[0].Difficulty)
	assert.NotEmpty(t, requestID)
}

func TestEmptyCollectionsAreNotNil(t *testing.T) {
	client := newBackend(t, func(g *echo.Group) {
		g.GET("/problems", func(c echo.Context) error { return c.JSON(http.StatusOK, map[string]any{}) })
		g.GET("/records", func(c echo.Context) error { return c.JSON(http.StatusOK, map[string]any{}) })
		g.GET("/quizzes", func(c echo.Context) error { return c.JSON(http.StatusOK, map[string]any{}) })
	})
	ctx := context.Background()

	problems, err := client.ListProblems(ctx)
	require.NoError(t, err)
	assert.NotNil(t, problems)

	records, err := client.ListRecords(ctx)
	require.NoError(t, err)
	assert.NotNil(t, records)

	quizzes, err := client.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.NotNil(t, quizzes)
}

func TestCodeCallsPostProblemAndCode(t *testing.T) {
	for _, path := range []string{"/run", "/analyze", "/judge"} {
		t.Run(path, func(t *testing.T) {
			var got CodeRequest
			client := newBackend(t, func(g *echo.Group) {
				g.POST(path, func(c echo.Context) error {
					if err := c.Bind(&got); err != nil {
						return err
					}
					return c.JSON(http.StatusOK, map[string]any{
						"status":        "Accepted",
						"passedTests":   2,
						"totalTests":    2,
						"hasAIAnalysis": true,
						"aiAnalysis":    "## Looks good",
						"record":        map[string]any{"isPassed": true, "passedCount": 1, "totalAttempts": 3},
						"testResults":   []map[string]any{{"passed": true, "input": []int{1, 2}}},
					})
				})
			})

			var call func(context.Context, string, string) (*model.JudgeResult, error)
			switch path {
			case "/run":
				call = client.Run
			case "/analyze":
				call = client.Analyze
			default:
				call = client.Judge
			}
			result, err := call(context.Background(), "1", "return 1")
			require.NoError(t, err)
			assert.Equal(t, CodeRequest{ProblemID: "1", Code: "return 1"}, got)
			assert.Equal(t, "Accepted", result.Status)
			require.NotNil(t, result.PassedTests)
			assert.Equal(t, 2, *result.PassedTests)
			require.NotNil(t, result.Record)
			assert.Equal(t, 3, result.Record.TotalAttempts)
			require.Len(t, result.TestResults, 1)
			assert.JSONEq(t, `[1,2]`, string(result.TestResults[0].Input))
		})
	}
}

func TestErrorBodyBecomesMessage(t *testing.T) {
	client := newBackend(t, func(g *echo.Group) {
		g.POST("/run", func(c echo.Context) error {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "syntax error at line 1"})
		})
		g.GET("/records/:id", func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "no record"})
		})
		g.DELETE("/records/:id", func(c echo.Context) error {
			return c.String(http.StatusInternalServerError, "boom")
		})
	})
	ctx := context.Background()

	_, err := client.Run(ctx, "1", "x")
	require.Error(t, err)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "syntax error at line 1", Message(err))

	_, err = client.GetRecord(ctx, "7")
	assert.Equal(t, "no record", Message(err))

	err = client.ResetRecord(ctx, "7")
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), Message(err))
}

func TestResetRecordUsesDelete(t *testing.T) {
	deleted := ""
	client := newBackend(t, func(g *echo.Group) {
		g.DELETE("/records/:id", func(c echo.Context) error {
			deleted = c.Param("id")
			return c.JSON(http.StatusOK, map[string]bool{"success": true})
		})
	})
	require.NoError(t, client.ResetRecord(context.Background(), "42"))
	assert.Equal(t, "42", deleted)
}

func TestQuizEndpoints(t *testing.T) {
	var answer struct {
		QuizID     string `json:"quizId"`
		UserAnswer string `json:"userAnswer"`
	}
	client := newBackend(t, func(g *echo.Group) {
		g.GET("/quizzes/:id", func(c echo.Context) error {
			return c.JSON(http.StatusOK, model.Quiz{ID: c.Param("id"), Title: "Closures", Question: "What is a closure?"})
		})
		g.POST("/quizzes/analyze", func(c echo.Context) error {
			if err := c.Bind(&answer); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, model.QuizAnalysis{Success: true, HasAIAnalysis: true, AIAnalysis: "ok"})
		})
	})
	ctx := context.Background()

	quiz, err := client.GetQuiz(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "q1", quiz.ID)

	analysis, err := client.AnalyzeQuiz(ctx, "q1", "a function with its scope")
	require.NoError(t, err)
	assert.True(t, analysis.Success)
	assert.Equal(t, "q1", answer.QuizID)
	assert.Equal(t, "a function with its scope", answer.UserAnswer)
}

func TestSpeechToTextSendsDataURL(t *testing.T) {
	var audioData string
	client := newBackend(t, func(g *echo.Group) {
		g.POST("/speech-to-text", func(c echo.Context) error {
			var body struct {
				AudioData string `json:"audioData"`
			}
			if err := c.Bind(&body); err != nil {
				return err
			}
			audioData = body.AudioData
			return c.JSON(http.StatusOK, Transcription{Success: true, Text: "hello"})
		})
	})

	out, err := client.SpeechToText(context.Background(), []byte("RIFF"), "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Text)
	assert.Equal(t, "data:audio/wav;base64,"+base64.StdEncoding.EncodeToString([]byte("RIFF")), audioData)
}

func TestListSubmissionsQuery(t *testing.T) {
	var problemID, limit string
	client := newBackend(t, func(g *echo.Group) {
		g.GET("/submissions", func(c echo.Context) error {
			problemID = c.QueryParam("problemId")
			limit = c.QueryParam("limit")
			return c.JSONBlob(http.StatusOK, []byte(`{"data":[{"id":17,"problemId":"1","status":"accepted",`+
				`"passedTests":3,"totalTests":3,"submittedAt":"2024-03-10T09:00:00Z"}]}`))
		})
	})

	subs, err := client.ListSubmissions(context.Background(), "1", 10)
	require.NoError(t, err)
	assert.Equal(t, "1", problemID)
	assert.Equal(t, "10", limit)
	require.Len(t, subs, 1)
	assert.Equal(t, model.FlexID("17"), subs[0].ID)
	assert.Equal(t, "accepted", subs[0].Status)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := New(base+"/api", WithLimiter(nil))
	_, err := client.ListProblems(context.Background())
	require.Error(t, err)
	assert.NotEmpty(t, Message(err))
	assert.False(t, strings.HasPrefix(Message(err), "GET /problems"))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	client := New(srv.URL, WithLimiter(nil), WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := client.ListProblems(context.Background())
	require.Error(t, err)
}

func TestDefaultClientTimeout(t *testing.T) {
	client := New("http://localhost:5001/api")
	assert.Equal(t, DefaultTimeout, client.http.Timeout)
	assert.Equal(t, "http://localhost:5001/api", client.BaseURL())
}
