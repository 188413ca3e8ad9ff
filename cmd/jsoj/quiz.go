package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/jsoj/internal/markdown"
	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/quiz"
	"github.com/verte-zerg/jsoj/internal/stats"
)

var (
	quizAnswerFile  string
	quizAnswerAudio string
)

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Practice quiz questions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List quizzes by category",
		Args:  cobra.NoArgs,
		RunE:  runQuizListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a quiz question",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuizShowCmd,
	})
	answerCmd := &cobra.Command{
		Use:   "answer [id]",
		Short: "Answer a quiz and get AI feedback",
		Long:  "Answer a quiz and get AI feedback. Without an id the pending or last selected quiz is used. The answer is read from --file, from --audio through speech recognition, or from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runQuizAnswerCmd,
	}
	answerCmd.Flags().StringVar(&quizAnswerFile, "file", "", "read the answer from a file")
	answerCmd.Flags().StringVar(&quizAnswerAudio, "audio", "", "transcribe the answer from an audio file")
	cmd.AddCommand(answerCmd)
	return cmd
}

func runQuizListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	quizzes, err := a.client.ListQuizzes(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No quizzes found.")
		return err
	}
	out := cmd.OutOrStdout()
	for _, group := range quiz.GroupByCategory(quizzes) {
		if _, err := fmt.Fprintf(out, "%s (%d)\n", group.Name, len(group.Quizzes)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, q := range group.Quizzes {
			mark := " "
			if a.queue.Contains(model.KindQuiz, q.ID) {
				mark = "*"
			}
			if _, err := fmt.Fprintf(out, " %s %-6s %s\n", mark, q.ID, q.Title); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func runQuizShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	q, err := a.client.GetQuiz(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load quiz %s: %w", args[0], err)
	}
	quiz.NewSelection(a.local).Select(q.ID)
	return printMarkdown(cmd.OutOrStdout(), markdown.Quiz(*q))
}

func runQuizAnswerCmd(cmd *cobra.Command, args []string) error {
	if quizAnswerFile != "" && quizAnswerAudio != "" {
		return fmt.Errorf("--file and --audio cannot be used together")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	quizzes, err := a.client.ListQuizzes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load quizzes: %w", err)
	}
	selection := quiz.NewSelection(a.local)
	var current model.Quiz
	if len(args) == 1 {
		found := false
		for _, q := range quizzes {
			if q.ID == args[0] {
				current, found = q, true
			}
		}
		if !found {
			return fmt.Errorf("quiz %s not found", args[0])
		}
	} else {
		idx := selection.Restore(quizzes)
		if idx < 0 {
			return fmt.Errorf("no quizzes available")
		}
		current = quizzes[idx]
	}
	selection.Select(current.ID)

	session := quiz.NewSession(a.client, a.queue, a.attempts)
	answer, err := readAnswer(cmd, session, current)
	if err != nil {
		return err
	}

	analysis, err := session.Answer(ctx, current, answer)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	text := "## Your answer\n\n" + answer + "\n\n## AI analysis\n\n" + analysis.AIAnalysis +
		"\n\n## Reference answer\n\n" + quiz.ReferenceAnswer(current, analysis)
	return printMarkdown(out, text)
}

func readAnswer(cmd *cobra.Command, session *quiz.Session, q model.Quiz) (string, error) {
	switch {
	case quizAnswerAudio != "":
		return transcribeFile(cmd, session, quizAnswerAudio)
	case quizAnswerFile != "":
		return readInput(quizAnswerFile)
	default:
		logErrf("%s\nType your answer, then press Ctrl-D:\n", q.Title)
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}
		return string(data), nil
	}
}

func newTranscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Convert recorded speech to text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			text, err := transcribeFile(cmd, quiz.NewSession(a.client, a.queue, a.attempts), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func transcribeFile(cmd *cobra.Command, session *quiz.Session, path string) (string, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return session.Transcribe(cmd.Context(), audio, mimeType)
}

func printMarkdown(w io.Writer, src string) error {
	width := stats.TerminalWidth()
	text := markdown.RenderPlain(src, width)
	if stats.ShouldUseColor(w, false) {
		text = markdown.Render(src, width)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
