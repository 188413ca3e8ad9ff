package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/jsoj/internal/markdown"
	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/practice"
	"github.com/verte-zerg/jsoj/internal/stats"
	"github.com/verte-zerg/jsoj/internal/tui"
)

var (
	actionFile       string
	submissionsLimit int
)

const defaultSubmissionsLimit = 10

func newProblemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "problems",
		Short: "List problems with their record status",
		Args:  cobra.NoArgs,
		RunE:  runProblemsCmd,
	}
}

func runProblemsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	session := a.newSession(0)
	defer session.Close()
	if err := session.Bootstrap(cmd.Context(), a.client); err != nil {
		logErrln(practice.OfflineNotice)
	}
	snap := session.Snapshot()
	inReview := func(id string) bool { return a.queue.Contains(model.KindCode, id) }
	return stats.RenderRecords(cmd.OutOrStdout(), snap.Problems, snap.Records, inReview)
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a problem description",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	problem, err := a.client.GetProblem(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load problem %s: %w", args[0], err)
	}
	return printMarkdown(cmd.OutOrStdout(), markdown.Problem(*problem))
}

type sessionAction func(*practice.Session, context.Context) (*model.JudgeResult, error)

func newActionCmd(use, short string, action sessionAction) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActionCmd(cmd, args[0], action)
		},
	}
	cmd.Flags().StringVar(&actionFile, "file", "", "read code from file instead of the stored draft")
	return cmd
}

// runActionCmd drives the same session as the TUI, so drafts, records,
// the review queue and the daily log are updated the same way. Code read
// from --file becomes the problem's draft.
func runActionCmd(cmd *cobra.Command, id string, action sessionAction) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	problem, err := a.client.GetProblem(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load problem %s: %w", id, err)
	}
	records, err := a.client.ListRecords(ctx)
	if err != nil {
		logErrf("failed to load records: %v\n", err)
	}

	session := a.newSession(0)
	defer session.Close()
	session.LoadProblems([]model.Problem{*problem})
	session.SetRecords(records)
	session.SelectByID(problem.ID)
	if actionFile != "" {
		code, err := readInput(actionFile)
		if err != nil {
			return err
		}
		session.SetUserCode(code)
	}

	result, err := action(session, ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), tui.RenderResult(session.Snapshot(), stats.TerminalWidth())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if result != nil && result.Status == model.StatusError {
		return errors.New(result.Message)
	}
	return nil
}

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List per-problem records",
		Args:  cobra.NoArgs,
		RunE:  runProblemsCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset <id>",
		Short: "Reset the record of a problem",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecordsResetCmd,
	})
	return cmd
}

func runRecordsResetCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.client.ResetRecord(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to reset record: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Record of problem %s reset.\n", args[0])
	return err
}

func newSubmissionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions <id>",
		Short: "Show the submission history of a problem",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubmissionsCmd,
	}
	cmd.Flags().IntVar(&submissionsLimit, "limit", defaultSubmissionsLimit, "number of submissions to show")
	return cmd
}

func runSubmissionsCmd(cmd *cobra.Command, args []string) error {
	if submissionsLimit <= 0 {
		return fmt.Errorf("--limit must be > 0")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	subs, err := a.client.ListSubmissions(cmd.Context(), strings.TrimSpace(args[0]), submissionsLimit)
	if err != nil {
		return fmt.Errorf("failed to load submissions: %w", err)
	}
	return stats.RenderSubmissions(cmd.OutOrStdout(), subs, time.Now())
}
