package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/practice"
	"github.com/verte-zerg/jsoj/internal/quiz"
	"github.com/verte-zerg/jsoj/internal/review"
	"github.com/verte-zerg/jsoj/internal/reviewui"
	"github.com/verte-zerg/jsoj/internal/stats"
)

var (
	reviewKind  string
	reviewLimit int
	reviewTitle string
	reviewLink  string

	todayKind    string
	todayHistory int
)

const defaultHistoryDays = 7

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Show the review queues",
		Args:  cobra.NoArgs,
		RunE:  runReviewCmd,
	}
	cmd.Flags().StringVar(&reviewKind, "kind", "", "only show one kind (code, quiz or leetcode)")
	cmd.Flags().IntVar(&reviewLimit, "limit", review.DefaultPageSize, "entries shown per kind")

	addCmd := &cobra.Command{
		Use:   "add <kind> <id>",
		Short: "Add an item to a review queue",
		Args:  cobra.ExactArgs(2),
		RunE:  runReviewAddCmd,
	}
	addCmd.Flags().StringVar(&reviewTitle, "title", "", "item title")
	addCmd.Flags().StringVar(&reviewLink, "link", "", "item link")

	linkCmd := &cobra.Command{
		Use:   "link",
		Short: "Add a LeetCode problem by link",
		Args:  cobra.NoArgs,
		RunE:  runReviewLinkCmd,
	}
	linkCmd.Flags().StringVar(&reviewTitle, "title", "", "problem title")
	linkCmd.Flags().StringVar(&reviewLink, "link", "", "problem link")

	cmd.AddCommand(addCmd, linkCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "mark <kind> <id>",
		Short: "Mark an item as reviewed now",
		Args:  cobra.ExactArgs(2),
		RunE:  runReviewMarkCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "yesterday",
		Short: "List items reviewed yesterday",
		Args:  cobra.NoArgs,
		RunE:  runReviewYesterdayCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "open <kind> <id>",
		Short: "Open an item next time the practice or quiz view starts",
		Args:  cobra.ExactArgs(2),
		RunE:  runReviewOpenCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "plan",
		Short: "Queue the " + review.PlanItem.Title + " study plan",
		Args:  cobra.NoArgs,
		RunE:  runReviewPlanCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "browse",
		Short: "Browse the review queues interactively",
		Args:  cobra.NoArgs,
		RunE:  runReviewBrowseCmd,
	})
	return cmd
}

func runReviewCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()
	applyIntConfig(cmd, "limit", &reviewLimit, a.cfg.Practice.ReviewPageSize)
	if reviewLimit <= 0 {
		return fmt.Errorf("--limit must be > 0")
	}

	kinds := model.Kinds
	if reviewKind != "" {
		kind, err := parseKind(reviewKind)
		if err != nil {
			return err
		}
		kinds = []model.Kind{kind}
	}
	a.remind()
	now := time.Now()
	out := cmd.OutOrStdout()
	for i, kind := range kinds {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if err := stats.RenderReviewTable(out, kind, a.queue.Entries(kind), now, reviewLimit); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if kinds[0] == model.KindLeetCode || len(kinds) > 1 {
		return renderPlanProgress(cmd, a.queue)
	}
	return nil
}

// renderPlanProgress shows how much of the LeetCode study plan is queued.
func renderPlanProgress(cmd *cobra.Command, queue *review.Queue) error {
	if !queue.Contains(model.KindLeetCode, review.PlanID) {
		return nil
	}
	reviewed, unreviewed := queue.Progress(model.KindLeetCode, []string{review.PlanID})
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "\n%s: %d reviewed, %d pending\n", review.PlanItem.Title, reviewed, unreviewed)
	return err
}

func runReviewAddCmd(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	item := review.Item{ID: args[1], Title: reviewTitle, Link: reviewLink}
	if kind == model.KindLeetCode && reviewLink != "" {
		item.Link = review.NormalizeLink(reviewLink)
	}
	if item.Title == "" {
		item.Title = item.ID
	}
	a.queue.Enqueue(kind, item)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Queued %s %q for review.\n", kind.Label(), item.Title)
	return err
}

func runReviewLinkCmd(cmd *cobra.Command, _ []string) error {
	item, err := review.LinkItem(reviewTitle, reviewLink)
	if err != nil {
		return fmt.Errorf("--title and --link are required: %w", err)
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.queue.Enqueue(model.KindLeetCode, item)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Queued %q (%s).\n", item.Title, item.Link)
	return err
}

func runReviewPlanCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.queue.Enqueue(model.KindLeetCode, review.PlanItem)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Queued %q (%s).\n", review.PlanItem.Title, review.PlanItem.Link)
	return err
}

func runReviewMarkCmd(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if !a.queue.Contains(kind, args[1]) {
		return fmt.Errorf("%s %q is not in the review queue", kind.Label(), args[1])
	}
	a.queue.MarkReviewed(kind, args[1])
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Marked %s %q as reviewed.\n", kind.Label(), args[1])
	return err
}

func runReviewYesterdayCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	entries := a.queue.ReviewedBetween(today.AddDate(0, 0, -1), today)
	return stats.RenderReviewedYesterday(cmd.OutOrStdout(), entries)
}

func runReviewOpenCmd(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()
	return openEntry(cmd, a, review.KindEntry{Kind: kind, ReviewEntry: model.ReviewEntry{ID: args[1]}})
}

// openEntry arranges for the item to be shown next: code problems become
// the last visited problem, quizzes the pending quiz.
func openEntry(cmd *cobra.Command, a *app, entry review.KindEntry) error {
	out := cmd.OutOrStdout()
	switch entry.Kind {
	case model.KindCode:
		a.local.Write(practice.LastProblemKey, entry.ID)
		_, err := fmt.Fprintf(out, "Problem %s opens next time you run: jsoj\n", entry.ID)
		return err
	case model.KindQuiz:
		quiz.NewSelection(a.local).SetPending(entry.ID)
		_, err := fmt.Fprintf(out, "Quiz %s opens next time you run: jsoj quiz answer\n", entry.ID)
		return err
	default:
		link := entry.Link
		if link == "" {
			for _, e := range a.queue.Entries(entry.Kind) {
				if e.ID == entry.ID {
					link = e.Link
				}
			}
		}
		if link == "" {
			return fmt.Errorf("no link stored for %s", entry.ID)
		}
		_, err := fmt.Fprintln(out, link)
		return err
	}
}

func runReviewBrowseCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	pageSize := review.DefaultPageSize
	if a.cfg.Practice.ReviewPageSize != nil {
		pageSize = *a.cfg.Practice.ReviewPageSize
	}
	m := reviewui.NewModel(a.queue, pageSize, time.Now)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run review TUI: %w", err)
	}
	if entry, ok := m.Opened(); ok {
		return openEntry(cmd, a, entry)
	}
	return nil
}

func newTodayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show what was attempted today",
		Args:  cobra.NoArgs,
		RunE:  runTodayCmd,
	}
	cmd.Flags().StringVar(&todayKind, "kind", "", "only show one kind (code, quiz or leetcode)")
	cmd.Flags().IntVar(&todayHistory, "history", 0, "also show counts for the last N days")
	return cmd
}

func runTodayCmd(cmd *cobra.Command, _ []string) error {
	if todayHistory < 0 {
		return fmt.Errorf("--history must be >= 0")
	}
	kinds := []model.Kind{model.KindCode, model.KindQuiz}
	if todayKind != "" {
		kind, err := parseKind(todayKind)
		if err != nil {
			return err
		}
		kinds = []model.Kind{kind}
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	for _, kind := range kinds {
		if err := stats.RenderToday(out, kind, a.attempts.Today(kind)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if todayHistory > 0 {
			if err := stats.RenderHistory(out, a.attempts.History(kind, todayHistory)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show progress, activity and local data",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	session := a.newSession(0)
	defer session.Close()
	if err := session.Bootstrap(ctx, a.client); err != nil {
		logErrln(practice.OfflineNotice)
	}
	snap := session.Snapshot()
	progress := stats.ProblemProgress(snap.Problems, snap.Records)
	barWidth := min(stats.TerminalWidth()-2, 60)
	if err := stats.RenderProgress(out, progress, barWidth, stats.ShouldUseColor(out, false)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	for _, kind := range []model.Kind{model.KindCode, model.KindQuiz} {
		if _, err := fmt.Fprintln(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := stats.RenderHistory(out, a.attempts.History(kind, defaultHistoryDays)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if _, err := fmt.Fprintf(out, "%s attempted today: %d\n", kind.Label(), a.attempts.CountToday(kind)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if a.store == nil {
		_, err := fmt.Fprintln(out, sessionOnlyNotice)
		return err
	}
	return stats.RenderStorage(ctx, out, a.store)
}
