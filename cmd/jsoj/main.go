// Package main provides the CLI entrypoint for jsoj.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/jsoj/internal/api"
	"github.com/verte-zerg/jsoj/internal/config"
	"github.com/verte-zerg/jsoj/internal/daily"
	"github.com/verte-zerg/jsoj/internal/localstore"
	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/practice"
	"github.com/verte-zerg/jsoj/internal/review"
	"github.com/verte-zerg/jsoj/internal/store"
	"github.com/verte-zerg/jsoj/internal/tui"
)

// buildMode is set at link time with -ldflags "-X main.buildMode=production".
var buildMode = config.ModeDevelopment

const defaultAutosaveMs = 500

var (
	practiceAutosaveMs int
	ephemeral          bool
)

// sessionOnlyNotice is shown when local data cannot outlive the process.
const sessionOnlyNotice = "Local data is kept for this session only."

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jsoj",
		Short:         "Terminal client for the JS online judge",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep local data in memory for this run only")
	rootCmd.Flags().IntVar(&practiceAutosaveMs, "autosave-ms", defaultAutosaveMs, "delay before the editor buffer is saved as a draft")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newProblemsCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newActionCmd("run", "Run code against the problem's examples", (*practice.Session).Run))
	rootCmd.AddCommand(newActionCmd("submit", "Submit code for AI analysis", (*practice.Session).Submit))
	rootCmd.AddCommand(newActionCmd("judge", "Run every test case and request analysis", (*practice.Session).FullJudge))
	rootCmd.AddCommand(newRecordsCmd())
	rootCmd.AddCommand(newSubmissionsCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newQuizCmd())
	rootCmd.AddCommand(newTranscribeCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

// app holds the resources shared by every command.
type app struct {
	cfg config.FileConfig
	// store is nil when local data lives in memory only.
	store    *store.Store
	local    *localstore.Adapter
	client   *api.Client
	queue    *review.Queue
	attempts *daily.AttemptLog
	logFile  *os.File
}

func openApp() (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a := &app{cfg: fileCfg}
	if err := a.setupLogging(); err != nil {
		return nil, err
	}

	baseURL, err := config.BaseURL(buildMode, fileCfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.local = a.openLocal()
	a.client = api.New(baseURL)
	a.queue = review.New(a.local)
	a.attempts = daily.New(a.local)
	return a, nil
}

// openLocal opens the database. When it cannot be opened the client keeps
// working with data held in memory for this process.
func (a *app) openLocal() *localstore.Adapter {
	if ephemeral {
		return localstore.New(localstore.NewMemoryBackend())
	}
	path := config.DefaultDBPath()
	st, err := store.Open(path)
	if err != nil {
		slog.Warn("local database unavailable", "path", path, "error", err)
		logErrf("Failed to open %s: %v\n%s\n", path, err, sessionOnlyNotice)
		return localstore.New(localstore.NewMemoryBackend())
	}
	a.store = st
	return localstore.New(st)
}

// setupLogging sends slog output to the log file so it never mixes with
// the TUI.
func (a *app) setupLogging() error {
	level, err := a.cfg.LogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	f, err := openLogFile()
	if err != nil {
		// Diagnostics are optional.
		logErrf("%v, diagnostics are disabled\n", err)
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, opts)))
		return nil
	}
	a.logFile = f
	slog.SetDefault(slog.New(slog.NewTextHandler(f, opts)))
	return nil
}

func openLogFile() (*os.File, error) {
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		path = filepath.Join(filepath.Dir(config.DefaultDBPath()), "jsoj.log")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func (a *app) close() {
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	if a.logFile != nil {
		// Best-effort close.
		_ = a.logFile.Close()
	}
}

// newSession builds a practice session. A zero autosave uses the default.
func (a *app) newSession(autosave time.Duration) *practice.Session {
	return practice.New(practice.Config{
		Store:    a.local,
		Queue:    a.queue,
		Attempts: a.attempts,
		Judge:    a.client,
		Autosave: autosave,
	})
}

// remind prints the daily review reminder once per local day.
func (a *app) remind() {
	reminder := daily.NewReminder(a.local, time.Now, time.Local)
	now := time.Now()
	var parts []string
	for _, kind := range model.Kinds {
		pending := 0
		for _, e := range a.queue.Entries(kind) {
			if review.StatusAt(e, now) == review.StatusUnreviewed {
				pending++
			}
		}
		if pending > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", pending, strings.ToLower(kind.Label())))
		}
	}
	if len(parts) == 0 || !reminder.ShouldShow() {
		return
	}
	logErrf("Review reminder: %s waiting. Run: jsoj review\n", strings.Join(parts, ", "))
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()
	autosave, err := a.cfg.Autosave(time.Duration(practiceAutosaveMs) * time.Millisecond)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("autosave-ms") {
		if practiceAutosaveMs <= 0 {
			return fmt.Errorf("--autosave-ms must be > 0")
		}
		autosave = time.Duration(practiceAutosaveMs) * time.Millisecond
	}

	session := a.newSession(autosave)
	defer session.Close()

	a.remind()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := session.Bootstrap(ctx, a.client); err != nil {
		slog.Warn("starting with sample problems", "error", err)
	}

	m := tui.NewModel(ctx, session)
	program := tea.NewProgram(m, tea.WithAltScreen())
	unsubscribe := session.Subscribe(func(snap practice.Snapshot) {
		go program.Send(tui.SnapshotMsg(snap))
	})
	defer unsubscribe()
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# jsoj configuration
# Uncomment a value to enable it. CLI flags override config values.

[backend]
# host = %q   # Backend used by production builds

[practice]
# autosave-ms = %d        # Delay before the editor buffer is saved
# review-page-size = %d   # Review entries shown per page

[log]
# level = "info"          # debug, info, warn or error
`,
		config.DefaultHost,
		defaultAutosaveMs,
		review.DefaultPageSize,
	)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func parseKind(value string) (model.Kind, error) {
	kind, ok := model.ParseKind(strings.ToLower(strings.TrimSpace(value)))
	if !ok {
		return "", fmt.Errorf("unknown kind %q (expected code, quiz or leetcode)", value)
	}
	return kind, nil
}

func readInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
