package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"timeclock/internal"
	"timeclock/internal/analysis"
	"timeclock/internal/chrono"
	"timeclock/internal/config"
	"timeclock/internal/event"
	"timeclock/internal/logging"
	"timeclock/internal/notify"
	"timeclock/internal/preferences"
	"timeclock/internal/report"
	"timeclock/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default <user config dir>/timeclock/config.yaml)")
	reportFlag := flag.Bool("report", false, "print a report and exit")
	rng := flag.String("range", "today", "report range: today|week|month|all")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *reportFlag, *rng); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, reportMode bool, rng string) error {
	if configPath == "" {
		dir, err := config.DefaultDataDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(dir, "config.yaml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, cleanup, err := logging.New(cfg.LogFile, cfg.LogLevel, extraLogWriters(reportMode)...)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer cleanup()

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	repo, err := event.NewRepository(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	eventLog := event.NewLog(repo, logger)
	if err := eventLog.Load(ctx); err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	windows := make([]analysis.Window, 0, len(cfg.Panes))
	for _, p := range cfg.Panes {
		windows = append(windows, analysis.Window{Name: p.Name, Days: p.Days})
	}
	panes := analysis.NewSet(windows, time.Now)

	if reportMode {
		return printReport(eventLog, panes, rng)
	}

	logger.Info("timeclock_starting",
		slog.String("database", cfg.DatabasePath),
		slog.Duration("tick_interval", cfg.TickInterval),
		slog.Int("events", len(eventLog.Events())),
	)

	chron := chrono.New(cfg.TickInterval)
	defer chron.Stop()

	sess := session.New(eventLog, chron, notify.NewTerminal(os.Stderr, logger),
		session.WithLogger(logger),
		session.WithTickFrequency(cfg.TickInterval),
	)

	m, err := internal.NewModel(ctx, internal.Deps{
		Session:     sess,
		Log:         eventLog,
		Panes:       panes,
		Preferences: preferences.NewFileStore(cfg.PreferencesPath),
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	chron.SetTickListener(func() {
		p.Send(internal.MsgTick{})
	})

	if _, err := sess.Resume(ctx); err != nil {
		return fmt.Errorf("failed to resume session: %w", err)
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// extraLogWriters mirrors logs to stderr unless the full-screen UI owns the
// terminal.
func extraLogWriters(reportMode bool) []io.Writer {
	if reportMode {
		return []io.Writer{os.Stderr}
	}
	return nil
}

func printReport(eventLog *event.Log, panes *analysis.Set, rng string) error {
	window, err := report.ParseRange(rng)
	if err != nil {
		return err
	}
	pane, ok := panes.Find(window.Days)
	if !ok {
		pane = analysis.NewPane(window.Name, window.Days)
	}
	pane.OnEventsUpdate(eventLog.Events())
	return report.Write(os.Stdout, pane)
}
