package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/netsyslog-go/internal/config"
	"github.com/olegiv/netsyslog-go/internal/history"
	"github.com/olegiv/netsyslog-go/internal/notification"
	"github.com/olegiv/netsyslog-go/internal/pipeline"
	"github.com/olegiv/netsyslog-go/internal/report"
	"github.com/olegiv/netsyslog-go/pkg/logger"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

// Version information - injected at build time via ldflags
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse CLI arguments first
	cli := config.ParseCLI()

	if cli.ShowHelp {
		flag.Usage()
		return exitSuccess
	}

	if cli.ShowVersion {
		fmt.Printf("netsyslog %s\n", version)
		if gitCommit != "unknown" {
			fmt.Printf("  commit: %s\n", gitCommit)
		}
		if buildTime != "unknown" {
			fmt.Printf("  built:  %s\n", buildTime)
		}
		return exitSuccess
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Load configuration with CLI overrides
	cfg, err := config.LoadWithCLI(cli)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return exitFailure
	}

	log := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		LogDir:     "./logs",
		Filename:   "netsyslog.log",
		MaxSizeMB:  10,
		MaxBackups: 5,
		Console:    true,
	})
	defer func() {
		if err := log.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close logger: %v\n", err)
		}
	}()

	log.Info().
		Str("inventory", cfg.InventoryPath).
		Str("notify", cfg.Notify).
		Msg("Starting net syslog reporter")

	store, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.HistoryDBPath).Msg("Failed to open history database")
		return exitFailure
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close history database")
		}
	}()

	sink, err := createSink(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize notification sink")
		return exitFailure
	}

	runner := pipeline.New(cfg, store, log.Logger)

	if cfg.HasSchedule() && !cli.Once {
		if err := runScheduled(ctx, cfg, runner, sink, log); err != nil {
			log.Error().Err(err).Msg("Scheduler failed")
			return exitFailure
		}
		return exitSuccess
	}

	if err := runOnce(ctx, cfg, cli.Date, runner, sink, log); err != nil {
		log.Error().Err(err).Msg("Report run failed")
		return exitFailure
	}

	log.Info().Msg("Report completed successfully")
	return exitSuccess
}

// runOnce builds and delivers a single report. dateOverride, when set,
// names the report date as yyyy-mm-dd and wins over REPORT_DAYS_BEFORE.
func runOnce(ctx context.Context, cfg *config.Config, dateOverride string, runner *pipeline.Runner, sink notification.Sink, log *logger.Logger) error {
	startTime := time.Now()

	date := cfg.ReportDate(time.Now())
	if dateOverride != "" {
		parsed, err := time.Parse("2006-01-02", dateOverride)
		if err != nil {
			return fmt.Errorf("invalid -date value %q: %w", dateOverride, err)
		}
		date = parsed
	}

	log.Info().Str("date", date.Format("2006-01-02")).Msg("Building report")

	reports, err := runner.Run(ctx, date)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	htmlBody, err := report.RenderHTML(date, reports)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	textBody := report.RenderText(date, reports)

	if err := sink.Send(date.Format("2006-01-02"), htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to deliver report: %w", err)
	}

	log.Info().
		Int("devices", len(reports)).
		Float64("duration_s", time.Since(startTime).Seconds()).
		Msg("Report delivered")

	return nil
}

// runScheduled runs the reporter as a daemon, firing on the cron SCHEDULE
// until the context is cancelled.
func runScheduled(ctx context.Context, cfg *config.Config, runner *pipeline.Runner, sink notification.Sink, log *logger.Logger) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid SCHEDULE %q: %w", cfg.Schedule, err)
	}

	c := cron.New(cron.WithParser(parser))
	_, err := c.AddFunc(cfg.Schedule, func() {
		if err := runOnce(ctx, cfg, "", runner, sink, log); err != nil {
			log.Error().Err(err).Msg("Scheduled report run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule report job: %w", err)
	}

	c.Start()
	log.Info().Str("schedule", cfg.Schedule).Msg("Scheduler started")

	<-ctx.Done()
	log.Info().Msg("Shutting down scheduler")

	// Let an in-flight run finish, but not forever.
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		log.Warn().Msg("Scheduler stop timed out")
	}

	return nil
}

// createSink picks the delivery channel from NOTIFY.
func createSink(cfg *config.Config) (notification.Sink, error) {
	switch cfg.Notify {
	case "smtp":
		return notification.NewSMTPSink(cfg.SMTPServer, cfg.SMTPFrom, cfg.SMTPTo), nil
	case "telegram":
		return notification.NewTelegramSink(cfg.TelegramBotToken, cfg.TelegramChannel)
	case "stdout":
		return &notification.StdoutSink{W: os.Stdout}, nil
	default:
		return nil, fmt.Errorf("unsupported notify channel: %s", cfg.Notify)
	}
}
