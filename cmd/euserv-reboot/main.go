// Command euserv-reboot checks whether an EUserv server answers over IPv6
// and, if it does not, resets it through the customer control panel.
// Intended to run from cron or a systemd timer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HerbHall/euserv-reboot/internal/config"
	"github.com/HerbHall/euserv-reboot/internal/euserv"
	"github.com/HerbHall/euserv-reboot/internal/probe"
	"github.com/HerbHall/euserv-reboot/internal/recovery"
	"github.com/HerbHall/euserv-reboot/internal/version"
	"github.com/HerbHall/euserv-reboot/internal/webhook"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 && args[0] == "version" {
		fmt.Println(version.Info())
		return 0
	}

	fs := flag.NewFlagSet("euserv-reboot", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file")
	check := fs.Bool("check", false, "only probe the target, never reset it")
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Println(version.Info())
		return 0
	}

	// Load configuration (before logger, so log level/format can be configured).
	v, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Parse(v)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 1
	}
	if *check {
		cfg.DryRun = true
	}

	logger.Info("euserv-reboot starting",
		zap.String("version", version.Short()),
		zap.String("target", cfg.Target.Address),
		zap.String("probe_method", cfg.Probe.Method),
		zap.Bool("dry_run", cfg.DryRun),
	)
	if f := v.ConfigFileUsed(); f != "" {
		logger.Debug("configuration loaded", zap.String("source", f))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prober, err := probe.New(cfg.Probe, probe.OSRunner{}, logger.Named("probe"))
	if err != nil {
		logger.Error("failed to create prober", zap.Error(err))
		return 1
	}

	client, err := euserv.NewClient(cfg.API, cfg.Account, logger.Named("euserv"))
	if err != nil {
		logger.Error("failed to create control panel client", zap.Error(err))
		return 1
	}

	metrics := recovery.NewMetrics()
	opts := []recovery.Option{
		recovery.WithDryRun(cfg.DryRun),
		recovery.WithMetrics(metrics),
	}
	if cfg.Notify.Webhook.URL != "" {
		opts = append(opts, recovery.WithNotifier(webhook.NewNotifier(cfg.Notify.Webhook)))
	}

	report := recovery.New(cfg.Target.Address, prober, client, logger.Named("recovery"), opts...).Run(ctx)

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("failed to write metrics", zap.Error(err))
		}
	}

	if report.Outcome == recovery.OutcomeFailed {
		logger.Error("recovery failed",
			zap.String("run_id", report.RunID),
			zap.String("step", string(report.FailedStep)),
			zap.String("error", report.Error),
		)
	}
	return report.ExitCode()
}
