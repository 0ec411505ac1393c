package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agendacal/internal/config"
	"agendacal/internal/job"
	appLog "agendacal/internal/log"
	"agendacal/internal/schedule"
)

var version = "0.1.0-dev"

type flagConfig struct {
	configPath string
	once       bool
	outputDir  string
	eventsFile string
	preview    bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	appLog.Info("agendacal starting", "version", version)

	// CLI flags override config values when set.
	if flags.outputDir != "" {
		conf.OutputDir = flags.outputDir
	}
	if flags.eventsFile != "" {
		conf.EventsFile = flags.eventsFile
	}
	if flags.preview {
		conf.Preview.Enabled = true
	}

	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	loc, _ := conf.Location()

	appLog.Info("effective config",
		"timezone", conf.Timezone,
		"locale", conf.Locale,
		"horizon_days", conf.HorizonDays,
		"sources", len(conf.Sources),
		"events_file", conf.EventsFile,
		"output_dir", conf.OutputDir,
		"schedule", conf.Schedule,
		"page", conf.Page,
		"preview", conf.Preview.Enabled,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func(ctx context.Context) error {
		_, err := job.Run(ctx, conf, time.Now().In(loc))
		return err
	}

	if flags.once {
		if err := runOnce(ctx); err != nil {
			os.Exit(1)
		}
		return
	}

	sched, err := schedule.New(ctx, conf.Schedule, loc, runOnce)
	if err != nil {
		appLog.Error("failed to create scheduler", err, "schedule", conf.Schedule)
		os.Exit(1)
	}

	// Render immediately so the output exists before the first tick.
	if err := runOnce(ctx); err != nil && ctx.Err() != nil {
		return
	}
	sched.Run()
	appLog.Info("agendacal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./agendacal.yaml", "Path to config file")
	flag.BoolVar(&cfg.once, "once", false, "Render once and exit")
	flag.StringVar(&cfg.outputDir, "out", "", "Output directory (overrides config if set)")
	flag.StringVar(&cfg.eventsFile, "events", "", "JSON events file (overrides config if set)")
	flag.BoolVar(&cfg.preview, "preview", false, "Also write a PNG preview next to the PDF")

	flag.Parse()

	return cfg
}
