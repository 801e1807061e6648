package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.senan.xyz/flagconf"

	"github.com/handiism/mediaqueue/internal/app"
	"github.com/handiism/mediaqueue/internal/config"
	"github.com/handiism/mediaqueue/internal/logging"
	"github.com/handiism/mediaqueue/internal/queue"
	"github.com/handiism/mediaqueue/internal/tui"
)

func main() {
	var logLevel slog.LevelVar
	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")
	configFlag := flag.String("config", config.DefaultPath(), "Path to the JSON settings file")
	logFlag := flag.String("log-file", filepath.Join(filepath.Dir(config.DefaultPath()), "mediaqueue.log"), "Log file path")
	flag.Parse()
	flagconf.ParseEnv()

	if err := run(*configFlag, *logFlag, &logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string, level *slog.LevelVar) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logging.Setup(logFile, level)

	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, onEvent := tui.EventChannel(256)
	a, err := app.New(ctx, settings, onEvent)
	if err != nil {
		return err
	}
	defer a.Manager.Close()

	onFinish := func(s queue.Summary) {
		if err := a.NotifyRun(ctx, s); err != nil {
			slog.Error("notify", "err", err)
		}
	}
	return tui.Run(ctx, a.Manager, events, settings.DownloadDir, onFinish)
}
