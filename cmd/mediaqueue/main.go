package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.senan.xyz/flagconf"

	"github.com/handiism/mediaqueue/internal/app"
	"github.com/handiism/mediaqueue/internal/config"
	"github.com/handiism/mediaqueue/internal/logging"
	"github.com/handiism/mediaqueue/internal/model"
	"github.com/handiism/mediaqueue/internal/provider/youtube"
	"github.com/handiism/mediaqueue/internal/queue"
)

func main() {
	var logLevel slog.LevelVar
	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")

	var (
		urlsFlag       = flag.String("url", "", "URL(s) to queue (comma-separated)")
		fileFlag       = flag.String("file", "", "Text file with one URL per line, queued as a batch named after the file")
		configFlag     = flag.String("config", config.DefaultPath(), "Path to the JSON settings file")
		flagConfigFlag = flag.String("flag-config", "", "Path to a flagconf file with flag values")
		outputFlag     = flag.String("output", "", "Download directory (overrides config)")
		modeFlag       = flag.String("mode", "", "Download mode: audio, video or video+audio (overrides config)")
		formatFlag     = flag.String("format", "", "Audio format, e.g. mp3, m4a, flac (overrides config)")
		workersFlag    = flag.Int("workers", 0, "Concurrent downloads (overrides config)")
		playlistFlag   = flag.Bool("playlist", false, "Write an M3U playlist for every batch")
		noSkipFlag     = flag.Bool("no-skip", false, "Download even if a matching file exists")
		verboseFlag    = flag.Bool("verbose", false, "Print every progress change")
		dryRunFlag     = flag.Bool("dry-run", false, "Resolve URLs and print the queue without downloading")
		installFlag    = flag.Bool("install-ytdlp", false, "Download yt-dlp if it is not installed, then exit")
	)

	flag.Parse()
	flagconf.ParseEnv()
	if *flagConfigFlag != "" {
		flagconf.ParseConfig(*flagConfigFlag)
	}

	tracker := logging.Setup(os.Stderr, &logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *installFlag {
		if err := youtube.Install(ctx); err != nil {
			slog.Error("install yt-dlp", "err", err)
			os.Exit(1)
		}
		fmt.Println("yt-dlp is ready")
		return
	}

	urls := splitURLs(*urlsFlag)
	urls = append(urls, flag.Args()...)
	if len(urls) == 0 && *fileFlag == "" {
		fmt.Println("mediaqueue - queue and download music and videos")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  mediaqueue -url <URL>[,<URL>...] [options]")
		fmt.Println("  mediaqueue -file list.txt [options]")
		fmt.Println("  mediaqueue <URL>... [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: mediaqueue-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	settings, err := config.Load(*configFlag)
	if err != nil {
		slog.Error("load config", "path", *configFlag, "err", err)
		os.Exit(1)
	}
	if *outputFlag != "" {
		settings.DownloadDir = *outputFlag
	}
	if *modeFlag != "" {
		settings.DownloadMode = *modeFlag
	}
	if *formatFlag != "" {
		settings.AudioFormat = *formatFlag
	}
	if *workersFlag > 0 {
		settings.MaxConcurrentDownloads = *workersFlag
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}
	if *noSkipFlag {
		settings.SkipExisting = false
	}

	a, err := app.New(ctx, settings, printer(*verboseFlag))
	if err != nil {
		slog.Error("set up", "err", err)
		os.Exit(1)
	}
	m := a.Manager
	defer m.Close()

	m.IngestAll(urls, false, "")
	m.WaitIngestions()
	if *fileFlag != "" {
		if err := ingestFile(m, *fileFlag); err != nil {
			slog.Error("read url list", "path", *fileFlag, "err", err)
			os.Exit(1)
		}
	}
	m.WaitIngestions()

	fmt.Printf("📋 %d item(s) queued\n\n", m.Len())
	if *dryRunFlag {
		for i, item := range m.Snapshot() {
			fmt.Printf("%3d. %s - %s [%s] %s\n", i+1, item.Metadata.Artist, item.Metadata.Title, item.Metadata.Album, item.Kind)
		}
		fmt.Println("\n[Dry run - not downloading]")
		return
	}

	stopNotice := context.AfterFunc(ctx, func() {
		fmt.Println("\nInterrupted, finishing running downloads...")
	})
	summary := m.Run(ctx)
	stopNotice()

	fmt.Println()
	fmt.Printf("✨ %s", summary)
	if summary.NotRun > 0 {
		fmt.Printf(" (%d not run)", summary.NotRun)
	}
	fmt.Println()
	for _, p := range summary.Playlists {
		fmt.Println("   playlist:", p)
	}

	if err := a.NotifyRun(context.WithoutCancel(ctx), summary); err != nil {
		slog.Error("notify", "err", err)
	}

	if tracker.HadError() || summary.Failed+summary.TimedOut > 0 {
		os.Exit(1)
	}
}

func splitURLs(s string) []string {
	var urls []string
	for _, u := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// ingestFile queues every URL of a list file as a batch named after it.
func ingestFile(m *queue.Manager, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	urls, err := queue.ParseURLList(f)
	if err != nil {
		return err
	}
	label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m.IngestAll(urls, false, label)
	return nil
}

func printer(verbose bool) func(queue.Event) {
	return func(ev queue.Event) {
		switch ev.Kind {
		case queue.EventItemChanged:
			if !verbose && !ev.State.IsTerminal() {
				return
			}
			fmt.Printf("%s %s: %s\n", statePrefix(ev.State), ev.Title, ev.Message)
		case queue.EventMessage, queue.EventItemsAdded, queue.EventRunStarted:
			if ev.Level == queue.LevelVerbose && !verbose {
				return
			}
			fmt.Println(levelPrefix(ev.Level) + ev.Message)
		}
	}
}

func levelPrefix(level queue.Level) string {
	switch level {
	case queue.LevelError:
		return "❌ "
	case queue.LevelWarning:
		return "⚠️  "
	case queue.LevelSuccess:
		return "✅ "
	case queue.LevelInfo:
		return "ℹ️  "
	default:
		return "   "
	}
}

func statePrefix(s model.State) string {
	switch s.Phase {
	case model.PhaseCompleted:
		return "✅"
	case model.PhaseSkipped:
		return "⏭️"
	case model.PhaseFailed:
		return "❌"
	default:
		return "  "
	}
}
