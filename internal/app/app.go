// Package app wires the production collaborators of a queue.Manager.
package app

import (
	"context"
	"time"

	"github.com/handiism/mediaqueue/internal/audio"
	"github.com/handiism/mediaqueue/internal/config"
	"github.com/handiism/mediaqueue/internal/coverart"
	"github.com/handiism/mediaqueue/internal/download"
	ioutils "github.com/handiism/mediaqueue/internal/io"
	"github.com/handiism/mediaqueue/internal/notify"
	"github.com/handiism/mediaqueue/internal/provider/spotify"
	"github.com/handiism/mediaqueue/internal/provider/youtube"
	"github.com/handiism/mediaqueue/internal/queue"
)

// App bundles a Manager with the services built for it.
type App struct {
	Manager  *queue.Manager
	Covers   *coverart.Resolver
	Notifier *notify.Notifier
}

// New builds the provider adapters, the cover resolver and the tagger
// from settings and returns a Manager using them.
func New(ctx context.Context, settings *config.Settings, onEvent func(queue.Event)) (*App, error) {
	snap := settings.Snapshot()

	notifier, err := notify.New(snap.NotifyURIs())
	if err != nil {
		return nil, err
	}

	covers := coverart.NewResolver(coverart.Options{
		CacheSize: snap.CoverCacheSize(),
		RateLimit: time.Duration(snap.CoverRateLimitMS()) * time.Millisecond,
	})
	videos := youtube.NewResolver(snap.CookiesFile())

	deps := queue.Deps{
		Catalog: spotify.New(ctx, snap.SpotifyClientID(), snap.SpotifyClientSecret()),
		Video:   videos,
		Download: download.Deps{
			Fetcher:  youtube.NewFetcher(),
			Searcher: videos,
			Tagger:   audio.NewTagger(covers),
			Locks:    &ioutils.DirLocks{},
		},
	}

	return &App{
		Manager:  queue.NewManager(settings, deps, onEvent),
		Covers:   covers,
		Notifier: notifier,
	}, nil
}

// NotifyRun sends the summary of a finished run, if notifications are
// configured.
func (a *App) NotifyRun(ctx context.Context, s queue.Summary) error {
	if !a.Notifier.Enabled() {
		return nil
	}
	return a.Notifier.Sendf(ctx, "İndirme bitti: %s", s)
}
