package download

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/handiism/mediaqueue/internal/config"
	ioutils "github.com/handiism/mediaqueue/internal/io"
	"github.com/handiism/mediaqueue/internal/model"
	"github.com/handiism/mediaqueue/internal/provider"
)

// SearchFetch downloads a catalog item by searching the video platform
// for "artist - title" and fetching the first hit as audio.
//
// Progress goes through onUpdate: StageStarting with "Bulundu..." once a
// match is known, StageDownloading with "İndiriliyor..." while it
// transfers and StageTagging before tags are written. onUpdate may be nil.
//
// The downloaded file is looked up by probing the expected name with the
// configured extension and the common fallbacks. Failures are *Error
// values: KindNotFound when the search has no hit, KindOutputMissing
// ("Dosya Yok") when no file turned up.
func SearchFetch(ctx context.Context, meta model.Metadata, snap config.Snapshot, deps Deps, onUpdate func(Update)) (string, error) {
	notify := func(stage Stage, percent float64, msg string) {
		if onUpdate != nil {
			onUpdate(Update{Stage: stage, Percent: percent, Message: msg})
		}
	}

	query := meta.Artist + " - " + meta.Title
	url, err := deps.Searcher.SearchURL(ctx, query)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return "", &Error{Kind: KindNotFound, Message: MsgNotFound, Err: err}
		}
		return "", classifyFetchError(err)
	}
	slog.Debug("search hit", "query", query, "url", url)
	notify(StageStarting, 30, "Bulundu...")

	d := SearchDirective(snap, meta)
	if err := ioutils.EnsureDir(d.Dir()); err != nil {
		return "", &Error{Kind: KindOther, Message: err.Error(), Err: err}
	}

	notify(StageDownloading, 50, "İndiriliyor...")
	if _, err := deps.Fetcher.Fetch(ctx, url, d, nil); err != nil {
		unlock := deps.lock(d.Dir())
		removeFragments(d.Dir())
		unlock()
		return "", classifyFetchError(err)
	}

	path := probe(d.Output, []string{d.AudioFormat, "webm", "opus", "m4a", "mp3"})
	if path == "" {
		return "", &Error{Kind: KindOutputMissing, Message: MsgNoFile}
	}

	if deps.Tagger != nil {
		notify(StageTagging, 95, "Tag yazılıyor...")
		if err := deps.Tagger.Tag(ctx, path, meta); err != nil {
			slog.Warn("tag file", "path", path, "err", err)
		}
	}
	return path, nil
}

// probe substitutes each extension into an output template and returns
// the first path that exists.
func probe(template string, exts []string) string {
	for _, ext := range exts {
		p := strings.Replace(template, ".%(ext)s", "."+ext, 1)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
