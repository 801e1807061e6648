package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/mediaqueue/internal/config"
	ioutils "github.com/handiism/mediaqueue/internal/io"
	"github.com/handiism/mediaqueue/internal/model"
)

// Stage identifies what a progress update refers to.
type Stage int

const (
	StageStarting Stage = iota
	StageDownloading
	StageConverting
	StageTagging
)

// Update is a progress report from a running download.
type Update struct {
	Stage   Stage
	Percent float64 // 0 to 100
	Message string
}

// FetchProgress is reported by a Fetcher while it works.
type FetchProgress struct {
	// Percent of the current transfer, negative when unknown.
	Percent float64

	// PostProcessing is set once the transfer is done and ffmpeg runs.
	PostProcessing bool
}

// Fetcher runs a Directive against a URL and reports the files it
// produced, if the tool tells it. An empty path list is not an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string, d Directive, progress func(FetchProgress)) ([]string, error)
}

// Searcher finds the URL of the best match for a free-text query.
type Searcher interface {
	SearchURL(ctx context.Context, query string) (string, error)
}

// Tagger writes metadata into a finished audio file.
type Tagger interface {
	Tag(ctx context.Context, path string, meta model.Metadata) error
}

// Deps are the collaborators shared by every download of a run.
type Deps struct {
	Fetcher  Fetcher
	Searcher Searcher
	Tagger   Tagger

	// Locks serializes file discovery per destination directory. It
	// must be shared by all downloads of a run.
	Locks *ioutils.DirLocks
}

// Result is the outcome of a download: the final file or an error.
type Result struct {
	Path string
	Err  error
}

// Downloader fetches one item, cleans up after the fetch tool, renames
// the file after the cleaned title and tags audio.
//
// A Downloader runs once. Its metadata is a private copy, so later edits
// to the queue item do not affect a running download.
//
// Example:
//
//	dl := download.New(item.URL, item.Metadata, item.BatchMember, snap, deps)
//	dl.OnProgress = func(u download.Update) { fmt.Println(u.Percent, u.Message) }
//	res := <-dl.Start(ctx)
//	if res.Err != nil {
//	    fmt.Println(download.Reason(res.Err))
//	}
type Downloader struct {
	url   string
	meta  model.Metadata
	mode  string
	deps  Deps
	snap  config.Snapshot
	dir   Directive
	dirEr error

	// OnProgress, if set, receives progress updates from the download
	// goroutine. It must not block.
	OnProgress func(Update)
}

// New creates a Downloader for url. The directive is resolved from snap
// immediately.
func New(url string, meta model.Metadata, batch bool, snap config.Snapshot, deps Deps) *Downloader {
	d, err := ResolveDirective(snap, meta, batch)
	return &Downloader{
		url:   url,
		meta:  meta,
		mode:  snap.DownloadMode(),
		deps:  deps,
		snap:  snap,
		dir:   d,
		dirEr: err,
	}
}

// Directive returns the resolved fetch directive.
func (d *Downloader) Directive() Directive { return d.dir }

// Start runs the download on its own goroutine. The returned channel
// receives exactly one Result and is then closed.
func (d *Downloader) Start(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		path, err := d.run(ctx)
		out <- Result{Path: path, Err: err}
	}()
	return out
}

func (d *Downloader) run(ctx context.Context) (_ string, err error) {
	d.progress(StageStarting, 0, "Başlatılıyor...")

	if d.dirEr != nil {
		return "", &Error{Kind: KindOther, Message: d.dirEr.Error(), Err: d.dirEr}
	}
	dir := d.dir.Dir()
	defer func() {
		if err != nil {
			defer d.deps.lock(dir)()
			removeFragments(dir)
		}
	}()
	if err := ioutils.EnsureDir(dir); err != nil {
		return "", &Error{Kind: KindOther, Message: err.Error(), Err: err}
	}

	paths, err := d.deps.Fetcher.Fetch(ctx, d.url, d.dir, func(p FetchProgress) {
		switch {
		case p.PostProcessing:
			d.progress(StageConverting, 99, "Dönüştürülüyor...")
		case p.Percent >= 0:
			d.progress(StageDownloading, p.Percent, fmt.Sprintf("İndiriliyor: %.1f%%", p.Percent))
		}
	})
	if err != nil {
		return "", classifyFetchError(err)
	}

	path, err := d.locate(dir, paths)
	if err != nil {
		return "", err
	}

	if d.mode == config.ModeAudio && d.deps.Tagger != nil {
		d.progress(StageTagging, 95, "Etiketler ekleniyor...")
		if err := d.deps.Tagger.Tag(ctx, path, d.meta); err != nil {
			slog.Warn("tag file", "path", path, "err", err)
		}
	}

	return path, nil
}

// locate finds the produced file, removes stream fragments next to it and
// renames it after the cleaned title.
func (d *Downloader) locate(dir string, paths []string) (string, error) {
	defer d.deps.lock(dir)()

	removeFragments(dir)

	if path := lastExisting(paths); path != "" {
		return d.rename(path), nil
	}

	path, err := ioutils.NewestFile(dir)
	if err != nil {
		if !errors.Is(err, ioutils.ErrNoArtifact) {
			slog.Warn("scan for download", "dir", dir, "err", err)
		}
		return "", &Error{Kind: KindOutputMissing, Message: MsgOutputMissing, Err: err}
	}
	return path, nil
}

func (deps Deps) lock(dir string) (unlock func()) {
	if deps.Locks == nil {
		return func() {}
	}
	return deps.Locks.Lock(dir)
}

func removeFragments(dir string) {
	if removed, err := ioutils.CleanupFragments(dir); err != nil {
		slog.Warn("clean fragments", "dir", dir, "err", err)
	} else if len(removed) > 0 {
		slog.Debug("cleaned fragments", "dir", dir, "count", len(removed))
	}
}

func (d *Downloader) rename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	cleaned := CleanTitle(name, d.meta.Artist)
	if d.snap.RestrictFilenames() {
		cleaned = model.SanitizeASCII(cleaned, model.MaxFileNameLength)
	}
	if cleaned == name {
		return path
	}

	renamed, ok, err := ioutils.RenameNoClobber(path, cleaned)
	switch {
	case err != nil:
		slog.Warn("rename download", "path", path, "err", err)
	case !ok:
		slog.Info("rename target exists", "path", path, "name", cleaned)
	default:
		slog.Debug("renamed download", "from", filepath.Base(path), "to", filepath.Base(renamed))
	}
	return renamed
}

func (d *Downloader) progress(stage Stage, percent float64, msg string) {
	if d.OnProgress != nil {
		d.OnProgress(Update{Stage: stage, Percent: percent, Message: msg})
	}
}

// lastExisting returns the last path in paths that exists and is not a
// fragment. The fetch tool reports the final file last.
func lastExisting(paths []string) string {
	for i := len(paths) - 1; i >= 0; i-- {
		p := paths[i]
		if p == "" || ioutils.IsFragment(p) {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
