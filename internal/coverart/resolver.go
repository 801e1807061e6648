package coverart

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/handiism/mediaqueue/internal/http"
	ioutils "github.com/handiism/mediaqueue/internal/io"
)

// Defaults for fetching covers.
const (
	// FetchTimeout bounds a single cover request.
	FetchTimeout = 10 * time.Second

	// MinCoverBytes is the smallest body accepted as an image. Smaller
	// responses are placeholders or error pages.
	MinCoverBytes = 1000
)

// Getter fetches a URL. *http.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Options configures a Resolver.
type Options struct {
	// CacheSize bounds the cover cache, DefaultCacheSize when zero.
	CacheSize int

	// RateLimit spaces cover requests apart. Zero disables limiting.
	RateLimit time.Duration

	// Limits bounds the processed image, ioutils.DefaultCoverLimits when zero.
	Limits ioutils.CoverLimits

	// Client overrides the HTTP client, mainly for tests.
	Client Getter
}

// Stats is a point-in-time view of resolver activity.
type Stats struct {
	Entries  int
	Hits     uint64
	Misses   uint64
	Failures uint64
}

// Resolver resolves cover URLs to processed image bytes through a Cache.
type Resolver struct {
	client Getter
	cache  *Cache
	limits ioutils.CoverLimits
	group  singleflight.Group

	hits, misses, failures atomic.Uint64
}

// NewResolver creates a Resolver from opts.
func NewResolver(opts Options) *Resolver {
	client := opts.Client
	if client == nil {
		client = http.NewClient(FetchTimeout, http.Chain(
			http.WithUserAgent(http.DefaultUserAgent),
			http.WithRateLimit(opts.RateLimit),
			http.WithLogging(),
		))
	}
	limits := opts.Limits
	if limits.MaxPixels == 0 && limits.MaxBytes == 0 {
		limits = ioutils.DefaultCoverLimits
	}
	return &Resolver{
		client: client,
		cache:  NewCache(opts.CacheSize),
		limits: limits,
	}
}

// GetOrFetch returns processed cover bytes for url, or nil when there is
// no usable cover.
//
// A cached cover is returned without any network access. Otherwise the
// image is downloaded, shrunk with ioutils.ShrinkCover and cached. Images
// that cannot be decoded are cached as downloaded. Responses other than
// 200 OK and bodies shorter than MinCoverBytes yield nil and are not
// cached, so a later call tries again.
//
// Concurrent calls for the same URL share one request.
func (r *Resolver) GetOrFetch(ctx context.Context, url string) []byte {
	if url == "" {
		return nil
	}
	if data, ok := r.cache.Get(url); ok {
		r.hits.Add(1)
		return data
	}
	r.misses.Add(1)

	v, _, _ := r.group.Do(url, func() (any, error) {
		if data, ok := r.cache.Get(url); ok {
			return data, nil
		}
		data := r.fetch(ctx, url)
		if data != nil {
			r.cache.Add(url, data)
		}
		return data, nil
	})
	data, _ := v.([]byte)
	return data
}

func (r *Resolver) fetch(ctx context.Context, url string) []byte {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	raw, err := r.client.Get(ctx, url)
	if err != nil {
		r.failures.Add(1)
		slog.Warn("fetch cover", "url", url, "err", err)
		return nil
	}
	if len(raw) < MinCoverBytes {
		r.failures.Add(1)
		slog.Warn("cover too small", "url", url, "size", len(raw))
		return nil
	}

	data, err := ioutils.ShrinkCover(raw, r.limits)
	if err != nil {
		slog.Debug("keep cover as downloaded", "url", url, "err", err)
		return raw
	}
	return data
}

// Stats returns cache size and hit counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		Entries:  r.cache.Len(),
		Hits:     r.hits.Load(),
		Misses:   r.misses.Load(),
		Failures: r.failures.Load(),
	}
}

// Purge empties the cover cache.
func (r *Resolver) Purge() {
	r.cache.Purge()
}
