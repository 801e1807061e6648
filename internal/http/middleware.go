package http

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Middleware decorates a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain composes middlewares; the first one sees the request first.
func Chain(middlewares ...Middleware) Middleware {
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	return func(final http.RoundTripper) http.RoundTripper {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// WithRateLimit spaces requests at least interval apart. Zero disables it.
func WithRateLimit(interval time.Duration) Middleware {
	if interval <= 0 {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		limiter := rate.NewLimiter(rate.Every(interval), 1)
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}

// WithLogging logs every response at debug level.
func WithLogging() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			if err != nil {
				slog.DebugContext(r.Context(), "http request failed", "url", r.URL.String(), "err", err)
				return nil, err
			}
			slog.DebugContext(r.Context(), "http response",
				"status", resp.StatusCode,
				"took", time.Since(start).Truncate(time.Millisecond),
				"url", r.URL.String())
			return resp, nil
		})
	}
}

// WithUserAgent sets the User-Agent header unless the request has one.
func WithUserAgent(userAgent string) Middleware {
	if userAgent == "" {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("User-Agent") == "" {
				r = r.Clone(r.Context())
				r.Header.Set("User-Agent", userAgent)
			}
			return next.RoundTrip(r)
		})
	}
}

// Passthrough is the identity middleware.
func Passthrough(next http.RoundTripper) http.RoundTripper {
	return next
}

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
