// Package http provides the HTTP client used to fetch cover art.
//
// The Client in this package handles:
//   - A User-Agent header accepted by image CDNs
//   - Optional request rate limiting
//   - Debug logging of responses
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(10*time.Second, http.Chain(
//	    http.WithUserAgent(http.DefaultUserAgent),
//	    http.WithLogging(),
//	))
//	data, err := client.Get(ctx, coverURL)
//
// # Middleware
//
// Middleware values wrap an http.RoundTripper and compose with Chain. The
// first middleware passed to Chain sees the request first.
package http
