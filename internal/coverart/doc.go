// Package coverart fetches, shrinks and caches cover images.
//
// A Resolver turns a cover URL into embeddable JPEG bytes. Results are kept
// in a bounded least-recently-used Cache keyed by the source URL, so a
// batch of tracks sharing one album cover costs a single request.
//
// # Basic Usage
//
//	resolver := coverart.NewResolver(coverart.Options{CacheSize: 100})
//	if data := resolver.GetOrFetch(ctx, meta.CoverURL); data != nil {
//	    // embed data
//	}
//
// Failures are never returned to the caller: a cover that cannot be
// fetched is simply absent, and the item is tagged without one.
package coverart
