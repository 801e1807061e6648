// Package queue implements the download queue: URL ingestion, item
// selection, run control and the bounded worker pool that drives each
// selected item through the download package.
//
// # Lifecycle
//
//	m := queue.NewManager(settings, deps, func(ev queue.Event) {
//	    fmt.Println(ev.Message)
//	})
//	m.Ingest("https://open.spotify.com/album/...", false, "")
//	m.WaitIngestions()
//	m.Start()
//	m.Wait()
//
// Every item state change is reported as an EventItemChanged event and is
// visible through Snapshot. Callbacks run on worker goroutines and must be
// safe for concurrent use.
//
// # Stopping
//
// Stop is cooperative. Items already handed to a worker finish, nothing
// new is dispatched, and the run ends once the in-flight items drain.
package queue
