// Package download fetches single queue items.
//
// A Downloader handles items from the video platform: it resolves the
// item's format settings into a Directive, hands it to a Fetcher, removes
// intermediate stream files, renames the result after the cleaned video
// title and, in audio mode, writes tags.
//
//	dl := download.New(item.URL, item.Metadata, item.BatchMember, snap, deps)
//	res := <-dl.Start(ctx)
//
// Catalog items go through SearchFetch instead, which searches the video
// platform for "artist - title" and fetches the first hit as audio.
//
// # Failures
//
// Failures are reported as *Error values carrying a Kind and the text to
// show in the queue:
//
//	KindUnavailable    "Video bulunamadı"
//	KindPrivate        "Video özel"
//	KindTransfer       "İndirme hatası: <tool output>"
//	KindOutputMissing  "İndirilen dosya bulunamadı"
//	KindNotFound       "Bulunamadı"
//
// Use Reason to get the text for any error.
package download
