// Package capture orchestrates multi-scope capture runs. An Engine walks a
// queue of scopes (tweets, replies, likes, bookmarks), navigating to each
// scope's destination, collecting records from intercepted responses while a
// scroll driver runs, and flushing the deduplicated set to a sink before
// advancing to the next scope.
//
// All engine commands are serialized by a single mutex: callers may invoke
// Process, Stop, PageReady and the rest from any goroutine.
package capture
