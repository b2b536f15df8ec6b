// Package fedsearch holds the contracts shared by every search backend:
// the normalized result record, the option map passed through to backends,
// and the cursor used by the framework to drain a running query.
package fedsearch

import "context"

// Record is one normalized search hit. URL and Title are always set by a
// well-behaved backend; the remaining fields depend on what the source
// reports and on the requested result format.
type Record struct {
	URL         string
	Title       string
	Description string
	// Score is a 0-100 relevance percentage, or ScoreUnknown when the
	// source did not report one.
	Score int
	// Size is the document size in bytes, or SizeUnknown.
	Size int64
	// Date is the source-reported last-modified date, verbatim.
	Date string
}

const (
	ScoreUnknown = -1
	SizeUnknown  = int64(-1)
)

// Options maps backend-specific option names to values. Keys the backend
// does not recognize are forwarded to the remote source as-is.
type Options map[string]string

// Clone returns a shallow copy so callers can hold onto an Options value
// without racing against backend-side mutation.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Cursor drains the results of one running query. Implementations are
// single-goroutine; the framework never calls Next concurrently.
type Cursor interface {
	// Next returns the next record, fetching further pages from the
	// source as needed. ok is false once the source is exhausted or the
	// transport has failed; after that every call returns false without
	// touching the network.
	Next(ctx context.Context) (rec Record, ok bool)
	// ApproximateResultCount is the best-effort total reported by the
	// source on its first page, or CountUnknown if it never reported one.
	ApproximateResultCount() int
}

// CountUnknown is returned by ApproximateResultCount before the source
// has reported a total.
const CountUnknown = -1

// Backend is one pluggable search source.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) (Cursor, error)
}
