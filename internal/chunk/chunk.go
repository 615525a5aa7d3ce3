// Package chunk runs work over bounded index ranges so long imports and
// exports can report progress and be cancelled between batches.
package chunk

import (
	"context"

	"github.com/vinodismyname/buzzlens/config"
)

// Progress is emitted after every completed batch.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Func receives one half-open range [start, end).
type Func func(start, end int) error

// ProgressFunc observes batch completion. It may be nil.
type ProgressFunc func(Progress)

// Process calls fn over consecutive ranges of at most size items covering
// [0, total). A non-positive size falls back to config.DefaultChunkSize.
// The context is checked before each batch; fn errors stop processing.
func Process(ctx context.Context, total, size int, fn Func, progress ProgressFunc) error {
	if size <= 0 {
		size = config.DefaultChunkSize
	}
	for start := 0; start < total; start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, total)
		if err := fn(start, end); err != nil {
			return err
		}
		if progress != nil {
			progress(Progress{Done: end, Total: total})
		}
	}
	return nil
}
