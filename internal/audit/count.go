package audit

import (
	"context"
	"io/fs"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// Tally is the outcome of a fast count.
type Tally struct {
	Files  int64 `json:"files"`
	Dirs   int64 `json:"dirs"`
	Errors int64 `json:"errors"`
}

// Count tallies files and directories under root with a parallel walk.
// It records nothing and is meant as a quick size check before a full audit.
func Count(ctx context.Context, root string) (Tally, error) {
	if err := Validate(root); err != nil {
		return Tally{}, err
	}

	var files, dirs, errs atomic.Int64

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	err := fastwalk.Walk(conf, root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			errs.Add(1)

			return nil // Keep counting past unreadable entries
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			dirs.Add(1)
		} else {
			files.Add(1)
		}

		return nil
	})

	tally := Tally{Files: files.Load(), Dirs: dirs.Load(), Errors: errs.Load()}

	return tally, err
}
