//go:build !linux

package rotord

import (
	"io"
	"os"
)

// transfer copies exactly size bytes from src to dst using a buffered
// loop. unix.Splice is Linux-only; other platforms fall back to the
// buffered copy spec.md §4.7 prescribes when zero-copy is unavailable.
func transfer(dst, src *os.File, size int64) (int64, error) {
	return io.CopyN(dst, src, size)
}
