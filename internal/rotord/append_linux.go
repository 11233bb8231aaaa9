//go:build linux

package rotord

import (
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// spliceChunkSize bounds a single splice(2) call the way most zero-copy
// callers do (e.g. 64KiB), so one call cannot block the kernel pipe
// buffer longer than necessary.
const spliceChunkSize = 64 * 1024

// transfer copies exactly size bytes from src to dst using unix.Splice
// via an intermediate pipe (splice cannot move bytes directly between
// two regular files), falling back to io.CopyN if Splice is unsupported
// on this kernel. Transient EINTR/EAGAIN are retried within the call.
func transfer(dst, src *os.File, size int64) (int64, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return copyFallback(dst, src, size)
	}
	defer pr.Close()
	defer pw.Close()

	var total int64
	for total < size {
		want := size - total
		if want > spliceChunkSize {
			want = spliceChunkSize
		}

		n, err := spliceRetry(int(src.Fd()), int(pw.Fd()), int(want))
		if err != nil {
			if err == unix.ENOSYS || err == unix.EINVAL {
				remaining, copyErr := copyFallback(dst, src, size-total)
				return total + remaining, copyErr
			}
			return total, err
		}
		if n == 0 {
			break
		}

		moved := int64(0)
		for moved < n {
			m, err := spliceRetry(int(pr.Fd()), int(dst.Fd()), int(n-moved))
			if err != nil {
				return total + moved, err
			}
			if m == 0 {
				break
			}
			moved += m
		}

		total += moved
		if moved < n {
			break
		}
	}

	return total, nil
}

// spliceRetry wraps unix.Splice, retrying on transient EINTR/EAGAIN.
func spliceRetry(rfd, wfd, n int) (int64, error) {
	for {
		written, err := unix.Splice(rfd, nil, wfd, nil, n, 0)
		if err == nil {
			return written, nil
		}
		if err == syscall.EINTR || err == syscall.EAGAIN {
			continue
		}
		return written, err
	}
}

func copyFallback(dst, src *os.File, size int64) (int64, error) {
	return io.CopyN(dst, src, size)
}
