package rotord

import "errors"

// Sentinel errors for the policies in spec.md §7. ErrWatchFailed is the
// only kind that is fatal to the daemon; the rest are logged and
// absorbed by a later event.
var (
	// ErrMissingSentinel is returned when the handler cannot access the
	// named sentinel because it is already gone.
	ErrMissingSentinel = errors.New("rotord: sentinel file no longer accessible")

	// ErrRenameFailed is returned when a directory rename within a
	// generation chain fails.
	ErrRenameFailed = errors.New("rotord: rename failed")

	// ErrAppendIncomplete is returned when the append path transfers
	// fewer bytes than the sentinel's size.
	ErrAppendIncomplete = errors.New("rotord: append transferred fewer bytes than source size")

	// ErrArchiveFailed is returned when archive creation fails.
	ErrArchiveFailed = errors.New("rotord: archive creation failed")

	// ErrWatchFailed is returned when the Sentinel Observer loses or
	// cannot establish the directory watch. This is fatal.
	ErrWatchFailed = errors.New("rotord: directory watch failed")
)
