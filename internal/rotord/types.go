// Package rotord implements the rotation and archival daemon: it watches a
// directory for rollover sentinel files, promotes them into a numbered
// generation chain per log family, and compresses aged generations into
// timestamped archives without ever blocking the observer on compression.
package rotord

import (
	"fmt"
	"sync"
	"time"
)

// FamilyID is a finite tagged identifier for a configured log family. Per-
// family state is a fixed-size slice indexed by FamilyID rather than a
// map keyed by name, so there is no runtime dispatch on family names once
// classification has happened.
type FamilyID int

// EventKind classifies a directory event once it has passed the Path
// Classifier.
type EventKind int

const (
	// KindIgnore marks a filename that is not a valid sentinel.
	KindIgnore EventKind = iota
	// KindSentinel marks a filename matched to a configured family.
	KindSentinel
)

// Event is the output of the Path Classifier: a bare filename resolved to
// either a rejected name or a sentinel belonging to a specific family.
type Event struct {
	Kind     EventKind
	Family   FamilyID
	FileName string
}

// familyState is the in-memory state the Rotation Engine and Compression
// Worker maintain for one family. It is never accessed by name; only
// through its FamilyID-indexed slot in Coordinator.states.
type familyState struct {
	name string

	// pendingTrigger is set when the Rotation Engine evicts generation N
	// and cleared when the Compression Worker picks up the trigger.
	pendingTrigger bool
	// pendingTriggerPath is the terminal generation captured at trigger
	// time, stable against later rotations because the worker runs
	// under rotationLock for its destructive phase.
	pendingTriggerPath string

	// lastArchivePath is the most recently produced archive for this
	// family, used to retire the predecessor on the next cycle.
	lastArchivePath string

	mu sync.Mutex
}

// Config is the subset of watch-directory policy the Coordinator needs;
// it mirrors internal/config.WatchConfig without importing it, keeping
// internal/rotord free of a dependency on the config package.
type Config struct {
	Directory              string
	Families               []string
	MaxFiles               int
	DeleteObsoleteArchives bool
	DeleteObsoleteLogs     bool
	ShutdownDrainDeadline  time.Duration
}

// FamilyStats is a point-in-time operational snapshot for one family,
// returned by Coordinator.Stats. It never reads archive contents back
// out — only filesystem metadata the Coordinator already tracked.
type FamilyStats struct {
	Family          string
	GenerationCount int
	PendingTrigger  bool
	LastArchivePath string
}

// Stats is the full operational snapshot returned by Coordinator.Stats.
type Stats struct {
	Families           []FamilyStats
	CompressionRunning bool
}

// generationPath returns the path of generation k for a family base name
// rooted at directory dir.
func generationPath(dir, family string, k int) string {
	return fmt.Sprintf("%s/%s.log.%d", dir, family, k)
}

