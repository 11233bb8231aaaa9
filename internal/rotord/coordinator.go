package rotord

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/svw-info/rotord/internal/logger"
)

// Archiver produces a compressed archive at dstPath containing the given
// source files (paths relative to dir). It is a seam: production code
// uses tarGzArchiver, tests can inject a slow or failing stand-in to
// exercise the back-pressure protocol deterministically (spec.md §8
// scenario 3).
type Archiver interface {
	Archive(dir, dstPath string, members []string) error
}

// Coordinator is the "Rotator" value from spec.md §9: it bundles what the
// legacy source kept as process-global synchronization primitives
// (rotation_lock, observer_gate, compression_state_lock,
// compression_running) and owns the lifecycle of the Sentinel Observer
// and the Compression Worker.
type Coordinator struct {
	dir      string
	families []string
	maxFiles int

	deleteObsoleteArchives bool
	deleteObsoleteLogs     bool
	shutdownDrainDeadline  time.Duration

	log     logger.Logger
	metrics *logger.MetricsManager
	archiver Archiver

	// rotationLock serializes every multi-file rename/remove operation
	// on a family's generation chain, for the entire compression cycle
	// and for every Rotation Engine call.
	rotationLock sync.Mutex

	// observerGate is taken for read by the observer around each
	// Sentinel Handler dispatch, and for write by the worker around its
	// brief post-compression re-home step.
	observerGate sync.RWMutex

	// compressionRunning is read lock-free by the Sentinel Handler to
	// choose between the rotation path and the append path.
	compressionRunning atomic.Bool

	// compressionStateLock guards reads/writes of per-family trigger
	// state.
	compressionStateLock sync.Mutex
	states               []*familyState

	// triggers is a counting signal with capacity len(families): the
	// worker performs one wait and then scans all families for any with
	// pendingTrigger set, to tolerate coalesced triggers.
	triggers chan FamilyID

	watcherReady chan struct{}
	workerReady  chan struct{}

	observerCancel context.CancelFunc
	workerCancel   context.CancelFunc

	wg sync.WaitGroup
}

// New constructs a Coordinator from watch policy, a logger, and a metrics
// sink. archiver may be nil, in which case the default tar.gz archiver is
// used.
func New(cfg Config, log logger.Logger, metrics *logger.MetricsManager, archiver Archiver) (*Coordinator, error) {
	if len(cfg.Families) == 0 {
		return nil, fmt.Errorf("rotord: at least one family is required")
	}
	if cfg.MaxFiles < 1 {
		return nil, fmt.Errorf("rotord: max_files must be at least 1")
	}

	states := make([]*familyState, len(cfg.Families))
	for i, name := range cfg.Families {
		states[i] = &familyState{name: name}
	}

	if archiver == nil {
		archiver = tarGzArchiver{}
	}

	return &Coordinator{
		dir:                    cfg.Directory,
		families:               cfg.Families,
		maxFiles:               cfg.MaxFiles,
		deleteObsoleteArchives: cfg.DeleteObsoleteArchives,
		deleteObsoleteLogs:     cfg.DeleteObsoleteLogs,
		shutdownDrainDeadline:  cfg.ShutdownDrainDeadline,
		log:                    log,
		metrics:                metrics,
		archiver:               archiver,
		states:                 states,
		triggers:               make(chan FamilyID, len(cfg.Families)),
		watcherReady:           make(chan struct{}),
		workerReady:            make(chan struct{}),
	}, nil
}

// Run starts the Sentinel Observer and the Compression Worker and blocks
// until ctx is cancelled or either worker returns a fatal error
// (ErrWatchFailed). On return, both goroutines have been joined and the
// watch handle torn down.
func (c *Coordinator) Run(ctx context.Context) error {
	// The observer and worker get their own cancellation contexts,
	// independent of each other and of ctx: shutdown() cancels them in
	// a specific order (observer, then worker, after draining pending
	// triggers). Deriving both from ctx directly would cancel them
	// simultaneously the moment the caller cancels ctx, defeating that
	// ordering.
	observerCtx, observerCancel := context.WithCancel(context.Background())
	workerCtx, workerCancel := context.WithCancel(context.Background())
	c.observerCancel = observerCancel
	c.workerCancel = workerCancel
	defer observerCancel()
	defer workerCancel()

	errCh := make(chan error, 2)

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		errCh <- c.runObserver(observerCtx)
	}()
	go func() {
		defer c.wg.Done()
		c.runWorker(workerCtx)
		errCh <- nil
	}()

	select {
	case <-c.watcherReady:
	case err := <-errCh:
		// The observer failed before its watch was established.
		c.shutdown()
		return err
	}
	<-c.workerReady
	c.log.Info("rotord: ready")

	select {
	case <-ctx.Done():
		return c.shutdown()
	case err := <-errCh:
		if err != nil {
			c.shutdown()
			return err
		}
		return c.shutdown()
	}
}

// shutdown implements the Coordinator's ordered teardown (spec.md §4.6):
// interrupt the observer first, drain pending triggers with a bounded
// deadline, interrupt the worker, then join both.
func (c *Coordinator) shutdown() error {
	if c.observerCancel != nil {
		c.observerCancel()
	}

	c.drainTriggers()

	if c.workerCancel != nil {
		c.workerCancel()
	}

	c.wg.Wait()
	return nil
}

// drainTriggers gives the worker a bounded window to pick up any
// already-raised triggers before it is interrupted, so a trigger raised
// just before shutdown is not silently lost until the next restart.
func (c *Coordinator) drainTriggers() {
	deadline := time.NewTimer(c.shutdownDrainDeadline)
	defer deadline.Stop()

	for {
		if !c.anyPending() {
			return
		}
		select {
		case <-deadline.C:
			c.log.Warn("rotord: shutdown drain deadline reached with triggers still pending")
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (c *Coordinator) anyPending() bool {
	c.compressionStateLock.Lock()
	defer c.compressionStateLock.Unlock()

	for _, st := range c.states {
		if st.pendingTrigger {
			return true
		}
	}
	return false
}

// Stats returns a point-in-time operational snapshot.
func (c *Coordinator) Stats() Stats {
	families := make([]FamilyStats, len(c.states))

	c.compressionStateLock.Lock()
	for i, st := range c.states {
		families[i] = FamilyStats{
			Family:          st.name,
			PendingTrigger:  st.pendingTrigger,
			LastArchivePath: st.lastArchivePath,
		}
	}
	c.compressionStateLock.Unlock()

	for i, st := range c.states {
		families[i].GenerationCount = countGenerations(c.dir, st.name, c.maxFiles)
	}

	return Stats{
		Families:           families,
		CompressionRunning: c.compressionRunning.Load(),
	}
}

func countGenerations(dir, family string, maxFiles int) int {
	count := 0
	for k := 0; k <= maxFiles; k++ {
		if fileExists(generationPath(dir, family, k)) {
			count++
		}
	}
	return count
}
