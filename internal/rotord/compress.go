package rotord

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// archiveTimestampFormat matches spec.md §6: "YYYY-MM-DD_HH-MM-SS" local time.
const archiveTimestampFormat = "2006-01-02_15-04-05"

// tarGzArchiver is the production Archiver: it writes members into a tar
// stream, gzips it, and flushes to a temporary path, then renames that
// path into place at dstPath. No archiver library appears anywhere in the
// retrieved pack; every example that compresses log files reaches
// directly for compress/gzip, so this follows the same precedent and
// adds archive/tar (also stdlib) only because several generation files
// must be bundled into one archive.
type tarGzArchiver struct{}

func (tarGzArchiver) Archive(dir, dstPath string, members []string) error {
	tmpPath := dstPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrArchiveFailed, tmpPath, err)
	}

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	writeErr := func() error {
		for _, member := range members {
			if err := addTarMember(tw, dir, member); err != nil {
				return err
			}
		}
		return nil
	}()

	closeErr := tw.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	closeErr = gz.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	closeErr = f.Close()
	if writeErr == nil {
		writeErr = closeErr
	}

	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrArchiveFailed, writeErr)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename into place: %v", ErrArchiveFailed, err)
	}

	return nil
}

func addTarMember(tw *tar.Writer, dir, member string) error {
	fullPath := filepath.Join(dir, member)

	info, err := os.Stat(fullPath)
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	// Relative name within the archive, not the absolute path, per
	// spec.md §4.4 step 4.
	hdr.Name = member

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	src, err := os.Open(fullPath)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(tw, src)
	return err
}

// runWorker is the Compression Worker loop (spec.md §4.4). It signals
// workerReady once, then drains triggers until ctx is cancelled.
func (c *Coordinator) runWorker(ctx context.Context) {
	close(c.workerReady)

	for {
		select {
		case <-ctx.Done():
			return
		case familyID := <-c.triggers:
			c.runCompressionCycle(familyID)
			c.drainCoalescedTriggers()
		}
	}
}

// drainCoalescedTriggers scans all families for any with pendingTrigger
// still set after the family that woke the worker has been processed,
// tolerating triggers coalesced onto the same signal.
func (c *Coordinator) drainCoalescedTriggers() {
	for {
		id, ok := c.nextPendingFamily()
		if !ok {
			return
		}
		c.runCompressionCycle(id)
	}
}

func (c *Coordinator) nextPendingFamily() (FamilyID, bool) {
	c.compressionStateLock.Lock()
	defer c.compressionStateLock.Unlock()

	for i, st := range c.states {
		if st.pendingTrigger {
			return FamilyID(i), true
		}
	}
	return 0, false
}

// runCompressionCycle executes one full archive-retire-rehome cycle for
// familyID (spec.md §4.4 steps 2-8).
func (c *Coordinator) runCompressionCycle(familyID FamilyID) {
	st := c.states[familyID]

	c.compressionStateLock.Lock()
	if !st.pendingTrigger {
		c.compressionStateLock.Unlock()
		return
	}
	triggerPath := st.pendingTriggerPath
	st.pendingTrigger = false
	st.pendingTriggerPath = ""
	c.compressionStateLock.Unlock()

	c.rotationLock.Lock()
	c.compressionRunning.Store(true)

	log := c.log.WithField("family", st.name).WithField("trigger_path", triggerPath)

	members := c.collectGenerations(st.name)
	if len(members) == 0 {
		c.compressionRunning.Store(false)
		c.rotationLock.Unlock()
		return
	}

	archivePath := filepath.Join(c.dir, fmt.Sprintf("%s_%s.tar.gz", st.name, time.Now().Format(archiveTimestampFormat)))

	if err := c.archiver.Archive(c.dir, archivePath, members); err != nil {
		log.WithError(err).Error("rotord: archive cycle failed")
		if c.metrics != nil {
			c.metrics.RecordCompressionFailed(st.name)
		}
		c.compressionRunning.Store(false)
		c.rotationLock.Unlock()
		return
	}

	var bytesArchived int64
	for _, member := range members {
		if info, err := os.Stat(filepath.Join(c.dir, member)); err == nil {
			bytesArchived += info.Size()
		}
	}

	if c.deleteObsoleteArchives && st.lastArchivePath != "" {
		if fileExists(st.lastArchivePath) {
			if err := os.Remove(st.lastArchivePath); err != nil {
				log.WithError(err).Warn("rotord: failed to retire prior archive")
			}
		}
	}
	st.lastArchivePath = archivePath

	if c.deleteObsoleteLogs {
		for _, member := range members {
			if err := os.Remove(filepath.Join(c.dir, member)); err != nil {
				log.WithError(err).Warn("rotord: failed to remove archived generation")
			}
		}
	}

	c.rehome()

	c.compressionRunning.Store(false)
	c.rotationLock.Unlock()

	if c.metrics != nil {
		c.metrics.RecordCompressionCompleted(st.name, bytesArchived)
	}
	log.WithField("archive", archivePath).Info("rotord: compression cycle complete")
}

// collectGenerations returns the existing generation files 1..maxFiles
// for a family, as names relative to c.dir.
func (c *Coordinator) collectGenerations(family string) []string {
	var members []string
	for i := 1; i <= c.maxFiles; i++ {
		path := generationPath(c.dir, family, i)
		if fileExists(path) {
			members = append(members, filepath.Base(path))
		}
	}
	return members
}

// rehome implements spec.md §4.4 step 7: for each family, under
// observerGate, rename a transient .log.0 to .log.1, restoring a chain
// that looks like a fresh rotation just happened. compressionRunning is
// a single cycle-wide flag, not one per family, so while the triggered
// family is being archived a sentinel for any other family can still
// land on the append path and leave its own transient .log.0 behind;
// every family is swept here so none of those are left to be silently
// overwritten by a later rotation-path rename. Taken under observerGate
// for the minimum time so the observer's in-flight dispatch cannot
// interleave with a partially-renamed chain.
func (c *Coordinator) rehome() {
	c.observerGate.Lock()
	defer c.observerGate.Unlock()

	for _, family := range c.families {
		zero := generationPath(c.dir, family, 0)
		if !fileExists(zero) {
			continue
		}

		one := generationPath(c.dir, family, 1)
		if err := os.Rename(zero, one); err != nil {
			c.log.WithField("family", family).WithError(err).Warn("rotord: re-home rename failed")
		}
	}
}
