package rotord

import (
	"github.com/svw-info/rotord/internal/logger"
)

// handleSentinel implements the Sentinel Handler (spec.md §4.2). On
// return, the sentinel file no longer exists under its original name
// unless an I/O error was logged, in which case it is left untouched.
func (c *Coordinator) handleSentinel(familyID FamilyID, fileName string) error {
	family := c.families[familyID]
	src := c.dir + "/" + fileName
	dst := generationPath(c.dir, family, 0)
	log := c.log.WithField("family", family).WithField("file", fileName)

	if !fileExists(src) {
		log.Warn("rotord: sentinel vanished before dispatch")
		return ErrMissingSentinel
	}

	// The decision is observed once per sentinel; a change in
	// compressionRunning between observation and action is tolerated
	// because the rotation path enters under rotationLock (which the
	// worker also holds for its destructive phase) and the append path
	// never touches files beyond .log.0.
	if c.compressionRunning.Load() {
		return c.appendPath(familyID, src, dst, log)
	}
	return c.rotationPath(familyID, src, dst, log)
}

// rotationPath renames the sentinel to .log.0, then invokes the
// Rotation Engine under rotationLock.
func (c *Coordinator) rotationPath(familyID FamilyID, src, dst string, log logger.Logger) error {
	if err := renameFile(src, dst); err != nil {
		log.WithError(err).Error("rotord: sentinel rename failed")
		return err
	}

	if c.metrics != nil {
		c.metrics.RecordSentinelAccepted(c.families[familyID])
	}

	c.rotationLock.Lock()
	triggerPath, err := rotateChain(c.dir, c.families[familyID], c.maxFiles)
	c.rotationLock.Unlock()

	if err != nil {
		log.WithError(err).Error("rotord: rotation failed")
		return err
	}

	if c.metrics != nil {
		c.metrics.RecordSentinelRotated(c.families[familyID])
	}

	if triggerPath == "" {
		return nil
	}

	c.raiseTrigger(familyID, triggerPath)
	return nil
}

// appendPath folds the sentinel's bytes onto an existing .log.0, or
// promotes it to .log.0 if none exists yet (spec.md §4.2 append path).
func (c *Coordinator) appendPath(familyID FamilyID, src, dst string, log logger.Logger) error {
	if !fileExists(dst) {
		if err := renameFile(src, dst); err != nil {
			log.WithError(err).Error("rotord: sentinel promote-to-zero failed")
			return err
		}
		if c.metrics != nil {
			c.metrics.RecordSentinelAccepted(c.families[familyID])
		}
		return nil
	}

	if err := appendSentinel(src, dst); err != nil {
		log.WithError(err).Error("rotord: sentinel append failed")
		return err
	}

	if c.metrics != nil {
		c.metrics.RecordSentinelAppended(c.families[familyID])
	}
	return nil
}

// raiseTrigger implements the second half of spec.md §4.3 step 4: record
// the terminal generation path and signal the Compression Worker. The
// counting signal has capacity len(families), so a family whose prior
// trigger has not yet been drained simply has its flag and path
// overwritten rather than blocking the caller.
func (c *Coordinator) raiseTrigger(familyID FamilyID, triggerPath string) {
	st := c.states[familyID]

	c.compressionStateLock.Lock()
	alreadyPending := st.pendingTrigger
	st.pendingTrigger = true
	st.pendingTriggerPath = triggerPath
	c.compressionStateLock.Unlock()

	if c.metrics != nil {
		c.metrics.RecordTriggerRaised(c.families[familyID])
	}

	if alreadyPending {
		return
	}

	select {
	case c.triggers <- familyID:
	default:
		// Channel full: the worker will still find this family's
		// pendingTrigger set on its next coalesced scan.
	}
}
