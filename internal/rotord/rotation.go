package rotord

import (
	"fmt"
	"os"
)

// rotateChain implements the Rotation Engine (spec.md §4.3). Callers must
// hold rotationLock for the duration of this call. It shifts the numbered
// generation chain [0..maxFiles] upward by one and, if the chain was
// full, returns the path of the generation that was pushed out to
// maxFiles so the caller can raise a compression trigger.
//
// Renames are performed in descending order (maxFiles-1 down to 0) so no
// two files ever simultaneously claim the same index.
func rotateChain(dir, family string, maxFiles int) (triggerPath string, err error) {
	terminal := generationPath(dir, family, maxFiles)
	if _, statErr := os.Stat(terminal); statErr == nil {
		// A residual terminal generation from a cycle that never
		// triggered compression cleanly. Removing it preserves the
		// contiguous-prefix invariant.
		if rmErr := os.Remove(terminal); rmErr != nil {
			return "", fmt.Errorf("%w: remove residual %s: %v", ErrRenameFailed, terminal, rmErr)
		}
	}

	promotedToTerminal := false

	for i := maxFiles - 1; i >= 0; i-- {
		src := generationPath(dir, family, i)
		if _, statErr := os.Stat(src); statErr != nil {
			continue
		}

		dst := generationPath(dir, family, i+1)
		if renameErr := os.Rename(src, dst); renameErr != nil {
			return "", fmt.Errorf("%w: %s -> %s: %v", ErrRenameFailed, src, dst, renameErr)
		}

		if i+1 == maxFiles {
			promotedToTerminal = true
		}
	}

	if promotedToTerminal {
		return generationPath(dir, family, maxFiles), nil
	}

	return "", nil
}

// fileExists reports whether path exists on disk.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// renameFile wraps os.Rename with the ErrRenameFailed sentinel so callers
// can match on the error kind per spec.md §7.
func renameFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("%w: %s -> %s: %v", ErrRenameFailed, src, dst, err)
	}
	return nil
}
