package rotord

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGeneration(t *testing.T, dir, family string, k int, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(generationPath(dir, family, k), []byte(content), 0644))
}

func TestRotateChain_EmptyChain(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 0, "zero")

	triggerPath, err := rotateChain(dir, "a", 3)
	require.NoError(t, err)
	assert.Empty(t, triggerPath)

	assert.FileExists(t, generationPath(dir, "a", 1))
	content, _ := os.ReadFile(generationPath(dir, "a", 1))
	assert.Equal(t, "zero", string(content))
	assert.NoFileExists(t, generationPath(dir, "a", 0))
}

func TestRotateChain_FullChainRaisesTrigger(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 0, "newest")
	writeGeneration(t, dir, "a", 1, "gen1")
	writeGeneration(t, dir, "a", 2, "gen2")

	triggerPath, err := rotateChain(dir, "a", 3)
	require.NoError(t, err)
	assert.Equal(t, generationPath(dir, "a", 3), triggerPath)

	assert.FileExists(t, generationPath(dir, "a", 1))
	assert.FileExists(t, generationPath(dir, "a", 2))
	assert.FileExists(t, generationPath(dir, "a", 3))

	content, _ := os.ReadFile(generationPath(dir, "a", 3))
	assert.Equal(t, "gen2", string(content))
}

func TestRotateChain_ResidualTerminalRemoved(t *testing.T) {
	// Simulates spec.md §8 scenario 6: an interrupted earlier cycle left
	// all four generations (0..3) present when maxFiles is 3.
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 0, "g0")
	writeGeneration(t, dir, "a", 1, "g1")
	writeGeneration(t, dir, "a", 2, "g2")
	writeGeneration(t, dir, "a", 3, "g3-stale")

	triggerPath, err := rotateChain(dir, "a", 3)
	require.NoError(t, err)
	assert.Equal(t, generationPath(dir, "a", 3), triggerPath)

	content, _ := os.ReadFile(generationPath(dir, "a", 3))
	assert.Equal(t, "g2", string(content), "stale generation 3 should have been removed before the shift")
}

func TestRotateChain_NoFilesPresent(t *testing.T) {
	dir := t.TempDir()

	triggerPath, err := rotateChain(dir, "a", 3)
	require.NoError(t, err)
	assert.Empty(t, triggerPath)
}

func TestGenerationPath(t *testing.T) {
	assert.Equal(t, filepath.Join("L", "a.log.2"), filepath.Clean(generationPath("L", "a", 2)))
}
