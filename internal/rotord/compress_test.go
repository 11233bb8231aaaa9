package rotord

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator(t *testing.T, dir string, families []string, maxFiles int, archiver Archiver) *Coordinator {
	t.Helper()

	cfg := Config{
		Directory:              dir,
		Families:               families,
		MaxFiles:               maxFiles,
		DeleteObsoleteArchives: true,
		DeleteObsoleteLogs:     true,
	}

	c, err := New(cfg, newTestLogger(t), nil, archiver)
	require.NoError(t, err)
	return c
}

func TestTarGzArchiver_ProducesReadableArchive(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 1, "one")
	writeGeneration(t, dir, "a", 2, "two")

	dst := filepath.Join(dir, "a_2026-01-01_00-00-00.tar.gz")
	archiver := tarGzArchiver{}
	require.NoError(t, archiver.Archive(dir, dst, []string{"a.log.1", "a.log.2"}))

	assert.FileExists(t, dst)
	assert.NoFileExists(t, dst+".tmp")

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}
	assert.ElementsMatch(t, []string{"a.log.1", "a.log.2"}, names)
}

func TestRunCompressionCycle_ArchivesAndRehomes(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 0, "zero-pending-rotate")
	writeGeneration(t, dir, "a", 1, "gen1")
	writeGeneration(t, dir, "a", 2, "gen2")
	writeGeneration(t, dir, "a", 3, "gen3-terminal")

	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)
	c.states[0].pendingTrigger = true
	c.states[0].pendingTriggerPath = generationPath(dir, "a", 3)

	c.runCompressionCycle(0)

	assert.False(t, c.states[0].pendingTrigger)
	assert.NoFileExists(t, generationPath(dir, "a", 0))
	assert.NoFileExists(t, generationPath(dir, "a", 2))
	assert.NoFileExists(t, generationPath(dir, "a", 3))

	// .log.0 was re-homed to .log.1, restoring a fresh-rotation shape.
	assert.FileExists(t, generationPath(dir, "a", 1))
	content, _ := os.ReadFile(generationPath(dir, "a", 1))
	assert.Equal(t, "zero-pending-rotate", string(content))

	assert.NotEmpty(t, c.states[0].lastArchivePath)
	assert.FileExists(t, c.states[0].lastArchivePath)
}

func TestRunCompressionCycle_RetiresPriorArchiveAfterNewOneExists(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 1, "gen1")

	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)

	staleArchive := filepath.Join(dir, "a_2020-01-01_00-00-00.tar.gz")
	require.NoError(t, os.WriteFile(staleArchive, []byte("stale"), 0644))
	c.states[0].lastArchivePath = staleArchive

	c.states[0].pendingTrigger = true
	c.runCompressionCycle(0)

	assert.NoFileExists(t, staleArchive, "prior archive should be retired once the new one lands")
	assert.NotEqual(t, staleArchive, c.states[0].lastArchivePath)
	assert.FileExists(t, c.states[0].lastArchivePath)
}

func TestRunCompressionCycle_NoGenerationsIsNoop(t *testing.T) {
	dir := t.TempDir()
	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)

	c.states[0].pendingTrigger = true
	c.runCompressionCycle(0)

	assert.Empty(t, c.states[0].lastArchivePath)
	assert.False(t, c.compressionRunning.Load())
}

func TestRunCompressionCycle_ArchiveFailureLeavesChainIntact(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 1, "gen1")

	c := newTestCoordinator(t, dir, []string{"a"}, 3, &fakeArchiver{fail: true})
	c.states[0].pendingTrigger = true
	c.runCompressionCycle(0)

	assert.FileExists(t, generationPath(dir, "a", 1), "generation files survive a failed archive attempt")
	assert.Empty(t, c.states[0].lastArchivePath)
	assert.False(t, c.compressionRunning.Load())
}

// TestRunCompressionCycle_AppendDuringCompression exercises spec.md §8
// scenario 3: while a cycle holds rotationLock and compressionRunning is
// true, a sentinel arriving on the append path must fold onto .log.0
// without blocking on the in-flight archive, and the bytes must survive
// the cycle's re-home step untouched.
func TestRunCompressionCycle_AppendDuringCompression(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 1, "gen1")

	releaseArchiver := make(chan struct{})
	archiverEntered := make(chan struct{})

	archiver := &fakeArchiver{
		before: func() {
			close(archiverEntered)
			<-releaseArchiver
		},
	}

	c := newTestCoordinator(t, dir, []string{"a"}, 3, archiver)
	c.states[0].pendingTrigger = true

	done := make(chan struct{})
	go func() {
		c.runCompressionCycle(0)
		close(done)
	}()

	<-archiverEntered
	assert.True(t, c.compressionRunning.Load())

	sentinel := filepath.Join(dir, "a.555.bak")
	require.NoError(t, os.WriteFile(sentinel, []byte("appended-during-compression"), 0644))
	require.NoError(t, c.handleSentinel(0, "a.555.bak"))

	assert.NoFileExists(t, sentinel)
	content, err := os.ReadFile(generationPath(dir, "a", 0))
	require.NoError(t, err)
	assert.Equal(t, "appended-during-compression", string(content))

	close(releaseArchiver)
	<-done

	// The appended .log.0 survives the cycle's re-home, landing at .log.1.
	content, err = os.ReadFile(generationPath(dir, "a", 1))
	require.NoError(t, err)
	assert.Equal(t, "appended-during-compression", string(content))
}

func TestRehome_NoopWhenNoTransientZero(t *testing.T) {
	dir := t.TempDir()
	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)

	c.rehome()
	assert.NoFileExists(t, generationPath(dir, "a", 1))
}

func TestRehome_SweepsEveryFamilyNotJustTheTriggered(t *testing.T) {
	dir := t.TempDir()
	c := newTestCoordinator(t, dir, []string{"a", "b"}, 3, nil)

	// "a" is the family under compression; "b" picked up a transient
	// .log.0 via the append path while "a" was being archived. rehome
	// is called once per cycle (for whichever family triggered it) and
	// must still restore "b"'s chain, or the next rotation-path rename
	// for "b" would silently overwrite these bytes.
	writeGeneration(t, dir, "b", 0, "b-appended-during-a-cycle")

	c.rehome()

	assert.NoFileExists(t, generationPath(dir, "b", 0))
	content, err := os.ReadFile(generationPath(dir, "b", 1))
	require.NoError(t, err)
	assert.Equal(t, "b-appended-during-a-cycle", string(content))
}

func TestCollectGenerations_OnlyExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 1, "g1")
	writeGeneration(t, dir, "a", 3, "g3")

	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)
	members := c.collectGenerations("a")
	assert.ElementsMatch(t, []string{"a.log.1", "a.log.3"}, members)
}
