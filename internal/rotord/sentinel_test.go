package rotord

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSentinel_RotationPathWhenIdle(t *testing.T) {
	dir := t.TempDir()
	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)

	sentinel := dir + "/a.111.bak"
	require.NoError(t, os.WriteFile(sentinel, []byte("payload"), 0644))

	require.NoError(t, c.handleSentinel(0, "a.111.bak"))

	assert.NoFileExists(t, sentinel)
	// The Rotation Engine's shift sweeps the freshly-placed .log.0 up to
	// .log.1 in the same call (spec.md §4.3 step 2 ranges over index 0
	// too) — at rest a chain occupies [1..k], never a standing .log.0.
	assert.NoFileExists(t, generationPath(dir, "a", 0))
	content, err := os.ReadFile(generationPath(dir, "a", 1))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
	assert.False(t, c.states[0].pendingTrigger)
}

func TestHandleSentinel_RotationPathRaisesTriggerOnFullChain(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 1, "gen1")

	c := newTestCoordinator(t, dir, []string{"a"}, 2, nil)

	sentinel := dir + "/a.222.bak"
	require.NoError(t, os.WriteFile(sentinel, []byte("newest"), 0644))
	require.NoError(t, c.handleSentinel(0, "a.222.bak"))

	assert.True(t, c.states[0].pendingTrigger)
	assert.Equal(t, generationPath(dir, "a", 2), c.states[0].pendingTriggerPath)

	select {
	case id := <-c.triggers:
		assert.Equal(t, FamilyID(0), id)
	default:
		t.Fatal("expected a trigger to have been raised on the channel")
	}
}

func TestHandleSentinel_AppendPathWhileCompressionRunning(t *testing.T) {
	dir := t.TempDir()
	writeGeneration(t, dir, "a", 0, "existing-zero-")

	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)
	c.compressionRunning.Store(true)

	sentinel := dir + "/a.333.bak"
	require.NoError(t, os.WriteFile(sentinel, []byte("tail"), 0644))
	require.NoError(t, c.handleSentinel(0, "a.333.bak"))

	assert.NoFileExists(t, sentinel)
	content, err := os.ReadFile(generationPath(dir, "a", 0))
	require.NoError(t, err)
	assert.Equal(t, "existing-zero-tail", string(content))
	assert.False(t, c.states[0].pendingTrigger, "append path never touches rotation state")
}

func TestHandleSentinel_AppendPathPromotesWhenZeroMissing(t *testing.T) {
	dir := t.TempDir()
	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)
	c.compressionRunning.Store(true)

	sentinel := dir + "/a.444.bak"
	require.NoError(t, os.WriteFile(sentinel, []byte("only-content"), 0644))
	require.NoError(t, c.handleSentinel(0, "a.444.bak"))

	content, err := os.ReadFile(generationPath(dir, "a", 0))
	require.NoError(t, err)
	assert.Equal(t, "only-content", string(content))
}

func TestHandleSentinel_MissingSourceReturnsErrorWithoutSideEffects(t *testing.T) {
	dir := t.TempDir()
	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)

	err := c.handleSentinel(0, "a.555.bak")
	assert.ErrorIs(t, err, ErrMissingSentinel)
	assert.NoFileExists(t, generationPath(dir, "a", 0))
}

func TestRaiseTrigger_CoalescesWhenAlreadyPending(t *testing.T) {
	dir := t.TempDir()
	c := newTestCoordinator(t, dir, []string{"a"}, 3, nil)

	c.raiseTrigger(0, generationPath(dir, "a", 3))
	c.raiseTrigger(0, generationPath(dir, "a", 3)+"-newer")

	assert.Equal(t, generationPath(dir, "a", 3)+"-newer", c.states[0].pendingTriggerPath)

	count := 0
	for {
		select {
		case <-c.triggers:
			count++
		default:
			assert.Equal(t, 1, count, "second raise should coalesce rather than enqueue twice")
			return
		}
	}
}
