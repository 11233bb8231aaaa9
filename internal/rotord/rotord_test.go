package rotord

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/svw-info/rotord/internal/logger"
)

// newTestLogger builds a console-only, file-disabled logger so tests never
// touch the filesystem outside their own t.TempDir() fixtures.
func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()

	cfg := &logger.Config{
		Level:  "debug",
		Format: "text",
		Console: logger.ConsoleConfig{
			Enabled: true,
		},
		File: logger.FileConfig{
			Enabled: false,
		},
		Async: logger.AsyncConfig{
			Enabled: false,
		},
		Metrics: logger.MetricsConfig{
			Enabled: true,
		},
	}

	factory, err := logger.NewFactory(cfg)
	require.NoError(t, err)

	l, err := factory.Create(t.Name())
	require.NoError(t, err)

	return l
}

// fakeArchiver is an injectable Archiver stand-in letting tests simulate a
// slow or failing external archiver without a real time.Sleep (spec.md §8
// scenario 3).
type fakeArchiver struct {
	before  func()
	fail    bool
	real    Archiver
	archive func(dir, dstPath string, members []string) error
}

func (f *fakeArchiver) Archive(dir, dstPath string, members []string) error {
	if f.before != nil {
		f.before()
	}
	if f.archive != nil {
		return f.archive(dir, dstPath, members)
	}
	if f.fail {
		return ErrArchiveFailed
	}
	if f.real == nil {
		f.real = tarGzArchiver{}
	}
	return f.real.Archive(dir, dstPath, members)
}
