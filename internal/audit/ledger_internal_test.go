package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSinkFull = errors.New("no space left on device")

// limitedSink accepts budget bytes and fails every write past that.
type limitedSink struct {
	budget  int
	written int
	closed  bool
}

func (s *limitedSink) Write(p []byte) (int, error) {
	if s.written+len(p) > s.budget {
		n := s.budget - s.written
		s.written = s.budget

		return n, errSinkFull
	}

	s.written += len(p)

	return len(p), nil
}

func (s *limitedSink) Close() error {
	s.closed = true

	return nil
}

func TestWalk_StopsAtFirstFailedRecord(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.sam"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.vcf"), []byte("y"), 0o600))

	path := filepath.Join("/scratch", "run"+LedgerSuffix)
	sink := &limitedSink{}

	ledger, err := newLedger(path, sink, 16)
	require.NoError(t, err)

	c := newCollector(DefaultConfig(root))

	err = walk(context.Background(), root, ledger, c, nil, nil)
	require.ErrorIs(t, err, ErrLedgerWrite)
	require.ErrorIs(t, err, errSinkFull)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "partially written")

	assert.Zero(t, ledger.Records())
	assert.Zero(t, c.result.TotalDirs, "nothing is counted after the failed record")
	assert.Zero(t, c.result.TotalFiles)

	closeErr := ledger.Close()
	require.ErrorIs(t, closeErr, ErrLedgerWrite)
	assert.True(t, sink.closed)
	require.NoError(t, ledger.Close(), "second close is a no-op")
}

func TestLedger_CloseReportsDeferredFailure(t *testing.T) {
	t.Parallel()

	// Room for the gzip header only; compressed records fail on flush.
	sink := &limitedSink{budget: 10}
	path := "out" + LedgerSuffix

	ledger, err := newLedger(path, sink, ledgerBufferSize)
	require.NoError(t, err)

	require.NoError(t, ledger.Record(Entry{Path: "/data", Mode: os.ModeDir | 0o755}))
	require.NoError(t, ledger.Record(Entry{Path: "/data/a.fq", Mode: 0o644}))
	assert.Equal(t, int64(2), ledger.Records())

	err = ledger.Close()
	require.ErrorIs(t, err, ErrLedgerWrite)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "partially written")
	assert.True(t, sink.closed)

	require.NoError(t, ledger.Close())
}

func TestStartProgressReporter_StopWaitsForExit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64

	c := newCollector(DefaultConfig(t.TempDir()))
	stop := startProgressReporter(context.Background(), c, func(int64, int64) { calls.Add(1) }, time.Millisecond)

	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)

	stop()

	after := calls.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no hook call after stop returns")
}

func TestStartProgressReporter_NilHook(t *testing.T) {
	t.Parallel()

	stop := startProgressReporter(context.Background(), newCollector(DefaultConfig(".")), nil, 0)
	stop()
}
