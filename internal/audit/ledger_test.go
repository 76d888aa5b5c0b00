package audit_test

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/darsync/internal/audit"
)

func TestUnixPerm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode fs.FileMode
		want uint32
	}{
		{"regular file", 0o644, 0o644},
		{"directory", fs.ModeDir | 0o755, 0o755},
		{"setuid", fs.ModeSetuid | 0o755, 0o4755},
		{"setgid", fs.ModeSetgid | 0o750, 0o2750},
		{"sticky", fs.ModeDir | fs.ModeSticky | 0o777, 0o1777},
		{"symlink", fs.ModeSymlink | 0o777, 0o777},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, audit.UnixPerm(tt.mode))
		})
	}
}

func TestFormatRecord(t *testing.T) {
	t.Parallel()

	file := audit.Entry{Path: "/data/run1/reads.fq", Mode: 0o640, UID: 1000, GID: 2000}
	assert.Equal(t, "640\t1000\t2000\t/data/run1/reads.fq\n", audit.FormatRecord(file))

	dir := audit.Entry{Path: "/data/run1", Mode: fs.ModeDir | fs.ModeSetgid | 0o775}
	assert.Equal(t, "2775\t0\t0\t/data/run1"+string(filepath.Separator)+"\n", audit.FormatRecord(dir))

	rootDir := audit.Entry{Path: string(filepath.Separator), Mode: fs.ModeDir | 0o755}
	assert.Equal(t, "755\t0\t0\t"+string(filepath.Separator)+"\n", audit.FormatRecord(rootDir))
}

func TestLedger_WritesUndecodableBytesLosslessly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x"+audit.LedgerSuffix)

	ledger, err := audit.CreateLedger(path)
	require.NoError(t, err)

	rawName := "/data/caf\xe9/\xff\xfe.sam"

	require.NoError(t, ledger.Record(audit.Entry{Path: "/data", Mode: fs.ModeDir | 0o755, UID: 1, GID: 2}))
	require.NoError(t, ledger.Record(audit.Entry{Path: rawName, Mode: 0o600, UID: 1, GID: 2}))
	require.NoError(t, ledger.Close())
	require.NoError(t, ledger.Close(), "second close is a no-op")

	assert.Equal(t, int64(2), ledger.Records())

	lines := readLedger(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "755\t1\t2\t/data/", lines[0])
	assert.Equal(t, "600\t1\t2\t"+rawName, lines[1])
}

func TestCreateLedger_UnwritableLocation(t *testing.T) {
	t.Parallel()

	_, err := audit.CreateLedger(filepath.Join(t.TempDir(), "missing", "dir", "x.ownership.gz"))
	require.ErrorIs(t, err, audit.ErrOutputUnwritable)
	assert.Contains(t, err.Error(), "missing")
}
