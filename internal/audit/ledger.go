package audit

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ledgerBufferSize is the write buffer in front of the gzip stream.
const ledgerBufferSize = 64 << 10

// Ledger is the append-only, gzip-compressed ownership record stream.
// Each Record call writes one line; nothing is held in memory beyond the
// write buffer.
type Ledger struct {
	path    string
	file    io.WriteCloser
	gz      *gzip.Writer
	buf     *bufio.Writer
	records int64
	closed  bool
}

// CreateLedger creates (or truncates) the ledger file at path.
func CreateLedger(path string) (*Ledger, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: creating %q: %w", ErrOutputUnwritable, path, err)
	}

	ledger, err := newLedger(path, file, ledgerBufferSize)
	if err != nil {
		_ = file.Close()

		return nil, err
	}

	return ledger, nil
}

// newLedger compresses records into sink, which is reported as path.
func newLedger(path string, sink io.WriteCloser, bufferSize int) (*Ledger, error) {
	gz, err := gzip.NewWriterLevel(sink, gzip.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrOutputUnwritable, path, err)
	}

	return &Ledger{
		path: path,
		file: sink,
		gz:   gz,
		buf:  bufio.NewWriterSize(gz, bufferSize),
	}, nil
}

// Path returns the ledger file location.
func (l *Ledger) Path() string { return l.path }

// Records returns the number of records written so far.
func (l *Ledger) Records() int64 { return l.records }

// Record appends one line for e. Path bytes are written as-is.
func (l *Ledger) Record(e Entry) error {
	if _, err := l.buf.WriteString(FormatRecord(e)); err != nil {
		return fmt.Errorf("%w %q (ledger left partially written): %w", ErrLedgerWrite, l.path, err)
	}

	l.records++

	return nil
}

// Close flushes and closes the ledger. Calling it again is a no-op.
func (l *Ledger) Close() error {
	if l.closed {
		return nil
	}

	l.closed = true

	flushErr := l.buf.Flush()
	gzErr := l.gz.Close()
	fileErr := l.file.Close()

	for _, err := range []error{flushErr, gzErr, fileErr} {
		if err != nil {
			return fmt.Errorf("%w %q (ledger left partially written): %w", ErrLedgerWrite, l.path, err)
		}
	}

	return nil
}

// FormatRecord renders e as "<perm>\t<uid>\t<gid>\t<path>\n". Directories
// get a trailing path separator.
func FormatRecord(e Entry) string {
	path := e.Path
	if e.IsDir() && !strings.HasSuffix(path, string(filepath.Separator)) {
		path += string(filepath.Separator)
	}

	var sb strings.Builder

	sb.Grow(len(path) + 24)
	sb.WriteString(strconv.FormatUint(uint64(UnixPerm(e.Mode)), 8))
	sb.WriteByte('\t')
	sb.WriteString(strconv.FormatInt(e.UID, 10))
	sb.WriteByte('\t')
	sb.WriteString(strconv.FormatInt(e.GID, 10))
	sb.WriteByte('\t')
	sb.WriteString(path)
	sb.WriteByte('\n')

	return sb.String()
}

// UnixPerm converts Go mode bits to the numeric chmod form, including the
// setuid, setgid and sticky bits.
func UnixPerm(mode fs.FileMode) uint32 {
	perm := uint32(mode.Perm())

	if mode&fs.ModeSetuid != 0 {
		perm |= 0o4000
	}

	if mode&fs.ModeSetgid != 0 {
		perm |= 0o2000
	}

	if mode&fs.ModeSticky != 0 {
		perm |= 0o1000
	}

	return perm
}
