package audit

import (
	"fmt"
	"path/filepath"
)

// Default thresholds.
const (
	// DefaultSizeLimit is the per-file and total flagged size threshold (2 GiB).
	DefaultSizeLimit int64 = 2 << 30
	// DefaultTotalFilesLimit is the tree-wide file count threshold.
	DefaultTotalFilesLimit int64 = 1_000_000
	// DefaultDirFileCountLimit is the per-directory file count threshold.
	DefaultDirFileCountLimit int64 = 100_000
)

// DefaultExtensions lists common uncompressed bioinformatics formats.
//
//nolint:gochecknoglobals // Config constant
var DefaultExtensions = []string{".sam", ".vcf", ".fq", ".fastq", ".fasta", ".txt", ".fa"}

// Output file suffixes appended to ScanConfig.Prefix.
const (
	LedgerSuffix     = ".ownership.gz"
	FlaggedSuffix    = ".uncompressed"
	CrowdedDirSuffix = ".dir_n_files"
)

// ScanConfig configures a single scan. It is passed by value and never
// modified while the walk runs.
type ScanConfig struct {
	// Root is the directory to audit.
	Root string
	// Prefix is the path and filename base for generated files.
	Prefix string
	// SizeLimit is the size above which a flagged file counts as oversize,
	// and the total flagged size that triggers a warning.
	SizeLimit int64
	// TotalFilesLimit is the number of files in the whole tree that triggers
	// a crowding warning.
	TotalFilesLimit int64
	// DirFileCountLimit is the number of immediate files a directory may hold
	// before it is reported as crowded.
	DirFileCountLimit int64
	// Extensions are the suffixes, including the leading dot, that mark a
	// file as uncompressed.
	Extensions []string
}

// DefaultConfig returns a ScanConfig for root with default thresholds.
func DefaultConfig(root string) ScanConfig {
	return ScanConfig{
		Root:              root,
		SizeLimit:         DefaultSizeLimit,
		TotalFilesLimit:   DefaultTotalFilesLimit,
		DirFileCountLimit: DefaultDirFileCountLimit,
		Extensions:        append([]string(nil), DefaultExtensions...),
	}
}

// DefaultPrefix returns "darsync_<basename of root>".
func DefaultPrefix(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return "darsync_" + filepath.Base(abs)
}

// LedgerPath returns the ownership ledger location for this config.
func (c ScanConfig) LedgerPath() string { return c.Prefix + LedgerSuffix }

// normalize fills in defaults and resolves Root to an absolute path.
func (c ScanConfig) normalize() (ScanConfig, error) {
	if c.Root == "" {
		c.Root = "."
	}

	abs, err := filepath.Abs(filepath.Clean(c.Root))
	if err != nil {
		return c, fmt.Errorf("%w: resolving absolute path of %q: %w", ErrInvalidRoot, c.Root, err)
	}

	c.Root = abs

	if c.Prefix == "" {
		c.Prefix = DefaultPrefix(abs)
	}

	if c.SizeLimit <= 0 {
		c.SizeLimit = DefaultSizeLimit
	}

	if c.TotalFilesLimit <= 0 {
		c.TotalFilesLimit = DefaultTotalFilesLimit
	}

	if c.DirFileCountLimit <= 0 {
		c.DirFileCountLimit = DefaultDirFileCountLimit
	}

	return c, nil
}
