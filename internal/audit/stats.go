package audit

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// FileStat is a flagged file and its size.
type FileStat struct {
	// Path is the absolute file path.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// DirStat is a crowded directory and its immediate file count.
type DirStat struct {
	// Path is the absolute directory path.
	Path string `json:"path"`
	// Files is the number of immediate non-directory children.
	Files int64 `json:"files"`
}

// Skip is an entry the walk could not inspect.
type Skip struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// ScanResult holds the aggregate of one walk. It is only returned once the
// walk has finished and is not modified afterwards.
type ScanResult struct {
	// TotalFiles is the number of non-directory entries visited.
	TotalFiles int64 `json:"total_files"`
	// TotalDirs is the number of directories visited, the root included.
	TotalDirs int64 `json:"total_dirs"`
	// TotalBytes is the cumulative size of all visited files.
	TotalBytes int64 `json:"total_bytes"`
	// FlaggedBytes is the cumulative size of flagged files.
	FlaggedBytes int64 `json:"flagged_bytes"`
	// FlaggedCount is the number of flagged files.
	FlaggedCount int64 `json:"flagged_count"`
	// OversizeCount is the number of flagged files above the size limit.
	OversizeCount int64 `json:"oversize_count"`
	// FlaggedFiles is sorted by size, largest first.
	FlaggedFiles []FileStat `json:"flagged_files"`
	// CrowdedDirs is sorted by file count, largest first.
	CrowdedDirs []DirStat `json:"crowded_dirs"`
	// Skipped lists entries left out of the walk, in walk order.
	Skipped []Skip `json:"skipped"`
	// LedgerRecords is the number of ownership records written.
	LedgerRecords int64 `json:"ledger_records"`
	// LedgerPath is where the ownership ledger was written.
	LedgerPath string `json:"ledger_path"`
	// Elapsed is the wall time of the walk.
	Elapsed time.Duration `json:"elapsed"`
}

// collector accumulates the walk. The walk itself is sequential; the mutex
// only guards the counters read by the progress reporter.
type collector struct {
	mu         sync.Mutex
	sizeLimit  int64
	dirLimit   int64
	extensions []string
	result     ScanResult
}

func newCollector(cfg ScanConfig) *collector {
	return &collector{
		sizeLimit:  cfg.SizeLimit,
		dirLimit:   cfg.DirFileCountLimit,
		extensions: cfg.Extensions,
		result: ScanResult{
			FlaggedFiles: make([]FileStat, 0),
			CrowdedDirs:  make([]DirStat, 0),
			Skipped:      make([]Skip, 0),
		},
	}
}

// HasFlaggedExtension reports whether name ends with one of extensions.
// The test is a literal, case-sensitive suffix match.
func HasFlaggedExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}

	return false
}

// addDir records a directory visit and checks it for crowding.
func (c *collector) addDir(path string, files int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.result.TotalDirs++

	if int64(files) > c.dirLimit {
		c.result.CrowdedDirs = append(c.result.CrowdedDirs, DirStat{Path: path, Files: int64(files)})
	}
}

// addFile records a file visit and classifies it by extension.
func (c *collector) addFile(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.result.TotalFiles++
	c.result.TotalBytes += e.Size

	if !HasFlaggedExtension(e.Name(), c.extensions) {
		return
	}

	c.result.FlaggedCount++
	c.result.FlaggedBytes += e.Size
	c.result.FlaggedFiles = append(c.result.FlaggedFiles, FileStat{Path: e.Path, Size: e.Size})

	if e.Size > c.sizeLimit {
		c.result.OversizeCount++
	}
}

// addSkip records an entry that could not be inspected.
func (c *collector) addSkip(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.result.Skipped = append(c.result.Skipped, Skip{Path: path, Err: err})
}

// progress returns the files visited and bytes seen so far.
func (c *collector) progress() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.result.TotalFiles, c.result.TotalBytes
}

// finalize sorts the flagged files and crowded directories, largest first.
// Stable sorting keeps visitation order among equal values.
func (c *collector) finalize() *ScanResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	slices.SortStableFunc(c.result.FlaggedFiles, func(a, b FileStat) int {
		return cmpDesc(a.Size, b.Size)
	})
	slices.SortStableFunc(c.result.CrowdedDirs, func(a, b DirStat) int {
		return cmpDesc(a.Files, b.Files)
	})

	result := c.result

	return &result
}

func cmpDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
