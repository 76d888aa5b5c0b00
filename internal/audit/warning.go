package audit

// EstimatedSavingRatio is the fraction of flagged bytes assumed to be saved by
// compressing them. It is a fixed rule of thumb; nothing is measured.
const EstimatedSavingRatio = 0.75

// WarningKind names a warning variant.
type WarningKind int

const (
	// FlaggedExtension fires on oversize or too many bytes of flagged files.
	FlaggedExtension WarningKind = iota
	// Crowding fires on crowded directories or too many files overall.
	Crowding
)

// String implements fmt.Stringer.
func (k WarningKind) String() string {
	switch k {
	case FlaggedExtension:
		return "flagged-extension"
	case Crowding:
		return "crowding"
	default:
		return "unknown"
	}
}

// Warning is a fired post-walk condition. The concrete types are
// FlaggedExtensionWarning and CrowdingWarning.
type Warning interface {
	// Kind identifies the variant.
	Kind() WarningKind
	// ReportSuffix is appended to the scan prefix to name the report file.
	ReportSuffix() string
}

// FlaggedExtensionWarning carries the flagged files and their totals.
type FlaggedExtensionWarning struct {
	Files         []FileStat
	Count         int64
	OversizeCount int64
	TotalBytes    int64
	SizeLimit     int64
	Extensions    []string
}

// Kind implements Warning.
func (FlaggedExtensionWarning) Kind() WarningKind { return FlaggedExtension }

// ReportSuffix implements Warning.
func (FlaggedExtensionWarning) ReportSuffix() string { return FlaggedSuffix }

// EstimatedSaving returns the bytes that compression would likely free.
func (w FlaggedExtensionWarning) EstimatedSaving() int64 {
	return int64(float64(w.TotalBytes) * EstimatedSavingRatio)
}

// CrowdingWarning carries the crowded directories and tree-wide file count.
type CrowdingWarning struct {
	Dirs            []DirStat
	TotalFiles      int64
	TotalFilesLimit int64
	DirLimit        int64
}

// Kind implements Warning.
func (CrowdingWarning) Kind() WarningKind { return Crowding }

// ReportSuffix implements Warning.
func (CrowdingWarning) ReportSuffix() string { return CrowdedDirSuffix }

// Evaluate returns the warnings that fire for res under cfg, flagged-extension
// first. With force set both fire regardless of thresholds; the payloads are
// the same either way.
func Evaluate(res *ScanResult, cfg ScanConfig, force bool) []Warning {
	var warnings []Warning

	if force || res.OversizeCount > 0 || res.FlaggedBytes > cfg.SizeLimit {
		warnings = append(warnings, FlaggedExtensionWarning{
			Files:         res.FlaggedFiles,
			Count:         res.FlaggedCount,
			OversizeCount: res.OversizeCount,
			TotalBytes:    res.FlaggedBytes,
			SizeLimit:     cfg.SizeLimit,
			Extensions:    cfg.Extensions,
		})
	}

	if force || len(res.CrowdedDirs) > 0 || res.TotalFiles > cfg.TotalFilesLimit {
		warnings = append(warnings, CrowdingWarning{
			Dirs:            res.CrowdedDirs,
			TotalFiles:      res.TotalFiles,
			TotalFilesLimit: cfg.TotalFilesLimit,
			DirLimit:        cfg.DirFileCountLimit,
		})
	}

	return warnings
}
