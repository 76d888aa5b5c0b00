package audit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
)

// WriteReport writes the per-entry lines of w: "<human size> <path>" for
// flagged files, "<count> <path>" for crowded directories.
func WriteReport(out io.Writer, w Warning) error {
	bw := bufio.NewWriter(out)

	switch v := w.(type) {
	case FlaggedExtensionWarning:
		for _, f := range v.Files {
			bw.WriteString(humanize.IBytes(uint64(f.Size))) //nolint:gosec // Sizes are never negative
			bw.WriteByte(' ')
			bw.WriteString(f.Path)
			bw.WriteByte('\n')
		}
	case CrowdingWarning:
		for _, d := range v.Dirs {
			bw.WriteString(strconv.FormatInt(d.Files, 10))
			bw.WriteByte(' ')
			bw.WriteString(d.Path)
			bw.WriteByte('\n')
		}
	default:
		return fmt.Errorf("unknown warning kind %v", w.Kind())
	}

	return bw.Flush()
}

// WriteReports writes one report file per warning next to prefix and returns
// the paths written, in warning order.
func WriteReports(prefix string, warnings []Warning) ([]string, error) {
	paths := make([]string, 0, len(warnings))

	for _, w := range warnings {
		path := prefix + w.ReportSuffix()

		if err := writeReportFile(path, w); err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

func writeReportFile(path string, w Warning) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %q: %w", path, err)
	}

	if err := WriteReport(file, w); err != nil {
		_ = file.Close()

		return fmt.Errorf("writing report %q: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing report %q: %w", path, err)
	}

	return nil
}
