package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/idelchi/darsync/internal/audit"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
	// separator closes every banner.
	separator = "-----------------------------------------------------------------"
)

//nolint:gochecknoglobals // Shared console styles
var (
	warnStyle = color.New(color.FgYellow, color.Bold)
	infoStyle = color.New(color.FgCyan)
	okStyle   = color.New(color.FgGreen)
)

// Report is the machine-readable outcome of a check.
type Report struct {
	Result   *audit.ScanResult `json:"result"`
	Warnings []string          `json:"warnings"`
	Reports  []string          `json:"reports"`
}

// PrintJSON outputs the check report in JSON format.
func PrintJSON(report Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

func size(b int64) string {
	return humanize.IBytes(uint64(b)) //nolint:gosec // Sizes are never negative
}

// PrintWarning writes the console banner for one fired warning.
//
//nolint:forbidigo // This function prints output to the console.
func PrintWarning(writer io.Writer, warning audit.Warning, prefix string) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	switch v := warning.(type) {
	case audit.FlaggedExtensionWarning:
		warnStyle.Fprintln(w, "WARNING: files with uncompressed file formats above the threshold detected:")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d\tfiles with flagged file extensions found\n", v.Count)
		fmt.Fprintf(w, "%d\tfiles larger than %s found\n", v.OversizeCount, size(v.SizeLimit))
		fmt.Fprintln(w)
		fmt.Fprint(w, heredoc.Docf(`
			If the total size of all files with flagged extensions exceeds %s
			you should consider compressing them or converting them to a better file format.
			Compressed formats are roughly %.0f%% smaller than uncompressed ones.
			Your project could save up to %s by doing this.

			Flagged extensions are common file formats that are uncompressed,
			e.g. %s

			To see a list of all files with flagged extensions found,
			see the file %s
		`, size(v.SizeLimit), audit.EstimatedSavingRatio*100, size(v.EstimatedSaving()),
			strings.Join(v.Extensions, ", "), prefix+v.ReportSuffix()))
	case audit.CrowdingWarning:
		warnStyle.Fprintln(w, "WARNING: total number of files, or number of files in a single directory, exceeds the threshold.")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d\tdirectories with more than %d files found\n", len(v.Dirs), v.DirLimit)
		fmt.Fprintf(w, "%d\tfiles in total (warning threshold: %d)\n", v.TotalFiles, v.TotalFilesLimit)
		fmt.Fprintln(w)
		fmt.Fprint(w, heredoc.Docf(`
			Transferring many small files is slow. Consider packing crowded
			directories into archives before the transfer.

			To see a list of all crowded directories and the number of files they have,
			see the file %s
		`, prefix+v.ReportSuffix()))
	default:
		return fmt.Errorf("unknown warning kind %v", warning.Kind())
	}

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w)

	return w.Flush()
}

// PrintSkipped lists entries the walk could not inspect.
//
//nolint:forbidigo // This function prints output to the console.
func PrintSkipped(writer io.Writer, skipped []audit.Skip) error {
	if len(skipped) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	warnStyle.Fprintf(w, "%d entries could not be read and were skipped:\n", len(skipped))

	for _, s := range skipped {
		fmt.Fprintf(w, "  %s\t%v\n", s.Path, s.Err)
	}

	fmt.Fprintln(w)

	return w.Flush()
}

// PrintCompletion writes the closing summary and points at the generated files.
//
//nolint:forbidigo // This function prints output to the console.
func PrintCompletion(writer io.Writer, res *audit.ScanResult, warned bool) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "Stats:\t\t")
	fmt.Fprintf(w, "Total files:\t%d\n", res.TotalFiles)
	fmt.Fprintf(w, "Total directories:\t%d\n", res.TotalDirs)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", size(res.TotalBytes), res.TotalBytes)
	fmt.Fprintf(w, "Flagged files:\t%d, %s\n", res.FlaggedCount, size(res.FlaggedBytes))
	fmt.Fprintf(w, "Elapsed:\t%v\n", res.Elapsed)
	fmt.Fprintln(w)

	if warned {
		okStyle.Fprintln(w, "Checking completed. Review the warnings above before transferring.")
	} else {
		okStyle.Fprintln(w, "Checking completed. No warnings, you should be good to go.")
	}

	fmt.Fprint(w, heredoc.Docf(`

		Generate a SLURM script file to do the transfer by running

		  darsync gen -h

		A file containing file ownership information,
		%s
		has been created. It can be used to make sure that the file
		ownership (user/group) and permissions look the same on the
		destination as they do here.
	`, res.LedgerPath))

	return w.Flush()
}

// PrintTally writes a fast count result.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTally(writer io.Writer, root string, tally audit.Tally, filesLimit int64) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "Path:\t%s\n", root)
	fmt.Fprintf(w, "Files:\t%d\n", tally.Files)
	fmt.Fprintf(w, "Directories:\t%d\n", tally.Dirs)

	if tally.Errors > 0 {
		fmt.Fprintf(w, "Unreadable:\t%d\n", tally.Errors)
	}

	if tally.Files > filesLimit {
		warnStyle.Fprintf(w, "\nMore than %d files, expect a crowding warning from 'darsync check'.\n", filesLimit)
	} else {
		infoStyle.Fprintln(w, "\nRun 'darsync check' for the full audit.")
	}

	return w.Flush()
}
