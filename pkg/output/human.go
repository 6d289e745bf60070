package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sdejongh/treemirror/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer    io.Writer
	verbose   bool
	quiet     bool
	op        *models.MirrorOperation
	selection models.Selection
}

// NewHumanFormatter creates a new human-readable formatter.
// Verbose adds scan, skip and verify lines; quiet keeps only problems and the summary.
func NewHumanFormatter(verbose, quiet bool) *HumanFormatter {
	return &HumanFormatter{verbose: verbose, quiet: quiet}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, op *models.MirrorOperation, selection models.Selection) error {
	f.writer = writer
	f.op = op
	f.selection = selection

	if writer == nil || f.quiet {
		return nil
	}

	verb := "Mirroring"
	switch {
	case op.List:
		verb = "Listing"
	case op.NoCopy:
		verb = "Checking (no copy)"
	}
	fmt.Fprintf(writer, "%s %s to %s: %s files, %s dirs, %s\n",
		verb, op.Source, op.Dest,
		formatThousands(uint64(selection.Files)),
		formatThousands(uint64(selection.Dirs)),
		formatBytes(int64(selection.Bytes)))
	return nil
}

// Progress reports progress during the run
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case UpdateWarning:
		fmt.Fprintf(f.writer, "Warning: %s: %s\n", update.FilePath, update.Message)
		return nil
	case UpdateError:
		fmt.Fprintf(f.writer, "Error: %s: %v\n", update.FilePath, update.Error)
		return nil
	}

	if f.quiet {
		return nil
	}

	switch update.Type {
	case UpdateList:
		size := "<DIR>"
		if !update.IsDir {
			size = formatThousands(uint64(update.TotalBytes))
		}
		fmt.Fprintf(f.writer, "%s %18s  %s\n", update.Message, size, update.FilePath)

	case UpdateFileComplete:
		fmt.Fprintf(f.writer, "Copied %s (%s)\n", update.FilePath, formatBytes(update.BytesWritten))

	case UpdateMkdir:
		fmt.Fprintf(f.writer, "Created directory %s\n", update.FilePath)

	case UpdateWouldCopy:
		fmt.Fprintf(f.writer, "Would be copying %s (%s)\n", update.FilePath, formatBytes(update.TotalBytes))

	case UpdateWouldMkdir:
		fmt.Fprintf(f.writer, "Would be creating directory %s\n", update.FilePath)

	case UpdateDelete:
		if update.Message != "" {
			fmt.Fprintf(f.writer, "Would be deleting %s\n", update.FilePath)
		} else {
			fmt.Fprintf(f.writer, "Deleted %s\n", update.FilePath)
		}

	case UpdateSkip:
		if f.verbose {
			fmt.Fprintf(f.writer, "Up to date %s\n", update.FilePath)
		}

	case UpdateVerifyStart:
		if f.verbose {
			fmt.Fprintf(f.writer, "Verifying %s\n", update.FilePath)
		}

	case UpdateScan:
		if f.verbose {
			fmt.Fprintf(f.writer, "Scanning %s\n", update.FilePath)
		}
	}

	return nil
}

// Complete finalizes output and displays the summary table
func (f *HumanFormatter) Complete(report *models.Report) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, f.op, report)
	return nil
}

// writeSummary prints the totals table, timing and final status
func writeSummary(w io.Writer, op *models.MirrorOperation, report *models.Report) {
	t := report.Totals

	fmt.Fprintf(w, "\n")
	if report.NoCopy {
		fmt.Fprintf(w, "Completed (no changes made):\n")
	} else {
		fmt.Fprintf(w, "Completed:\n")
	}
	fmt.Fprintf(w, "  %-21s %18s %11s %18s\n", "Action", "Directories", "Files", "Bytes")
	fmt.Fprintf(w, "  %s %s %s %s\n",
		strings.Repeat("-", 21), strings.Repeat("-", 18), strings.Repeat("-", 11), strings.Repeat("-", 18))

	row := func(label, dirs string, files int, bytes uint64) {
		fmt.Fprintf(w, "  %-21s %18s %11s %18s\n", label, dirs, formatThousands(uint64(files)), formatThousands(bytes))
	}

	sel := report.Selection
	row("Selected", formatThousands(uint64(sel.Dirs)), sel.Files, sel.Bytes)
	row("Copied",
		fmt.Sprintf("%s (%s new)", formatThousands(uint64(t.DirsCopied)), formatThousands(uint64(t.DirsCreated))),
		t.FilesCopied, t.BytesCopied)
	if op == nil || op.Update {
		row("Already existed", formatThousands(uint64(t.DirsAlreadyExist)), t.FilesAlreadyExist, t.BytesAlreadyExist)
	}
	if op == nil || op.Move {
		row("Source deleted", formatThousands(uint64(t.SourceDirsDeleted)), t.SourceFilesDeleted, t.SourceBytesDeleted)
	}
	if op == nil || op.Clean {
		row("Destination cleaned", formatThousands(uint64(t.DestDirsDeleted)), t.DestFilesDeleted, t.DestBytesDeleted)
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Working time:       %s\n", formatDuration(report.Duration))
	if report.Duration-report.ScanDuration < time.Second {
		fmt.Fprintf(w, "Average data rate:  not calculated\n")
	} else {
		fmt.Fprintf(w, "Average data rate:  %s/s\n", formatBytes(int64(report.Rate())))
	}
	fmt.Fprintf(w, "Completed with %d errors, %d warnings.\n", t.NumErrors, t.NumWarnings)
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, err := range report.Errors {
			fmt.Fprintf(w, "  %s: %s\n", err.FilePath, err.Error)
		}
	}
}

// Error reports a fatal error
func (f *HumanFormatter) Error(err error) error {
	w := f.writer
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// formatThousands renders n with comma thousands separators
func formatThousands(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats duration in human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
