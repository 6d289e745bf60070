package output

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/sdejongh/treemirror/pkg/models"
	"golang.org/x/term"
)

const progressTemplate = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }} {{rtime . "ETA %s"}}`

// maxPrefixLen caps the file name shown in front of the bar
const maxPrefixLen = 40

// getRefreshRate returns the bar refresh interval based on OS.
// Windows terminals have higher latency with ANSI sequences.
func getRefreshRate() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// ProgressFormatter draws one byte-counting bar over the whole selection.
// When the writer is not a terminal it falls back to human-readable lines.
type ProgressFormatter struct {
	human     *HumanFormatter
	writer    io.Writer
	bar       *pb.ProgressBar
	done      int64 // bytes of files already finished or skipped
	pending   []string
	verifying bool
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter(verbose, quiet bool) *ProgressFormatter {
	return &ProgressFormatter{human: NewHumanFormatter(verbose, quiet)}
}

// Start initializes the formatter
func (f *ProgressFormatter) Start(writer io.Writer, op *models.MirrorOperation, selection models.Selection) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	if err := f.human.Start(writer, op, selection); err != nil {
		return err
	}

	width, ok := terminalWidth(writer)
	if !ok || op.List || op.NoCopy || f.human.quiet {
		return nil
	}

	f.bar = pb.New64(int64(selection.Bytes)).
		SetTemplateString(progressTemplate).
		SetWriter(writer).
		SetRefreshRate(getRefreshRate()).
		SetMaxWidth(width).
		Set(pb.Bytes, true).
		Set("prefix", "")
	f.bar.Start()
	return nil
}

// Progress reports progress during the run
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	if f.bar == nil {
		return f.human.Progress(update)
	}

	switch update.Type {
	case UpdateFileStart:
		f.verifying = false
		f.bar.Set("prefix", shorten(update.FilePath))

	case UpdateVerifyStart:
		f.verifying = true
		f.bar.Set("prefix", shorten("verify "+update.FilePath))

	case UpdateFileProgress:
		if !f.verifying {
			f.bar.SetCurrent(f.done + update.BytesWritten)
		}

	case UpdateFileComplete:
		f.done += update.BytesWritten
		f.bar.SetCurrent(f.done)

	case UpdateSkip:
		f.done += update.TotalBytes
		f.bar.SetCurrent(f.done)

	case UpdateWarning:
		f.pending = append(f.pending, fmt.Sprintf("Warning: %s: %s", update.FilePath, update.Message))

	case UpdateError:
		f.pending = append(f.pending, fmt.Sprintf("Error: %s: %v", update.FilePath, update.Error))
	}
	return nil
}

// Complete stops the bar, flushes held messages and displays the summary
func (f *ProgressFormatter) Complete(report *models.Report) error {
	if f.bar != nil {
		f.bar.Set("prefix", "")
		f.bar.Finish()
		f.bar = nil
	}
	for _, msg := range f.pending {
		fmt.Fprintln(f.writer, msg)
	}
	f.pending = nil
	return f.human.Complete(report)
}

// Error reports a fatal error
func (f *ProgressFormatter) Error(err error) error {
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	return f.human.Error(err)
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}

// terminalWidth reports the width of w when it is an interactive terminal
func terminalWidth(w io.Writer) (int, bool) {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		width = 120
	}
	return width, true
}

// shorten keeps the tail of long paths
func shorten(path string) string {
	runes := []rune(path)
	if len(runes) <= maxPrefixLen {
		return path
	}
	return "..." + string(runes[len(runes)-maxPrefixLen+3:])
}
