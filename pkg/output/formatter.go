package output

import (
	"io"

	"github.com/sdejongh/treemirror/pkg/models"
)

// Progress update types
const (
	UpdateScan         = "scan"          // a directory is about to be listed
	UpdateList         = "list"          // list mode: an entry that would be copied
	UpdateFileStart    = "file_start"    // a file copy begins
	UpdateFileProgress = "file_progress" // bytes copied so far
	UpdateFileComplete = "file_complete" // a file copy finished
	UpdateVerifyStart  = "verify_start"  // a byte compare begins
	UpdateSkip         = "file_skip"     // destination is already up to date
	UpdateMkdir        = "dir_create"    // a destination directory was created
	UpdateDelete       = "delete"        // move or clean removed an entry
	UpdateWouldCopy    = "would_copy"    // no-copy mode: a file copy was skipped
	UpdateWouldMkdir   = "would_mkdir"   // no-copy mode: a directory creation was skipped
	UpdateWarning      = "warning"
	UpdateError        = "file_error"
)

// ProgressUpdate represents a progress notification during a mirror run
type ProgressUpdate struct {
	Type         string
	FilePath     string // display path, relative unless show-path is set
	SourcePath   string
	DestPath     string
	IsDir        bool
	BytesWritten int64
	TotalBytes   int64
	Message      string
	Error        error
}

// Formatter defines the interface for console output
// Implementations include human-readable, progress bar and JSON formatters
type Formatter interface {
	// Start is called once the trees are scanned and filtered
	Start(writer io.Writer, op *models.MirrorOperation, selection models.Selection) error

	// Progress reports progress during the run
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays the summary
	Complete(report *models.Report) error

	// Error reports a fatal error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
