package models

import (
	"time"
)

// Totals accumulates everything a mirror run did.
// It is owned by the run and passed explicitly to every pass.
type Totals struct {
	BytesCopied       uint64
	BytesAlreadyExist uint64
	FilesCopied       int
	FilesAlreadyExist int
	DirsCopied        int
	DirsCreated       int
	DirsAlreadyExist  int

	// Move mode
	SourceFilesDeleted int
	SourceDirsDeleted  int
	SourceBytesDeleted uint64

	// Clean mode
	DestFilesDeleted int
	DestDirsDeleted  int
	DestBytesDeleted uint64

	NumErrors   int
	NumWarnings int
}

// Selection is the size of the filtered source tree, counted before copying
type Selection struct {
	Files int
	Dirs  int
	Bytes uint64
}

// Report represents the results of a mirror run
type Report struct {
	// Operation details
	OperationID string
	SourcePath  string
	DestPath    string
	NoCopy      bool

	// Timing
	StartTime    time.Time
	EndTime      time.Time
	ScanDuration time.Duration
	Duration     time.Duration

	Selection Selection
	Totals    Totals

	Errors   []MirrorError
	Warnings []MirrorError

	Status Status
}

// Rate returns bytes copied per second of copy time (after the scan)
func (r *Report) Rate() float64 {
	d := r.Duration - r.ScanDuration
	if d <= 0 {
		return 0
	}
	return float64(r.Totals.BytesCopied) / d.Seconds()
}

// Status represents the overall result
type Status string

const (
	// StatusSuccess indicates all operations completed successfully
	StatusSuccess Status = "success"
	// StatusPartial indicates some entries failed and the run continued
	StatusPartial Status = "partial"
	// StatusFailed indicates the run stopped on an error
	StatusFailed Status = "failed"
	// StatusCancelled indicates the run was interrupted
	StatusCancelled Status = "cancelled"
)

// MirrorError represents an error or warning attached to one path
type MirrorError struct {
	FilePath  string
	Operation Action
	Error     string
	Timestamp time.Time
}

// ExitCode returns the appropriate exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
