package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/treemirror/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer io.Writer
	err    error
}

// JSONReportData represents the final report data
type JSONReportData struct {
	OperationID string            `json:"operation_id"`
	Source      string            `json:"source"`
	Dest        string            `json:"dest"`
	NoCopy      bool              `json:"no_copy,omitempty"`
	Status      string            `json:"status"`
	Duration    string            `json:"duration"`
	DurationMs  int64             `json:"duration_ms"`
	ScanMs      int64             `json:"scan_ms"`
	Selection   JSONSelectionData `json:"selection"`
	Totals      JSONTotalsData    `json:"totals"`
	Transfer    JSONTransferData  `json:"transfer"`
	Errors      []JSONErrorData   `json:"errors,omitempty"`
	Warnings    []JSONErrorData   `json:"warnings,omitempty"`
	Fatal       string            `json:"fatal,omitempty"`
}

// JSONSelectionData represents what the filters selected
type JSONSelectionData struct {
	Files int    `json:"files"`
	Dirs  int    `json:"dirs"`
	Bytes uint64 `json:"bytes"`
}

// JSONTotalsData mirrors models.Totals
type JSONTotalsData struct {
	FilesCopied        int    `json:"files_copied"`
	BytesCopied        uint64 `json:"bytes_copied"`
	FilesAlreadyExist  int    `json:"files_already_exist"`
	BytesAlreadyExist  uint64 `json:"bytes_already_exist"`
	DirsCopied         int    `json:"dirs_copied"`
	DirsCreated        int    `json:"dirs_created"`
	DirsAlreadyExist   int    `json:"dirs_already_exist"`
	SourceFilesDeleted int    `json:"source_files_deleted,omitempty"`
	SourceDirsDeleted  int    `json:"source_dirs_deleted,omitempty"`
	SourceBytesDeleted uint64 `json:"source_bytes_deleted,omitempty"`
	DestFilesDeleted   int    `json:"dest_files_deleted,omitempty"`
	DestDirsDeleted    int    `json:"dest_dirs_deleted,omitempty"`
	DestBytesDeleted   uint64 `json:"dest_bytes_deleted,omitempty"`
	Errors             int    `json:"errors"`
	Warnings           int    `json:"warnings"`
}

// JSONTransferData represents transfer statistics
type JSONTransferData struct {
	AverageSpeed    int64  `json:"average_speed_bytes_per_sec,omitempty"`
	AverageSpeedStr string `json:"average_speed,omitempty"`
}

// JSONErrorData represents an error or warning entry
type JSONErrorData struct {
	Path      string `json:"path"`
	Operation string `json:"operation"`
	Error     string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, op *models.MirrorOperation, selection models.Selection) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress does not print anything to keep the output parseable
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report as a single JSON document
func (f *JSONFormatter) Complete(report *models.Report) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	return f.encode(buildReportData(report, f.err))
}

// Error records a fatal error. When the run never started it is written immediately.
func (f *JSONFormatter) Error(err error) error {
	f.err = err
	if f.writer != nil {
		return nil
	}
	return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": string(models.StatusFailed), "fatal": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func buildReportData(report *models.Report, fatal error) JSONReportData {
	t := report.Totals

	var avgSpeed int64
	var avgSpeedStr string
	if rate := report.Rate(); rate > 0 {
		avgSpeed = int64(rate)
		avgSpeedStr = formatBytes(avgSpeed) + "/s"
	}

	data := JSONReportData{
		OperationID: report.OperationID,
		Source:      report.SourcePath,
		Dest:        report.DestPath,
		NoCopy:      report.NoCopy,
		Status:      string(report.Status),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		ScanMs:      report.ScanDuration.Milliseconds(),
		Selection: JSONSelectionData{
			Files: report.Selection.Files,
			Dirs:  report.Selection.Dirs,
			Bytes: report.Selection.Bytes,
		},
		Totals: JSONTotalsData{
			FilesCopied:        t.FilesCopied,
			BytesCopied:        t.BytesCopied,
			FilesAlreadyExist:  t.FilesAlreadyExist,
			BytesAlreadyExist:  t.BytesAlreadyExist,
			DirsCopied:         t.DirsCopied,
			DirsCreated:        t.DirsCreated,
			DirsAlreadyExist:   t.DirsAlreadyExist,
			SourceFilesDeleted: t.SourceFilesDeleted,
			SourceDirsDeleted:  t.SourceDirsDeleted,
			SourceBytesDeleted: t.SourceBytesDeleted,
			DestFilesDeleted:   t.DestFilesDeleted,
			DestDirsDeleted:    t.DestDirsDeleted,
			DestBytesDeleted:   t.DestBytesDeleted,
			Errors:             t.NumErrors,
			Warnings:           t.NumWarnings,
		},
		Transfer: JSONTransferData{
			AverageSpeed:    avgSpeed,
			AverageSpeedStr: avgSpeedStr,
		},
		Errors:   toErrorData(report.Errors),
		Warnings: toErrorData(report.Warnings),
	}
	if fatal != nil {
		data.Fatal = fatal.Error()
	}
	return data
}

func toErrorData(in []models.MirrorError) []JSONErrorData {
	var out []JSONErrorData
	for _, e := range in {
		out = append(out, JSONErrorData{
			Path:      e.FilePath,
			Operation: string(e.Operation),
			Error:     e.Error,
		})
	}
	return out
}
