package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/treemirror/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{18446744073709551615, "18,446,744,073,709,551,615"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatThousands(tt.in), "formatThousands(%d)", tt.in)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KiB", formatBytes(1024))
	assert.Equal(t, "1.5 MiB", formatBytes(1536*1024))
}

func sampleReport() *models.Report {
	return &models.Report{
		OperationID:  "op-1",
		SourcePath:   "/src",
		DestPath:     "/dst",
		Duration:     3 * time.Second,
		ScanDuration: time.Second,
		Selection:    models.Selection{Files: 3, Dirs: 2, Bytes: 4096},
		Totals: models.Totals{
			FilesCopied:       2,
			BytesCopied:       2048,
			FilesAlreadyExist: 1,
			BytesAlreadyExist: 2048,
			DirsCopied:        1,
			DirsCreated:       1,
			DestFilesDeleted:  4,
			NumErrors:         1,
			NumWarnings:       2,
		},
		Errors: []models.MirrorError{
			{FilePath: "b.txt", Operation: models.ActionCopy, Error: "b.txt: read failed"},
		},
		Status: models.StatusPartial,
	}
}

func TestHumanFormatter(t *testing.T) {
	op := &models.MirrorOperation{Source: "/src", Dest: "/dst", Update: true, Clean: true}

	t.Run("Lines", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewHumanFormatter(false, false)
		require.NoError(t, f.Start(&buf, op, models.Selection{Files: 1234, Dirs: 2, Bytes: 2048}))
		f.Progress(ProgressUpdate{Type: UpdateFileComplete, FilePath: "a.txt", BytesWritten: 10})
		f.Progress(ProgressUpdate{Type: UpdateWouldCopy, FilePath: "b.txt", TotalBytes: 2048})
		f.Progress(ProgressUpdate{Type: UpdateWouldMkdir, FilePath: "sub"})
		f.Progress(ProgressUpdate{Type: UpdateDelete, FilePath: "old.txt", Message: "would delete"})
		f.Progress(ProgressUpdate{Type: UpdateSkip, FilePath: "same.txt"})
		f.Progress(ProgressUpdate{Type: UpdateWarning, FilePath: "ro.txt", Message: "left untouched"})

		out := buf.String()
		assert.Contains(t, out, "Mirroring /src to /dst: 1,234 files, 2 dirs, 2.0 KiB")
		assert.Contains(t, out, "Copied a.txt (10 B)")
		assert.Contains(t, out, "Would be copying b.txt (2.0 KiB)")
		assert.Contains(t, out, "Would be creating directory sub")
		assert.Contains(t, out, "Would be deleting old.txt")
		assert.Contains(t, out, "Warning: ro.txt: left untouched")
		assert.NotContains(t, out, "same.txt", "skips are verbose only")
	})

	t.Run("Quiet", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewHumanFormatter(false, true)
		require.NoError(t, f.Start(&buf, op, models.Selection{}))
		f.Progress(ProgressUpdate{Type: UpdateFileComplete, FilePath: "a.txt"})
		f.Progress(ProgressUpdate{Type: UpdateError, FilePath: "b.txt", Error: errors.New("boom")})

		out := buf.String()
		assert.NotContains(t, out, "a.txt")
		assert.Contains(t, out, "Error: b.txt: boom")
	})

	t.Run("Summary", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewHumanFormatter(false, false)
		require.NoError(t, f.Start(&buf, op, models.Selection{}))
		require.NoError(t, f.Complete(sampleReport()))

		out := buf.String()
		assert.Contains(t, out, "Completed:")
		assert.Regexp(t, `Copied\s+1 \(1 new\)\s+2\s+2,048`, out)
		assert.Regexp(t, `Already existed\s+0\s+1\s+2,048`, out)
		assert.Regexp(t, `Destination cleaned\s+0\s+4\s+0`, out)
		assert.NotContains(t, out, "Source deleted", "move was not requested")
		assert.Contains(t, out, "Average data rate:  1.0 KiB/s")
		assert.Contains(t, out, "Completed with 1 errors, 2 warnings.")
		assert.Contains(t, out, "Status: partial")
		assert.Contains(t, out, "b.txt: read failed")
	})

	t.Run("ShortRunRateNotCalculated", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewHumanFormatter(false, false)
		require.NoError(t, f.Start(&buf, op, models.Selection{}))
		r := sampleReport()
		r.Duration = 1500 * time.Millisecond
		require.NoError(t, f.Complete(r))
		assert.Contains(t, buf.String(), "Average data rate:  not calculated")
	})
}

func TestProgressFormatterFallsBackWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	f := NewProgressFormatter(false, false)
	op := &models.MirrorOperation{Source: "/src", Dest: "/dst"}

	require.NoError(t, f.Start(&buf, op, models.Selection{Files: 1, Bytes: 10}))
	assert.Nil(t, f.bar)

	f.Progress(ProgressUpdate{Type: UpdateFileStart, FilePath: "a.txt", TotalBytes: 10})
	f.Progress(ProgressUpdate{Type: UpdateFileComplete, FilePath: "a.txt", BytesWritten: 10})
	require.NoError(t, f.Complete(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Copied a.txt (10 B)")
	assert.Contains(t, out, "Status: partial")
	assert.Equal(t, "progress", f.Name())
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short.txt", shorten("short.txt"))
	long := strings.Repeat("d/", 40) + "file.txt"
	got := shorten(long)
	assert.Len(t, []rune(got), maxPrefixLen)
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "file.txt"))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()
	require.NoError(t, f.Start(&buf, &models.MirrorOperation{}, models.Selection{}))
	f.Progress(ProgressUpdate{Type: UpdateFileComplete, FilePath: "a.txt"})
	require.NoError(t, f.Error(errors.New("stopped")))
	require.NoError(t, f.Complete(sampleReport()))

	var got JSONReportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "op-1", got.OperationID)
	assert.Equal(t, "partial", got.Status)
	assert.Equal(t, int64(3000), got.DurationMs)
	assert.Equal(t, 2, got.Totals.FilesCopied)
	assert.Equal(t, uint64(4096), got.Selection.Bytes)
	assert.Equal(t, int64(1024), got.Transfer.AverageSpeed)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "copy", got.Errors[0].Operation)
	assert.Equal(t, "stopped", got.Fatal)
}
