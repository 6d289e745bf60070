package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/pgzip"
)

// rotatingWriter appends to a file and rolls it over once it reaches maxSize.
// Backups are named <path>.1 (newest) through <path>.<maxBackups>, with a
// .gz suffix when compress is set.
type rotatingWriter struct {
	mu         sync.Mutex
	path       string
	maxSize    int64
	maxBackups int
	compress   bool
	file       *os.File
	size       int64
}

func openRotatingWriter(path string, maxSize int64, maxBackups int, compress bool) (*rotatingWriter, error) {
	w := &rotatingWriter{
		path:       path,
		maxSize:    maxSize,
		maxBackups: maxBackups,
		compress:   compress,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *rotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.file = file
	w.size = info.Size()
	return nil
}

// Write appends p, rotating first when the file is full
func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.maxSize > 0 && w.size >= w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Close closes the current file
func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *rotatingWriter) backupName(i int) string {
	name := fmt.Sprintf("%s.%d", w.path, i)
	if w.compress {
		name += ".gz"
	}
	return name
}

func (w *rotatingWriter) rotate() error {
	w.file.Close()
	w.file = nil

	if w.maxBackups <= 0 {
		if err := os.Truncate(w.path, 0); err != nil {
			return fmt.Errorf("failed to truncate log file: %w", err)
		}
		return w.open()
	}

	os.Remove(w.backupName(w.maxBackups))
	for i := w.maxBackups - 1; i >= 1; i-- {
		os.Rename(w.backupName(i), w.backupName(i+1))
	}

	if w.compress {
		if err := compressFile(w.path, w.backupName(1)); err != nil {
			return err
		}
		os.Remove(w.path)
	} else if err := os.Rename(w.path, w.backupName(1)); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return w.open()
}

// compressFile gzips src into dst using parallel compression
func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open log for compression: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create compressed log: %w", err)
	}

	gz := pgzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to compress log: %w", err)
	}
	if err := gz.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to compress log: %w", err)
	}
	return out.Close()
}
