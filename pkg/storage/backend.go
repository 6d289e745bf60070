package storage

import (
	"io/fs"
	"time"

	"github.com/sdejongh/treemirror/pkg/models"
	"github.com/spf13/afero"
)

// Meta is the attribute and timestamp snapshot taken for one entry
type Meta struct {
	Attrs    models.Attributes
	Mode     fs.FileMode
	Created  time.Time
	Accessed time.Time
	Modified time.Time
}

// Backend defines the filesystem operations a mirror run needs
// Implementations include the host filesystem and an in-memory filesystem
type Backend interface {
	// Fs exposes the underlying filesystem for streaming reads and writes
	Fs() afero.Fs

	// ReadDir lists one directory, sorted by name
	ReadDir(path string) ([]fs.FileInfo, error)

	// Stat returns file metadata
	Stat(path string) (fs.FileInfo, error)

	// Meta extracts attributes and all three timestamps for an entry
	Meta(path string, info fs.FileInfo) Meta

	// SetTimes applies the timestamps taken from another entry
	SetTimes(path string, m Meta) error

	// SetAttributes applies the attribute bits taken from another entry
	SetAttributes(path string, m Meta) error

	// ClearProtection removes read-only, hidden and system attributes
	ClearProtection(path string) error

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(path string) error

	// Remove deletes a file or an empty directory
	Remove(path string) error

	// Exists checks if a file or directory exists
	Exists(path string) (bool, error)

	// DirExists checks if path exists and is a directory
	DirExists(path string) (bool, error)

	// Close releases any resources held by the backend
	Close() error
}
