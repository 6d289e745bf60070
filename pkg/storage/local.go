package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/sdejongh/treemirror/pkg/models"
	"github.com/spf13/afero"
)

// ErrDirNotEmpty is returned when Remove is asked to delete a directory that still has entries
var ErrDirNotEmpty = errors.New("directory not empty")

// Local is a filesystem backend built on afero
type Local struct {
	fs     afero.Fs
	native bool
}

// NewLocal creates a backend on the host filesystem
func NewLocal() *Local {
	return &Local{fs: afero.NewOsFs(), native: true}
}

// NewMemory creates a backend on an empty in-memory filesystem
func NewMemory() *Local {
	return &Local{fs: afero.NewMemMapFs()}
}

// NewFromFs wraps an arbitrary afero filesystem.
// Attributes are derived from the portable FileInfo fields only.
func NewFromFs(fsys afero.Fs) *Local {
	_, native := fsys.(*afero.OsFs)
	return &Local{fs: fsys, native: native}
}

// Fs returns the underlying filesystem
func (l *Local) Fs() afero.Fs {
	return l.fs
}

// ReadDir lists one directory, sorted by name
func (l *Local) ReadDir(path string) ([]fs.FileInfo, error) {
	infos, err := afero.ReadDir(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}
	return infos, nil
}

// Stat returns file metadata
func (l *Local) Stat(path string) (fs.FileInfo, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return info, nil
}

// Meta extracts attributes and timestamps for an entry
func (l *Local) Meta(path string, info fs.FileInfo) Meta {
	if l.native {
		return nativeMeta(path, info)
	}
	return portableMeta(info)
}

// SetTimes applies access and write times, and creation time where supported
func (l *Local) SetTimes(path string, m Meta) error {
	if l.native {
		return setNativeTimes(path, m)
	}
	if err := l.fs.Chtimes(path, m.Accessed, m.Modified); err != nil {
		return fmt.Errorf("failed to set timestamps: %w", err)
	}
	return nil
}

// SetAttributes applies the attribute bits to path
func (l *Local) SetAttributes(path string, m Meta) error {
	if l.native {
		return setNativeAttributes(path, m)
	}
	if err := l.fs.Chmod(path, permFor(m)); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	return nil
}

// ClearProtection removes read-only, hidden and system attributes
func (l *Local) ClearProtection(path string) error {
	if l.native {
		return clearNativeProtection(path)
	}

	info, err := l.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if err := l.fs.Chmod(path, info.Mode().Perm()|0o200); err != nil {
		return fmt.Errorf("failed to clear attributes: %w", err)
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(path string) error {
	if err := l.fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Remove deletes a file or an empty directory
func (l *Local) Remove(path string) error {
	if isDir, _ := afero.IsDir(l.fs, path); isDir {
		if empty, err := afero.IsEmpty(l.fs, path); err == nil && !empty {
			return fmt.Errorf("failed to delete %s: %w", path, ErrDirNotEmpty)
		}
	}
	if err := l.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(path string) (bool, error) {
	ok, err := afero.Exists(l.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return ok, nil
}

// DirExists checks if path exists and is a directory
func (l *Local) DirExists(path string) (bool, error) {
	ok, err := afero.DirExists(l.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return ok, nil
}

// Close releases resources (no-op for local filesystems)
func (l *Local) Close() error {
	return nil
}

// portableMeta derives attributes from the name and permission bits
func portableMeta(info fs.FileInfo) Meta {
	mt := info.ModTime()
	m := Meta{
		Mode:     info.Mode(),
		Created:  mt,
		Accessed: mt,
		Modified: mt,
	}
	if info.IsDir() {
		m.Attrs |= models.AttrDirectory
	}
	if isDotName(info.Name()) {
		m.Attrs |= models.AttrHidden
	}
	if info.Mode().Perm()&0o200 == 0 {
		m.Attrs |= models.AttrReadOnly
	}
	return m
}

// permFor returns the permission bits to apply to a copy.
// Directories always stay writable by the owner so their contents can be mirrored.
func permFor(m Meta) fs.FileMode {
	perm := m.Mode.Perm()
	if perm == 0 {
		perm = 0o644
		if m.Attrs.Has(models.AttrDirectory) {
			perm = 0o755
		}
	}
	if m.Attrs.Has(models.AttrDirectory) {
		perm |= 0o700
	}
	return perm
}

func isDotName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
