package tree

import (
	"io/fs"
	"strings"
	"time"

	"github.com/sdejongh/treemirror/pkg/models"
	"github.com/sdejongh/treemirror/pkg/storage"
)

// Tag is a set of transient per-entry marks set during planning
type Tag uint32

const (
	// TagExistsInSource marks a destination entry that has a source counterpart
	TagExistsInSource Tag = 0x0001
)

// Entry is one file or directory as seen when the tree was scanned
type Entry struct {
	Name     string
	Size     uint64
	Attrs    models.Attributes
	Mode     fs.FileMode
	Created  time.Time
	Accessed time.Time
	Modified time.Time
	Tags     Tag
}

// newEntry builds an entry from a directory listing item
func newEntry(info fs.FileInfo, m storage.Meta) Entry {
	e := Entry{
		Name:     info.Name(),
		Attrs:    m.Attrs,
		Mode:     m.Mode,
		Created:  m.Created,
		Accessed: m.Accessed,
		Modified: m.Modified,
	}
	if !info.IsDir() && info.Size() > 0 {
		e.Size = uint64(info.Size())
	}
	return e
}

// IsDir reports whether the entry is a directory
func (e *Entry) IsDir() bool {
	return e.Attrs.Has(models.AttrDirectory)
}

// HasTag reports whether every bit of t is set
func (e *Entry) HasTag(t Tag) bool {
	return e.Tags&t == t
}

// SetTag sets the bits of t
func (e *Entry) SetTag(t Tag) {
	e.Tags |= t
}

// Meta returns the attributes and timestamps to propagate onto a copy
func (e *Entry) Meta() storage.Meta {
	return storage.Meta{
		Attrs:    e.Attrs,
		Mode:     e.Mode,
		Created:  e.Created,
		Accessed: e.Accessed,
		Modified: e.Modified,
	}
}

// SameName compares entry names the way the filesystem does for lookups
func SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}
