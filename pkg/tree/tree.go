package tree

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sdejongh/treemirror/pkg/storage"
)

var (
	// ErrBadParameter is returned when an entry point receives an empty path
	ErrBadParameter = errors.New("bad parameter")
	// ErrAborted is returned when a callback asks to stop
	ErrAborted = errors.New("aborted")
)

// ScanFunc is called once per directory before it is listed.
// Returning false aborts the scan.
type ScanFunc func(dir string) bool

// VisitFunc is called once per entry during enumeration.
// The entry may be modified in place. Returning false stops the enumeration.
type VisitFunc func(path string, e *Entry, isDir bool) bool

// KeepFunc decides whether an entry survives PruneFiles
type KeepFunc func(path string, e *Entry, isDir bool) bool

// Node is one directory: its own entry, the files in it and its subdirectories.
// A node owns its children exclusively.
type Node struct {
	Entry Entry
	Files []Entry
	Dirs  []*Node

	// Err holds the message of the last failure at or below this node
	Err string
}

// Scan builds a tree rooted at root
func Scan(b storage.Backend, root string, visit ScanFunc) (*Node, error) {
	n := &Node{}
	if root == "" {
		return n, n.fail(ErrBadParameter)
	}

	info, err := b.Stat(root)
	if err != nil {
		return n, n.fail(fmt.Errorf("%s: %w", root, err))
	}
	n.Entry = newEntry(info, b.Meta(root, info))

	if err := n.ScanFiles(b, root, visit); err != nil {
		return n, err
	}
	return n, nil
}

// ScanFiles lists dir into this node, depth first.
// Each subdirectory is appended and scanned before the next sibling is looked at.
func (n *Node) ScanFiles(b storage.Backend, dir string, visit ScanFunc) error {
	if dir == "" {
		return n.fail(ErrBadParameter)
	}
	if visit != nil && !visit(dir) {
		return n.fail(fmt.Errorf("scan of %s: %w", dir, ErrAborted))
	}

	infos, err := b.ReadDir(dir)
	if err != nil {
		return n.fail(fmt.Errorf("%s: %w", dir, err))
	}

	for _, info := range infos {
		name := info.Name()
		if name == "." || name == ".." {
			continue
		}
		path := JoinPath(dir, name)
		e := newEntry(info, b.Meta(path, info))

		if !info.IsDir() {
			n.Files = append(n.Files, e)
			continue
		}

		child := &Node{Entry: e}
		n.Dirs = append(n.Dirs, child)
		if err := child.ScanFiles(b, path, visit); err != nil {
			n.Err = child.Err
			return err
		}
	}
	return nil
}

// PruneFiles removes every entry for which keep returns false.
// Files are filtered first, then subdirectories, then the surviving
// subdirectories are pruned recursively. Dropping a directory drops its subtree.
func (n *Node) PruneFiles(path string, keep KeepFunc) error {
	if path == "" {
		return n.fail(ErrBadParameter)
	}

	files := n.Files[:0]
	for i := range n.Files {
		if keep(JoinPath(path, n.Files[i].Name), &n.Files[i], false) {
			files = append(files, n.Files[i])
		}
	}
	clear(n.Files[len(files):])
	n.Files = files

	dirs := n.Dirs[:0]
	for _, d := range n.Dirs {
		if keep(JoinPath(path, d.Entry.Name), &d.Entry, true) {
			dirs = append(dirs, d)
		}
	}
	clear(n.Dirs[len(dirs):])
	n.Dirs = dirs

	for _, d := range n.Dirs {
		if err := d.PruneFiles(JoinPath(path, d.Entry.Name), keep); err != nil {
			n.Err = d.Err
			return err
		}
	}
	return nil
}

// EnumFiles visits files first, then each subdirectory followed by its contents
func (n *Node) EnumFiles(path string, visit VisitFunc) error {
	if path == "" {
		return n.fail(ErrBadParameter)
	}

	for i := range n.Files {
		f := &n.Files[i]
		if !visit(JoinPath(path, f.Name), f, false) {
			return ErrAborted
		}
	}

	for _, d := range n.Dirs {
		p := JoinPath(path, d.Entry.Name)
		if !visit(p, &d.Entry, true) {
			return ErrAborted
		}
		if err := d.EnumFiles(p, visit); err != nil {
			return err
		}
	}
	return nil
}

// EnumFilesReverse visits files first, then each subdirectory's contents
// before the subdirectory itself, so every descendant comes before its ancestor.
func (n *Node) EnumFilesReverse(path string, visit VisitFunc) error {
	if path == "" {
		return n.fail(ErrBadParameter)
	}

	for i := range n.Files {
		f := &n.Files[i]
		if !visit(JoinPath(path, f.Name), f, false) {
			return ErrAborted
		}
	}

	for _, d := range n.Dirs {
		p := JoinPath(path, d.Entry.Name)
		if err := d.EnumFilesReverse(p, visit); err != nil {
			return err
		}
		if !visit(p, &d.Entry, true) {
			return ErrAborted
		}
	}
	return nil
}

// FileExists looks up a path relative to this node, ignoring case.
// A name with the same case wins over one that only matches when folded, so
// entries that differ by case alone on a case-sensitive filesystem stay distinct.
// The returned entry aliases the tree and is nil when nothing matches.
func (n *Node) FileExists(rel string) *Entry {
	if rel == "" {
		return nil
	}

	i := strings.IndexAny(rel, separators)
	if i < 0 {
		for _, exact := range []bool{true, false} {
			if e := n.lookup(rel, exact); e != nil {
				return e
			}
		}
		return nil
	}

	head, rest := rel[:i], rel[i+1:]
	for _, exact := range []bool{true, false} {
		for _, d := range n.Dirs {
			if !nameMatches(d.Entry.Name, head, exact) {
				continue
			}
			if rest == "" {
				return &d.Entry
			}
			if e := d.FileExists(rest); e != nil {
				return e
			}
		}
	}
	return nil
}

// lookup finds a file or directory of this node by name
func (n *Node) lookup(name string, exact bool) *Entry {
	for j := range n.Files {
		if nameMatches(n.Files[j].Name, name, exact) {
			return &n.Files[j]
		}
	}
	for _, d := range n.Dirs {
		if nameMatches(d.Entry.Name, name, exact) {
			return &d.Entry
		}
	}
	return nil
}

func nameMatches(name, want string, exact bool) bool {
	if exact {
		return name == want
	}
	return SameName(name, want)
}

// Len returns the number of files and directories below this node
func (n *Node) Len() (files, dirs int) {
	files = len(n.Files)
	dirs = len(n.Dirs)
	for _, d := range n.Dirs {
		f, s := d.Len()
		files += f
		dirs += s
	}
	return files, dirs
}

// Empty reports whether the node holds no files and no directories
func (n *Node) Empty() bool {
	return len(n.Files) == 0 && len(n.Dirs) == 0
}

func (n *Node) fail(err error) error {
	n.Err = err.Error()
	return err
}

// separators are the characters that split a relative path into segments
const separators = string(filepath.Separator) + "/"

// JoinPath appends name to dir, adding a separator only when dir lacks one
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if strings.ContainsRune(separators, rune(dir[len(dir)-1])) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}
