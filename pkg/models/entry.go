package models

import (
	"strings"
)

// Attributes is the portable set of file attribute bits tracked per entry
type Attributes uint32

const (
	// AttrReadOnly marks a file that cannot be written
	AttrReadOnly Attributes = 1 << iota
	// AttrHidden marks a file hidden from normal listings
	AttrHidden
	// AttrSystem marks an operating system file
	AttrSystem
	// AttrDirectory marks a directory
	AttrDirectory
)

// Protected are the attributes that block an in-place overwrite
const Protected = AttrReadOnly | AttrHidden | AttrSystem

// Has reports whether every bit in mask is set
func (a Attributes) Has(mask Attributes) bool {
	return a&mask == mask
}

// Any reports whether at least one bit in mask is set
func (a Attributes) Any(mask Attributes) bool {
	return a&mask != 0
}

// String renders the attributes in a compact "RHSD" form
func (a Attributes) String() string {
	var b strings.Builder
	flags := []struct {
		bit  Attributes
		char byte
	}{
		{AttrReadOnly, 'R'},
		{AttrHidden, 'H'},
		{AttrSystem, 'S'},
		{AttrDirectory, 'D'},
	}
	for _, f := range flags {
		if a&f.bit != 0 {
			b.WriteByte(f.char)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Action represents what was done to an entry
type Action string

const (
	// ActionCopy copies a file from source to destination
	ActionCopy Action = "copy"
	// ActionMkdir creates a destination directory
	ActionMkdir Action = "mkdir"
	// ActionSkip leaves an up-to-date destination file alone
	ActionSkip Action = "skip"
	// ActionVerify byte-compares a copied file
	ActionVerify Action = "verify"
	// ActionMove deletes a source entry after it was copied
	ActionMove Action = "move"
	// ActionClean deletes a destination entry with no source counterpart
	ActionClean Action = "clean"
	// ActionAttributes changes attributes or timestamps
	ActionAttributes Action = "attributes"
	// ActionScan lists a directory
	ActionScan Action = "scan"
)
