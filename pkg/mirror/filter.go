package mirror

import (
	"github.com/sdejongh/treemirror/pkg/match"
	"github.com/sdejongh/treemirror/pkg/models"
	"github.com/sdejongh/treemirror/pkg/tree"
)

// Filter decides which source entries take part in a run.
// Checks run in a fixed order and the first failing one rejects the entry:
// includes, excludes, wildcards, date bounds, hidden/system.
type Filter struct {
	Includes  []string
	Excludes  []string
	Wildcards []string
	NewerThan *models.Date
	OlderThan *models.Date
	Hidden    bool
}

// NewFilter builds the filter described by op
func NewFilter(op *models.MirrorOperation) *Filter {
	return &Filter{
		Includes:  op.Includes,
		Excludes:  op.Excludes,
		Wildcards: op.Wildcards,
		NewerThan: op.NewerThan,
		OlderThan: op.OlderThan,
		Hidden:    op.Hidden,
	}
}

// Keep is a tree.KeepFunc. Directories and files are judged alike.
func (f *Filter) Keep(path string, e *tree.Entry, isDir bool) bool {
	if len(f.Includes) > 0 && !anySubstring(path, f.Includes) {
		return false
	}

	if len(f.Excludes) > 0 && anySubstring(path, f.Excludes) {
		return false
	}

	if len(f.Wildcards) > 0 {
		matched := false
		for _, w := range f.Wildcards {
			if match.WildcardMatch(w, path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.OlderThan != nil && f.OlderThan.Compare(e.Modified) > 0 {
		return false
	}
	if f.NewerThan != nil && f.NewerThan.Compare(e.Modified) < 0 {
		return false
	}

	if !f.Hidden && e.Attrs.Any(models.AttrHidden|models.AttrSystem) {
		return false
	}

	return true
}

func anySubstring(path string, needles []string) bool {
	for _, n := range needles {
		if match.SubstringMatch(path, n) {
			return true
		}
	}
	return false
}
