package mirror

import (
	"github.com/sdejongh/treemirror/pkg/tree"
)

// TagDestination marks every destination entry that has a counterpart in
// the source tree. It must run before the source tree is pruned so that
// filtered-out files still protect their destination copies from cleaning.
func TagDestination(src *tree.Node, srcRoot string, dst *tree.Node) error {
	var tagErr error
	err := src.EnumFiles(srcRoot, func(path string, e *tree.Entry, isDir bool) bool {
		rel, err := RelPath(srcRoot, path)
		if err != nil {
			tagErr = err
			return false
		}
		if d := dst.FileExists(rel); d != nil {
			d.SetTag(tree.TagExistsInSource)
		}
		return true
	})
	if tagErr != nil {
		return tagErr
	}
	return err
}
