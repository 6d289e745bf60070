package mirror

import (
	"github.com/sdejongh/treemirror/pkg/logging"
	"github.com/sdejongh/treemirror/pkg/models"
	"github.com/sdejongh/treemirror/pkg/output"
	"github.com/sdejongh/treemirror/pkg/tree"
)

// removeSources deletes the source directories left empty by a move,
// children before parents, and finally the source root.
// Files were already removed by the copy pass.
func (e *Engine) removeSources(src *tree.Node) {
	root := e.operation.Source
	totals := &e.report.Totals

	src.EnumFilesReverse(root, func(path string, entry *tree.Entry, isDir bool) bool {
		if !isDir {
			return true
		}
		if e.ctx.Err() != nil {
			return false
		}
		if err := e.backend.Remove(path); err != nil {
			e.recordWarning(e.display(path), models.ActionMove, "couldn't delete source directory", err)
			return true
		}
		totals.SourceDirsDeleted++
		e.logger.Info(e.ctx, "Deleted source directory", logging.Fields{"path": path})
		e.emit(output.ProgressUpdate{Type: output.UpdateDelete, FilePath: e.display(path), SourcePath: path, IsDir: true})
		return true
	})

	if e.ctx.Err() != nil {
		return
	}
	if err := e.backend.Remove(root); err != nil {
		e.recordWarning(root, models.ActionMove, "couldn't delete source directory", err)
		return
	}
	totals.SourceDirsDeleted++
	e.logger.Info(e.ctx, "Deleted source directory", logging.Fields{"path": root})
	e.emit(output.ProgressUpdate{Type: output.UpdateDelete, FilePath: root, SourcePath: root, IsDir: true})
}

// cleanDestination deletes every destination entry without a source
// counterpart. The walk is bottom-up so directories are empty when reached.
// The destination root is never visited.
func (e *Engine) cleanDestination(dst *tree.Node) {
	root := e.operation.Dest
	totals := &e.report.Totals

	dst.EnumFilesReverse(root, func(path string, entry *tree.Entry, isDir bool) bool {
		if e.ctx.Err() != nil {
			return false
		}
		if entry.HasTag(tree.TagExistsInSource) {
			return true
		}

		display := path
		if !e.operation.ShowPath {
			if rel, err := RelPath(root, path); err == nil {
				display = rel
			}
		}

		if e.operation.NoCopy {
			e.emit(output.ProgressUpdate{
				Type:     output.UpdateDelete,
				FilePath: display,
				DestPath: path,
				IsDir:    isDir,
				Message:  "would delete",
			})
			return true
		}

		if isDir {
			if err := e.backend.Remove(path); err != nil {
				e.recordWarning(display, models.ActionClean, "couldn't delete directory", err)
				return true
			}
			totals.DestDirsDeleted++
		} else {
			if err := e.removeFile(path); err != nil {
				e.recordWarning(display, models.ActionClean, "couldn't delete file", err)
				return true
			}
			totals.DestFilesDeleted++
			totals.DestBytesDeleted += entry.Size
		}

		e.logger.Info(e.ctx, "Deleted destination entry", logging.Fields{"path": path, "dir": isDir})
		e.emit(output.ProgressUpdate{
			Type:       output.UpdateDelete,
			FilePath:   display,
			DestPath:   path,
			IsDir:      isDir,
			TotalBytes: int64(entry.Size),
		})
		return true
	})
}

// removeFile unlinks path, clearing protection attributes and retrying once
// when the first attempt fails
func (e *Engine) removeFile(path string) error {
	err := e.backend.Remove(path)
	if err == nil {
		return nil
	}
	if clearErr := e.backend.ClearProtection(path); clearErr != nil {
		e.recordWarning(path, models.ActionAttributes, "failed clearing attributes before delete", clearErr)
		return err
	}
	return e.backend.Remove(path)
}
