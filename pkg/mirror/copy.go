package mirror

import (
	"fmt"

	"github.com/sdejongh/treemirror/pkg/copier"
	"github.com/sdejongh/treemirror/pkg/logging"
	"github.com/sdejongh/treemirror/pkg/models"
	"github.com/sdejongh/treemirror/pkg/output"
	"github.com/sdejongh/treemirror/pkg/tree"
)

// copyTree walks the selected source tree in forward order, so every
// directory is handled before its contents. It returns false when the
// walk stopped early.
func (e *Engine) copyTree(src, dst *tree.Node) bool {
	op := e.operation
	err := src.EnumFiles(op.Source, func(path string, entry *tree.Entry, isDir bool) bool {
		if e.ctx.Err() != nil {
			return false
		}
		rel, err := RelPath(op.Source, path)
		if err != nil {
			e.recordError(path, models.ActionCopy, err)
			return e.proceed(err)
		}
		target := tree.JoinPath(op.Dest, rel)
		existing := dst.FileExists(rel)

		if isDir {
			return e.copyDir(path, target, entry, existing)
		}
		return e.copyFile(path, target, entry, existing)
	})
	return err == nil
}

func (e *Engine) copyDir(path, target string, entry, existing *tree.Entry) bool {
	display := e.display(path)

	if existing != nil {
		if !existing.IsDir() {
			err := fmt.Errorf("%w: %s is a file in the destination", ErrTypeConflict, target)
			e.recordError(display, models.ActionMkdir, err)
			return e.proceed(err)
		}
		e.report.Totals.DirsAlreadyExist++
		return true
	}

	if e.operation.NoCopy {
		e.emit(output.ProgressUpdate{
			Type:       output.UpdateWouldMkdir,
			FilePath:   display,
			SourcePath: path,
			DestPath:   target,
			IsDir:      true,
		})
		return true
	}

	if err := e.backend.MkdirAll(target); err != nil {
		err = fmt.Errorf("failed creating directory %s: %w", target, err)
		e.recordError(display, models.ActionMkdir, err)
		return e.proceed(err)
	}
	e.report.Totals.DirsCreated++
	e.report.Totals.DirsCopied++
	e.logger.Info(e.ctx, "Created directory", logging.Fields{"path": target})
	e.emit(output.ProgressUpdate{
		Type:       output.UpdateMkdir,
		FilePath:   display,
		SourcePath: path,
		DestPath:   target,
		IsDir:      true,
	})

	if err := e.backend.SetAttributes(target, entry.Meta()); err != nil {
		e.recordWarning(display, models.ActionAttributes, "failed setting directory attributes", err)
	}
	return true
}

func (e *Engine) copyFile(path, target string, entry, existing *tree.Entry) bool {
	op := e.operation
	totals := &e.report.Totals
	display := e.display(path)

	if existing != nil {
		if existing.IsDir() {
			err := fmt.Errorf("%w: %s is a directory in the destination", ErrTypeConflict, target)
			e.recordError(display, models.ActionCopy, err)
			return e.proceed(err)
		}

		if op.Update && existing.Size == entry.Size &&
			CompareTimes(entry.Modified, existing.Modified, op.ExactTimestamps, op.TimestampSkew) == 0 {
			totals.FilesAlreadyExist++
			totals.BytesAlreadyExist += entry.Size
			e.logger.Debug(e.ctx, "Destination is up to date", logging.Fields{"path": target})
			e.emit(output.ProgressUpdate{
				Type:       output.UpdateSkip,
				FilePath:   display,
				SourcePath: path,
				DestPath:   target,
				TotalBytes: int64(entry.Size),
			})
			return true
		}

		if existing.Attrs.Any(models.Protected) {
			if !op.Overwrite {
				e.recordWarning(display, models.ActionCopy,
					"destination already exists and is read-only, hidden or system; left untouched", nil)
				return true
			}
			if !op.NoCopy {
				if err := e.backend.ClearProtection(target); err != nil {
					e.recordWarning(display, models.ActionAttributes,
						"failed changing existing read-only, hidden or system file to writable", err)
				}
			}
		}
	}

	if op.NoCopy {
		e.emit(output.ProgressUpdate{
			Type:       output.UpdateWouldCopy,
			FilePath:   display,
			SourcePath: path,
			DestPath:   target,
			TotalBytes: int64(entry.Size),
		})
		return true
	}

	e.emit(output.ProgressUpdate{
		Type:       output.UpdateFileStart,
		FilePath:   display,
		SourcePath: path,
		DestPath:   target,
		TotalBytes: int64(entry.Size),
	})

	n, err := e.copier.Copy(path, target, e.progress(display))
	if err != nil {
		if copier.StatusOf(err) == copier.StatusAborted && e.ctx.Err() != nil {
			return false
		}
		e.recordError(display, models.ActionCopy, err)
		return e.proceed(err)
	}

	totals.FilesCopied++
	totals.BytesCopied += uint64(n)
	e.logger.Info(e.ctx, "Copied file", logging.Fields{
		"source": path,
		"dest":   target,
		"bytes":  n,
	})
	e.emit(output.ProgressUpdate{
		Type:         output.UpdateFileComplete,
		FilePath:     display,
		SourcePath:   path,
		DestPath:     target,
		BytesWritten: n,
		TotalBytes:   int64(entry.Size),
	})

	meta := entry.Meta()
	if err := e.backend.SetTimes(target, meta); err != nil {
		err = fmt.Errorf("failed setting timestamps on %s: %w", target, err)
		e.recordError(display, models.ActionAttributes, err)
		if !e.proceed(err) {
			return false
		}
	}
	if err := e.backend.SetAttributes(target, meta); err != nil {
		e.recordWarning(display, models.ActionAttributes, "failed setting file attributes", err)
	}

	if op.Verify {
		e.emit(output.ProgressUpdate{
			Type:       output.UpdateVerifyStart,
			FilePath:   display,
			SourcePath: path,
			DestPath:   target,
			TotalBytes: int64(entry.Size),
		})
		if !e.copier.Compare(path, target, e.progress(display)) {
			if e.ctx.Err() != nil {
				return false
			}
			err := fmt.Errorf("%w: %s", ErrVerifyMismatch, target)
			e.recordError(display, models.ActionVerify, err)
			return e.proceed(err)
		}
	}

	if op.Move {
		if err := e.backend.Remove(path); err != nil {
			e.recordWarning(display, models.ActionMove, "couldn't delete original file", err)
		} else {
			totals.SourceFilesDeleted++
			totals.SourceBytesDeleted += entry.Size
			e.logger.Info(e.ctx, "Deleted source file", logging.Fields{"path": path})
			e.emit(output.ProgressUpdate{
				Type:       output.UpdateDelete,
				FilePath:   display,
				SourcePath: path,
				TotalBytes: int64(entry.Size),
			})
		}
	}
	return true
}

// progress forwards copy and compare progress to the formatter and aborts on cancellation
func (e *Engine) progress(display string) copier.ProgressFunc {
	return func(src, dst string, done, total int64) bool {
		if e.ctx.Err() != nil {
			return false
		}
		e.emit(output.ProgressUpdate{
			Type:         output.UpdateFileProgress,
			FilePath:     display,
			SourcePath:   src,
			DestPath:     dst,
			BytesWritten: done,
			TotalBytes:   total,
		})
		return true
	}
}
