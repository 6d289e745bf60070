package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sdejongh/treemirror/pkg/copier"
	"github.com/sdejongh/treemirror/pkg/logging"
	"github.com/sdejongh/treemirror/pkg/models"
	"github.com/sdejongh/treemirror/pkg/output"
	"github.com/sdejongh/treemirror/pkg/storage"
	"github.com/sdejongh/treemirror/pkg/tree"
)

var (
	// ErrNothingToCopy is returned when the source directory holds no entries
	ErrNothingToCopy = errors.New("Nothing in source directory to copy")
	// ErrTypeConflict is recorded when source and destination disagree on file versus directory
	ErrTypeConflict = errors.New("source and destination types differ")
	// ErrVerifyMismatch is recorded when a copy does not compare equal to its source
	ErrVerifyMismatch = errors.New("verification failed: destination differs from source")
)

// ConfirmFunc blocks until the user allows the run to go on
type ConfirmFunc func(ctx context.Context) error

// Engine orchestrates a mirror run
type Engine struct {
	backend   storage.Backend
	formatter output.Formatter
	logger    logging.Logger
	operation *models.MirrorOperation
	copier    *copier.Engine
	out       io.Writer
	confirm   ConfirmFunc

	ctx     context.Context
	report  *models.Report
	started bool
	stopErr error
}

// Option configures an Engine
type Option func(*Engine)

// WithOutput sets the writer handed to the formatter
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.out = w
	}
}

// WithConfirm sets the prompt used when the operation asks to wait
func WithConfirm(fn ConfirmFunc) Option {
	return func(e *Engine) {
		e.confirm = fn
	}
}

// NewEngine creates a new mirror engine
func NewEngine(
	backend storage.Backend,
	formatter output.Formatter,
	logger logging.Logger,
	operation *models.MirrorOperation,
	opts ...Option,
) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	e := &Engine{
		backend:   backend,
		formatter: formatter,
		logger:    logger.WithFields(logging.Fields{"operation_id": operation.ID}),
		operation: operation,
		copier:    copier.New(backend.Fs(), copier.WithLowPriority(operation.LowPriority)),
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the mirror operation and returns its report.
// The report is always returned, even when err is not nil.
func (e *Engine) Run(ctx context.Context) (*models.Report, error) {
	e.ctx = ctx
	startTime := time.Now()
	e.operation.StartedAt = startTime
	e.report = &models.Report{
		OperationID: e.operation.ID,
		SourcePath:  e.operation.Source,
		DestPath:    e.operation.Dest,
		NoCopy:      e.operation.NoCopy,
		StartTime:   startTime,
		Status:      models.StatusSuccess,
	}

	e.logger.Info(ctx, "Starting mirror operation", logging.Fields{
		"source":  e.operation.Source,
		"dest":    e.operation.Dest,
		"no_copy": e.operation.NoCopy,
		"move":    e.operation.Move,
		"clean":   e.operation.Clean,
	})

	err := e.run()
	return e.finish(err)
}

func (e *Engine) run() error {
	op := e.operation

	// Phase 1: scan both sides
	src, err := e.scan(op.Source)
	if err != nil {
		return fmt.Errorf("scanning source: %w", err)
	}
	if src.Empty() {
		return ErrNothingToCopy
	}

	dst := &tree.Node{}
	exists, err := e.backend.DirExists(op.Dest)
	if err != nil {
		return fmt.Errorf("checking destination: %w", err)
	}
	if exists {
		if dst, err = e.scan(op.Dest); err != nil {
			return fmt.Errorf("scanning destination: %w", err)
		}
	}

	// Phase 2: plan
	if err := TagDestination(src, op.Source, dst); err != nil {
		return fmt.Errorf("tagging destination: %w", err)
	}
	if err := src.PruneFiles(op.Source, NewFilter(op).Keep); err != nil {
		return fmt.Errorf("filtering source: %w", err)
	}

	if op.Debug {
		e.dump("source", op.Source, src)
		e.dump("destination", op.Dest, dst)
	}

	e.report.ScanDuration = time.Since(e.report.StartTime)
	e.report.Selection = countSelection(src, op.Source)

	if e.formatter != nil {
		if err := e.formatter.Start(e.out, op, e.report.Selection); err != nil {
			return fmt.Errorf("starting output: %w", err)
		}
	}
	e.started = true

	if op.Wait && e.confirm != nil {
		if err := e.confirm(e.ctx); err != nil {
			return err
		}
	}

	if op.List {
		return e.list(src)
	}

	// Phase 3: mutate
	if err := e.ensureDestRoot(); err != nil {
		return err
	}

	completed := e.copyTree(src, dst)
	if e.stopErr != nil {
		return e.stopErr
	}
	if err := e.ctx.Err(); err != nil {
		return err
	}
	if !completed {
		return nil
	}

	if op.Move {
		e.removeSources(src)
	}
	if op.Clean {
		e.cleanDestination(dst)
	}
	return e.ctx.Err()
}

// scan builds the tree for root, reporting each directory as it is listed
func (e *Engine) scan(root string) (*tree.Node, error) {
	return tree.Scan(e.backend, root, func(dir string) bool {
		if e.ctx.Err() != nil {
			return false
		}
		e.logger.Debug(e.ctx, "Scanning directory", logging.Fields{"path": dir})
		e.emit(output.ProgressUpdate{Type: output.UpdateScan, FilePath: dir, IsDir: true})
		return true
	})
}

// ensureDestRoot creates the destination directory when it is missing
func (e *Engine) ensureDestRoot() error {
	dest := e.operation.Dest
	exists, err := e.backend.DirExists(dest)
	if err != nil {
		return fmt.Errorf("checking destination: %w", err)
	}
	if exists {
		e.report.Totals.DirsAlreadyExist++
		return nil
	}

	if e.operation.NoCopy {
		e.emit(output.ProgressUpdate{Type: output.UpdateWouldMkdir, FilePath: dest, DestPath: dest, IsDir: true})
		return nil
	}

	if err := e.backend.MkdirAll(dest); err != nil {
		return fmt.Errorf("failed creating destination directory %s: %w", dest, err)
	}
	e.report.Totals.DirsCreated++
	e.logger.Info(e.ctx, "Created destination directory", logging.Fields{"path": dest})
	e.emit(output.ProgressUpdate{Type: output.UpdateMkdir, FilePath: dest, DestPath: dest, IsDir: true})
	return nil
}

// list reports every selected entry without touching the destination
func (e *Engine) list(src *tree.Node) error {
	err := src.EnumFiles(e.operation.Source, func(path string, entry *tree.Entry, isDir bool) bool {
		if e.ctx.Err() != nil {
			return false
		}
		e.emit(output.ProgressUpdate{
			Type:       output.UpdateList,
			FilePath:   e.display(path),
			SourcePath: path,
			IsDir:      isDir,
			TotalBytes: int64(entry.Size),
			Message:    entry.Modified.Format(time.DateTime),
		})
		return true
	})
	if ctxErr := e.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// dump writes every entry of a scanned tree to the log
func (e *Engine) dump(name, root string, n *tree.Node) {
	n.EnumFiles(root, func(path string, entry *tree.Entry, isDir bool) bool {
		e.logger.Debug(e.ctx, "Tree entry", logging.Fields{
			"tree":     name,
			"path":     path,
			"dir":      isDir,
			"size":     entry.Size,
			"attrs":    entry.Attrs.String(),
			"modified": entry.Modified,
			"tags":     uint32(entry.Tags),
		})
		return true
	})
}

// finish computes the final status and hands the report to the formatter
func (e *Engine) finish(err error) (*models.Report, error) {
	r := e.report
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	e.operation.CompletedAt = r.EndTime

	switch {
	case e.ctx.Err() != nil:
		r.Status = models.StatusCancelled
		err = e.ctx.Err()
	case err != nil:
		r.Status = models.StatusFailed
	case r.Totals.NumErrors > 0:
		r.Status = models.StatusPartial
	default:
		r.Status = models.StatusSuccess
	}

	if err != nil {
		e.logger.Error(e.ctx, "Mirror operation ended with an error", err, logging.Fields{
			"status": string(r.Status),
		})
		if e.formatter != nil {
			e.formatter.Error(err)
		}
	}

	if e.formatter != nil && e.started {
		e.formatter.Complete(r)
	}

	e.logger.Info(e.ctx, "Mirror operation completed", logging.Fields{
		"status":        string(r.Status),
		"files_copied":  r.Totals.FilesCopied,
		"bytes_copied":  r.Totals.BytesCopied,
		"files_skipped": r.Totals.FilesAlreadyExist,
		"errors":        r.Totals.NumErrors,
		"warnings":      r.Totals.NumWarnings,
		"duration_ms":   r.Duration.Milliseconds(),
	})

	return r, err
}

// countSelection totals the filtered source tree, counting its root as a directory
func countSelection(src *tree.Node, root string) models.Selection {
	sel := models.Selection{Dirs: 1}
	src.EnumFiles(root, func(path string, e *tree.Entry, isDir bool) bool {
		if isDir {
			sel.Dirs++
		} else {
			sel.Files++
			sel.Bytes += e.Size
		}
		return true
	})
	return sel
}

func (e *Engine) emit(u output.ProgressUpdate) {
	if e.formatter != nil {
		e.formatter.Progress(u)
	}
}

// display returns the path shown to the user for a source path
func (e *Engine) display(path string) string {
	if e.operation.ShowPath {
		return path
	}
	if rel, err := RelPath(e.operation.Source, path); err == nil {
		return rel
	}
	return path
}

// recordError counts an entry failure and reports it
func (e *Engine) recordError(path string, action models.Action, err error) {
	e.report.Totals.NumErrors++
	e.report.Errors = append(e.report.Errors, models.MirrorError{
		FilePath:  path,
		Operation: action,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
	e.logger.Error(e.ctx, "Mirror error", err, logging.Fields{
		"path":   path,
		"action": string(action),
	})
	e.emit(output.ProgressUpdate{Type: output.UpdateError, FilePath: path, Error: err})
}

// recordWarning counts a non-fatal problem and reports it
func (e *Engine) recordWarning(path string, action models.Action, msg string, err error) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	e.report.Totals.NumWarnings++
	e.report.Warnings = append(e.report.Warnings, models.MirrorError{
		FilePath:  path,
		Operation: action,
		Error:     msg,
		Timestamp: time.Now(),
	})
	e.logger.Warn(e.ctx, msg, logging.Fields{
		"path":   path,
		"action": string(action),
	})
	e.emit(output.ProgressUpdate{Type: output.UpdateWarning, FilePath: path, Message: msg})
}

// proceed decides whether the copy pass goes on after err was recorded
func (e *Engine) proceed(err error) bool {
	if e.operation.ContinueAfterError {
		return true
	}
	if e.stopErr == nil {
		e.stopErr = err
	}
	return false
}
