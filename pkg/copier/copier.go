package copier

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/afero"
)

// ChunkSize is the size of each read/write during Copy and Compare
const ChunkSize = 64 * 1024

// Status is the outcome of a Copy
type Status int

const (
	StatusSuccess Status = iota
	StatusOpenReadFailed
	StatusOpenWriteFailed
	StatusWriteFailed
	StatusReadFailed
	StatusAborted
)

// String returns a short description of the status
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusOpenReadFailed:
		return "could not open source for reading"
	case StatusOpenWriteFailed:
		return "could not open destination for writing"
	case StatusWriteFailed:
		return "write failed"
	case StatusReadFailed:
		return "read failed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Error is returned by Copy for every status other than success
type Error struct {
	Status Status
	Path   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf extracts the copy status from err
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Status
	}
	return StatusWriteFailed
}

// ProgressFunc is called before the first chunk, after every chunk and
// once at the end. Returning false aborts the operation.
type ProgressFunc func(src, dst string, done, total int64) bool

// Engine copies and compares files in fixed-size chunks.
// An Engine is not safe for concurrent use.
type Engine struct {
	fs          afero.Fs
	lowPriority bool
	bufA        []byte
	bufB        []byte
}

// Option configures an Engine
type Option func(*Engine)

// WithLowPriority makes the engine yield the processor after every chunk
func WithLowPriority(enabled bool) Option {
	return func(e *Engine) {
		e.lowPriority = enabled
	}
}

// New creates a copy engine over fsys
func New(fsys afero.Fs, opts ...Option) *Engine {
	e := &Engine{fs: fsys}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) buffers() ([]byte, []byte) {
	if e.bufA == nil {
		e.bufA = make([]byte, ChunkSize)
		e.bufB = make([]byte, ChunkSize)
	}
	return e.bufA, e.bufB
}

func (e *Engine) yield() {
	if e.lowPriority {
		runtime.Gosched()
	}
}

// Copy copies src to dst, truncating or creating dst, and returns the number
// of bytes copied. On any failure after dst was opened, dst is removed.
func (e *Engine) Copy(src, dst string, progress ProgressFunc) (int64, error) {
	in, err := e.fs.Open(src)
	if err != nil {
		return 0, &Error{Status: StatusOpenReadFailed, Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, &Error{Status: StatusOpenReadFailed, Path: src, Err: err}
	}
	size := info.Size()

	out, err := e.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return 0, &Error{Status: StatusOpenWriteFailed, Path: dst, Err: err}
	}

	fail := func(status Status, path string, cause error) (int64, error) {
		out.Close()
		e.fs.Remove(dst)
		return 0, &Error{Status: status, Path: path, Err: cause}
	}

	report := func(done int64) bool {
		return progress == nil || progress(src, dst, done, size)
	}

	if !report(0) {
		return fail(StatusAborted, src, nil)
	}

	buf, _ := e.buffers()
	var total int64
	var readErr error
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			w, werr := out.Write(buf[:n])
			if werr == nil && w != n {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return fail(StatusWriteFailed, dst, werr)
			}
			total += int64(n)
			if !report(total) {
				return fail(StatusAborted, src, nil)
			}
			e.yield()
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			readErr = rerr
			break
		}
	}

	if !report(total) {
		return fail(StatusAborted, src, nil)
	}

	if err := out.Close(); err != nil {
		e.fs.Remove(dst)
		return 0, &Error{Status: StatusWriteFailed, Path: dst, Err: err}
	}

	if total != size {
		e.fs.Remove(dst)
		if readErr == nil {
			readErr = fmt.Errorf("copied %d of %d bytes", total, size)
		}
		return 0, &Error{Status: StatusReadFailed, Path: src, Err: readErr}
	}

	return total, nil
}

// Compare reports whether a and b have identical contents.
// Open failures and aborts count as not equal.
func (e *Engine) Compare(a, b string, progress ProgressFunc) bool {
	fa, err := e.fs.Open(a)
	if err != nil {
		return false
	}
	defer fa.Close()

	fb, err := e.fs.Open(b)
	if err != nil {
		return false
	}
	defer fb.Close()

	infoA, err := fa.Stat()
	if err != nil {
		return false
	}
	infoB, err := fb.Stat()
	if err != nil {
		return false
	}
	size := infoA.Size()
	if infoB.Size() != size {
		return false
	}

	report := func(done int64) bool {
		return progress == nil || progress(a, b, done, size)
	}
	if !report(0) {
		return false
	}

	bufA, bufB := e.buffers()
	var total int64
	for {
		na, errA := io.ReadFull(fa, bufA)
		if na > 0 {
			nb, _ := io.ReadFull(fb, bufB[:na])
			if nb != na || !bytes.Equal(bufA[:na], bufB[:nb]) {
				return false
			}
			total += int64(na)
			if !report(total) {
				return false
			}
			e.yield()
		}
		if errA == io.EOF || errA == io.ErrUnexpectedEOF {
			break
		}
		if errA != nil {
			return false
		}
	}

	// b must end where a ended
	if n, _ := fb.Read(bufB[:1]); n != 0 {
		return false
	}

	if !report(total) {
		return false
	}
	return total == size
}
