package copier

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 31)
	}
	return data
}

func writeFile(t *testing.T, fsys afero.Fs, name string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, name, data, 0o644))
}

func TestCopy(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		data := payload(3*ChunkSize + 123)
		writeFile(t, fsys, "/a.bin", data)

		e := New(fsys)
		n, err := e.Copy("/a.bin", "/b.bin", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), n)

		got, err := afero.ReadFile(fsys, "/b.bin")
		require.NoError(t, err)
		assert.True(t, bytes.Equal(data, got))
	})

	t.Run("EmptyFile", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/empty", nil)

		n, err := New(fsys).Copy("/empty", "/copy", nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		ok, _ := afero.Exists(fsys, "/copy")
		assert.True(t, ok)
	})

	t.Run("TruncatesExisting", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/src", []byte("short"))
		writeFile(t, fsys, "/dst", payload(1000))

		_, err := New(fsys).Copy("/src", "/dst", nil)
		require.NoError(t, err)
		got, _ := afero.ReadFile(fsys, "/dst")
		assert.Equal(t, "short", string(got))
	})

	t.Run("ProgressContract", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		size := 2*ChunkSize + 10
		writeFile(t, fsys, "/a", payload(size))

		var calls []int64
		_, err := New(fsys, WithLowPriority(true)).Copy("/a", "/b", func(src, dst string, done, total int64) bool {
			assert.Equal(t, "/a", src)
			assert.Equal(t, "/b", dst)
			assert.Equal(t, int64(size), total)
			calls = append(calls, done)
			return true
		})
		require.NoError(t, err)

		require.GreaterOrEqual(t, len(calls), 5)
		assert.Equal(t, int64(0), calls[0])
		assert.Equal(t, int64(size), calls[len(calls)-1])
		for i := 1; i < len(calls); i++ {
			assert.GreaterOrEqual(t, calls[i], calls[i-1])
		}
	})

	t.Run("AbortRemovesDestination", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/big", payload(4*ChunkSize))

		calls := 0
		_, err := New(fsys).Copy("/big", "/partial", func(_, _ string, done, total int64) bool {
			calls++
			return calls < 3
		})
		require.Error(t, err)
		assert.Equal(t, StatusAborted, StatusOf(err))

		ok, _ := afero.Exists(fsys, "/partial")
		assert.False(t, ok, "aborted copy must not leave a destination file")
	})

	t.Run("AbortBeforeFirstChunk", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/a", payload(10))

		_, err := New(fsys).Copy("/a", "/b", func(string, string, int64, int64) bool { return false })
		assert.Equal(t, StatusAborted, StatusOf(err))
		ok, _ := afero.Exists(fsys, "/b")
		assert.False(t, ok)
	})

	t.Run("OpenReadFailed", func(t *testing.T) {
		_, err := New(afero.NewMemMapFs()).Copy("/missing", "/b", nil)
		assert.Equal(t, StatusOpenReadFailed, StatusOf(err))

		var ce *Error
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "/missing", ce.Path)
	})

	t.Run("OpenWriteFailed", func(t *testing.T) {
		mem := afero.NewMemMapFs()
		writeFile(t, mem, "/a", payload(10))

		_, err := New(afero.NewReadOnlyFs(mem)).Copy("/a", "/b", nil)
		assert.Equal(t, StatusOpenWriteFailed, StatusOf(err))
	})

	t.Run("WriteFailed", func(t *testing.T) {
		mem := afero.NewMemMapFs()
		writeFile(t, mem, "/a", payload(2*ChunkSize))

		fsys := &faultyFs{Fs: mem, failWrite: true}
		_, err := New(fsys).Copy("/a", "/b", nil)
		assert.Equal(t, StatusWriteFailed, StatusOf(err))
		ok, _ := afero.Exists(mem, "/b")
		assert.False(t, ok, "failed write must remove the destination")
	})

	t.Run("ReadFailed", func(t *testing.T) {
		mem := afero.NewMemMapFs()
		writeFile(t, mem, "/a", payload(3*ChunkSize))

		fsys := &faultyFs{Fs: mem, failReadAfter: ChunkSize}
		_, err := New(fsys).Copy("/a", "/b", nil)
		assert.Equal(t, StatusReadFailed, StatusOf(err))
		ok, _ := afero.Exists(mem, "/b")
		assert.False(t, ok, "short read must remove the destination")
	})
}

func TestCompare(t *testing.T) {
	fsys := afero.NewMemMapFs()
	data := payload(2*ChunkSize + 7)
	writeFile(t, fsys, "/a", data)

	e := New(fsys)
	_, err := e.Copy("/a", "/b", nil)
	require.NoError(t, err)

	t.Run("Equal", func(t *testing.T) {
		assert.True(t, e.Compare("/a", "/b", nil))
	})

	t.Run("TruncatedByOne", func(t *testing.T) {
		writeFile(t, fsys, "/c", data[:len(data)-1])
		assert.False(t, e.Compare("/a", "/c", nil))
	})

	t.Run("OneByteDiffers", func(t *testing.T) {
		changed := append([]byte(nil), data...)
		changed[ChunkSize+5] ^= 0xff
		writeFile(t, fsys, "/d", changed)
		assert.False(t, e.Compare("/a", "/d", nil))
	})

	t.Run("Missing", func(t *testing.T) {
		assert.False(t, e.Compare("/a", "/missing", nil))
		assert.False(t, e.Compare("/missing", "/a", nil))
	})

	t.Run("AbortIsNotEqual", func(t *testing.T) {
		assert.False(t, e.Compare("/a", "/b", func(string, string, int64, int64) bool { return false }))
	})

	t.Run("ProgressReachesTotal", func(t *testing.T) {
		var last int64
		assert.True(t, e.Compare("/a", "/b", func(_, _ string, done, total int64) bool {
			last = done
			return true
		}))
		assert.Equal(t, int64(len(data)), last)
	})
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusReadFailed, StatusOf(&Error{Status: StatusReadFailed, Path: "/x"}))
	assert.Equal(t, StatusWriteFailed, StatusOf(errors.New("other")))
	assert.Equal(t, "/x: aborted", (&Error{Status: StatusAborted, Path: "/x"}).Error())
}

// faultyFs injects write or read failures into files it opens
type faultyFs struct {
	afero.Fs
	failWrite     bool
	failReadAfter int
}

func (f *faultyFs) Open(name string) (afero.File, error) {
	file, err := f.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fs: f}, nil
}

func (f *faultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fs: f}, nil
}

type faultyFile struct {
	afero.File
	fs   *faultyFs
	read int
}

var errInjected = errors.New("injected failure")

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.fs.failWrite {
		return 0, errInjected
	}
	return f.File.Write(p)
}

func (f *faultyFile) Read(p []byte) (int, error) {
	if f.fs.failReadAfter > 0 && f.read >= f.fs.failReadAfter {
		return 0, errInjected
	}
	n, err := f.File.Read(p)
	f.read += n
	return n, err
}
