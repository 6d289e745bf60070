package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sdejongh/treemirror/pkg/models"
	"github.com/spf13/afero"
)

// TestNewFromFs tests backend construction
func TestNewFromFs(t *testing.T) {
	t.Run("OsFsIsNative", func(t *testing.T) {
		local := NewFromFs(afero.NewOsFs())
		if !local.native {
			t.Error("NewFromFs(OsFs) should use native metadata")
		}
	})

	t.Run("MemMapFsIsPortable", func(t *testing.T) {
		local := NewFromFs(afero.NewMemMapFs())
		if local.native {
			t.Error("NewFromFs(MemMapFs) should not use native metadata")
		}
	})
}

// TestLocalReadDir tests the ReadDir method
func TestLocalReadDir(t *testing.T) {
	local := NewMemory()
	fsys := local.Fs()

	if err := fsys.MkdirAll("/root/sub", 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	for _, name := range []string{"/root/b.log", "/root/a.txt"} {
		if err := afero.WriteFile(fsys, name, []byte("data"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	t.Run("SortedByName", func(t *testing.T) {
		infos, err := local.ReadDir("/root")
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		var names []string
		for _, info := range infos {
			names = append(names, info.Name())
		}
		want := []string{"a.txt", "b.log", "sub"}
		if len(names) != len(want) {
			t.Fatalf("ReadDir() = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("ReadDir()[%d] = %s, want %s", i, names[i], want[i])
			}
		}
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		if _, err := local.ReadDir("/nope"); err == nil {
			t.Error("ReadDir() should fail for missing directory")
		}
	})
}

// TestLocalMeta tests attribute extraction on the portable path
func TestLocalMeta(t *testing.T) {
	local := NewMemory()
	fsys := local.Fs()
	modTime := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	write := func(name string, perm os.FileMode) os.FileInfo {
		t.Helper()
		if err := afero.WriteFile(fsys, name, []byte("x"), perm); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if err := fsys.Chmod(name, perm); err != nil {
			t.Fatalf("Chmod() error = %v", err)
		}
		if err := fsys.Chtimes(name, modTime, modTime); err != nil {
			t.Fatalf("Chtimes() error = %v", err)
		}
		info, err := fsys.Stat(name)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		return info
	}

	t.Run("PlainFile", func(t *testing.T) {
		m := local.Meta("/plain.txt", write("/plain.txt", 0o644))
		if m.Attrs != 0 {
			t.Errorf("Attrs = %s, want none", m.Attrs)
		}
		if !m.Modified.Equal(modTime) {
			t.Errorf("Modified = %v, want %v", m.Modified, modTime)
		}
	})

	t.Run("DotFileIsHidden", func(t *testing.T) {
		m := local.Meta("/.profile", write("/.profile", 0o644))
		if !m.Attrs.Has(models.AttrHidden) {
			t.Errorf("Attrs = %s, want hidden", m.Attrs)
		}
	})

	t.Run("NoWriteBitIsReadOnly", func(t *testing.T) {
		m := local.Meta("/locked.txt", write("/locked.txt", 0o444))
		if !m.Attrs.Has(models.AttrReadOnly) {
			t.Errorf("Attrs = %s, want read-only", m.Attrs)
		}
	})

	t.Run("Directory", func(t *testing.T) {
		if err := fsys.MkdirAll("/dir", 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		info, _ := fsys.Stat("/dir")
		m := local.Meta("/dir", info)
		if !m.Attrs.Has(models.AttrDirectory) {
			t.Errorf("Attrs = %s, want directory", m.Attrs)
		}
	})
}

// TestLocalSetTimesAndAttributes tests attribute and timestamp propagation
func TestLocalSetTimesAndAttributes(t *testing.T) {
	local := NewMemory()
	fsys := local.Fs()
	if err := afero.WriteFile(fsys, "/copy.txt", []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	stamp := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	m := Meta{
		Attrs:    models.AttrReadOnly,
		Mode:     0o444,
		Accessed: stamp,
		Modified: stamp,
	}
	if err := local.SetTimes("/copy.txt", m); err != nil {
		t.Fatalf("SetTimes() error = %v", err)
	}
	if err := local.SetAttributes("/copy.txt", m); err != nil {
		t.Fatalf("SetAttributes() error = %v", err)
	}

	info, _ := fsys.Stat("/copy.txt")
	if !info.ModTime().Equal(stamp) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), stamp)
	}
	if info.Mode().Perm() != 0o444 {
		t.Errorf("Perm = %o, want 444", info.Mode().Perm())
	}

	t.Run("ClearProtection", func(t *testing.T) {
		if err := local.ClearProtection("/copy.txt"); err != nil {
			t.Fatalf("ClearProtection() error = %v", err)
		}
		info, _ := fsys.Stat("/copy.txt")
		if info.Mode().Perm()&0o200 == 0 {
			t.Errorf("Perm = %o, want owner write bit", info.Mode().Perm())
		}
	})

	t.Run("DirectoryStaysWritable", func(t *testing.T) {
		if err := local.MkdirAll("/ro"); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		err := local.SetAttributes("/ro", Meta{
			Attrs: models.AttrDirectory | models.AttrReadOnly,
			Mode:  os.ModeDir | 0o555,
		})
		if err != nil {
			t.Fatalf("SetAttributes() error = %v", err)
		}
		info, _ := fsys.Stat("/ro")
		if info.Mode().Perm()&0o700 != 0o700 {
			t.Errorf("Perm = %o, want owner rwx", info.Mode().Perm())
		}
	})
}

// TestLocalRemove tests the Remove and Exists methods
func TestLocalRemove(t *testing.T) {
	local := NewMemory()
	if err := local.MkdirAll("/a/b"); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := afero.WriteFile(local.Fs(), "/a/b/f.txt", []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := local.Remove("/a/b"); !errors.Is(err, ErrDirNotEmpty) {
		t.Fatalf("Remove(non-empty dir) error = %v, want ErrDirNotEmpty", err)
	}

	if err := local.Remove("/a/b/f.txt"); err != nil {
		t.Fatalf("Remove(file) error = %v", err)
	}
	if ok, _ := local.Exists("/a/b/f.txt"); ok {
		t.Error("file should not exist after Remove()")
	}

	if err := local.Remove("/a/b"); err != nil {
		t.Fatalf("Remove(dir) error = %v", err)
	}
	if ok, _ := local.DirExists("/a/b"); ok {
		t.Error("directory should not exist after Remove()")
	}
	if ok, _ := local.DirExists("/a"); !ok {
		t.Error("parent directory should still exist")
	}
}

// TestLocalNativeTimestamps round-trips timestamps through the host filesystem
func TestLocalNativeTimestamps(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "treemirror-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	local := NewLocal()
	path := filepath.Join(tempDir, "file.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	stamp := time.Date(2022, 7, 8, 9, 10, 11, 0, time.Local)
	err = local.SetTimes(path, Meta{
		Mode:     0o644,
		Created:  stamp,
		Accessed: stamp,
		Modified: stamp,
	})
	if err != nil {
		t.Fatalf("SetTimes() error = %v", err)
	}

	info, err := local.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	m := local.Meta(path, info)
	if !m.Modified.Equal(stamp) {
		t.Errorf("Modified = %v, want %v", m.Modified, stamp)
	}
	if runtime.GOOS != "windows" && m.Attrs.Any(models.Protected) {
		t.Errorf("Attrs = %s, want none", m.Attrs)
	}
}
