//go:build !linux && !windows

package storage

import (
	"fmt"
	"io/fs"
	"os"
)

func nativeMeta(path string, info fs.FileInfo) Meta {
	return portableMeta(info)
}

func setNativeTimes(path string, m Meta) error {
	if err := os.Chtimes(path, m.Accessed, m.Modified); err != nil {
		return fmt.Errorf("failed to set timestamps: %w", err)
	}
	return nil
}

func setNativeAttributes(path string, m Meta) error {
	if err := os.Chmod(path, permFor(m)); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	return nil
}

func clearNativeProtection(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if err := os.Chmod(path, info.Mode().Perm()|0o200); err != nil {
		return fmt.Errorf("failed to clear attributes: %w", err)
	}
	return nil
}
