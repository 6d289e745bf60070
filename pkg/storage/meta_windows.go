//go:build windows

package storage

import (
	"fmt"
	"io/fs"
	"syscall"
	"time"

	"github.com/sdejongh/treemirror/pkg/models"
	"golang.org/x/sys/windows"
)

const protectedAttrs = windows.FILE_ATTRIBUTE_READONLY | windows.FILE_ATTRIBUTE_HIDDEN | windows.FILE_ATTRIBUTE_SYSTEM

func nativeMeta(path string, info fs.FileInfo) Meta {
	m := portableMeta(info)
	m.Attrs &^= models.AttrHidden | models.AttrReadOnly

	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return m
	}

	m.Created = filetimeToTime(data.CreationTime)
	m.Accessed = filetimeToTime(data.LastAccessTime)
	m.Modified = filetimeToTime(data.LastWriteTime)

	attrs := data.FileAttributes
	if attrs&windows.FILE_ATTRIBUTE_READONLY != 0 {
		m.Attrs |= models.AttrReadOnly
	}
	if attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0 {
		m.Attrs |= models.AttrHidden
	}
	if attrs&windows.FILE_ATTRIBUTE_SYSTEM != 0 {
		m.Attrs |= models.AttrSystem
	}
	return m
}

// setNativeTimes applies creation, access and write times
func setNativeTimes(path string, m Meta) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	h, err := windows.CreateFile(p, windows.FILE_WRITE_ATTRIBUTES,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return fmt.Errorf("failed to open for timestamps: %w", err)
	}
	ct := windows.NsecToFiletime(m.Created.UnixNano())
	at := windows.NsecToFiletime(m.Accessed.UnixNano())
	wt := windows.NsecToFiletime(m.Modified.UnixNano())
	err = windows.SetFileTime(h, &ct, &at, &wt)
	windows.CloseHandle(h)
	if err != nil {
		return fmt.Errorf("failed to set timestamps: %w", err)
	}
	return nil
}

func setNativeAttributes(path string, m Meta) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	current, err := windows.GetFileAttributes(p)
	if err != nil {
		return fmt.Errorf("failed to read attributes: %w", err)
	}
	attrs := current &^ protectedAttrs
	if m.Attrs.Has(models.AttrReadOnly) && !m.Attrs.Has(models.AttrDirectory) {
		attrs |= windows.FILE_ATTRIBUTE_READONLY
	}
	if m.Attrs.Has(models.AttrHidden) {
		attrs |= windows.FILE_ATTRIBUTE_HIDDEN
	}
	if m.Attrs.Has(models.AttrSystem) {
		attrs |= windows.FILE_ATTRIBUTE_SYSTEM
	}
	if err := windows.SetFileAttributes(p, attrs); err != nil {
		return fmt.Errorf("failed to set attributes: %w", err)
	}
	return nil
}

func clearNativeProtection(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	current, err := windows.GetFileAttributes(p)
	if err != nil {
		return fmt.Errorf("failed to read attributes: %w", err)
	}
	attrs := current &^ protectedAttrs
	if attrs == 0 {
		attrs = windows.FILE_ATTRIBUTE_NORMAL
	}
	if err := windows.SetFileAttributes(p, attrs); err != nil {
		return fmt.Errorf("failed to clear attributes: %w", err)
	}
	return nil
}

func filetimeToTime(ft syscall.Filetime) time.Time {
	return time.Unix(0, ft.Nanoseconds())
}
