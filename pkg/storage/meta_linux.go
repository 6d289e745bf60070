//go:build linux

package storage

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// nativeMeta adds access and birth times from statx to the portable view
func nativeMeta(path string, info fs.FileInfo) Meta {
	m := portableMeta(info)

	var stx unix.Statx_t
	mask := unix.STATX_ATIME | unix.STATX_BTIME | unix.STATX_CTIME
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, mask, &stx); err != nil {
		return m
	}

	if stx.Mask&unix.STATX_ATIME != 0 {
		m.Accessed = statxTime(stx.Atime)
	}
	switch {
	case stx.Mask&unix.STATX_BTIME != 0:
		m.Created = statxTime(stx.Btime)
	case stx.Mask&unix.STATX_CTIME != 0:
		m.Created = statxTime(stx.Ctime)
	}
	return m
}

// setNativeTimes sets access and write times.
// Linux has no settable birth time, so Created is not applied.
func setNativeTimes(path string, m Meta) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(m.Accessed.UnixNano()),
		unix.NsecToTimespec(m.Modified.UnixNano()),
	}
	if err := unix.UtimesNano(path, times); err != nil {
		return fmt.Errorf("failed to set timestamps: %w", &os.PathError{Op: "utimensat", Path: path, Err: err})
	}
	return nil
}

func setNativeAttributes(path string, m Meta) error {
	if err := unix.Chmod(path, uint32(permFor(m))); err != nil {
		return fmt.Errorf("failed to set permissions: %w", &os.PathError{Op: "chmod", Path: path, Err: err})
	}
	return nil
}

func clearNativeProtection(path string) error {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return fmt.Errorf("failed to stat file: %w", &os.PathError{Op: "lstat", Path: path, Err: err})
	}
	if err := unix.Chmod(path, (st.Mode&0o7777)|0o200); err != nil {
		return fmt.Errorf("failed to clear attributes: %w", &os.PathError{Op: "chmod", Path: path, Err: err})
	}
	return nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
