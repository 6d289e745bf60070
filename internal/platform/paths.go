package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	// Convert to platform-specific separators
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// RootedDest appends source, minus its drive letter or UNC host, to dest.
//
//	C:\files\stuff + D:\backup      -> D:\backup\files\stuff
//	\\server\share\dir + D:\        -> D:\share\dir
//	/home/user + /backup            -> /backup/home/user
func RootedDest(source, dest string) string {
	var rest string
	if IsUNCPath(source) {
		host := source[2:]
		if i := strings.IndexAny(host, `\/`); i >= 0 {
			rest = host[i:]
		}
	} else {
		rest = strings.TrimPrefix(source, filepath.VolumeName(source))
	}

	rest = strings.TrimLeft(rest, `\/`)
	if rest == "" {
		return dest
	}
	return filepath.Join(dest, rest)
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) && !IsUNCPath(path) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
