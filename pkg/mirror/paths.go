package mirror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadPrefix is returned when a path does not live under the expected root
var ErrBadPrefix = errors.New("bad prefix on source path")

// RelPath strips root from path, ignoring case, and drops leading separators
func RelPath(root, path string) (string, error) {
	if len(path) < len(root) || !strings.EqualFold(path[:len(root)], root) {
		return "", fmt.Errorf("%w: %s", ErrBadPrefix, path)
	}
	return strings.TrimLeft(path[len(root):], `/\`), nil
}
