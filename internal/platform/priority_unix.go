//go:build unix

package platform

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// belowNormal is the nice increment applied in low priority mode
const belowNormal = 10

// LowerPriority moves the current process to a below-normal scheduling priority
func LowerPriority() error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, belowNormal); err != nil {
		return fmt.Errorf("failed to lower process priority: %w", err)
	}
	return nil
}
