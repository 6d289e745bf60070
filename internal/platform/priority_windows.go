//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// LowerPriority moves the current process to BELOW_NORMAL_PRIORITY_CLASS
func LowerPriority() error {
	if err := windows.SetPriorityClass(windows.CurrentProcess(), windows.BELOW_NORMAL_PRIORITY_CLASS); err != nil {
		return fmt.Errorf("failed to lower process priority: %w", err)
	}
	return nil
}
