//go:build !unix && !windows

package platform

// LowerPriority is a no-op where the OS offers no priority control
func LowerPriority() error {
	return nil
}
