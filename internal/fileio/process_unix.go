//go:build !windows

package fileio

import (
	"errors"
	"syscall"
)

// processAlive reports whether a lock owner still runs. A zero signal only
// checks delivery; EPERM means the process exists under another user, so
// its lock is still held.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
