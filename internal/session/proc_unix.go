//go:build !windows

package session

import (
	"errors"
	"syscall"
)

type osChecker struct{}

// Alive sends signal 0, which performs permission and existence checks
// without delivering anything. EPERM means the process exists but belongs to
// another user, so it still counts as alive.
func (osChecker) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}

func (osChecker) Terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
