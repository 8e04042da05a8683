package session

// ProcessChecker abstracts platform process-liveness and termination so the
// tracker can reconcile sessions uniformly on POSIX and Windows.
type ProcessChecker interface {
	// Alive reports whether the process with the given pid is still running.
	// Never returns an error: a pid that cannot be inspected counts as dead.
	Alive(pid int) bool

	// Terminate asks the process to exit.
	Terminate(pid int) error
}

// OSProcessChecker returns the checker for the current platform.
func OSProcessChecker() ProcessChecker {
	return osChecker{}
}
