package terminal

import (
	"os/exec"

	"github.com/rileyhilliard/wraith/internal/logger"
	"github.com/rileyhilliard/wraith/internal/session"
)

// Launcher opens SSH sessions in new emulator windows. It implements
// session.Launcher.
type Launcher struct {
	// Preferred pins a specific emulator by name; empty auto-detects on
	// every launch so a newly installed emulator is picked up.
	Preferred string

	log logger.Logger
}

// NewLauncher builds a launcher that auto-detects the emulator.
func NewLauncher() *Launcher {
	return &Launcher{log: logger.Default()}
}

// SetLogger replaces the launcher's logger.
func (l *Launcher) SetLogger(log logger.Logger) {
	if log != nil {
		l.log = log
	}
}

// Launch opens a new terminal window running ssh for the spec and returns
// the emulator's pid. The window runs detached: the child is released so it
// outlives the dashboard.
func (l *Launcher) Launch(spec session.Spec) (int, error) {
	emu, ok := Lookup(l.Preferred)
	if !ok {
		return 0, &session.LaunchError{Kind: session.LaunchNoTerminal}
	}

	program, args := CommandLine(emu, spec)
	l.log.Debug("launching %s session: %s %v", emu, program, args)

	cmd := exec.Command(program, args...)
	if err := cmd.Start(); err != nil {
		return 0, &session.LaunchError{Kind: session.LaunchSpawnFailed, Cause: err}
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		l.log.Debug("release pid %d: %v", pid, err)
	}
	return pid, nil
}
