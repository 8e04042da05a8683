package session

import (
	"fmt"

	"github.com/rileyhilliard/wraith/internal/server"
)

// LaunchErrorKind categorizes why a session launch failed.
type LaunchErrorKind int

const (
	LaunchNoTerminal LaunchErrorKind = iota
	LaunchSpawnFailed
)

// String returns a human-readable description of the launch failure.
func (k LaunchErrorKind) String() string {
	switch k {
	case LaunchNoTerminal:
		return "no terminal emulator available"
	case LaunchSpawnFailed:
		return "failed to spawn process"
	default:
		return "unknown launch error"
	}
}

// LaunchError is returned when a session cannot be started. The server's
// status is left unchanged by the caller in that case.
type LaunchError struct {
	Kind  LaunchErrorKind
	Cause error
}

func (e *LaunchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("launch failed: %s (%v)", e.Kind, e.Cause)
	}
	return fmt.Sprintf("launch failed: %s", e.Kind)
}

func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// Spec describes the connection a launcher should spawn a session for.
// It carries copies of the record fields, never a reference into the store.
type Spec struct {
	ServerName string
	Host       string
	Port       int
	Username   string
	Auth       server.AuthMethod
	KeyPath    string
}

// SpecFor builds a launch spec from a server record.
func SpecFor(rec server.Record) Spec {
	return Spec{
		ServerName: rec.Name,
		Host:       rec.Host,
		Port:       rec.Port,
		Username:   rec.Username,
		Auth:       rec.Auth,
		KeyPath:    rec.KeyPath,
	}
}

// Launcher spawns a detached process for a session and reports its pid.
// The terminal emulator launcher implements this; tests use a fake.
// Failures are returned as *LaunchError.
type Launcher interface {
	Launch(spec Spec) (pid int, err error)
}
