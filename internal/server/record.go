// Package server defines the server records managed by the dashboard and the
// security classification derived from them.
package server

import (
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultSSHPort is the standard SSH port.
const DefaultSSHPort = 22

// AuthMethod enumerates the declared authentication methods for a server.
type AuthMethod string

const (
	AuthKeyFile     AuthMethod = "key-file"
	AuthAgent       AuthMethod = "agent"
	AuthPassword    AuthMethod = "password"
	AuthInteractive AuthMethod = "interactive"
)

// ParseAuthMethod converts a config string into an AuthMethod.
// Unrecognized values fall back to agent auth, the least surprising default.
func ParseAuthMethod(s string) AuthMethod {
	switch AuthMethod(strings.ToLower(strings.TrimSpace(s))) {
	case AuthKeyFile:
		return AuthKeyFile
	case AuthPassword:
		return AuthPassword
	case AuthInteractive:
		return AuthInteractive
	default:
		return AuthAgent
	}
}

// String returns the config-file spelling of the auth method.
func (a AuthMethod) String() string {
	return string(a)
}

// Record is a single managed server definition. Records are owned by the
// engine store, created and mutated only through explicit commands, and
// persisted by the config package on every mutation.
type Record struct {
	ID          string
	Name        string
	Host        string
	Port        int
	Username    string
	Auth        AuthMethod
	KeyPath     string // only meaningful for AuthKeyFile
	Tags        []string
	Description string
}

// NewRecord creates a record with a fresh unique id and agent auth.
func NewRecord(name, host string, port int, username string) Record {
	if port == 0 {
		port = DefaultSSHPort
	}
	return Record{
		ID:       uuid.NewString(),
		Name:     name,
		Host:     host,
		Port:     port,
		Username: username,
		Auth:     AuthAgent,
	}
}

// Address returns the host:port dial address for this record.
func (r Record) Address() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// ConnectionString returns the user@host:port form shown in the UI.
func (r Record) ConnectionString() string {
	return r.Username + "@" + r.Address()
}

// Matches reports whether the record matches a free-text filter on
// name, host, username, or tags. An empty filter matches everything.
func (r Record) Matches(filter string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(filter)
	if strings.Contains(strings.ToLower(r.Name), f) ||
		strings.Contains(strings.ToLower(r.Host), f) ||
		strings.Contains(strings.ToLower(r.Username), f) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), f) {
			return true
		}
	}
	return false
}
