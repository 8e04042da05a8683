package probe

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// Deep performs a full SSH handshake against address instead of a bare TCP
// connect. It verifies an SSH daemon is actually answering, not just that the
// port is open. Authentication is expected to fail (no credentials are
// offered); reaching the auth stage still proves the service is SSH, so an
// auth error counts as reachable.
//
// Used by 'wraith probe --deep' for diagnostics. The health scheduler uses
// TCP only.
func Deep(ctx context.Context, address string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cfg := &ssh.ClientConfig{
		User:            "wraith-probe",
		Auth:            []ssh.AuthMethod{},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	start := time.Now()
	client, err := ssh.Dial("tcp", address, cfg)
	latency := time.Since(start)

	if err == nil {
		_ = client.Close()
		return Result{Reachable: true, Latency: latency}
	}

	// An authentication failure means the handshake completed: the banner was
	// exchanged and key negotiation succeeded. That is a reachable SSH host.
	if isAuthError(err) {
		return Result{Reachable: true, Latency: latency}
	}

	return Result{
		Latency: latency,
		Err:     categorize(address, err),
	}
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"unable to authenticate",
		"no supported methods remain",
		"permission denied",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
