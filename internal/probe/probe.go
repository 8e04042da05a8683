// Package probe performs reachability and latency measurements against
// server addresses. Probes are stateless per call and safe to run
// concurrently; every outcome is represented in the result value.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultTimeout bounds a single probe attempt.
const DefaultTimeout = 5 * time.Second

// ErrorKind categorizes why a probe failed.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindTimeout
	KindConnectionRefused
	KindDNSFailure
)

// String returns a human-readable description of the failure kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "connection timed out"
	case KindConnectionRefused:
		return "connection refused"
	case KindDNSFailure:
		return "dns resolution failed"
	default:
		return "unknown error"
	}
}

// Error represents a failed probe with a categorized failure kind.
type Error struct {
	Address string
	Kind    ErrorKind
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("probe %s failed: %s (%v)", e.Address, e.Kind, e.Cause)
	}
	return fmt.Sprintf("probe %s failed: %s", e.Address, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Result is the outcome of a single probe attempt. On failure Reachable is
// false and Err carries the categorized cause; Latency is the wall-clock
// duration of the attempt either way.
type Result struct {
	Reachable bool
	Latency   time.Duration
	Err       *Error
}

// Func is the probe entry point used by the health scheduler. Declared as a
// type so tests can substitute a fake without touching the network.
type Func func(ctx context.Context, address string, timeout time.Duration) Result

// TCP attempts a bare transport-level connection to address within timeout.
// No protocol handshake is attempted: an established connection within the
// deadline counts as reachable. TCP never returns an error through any
// channel other than the result value.
func TCP(ctx context.Context, address string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	latency := time.Since(start)

	if err != nil {
		return Result{
			Latency: latency,
			Err:     categorize(address, err),
		}
	}
	_ = conn.Close()

	return Result{Reachable: true, Latency: latency}
}

// categorize converts a dial error into a probe Error with a failure kind.
func categorize(address string, err error) *Error {
	probeErr := &Error{
		Address: address,
		Kind:    KindOther,
		Cause:   err,
	}

	if err == nil {
		return nil
	}

	// Timeouts: both dialer deadline and context deadline count.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		probeErr.Kind = KindTimeout
		return probeErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		probeErr.Kind = KindTimeout
		return probeErr
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		probeErr.Kind = KindDNSFailure
		return probeErr
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "i/o timeout") {
		probeErr.Kind = KindTimeout
		return probeErr
	}

	if strings.Contains(errStr, "connection refused") {
		probeErr.Kind = KindConnectionRefused
		return probeErr
	}

	if strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "server misbehaving") {
		probeErr.Kind = KindDNSFailure
		return probeErr
	}

	return probeErr
}
