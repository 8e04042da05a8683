package probe

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestCategorize_Timeout(t *testing.T) {
	testCases := []string{
		"dial tcp 10.0.0.5:22: i/o timeout",
		"connection timeout",
	}

	for _, errMsg := range testCases {
		err := categorize("10.0.0.5:22", errors.New(errMsg))
		if err == nil {
			t.Errorf("categorize(%q) returned nil", errMsg)
			continue
		}
		if err.Kind != KindTimeout {
			t.Errorf("categorize(%q).Kind = %v, want KindTimeout", errMsg, err.Kind)
		}
	}
}

func TestCategorize_ContextDeadline(t *testing.T) {
	err := categorize("10.0.0.5:22", context.DeadlineExceeded)
	if err == nil {
		t.Fatal("categorize returned nil")
	}
	if err.Kind != KindTimeout {
		t.Errorf("Kind = %v, want KindTimeout", err.Kind)
	}
}

func TestCategorize_NetError(t *testing.T) {
	// A real net.Error with Timeout() == true takes the typed path.
	var netErr net.Error = &net.OpError{Op: "dial", Err: timeoutErr{}}
	err := categorize("host:22", netErr)
	if err.Kind != KindTimeout {
		t.Errorf("Kind = %v, want KindTimeout", err.Kind)
	}
}

// timeoutErr is a minimal error satisfying net.Error with Timeout() == true.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "operation timed out" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestCategorize_Refused(t *testing.T) {
	err := categorize("127.0.0.1:2", errors.New("dial tcp 127.0.0.1:2: connect: connection refused"))
	if err == nil {
		t.Fatal("categorize returned nil")
	}
	if err.Kind != KindConnectionRefused {
		t.Errorf("Kind = %v, want KindConnectionRefused", err.Kind)
	}
}

func TestCategorize_DNS(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "nope.invalid"}
	err := categorize("nope.invalid:22", dnsErr)
	if err.Kind != KindDNSFailure {
		t.Errorf("Kind = %v, want KindDNSFailure", err.Kind)
	}

	err = categorize("nope.invalid:22", errors.New("lookup nope.invalid: no such host"))
	if err.Kind != KindDNSFailure {
		t.Errorf("string match: Kind = %v, want KindDNSFailure", err.Kind)
	}
}

func TestCategorize_Other(t *testing.T) {
	err := categorize("host:22", errors.New("some random error"))
	if err == nil {
		t.Fatal("categorize returned nil")
	}
	if err.Kind != KindOther {
		t.Errorf("Kind = %v, want KindOther", err.Kind)
	}
}

func TestCategorize_Nil(t *testing.T) {
	if err := categorize("host:22", nil); err != nil {
		t.Errorf("categorize(nil) = %v, want nil", err)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	probeErr := &Error{Address: "host:22", Kind: KindTimeout, Cause: cause}

	if !errors.Is(probeErr, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestTCP_RefusedLocally(t *testing.T) {
	// Listen and immediately close to get a port nothing is listening on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	result := TCP(context.Background(), addr, time.Second)
	if result.Reachable {
		t.Fatalf("TCP(%s) reachable after listener closed", addr)
	}
	if result.Err == nil {
		t.Fatal("expected categorized error")
	}
}

func TestTCP_Reachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	result := TCP(context.Background(), ln.Addr().String(), time.Second)
	if !result.Reachable {
		t.Fatalf("TCP not reachable: %v", result.Err)
	}
	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Latency <= 0 {
		t.Error("Latency should be positive")
	}
}

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		KindTimeout:           "connection timed out",
		KindConnectionRefused: "connection refused",
		KindDNSFailure:        "dns resolution failed",
		KindOther:             "unknown error",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
