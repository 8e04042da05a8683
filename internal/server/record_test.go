package server

import "testing"

func TestNewRecord_AssignsUniqueIDs(t *testing.T) {
	a := NewRecord("web", "10.0.0.5", 22, "deploy")
	b := NewRecord("web", "10.0.0.5", 22, "deploy")

	if a.ID == "" {
		t.Fatal("NewRecord assigned empty id")
	}
	if a.ID == b.ID {
		t.Error("two records share the same id")
	}
}

func TestNewRecord_DefaultsPort(t *testing.T) {
	r := NewRecord("web", "example.com", 0, "root")
	if r.Port != DefaultSSHPort {
		t.Errorf("Port = %d, want %d", r.Port, DefaultSSHPort)
	}
	if r.Auth != AuthAgent {
		t.Errorf("Auth = %q, want agent", r.Auth)
	}
}

func TestAddress(t *testing.T) {
	r := Record{Host: "10.0.0.5", Port: 2222}
	if got := r.Address(); got != "10.0.0.5:2222" {
		t.Errorf("Address() = %q", got)
	}

	// IPv6 hosts must be bracketed.
	r = Record{Host: "::1", Port: 22}
	if got := r.Address(); got != "[::1]:22" {
		t.Errorf("Address() = %q", got)
	}
}

func TestConnectionString(t *testing.T) {
	r := Record{Host: "example.com", Port: 22, Username: "admin"}
	if got := r.ConnectionString(); got != "admin@example.com:22" {
		t.Errorf("ConnectionString() = %q", got)
	}
}

func TestMatches(t *testing.T) {
	r := Record{Name: "Prod Web", Host: "web01.internal", Username: "deploy"}

	cases := []struct {
		filter string
		want   bool
	}{
		{"", true},
		{"prod", true},
		{"WEB01", true},
		{"deploy", true},
		{"database", false},
	}

	for _, tc := range cases {
		if got := r.Matches(tc.filter); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.filter, got, tc.want)
		}
	}
}

func TestParseAuthMethod(t *testing.T) {
	cases := map[string]AuthMethod{
		"key-file":    AuthKeyFile,
		"password":    AuthPassword,
		"interactive": AuthInteractive,
		"agent":       AuthAgent,
		" Agent ":     AuthAgent,
		"bogus":       AuthAgent,
	}
	for in, want := range cases {
		if got := ParseAuthMethod(in); got != want {
			t.Errorf("ParseAuthMethod(%q) = %q, want %q", in, got, want)
		}
	}
}
