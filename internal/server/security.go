package server

// Classification is the security label derived from a record's auth method
// and port. It is recomputed only when those fields change.
type Classification int

const (
	ClassUnknown Classification = iota
	ClassSecure
	ClassVulnerable
)

// String returns a human-readable classification label.
func (c Classification) String() string {
	switch c {
	case ClassSecure:
		return "SECURE"
	case ClassVulnerable:
		return "VULNERABLE"
	default:
		return "UNKNOWN"
	}
}

// Symbol returns the status indicator shown next to the classification.
func (c Classification) Symbol() string {
	switch c {
	case ClassSecure:
		return "🛡"
	case ClassVulnerable:
		return "⚠"
	default:
		return "?"
	}
}

// Assess classifies a server's security posture from its declared auth method
// and port. Pure and total: every input maps to a classification.
//
// Password auth on the default SSH port is the configuration most exposed to
// credential-stuffing, so it is flagged vulnerable outright. Password auth on
// a non-standard port reduces exposure but proves nothing, so it stays
// unknown rather than being promoted to secure. Key and agent auth are secure
// on any port; interactive auth reveals too little to judge.
func Assess(method AuthMethod, port int) Classification {
	switch method {
	case AuthKeyFile, AuthAgent:
		return ClassSecure
	case AuthPassword:
		if port == DefaultSSHPort {
			return ClassVulnerable
		}
		return ClassUnknown
	default:
		return ClassUnknown
	}
}
