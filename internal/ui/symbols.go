package ui

// Unicode symbols for dashboard indicators. Reachability symbols share the
// dot glyph and rely on color; warning and unknown get distinct shapes so
// they read on monochrome terminals too.
const (
	SymbolOnline     = "●"
	SymbolOffline    = "●"
	SymbolConnecting = "◐"
	SymbolWarning    = "▲"
	SymbolUnknown    = "?"

	SymbolSecure     = "✓"
	SymbolVulnerable = "✗"

	SymbolSession = "⇄"
)
