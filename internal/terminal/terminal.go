// Package terminal detects installed terminal emulators and builds the
// command lines used to open interactive SSH sessions in a new window.
package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/wraith/internal/server"
	"github.com/rileyhilliard/wraith/internal/session"
)

// Emulator identifies a supported terminal emulator.
type Emulator string

const (
	Ghostty       Emulator = "ghostty"
	Alacritty     Emulator = "alacritty"
	Kitty         Emulator = "kitty"
	Wezterm       Emulator = "wezterm"
	GnomeTerminal Emulator = "gnome-terminal"
	Konsole       Emulator = "konsole"
	XfceTerminal  Emulator = "xfce4-terminal"
	XTerm         Emulator = "xterm"
	AppleTerminal Emulator = "osascript"
	WindowsTerm   Emulator = "wt"
)

// detection preference order when the environment gives no hint.
var preference = []Emulator{
	Ghostty, Alacritty, Kitty, Wezterm,
	GnomeTerminal, Konsole, XfceTerminal, XTerm,
	AppleTerminal, WindowsTerm,
}

// byTermProgram maps TERM_PROGRAM values to the emulator running us. When
// we are already inside one of these, opening a sibling window of the same
// emulator is the least surprising choice.
var byTermProgram = map[string]Emulator{
	"ghostty":        Ghostty,
	"alacritty":      Alacritty,
	"kitty":          Kitty,
	"WezTerm":        Wezterm,
	"Apple_Terminal": AppleTerminal,
	"iTerm.app":      AppleTerminal,
}

// Detect finds the terminal emulator to spawn sessions in. The emulator
// named by TERM_PROGRAM wins when its binary is on PATH; otherwise the
// preference order decides. Returns false when nothing usable is installed.
func Detect() (Emulator, bool) {
	if tp := os.Getenv("TERM_PROGRAM"); tp != "" {
		if emu, ok := byTermProgram[tp]; ok && installed(emu) {
			return emu, true
		}
	}
	for _, emu := range preference {
		if installed(emu) {
			return emu, true
		}
	}
	return "", false
}

// Lookup resolves a user-configured emulator name. Empty means auto-detect.
func Lookup(name string) (Emulator, bool) {
	if name == "" {
		return Detect()
	}
	emu := Emulator(name)
	for _, known := range preference {
		if emu == known {
			return emu, installed(emu)
		}
	}
	return "", false
}

func installed(emu Emulator) bool {
	_, err := exec.LookPath(string(emu))
	return err == nil
}

// SSHArgs builds the ssh argument vector for a launch spec: port, identity
// or auth-method options, keepalive settings, then the user@host target.
func SSHArgs(spec session.Spec) []string {
	var args []string
	if spec.Port != 0 && spec.Port != 22 {
		args = append(args, "-p", fmt.Sprint(spec.Port))
	}
	switch spec.Auth {
	case server.AuthKeyFile:
		if spec.KeyPath != "" {
			args = append(args, "-i", expandHome(spec.KeyPath))
		}
	case server.AuthPassword:
		args = append(args, "-o", "PreferredAuthentications=password")
	case server.AuthInteractive:
		args = append(args, "-o", "PreferredAuthentications=keyboard-interactive")
	case server.AuthAgent:
		// agent is ssh's default path, nothing to add
	}
	args = append(args,
		"-o", "ServerAliveInterval=60",
		"-o", "ServerAliveCountMax=3",
		"-o", "ConnectTimeout=10",
	)
	target := spec.Host
	if spec.Username != "" {
		target = spec.Username + "@" + spec.Host
	}
	return append(args, target)
}

// CommandLine builds the full argv (program + args) that opens a new window
// of the emulator running the ssh session.
func CommandLine(emu Emulator, spec session.Spec) (string, []string) {
	sshArgv := append([]string{"ssh"}, SSHArgs(spec)...)

	switch emu {
	case GnomeTerminal:
		return string(emu), append([]string{"--"}, sshArgv...)
	case Wezterm:
		return string(emu), append([]string{"start", "--"}, sshArgv...)
	case Konsole, XfceTerminal, XTerm:
		// these take a single -e command string
		return string(emu), []string{"-e", strings.Join(sshArgv, " ")}
	case AppleTerminal:
		script := fmt.Sprintf("tell application %q to do script %q",
			"Terminal", strings.Join(sshArgv, " "))
		return string(emu), []string{"-e", script}
	case Kitty, WindowsTerm:
		return string(emu), sshArgv
	default:
		// ghostty, alacritty and anything -e shaped
		return string(emu), append([]string{"-e"}, sshArgv...)
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
