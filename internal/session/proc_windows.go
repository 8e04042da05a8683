//go:build windows

package session

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type osChecker struct{}

// Alive queries the process table. tasklist prints a header-free CSV row per
// matching process, or an informational message when none match.
func (osChecker) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	out, err := exec.Command("tasklist", "/FI", fmt.Sprintf("PID eq %d", pid), "/NH", "/FO", "CSV").Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), strconv.Itoa(pid))
}

func (osChecker) Terminate(pid int) error {
	return exec.Command("taskkill", "/F", "/PID", strconv.Itoa(pid)).Run()
}
