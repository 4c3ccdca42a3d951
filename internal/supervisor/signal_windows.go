//go:build windows

package supervisor

import (
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr { return nil }

// Windows has no graceful terminate signal; both paths force-kill.
func terminate(pid int) { killProcess(pid) }

func kill(pid int) { killProcess(pid) }

func killProcess(pid int) {
	p, err := os.FindProcess(pid)
	if err != nil {
		return
	}
	_ = p.Kill()
}
