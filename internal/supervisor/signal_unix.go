//go:build !windows

package supervisor

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	// Own process group so signals reach the shell wrapper and the
	// runtime it exec'd into.
	return &syscall.SysProcAttr{Setpgid: true}
}

func terminate(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGTERM)
}

func kill(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
