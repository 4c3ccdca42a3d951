package supervisor

import (
	"log/slog"
	"os/exec"

	"github.com/neuralnomads/nomadhost/internal/command"
	"github.com/neuralnomads/nomadhost/internal/entry"
	"github.com/neuralnomads/nomadhost/internal/env"
)

// CLILauncher builds the production CLI invocation: entry resolution,
// serve arguments, and the platform invocation strategy (user login
// shell on Unix, direct runtime elsewhere).
type CLILauncher struct {
	Env      *env.Env
	ExtraEnv []string
}

func (l *CLILauncher) Launch(dev bool, host string) (*exec.Cmd, error) {
	e, err := entry.Resolve(dev)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved cli entry",
		"runner", e.Runner.String(), "entry", e.Entry, "host", host)

	args := command.ServeArgs(dev, host)
	inv, err := command.Build(e, args)
	if err != nil {
		return nil, err
	}

	// #nosec G204
	cmd := exec.Command(inv.Program, inv.Args...)

	environ := l.Env
	if environ == nil {
		environ = env.New()
	}
	extra := make([]string, 0, len(l.ExtraEnv)+1)
	extra = append(extra, l.ExtraEnv...)
	// The marker makes an Electron-based runtime behave as plain node.
	extra = append(extra, command.RunAsNodeEnv)
	cmd.Env = environ.Merge(extra)

	if root, ok := entry.WorkspaceRoot(); ok {
		cmd.Dir = root
	}
	cmd.SysProcAttr = sysProcAttr()
	return cmd, nil
}
