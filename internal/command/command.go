package command

import (
	"errors"
	"os/exec"
	"runtime"

	"github.com/neuralnomads/nomadhost/internal/entry"
)

// RunAsNodeEnv forces an Electron-compatible runtime to execute the
// entry as a plain Node script instead of booting the embedded app.
const RunAsNodeEnv = "ELECTRON_RUN_AS_NODE=1"

// DevUIServerURL is handed to the CLI in development so it proxies the
// UI to the local dev server.
const DevUIServerURL = "http://localhost:3000"

// ErrRuntimeNotFound is returned by the direct strategy when the node
// binary cannot be found on the search path.
var ErrRuntimeNotFound = errors.New("Node binary not found. Make sure Node.js is installed.")

// Invocation is the concrete program/argv pair handed to the spawn
// call. It is built once per start and consumed once.
type Invocation struct {
	Program string
	Args    []string
	// UserShell marks an invocation routed through the user's login
	// shell rather than executing the runtime directly.
	UserShell bool
}

// ServeArgs builds the CLI argument list: serve --host <host> --port 0,
// plus the dev-server and debug-logging flags in development mode.
func ServeArgs(dev bool, host string) []string {
	args := []string{"serve", "--host", host, "--port", "0"}
	if dev {
		args = append(args, "--ui-dev-server", DevUIServerURL, "--log-level", "debug")
	}
	return args
}

// SupportsUserShell reports whether the child should be launched
// through the user's login shell. The shell route exists so the CLI
// inherits version-manager environments only an interactive shell
// loads; it is only meaningful on Unix-like systems.
func SupportsUserShell() bool {
	return runtime.GOOS != "windows"
}

// Build produces the invocation for a resolved entry using the
// platform-appropriate strategy.
func Build(e entry.ResolvedEntry, cliArgs []string) (Invocation, error) {
	if SupportsUserShell() {
		return BuildUserShell(e, cliArgs), nil
	}
	return BuildDirect(e, cliArgs)
}

// BuildDirect invokes the node binary as a plain child process. The
// binary must be resolvable on PATH (or be an absolute path).
func BuildDirect(e entry.ResolvedEntry, cliArgs []string) (Invocation, error) {
	if _, err := exec.LookPath(e.NodeBinary); err != nil {
		return Invocation{}, ErrRuntimeNotFound
	}
	return Invocation{Program: e.NodeBinary, Args: e.RunnerArgs(cliArgs)}, nil
}

// BuildUserShell wraps the node invocation in a single escaped command
// line executed by the user's login shell, so the child inherits the
// interactive-shell environment.
func BuildUserShell(e entry.ResolvedEntry, cliArgs []string) Invocation {
	shell := DefaultShell()
	line := ShellCommandLine(e, cliArgs)
	return Invocation{Program: shell, Args: ShellArgs(shell, line), UserShell: true}
}

// ShellCommandLine renders "ELECTRON_RUN_AS_NODE=1 exec <quoted argv>".
// Every token is shell-escaped; resolved paths must not be able to
// inject into the command line.
func ShellCommandLine(e entry.ResolvedEntry, cliArgs []string) string {
	line := RunAsNodeEnv + " exec " + ShellEscape(e.NodeBinary)
	for _, arg := range e.RunnerArgs(cliArgs) {
		line += " " + ShellEscape(arg)
	}
	return line
}
