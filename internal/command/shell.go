package command

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// DefaultShell returns the user's login shell from $SHELL, with a
// platform fallback.
func DefaultShell() string {
	if shell := strings.TrimSpace(os.Getenv("SHELL")); shell != "" {
		return shell
	}
	if runtime.GOOS == "darwin" {
		return "/bin/zsh"
	}
	return "/bin/bash"
}

// ShellArgs builds the flag list for running command through shell as
// a login shell. zsh additionally needs -i to source the user's rc
// files; bash reads its profile with -l alone.
func ShellArgs(shell, command string) []string {
	name := strings.ToLower(filepath.Base(shell))
	if strings.Contains(name, "zsh") {
		return []string{"-l", "-i", "-c", command}
	}
	return []string{"-l", "-c", command}
}

// shellSafe matches tokens that need no quoting: alphanumerics plus
// the path and flag characters. Anything outside this set (spaces,
// quotes, `;`, `|`, `&`, globs, ...) gets single-quoted, so a resolved
// path can never smuggle a second command onto the line.
var shellSafe = regexp.MustCompile(`^[A-Za-z0-9@%_+=:,./-]+$`)

// ShellEscape quotes a token for a POSIX shell. Empty tokens become an
// explicit empty string; tokens outside the safe set are single-quoted
// with embedded single quotes escaped via the '\'' idiom; everything
// else passes through untouched.
func ShellEscape(token string) string {
	if token == "" {
		return "''"
	}
	if shellSafe.MatchString(token) {
		return token
	}
	return "'" + strings.ReplaceAll(token, "'", `'\''`) + "'"
}
