package entry

import (
	"errors"
	"os"
	"path/filepath"
)

// Runner selects how the resolved entry is executed.
type Runner int

const (
	// RunnerNode executes a built JavaScript artifact directly.
	RunnerNode Runner = iota
	// RunnerTSX executes TypeScript sources through the tsx CLI.
	RunnerTSX
)

func (r Runner) String() string {
	if r == RunnerTSX {
		return "tsx"
	}
	return "node"
}

// ErrNotFound is returned when neither a built CLI artifact nor a
// development entry could be located.
var ErrNotFound = errors.New("Unable to locate CodeNomad CLI build (dist/bin.js). Please build @neuralnomads/codenomad.")

// ResolvedEntry is the immutable result of entry resolution for one
// start: the script to run, the strategy, and the node binary that
// launches it.
type ResolvedEntry struct {
	Entry      string
	Runner     Runner
	RunnerPath string // tsx CLI script, set only for RunnerTSX
	NodeBinary string
}

// RunnerArgs returns the argv that follows the node binary: the tsx
// runner when applicable, then the entry, then the CLI arguments.
func (e ResolvedEntry) RunnerArgs(cliArgs []string) []string {
	args := make([]string, 0, len(cliArgs)+2)
	if e.Runner == RunnerTSX && e.RunnerPath != "" {
		args = append(args, e.RunnerPath)
	}
	args = append(args, e.Entry)
	args = append(args, cliArgs...)
	return args
}

// NodeBinary returns the runtime binary name, honoring NODE_BINARY.
func NodeBinary() string {
	if v := os.Getenv("NODE_BINARY"); v != "" {
		return v
	}
	return "node"
}

// Resolve locates the CLI entry. In development mode it prefers running
// TypeScript sources through tsx when both are present; otherwise it
// falls back to built dist artifacts across the packaging layouts.
func Resolve(dev bool) (ResolvedEntry, error) {
	node := NodeBinary()

	if dev {
		if tsx, ok := resolveTSX(); ok {
			if src, ok := resolveDevEntry(); ok {
				return ResolvedEntry{Entry: src, Runner: RunnerTSX, RunnerPath: tsx, NodeBinary: node}, nil
			}
		}
	}

	if dist, ok := resolveDistEntry(); ok {
		return ResolvedEntry{Entry: dist, Runner: RunnerNode, NodeBinary: node}, nil
	}
	return ResolvedEntry{}, ErrNotFound
}

// WorkspaceRoot walks three directories up from the working directory,
// matching the monorepo layout the host is started from in development.
func WorkspaceRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 3; i++ {
		dir = filepath.Dir(dir)
	}
	return dir, true
}

func resolveTSX() (string, bool) {
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, "node_modules/tsx/dist/cli.js"))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "../node_modules/tsx/dist/cli.js"))
	}
	return firstExisting(candidates)
}

func resolveDevEntry() (string, bool) {
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates,
			filepath.Join(cwd, "packages/server/src/index.ts"),
			filepath.Join(cwd, "../server/src/index.ts"),
		)
	}
	return firstExisting(candidates)
}

func resolveDistEntry() (string, bool) {
	var candidates []string
	if base, ok := WorkspaceRoot(); ok {
		candidates = append(candidates,
			filepath.Join(base, "packages/server/dist/bin.js"),
			filepath.Join(base, "packages/server/dist/index.js"),
			filepath.Join(base, "server/dist/bin.js"),
			filepath.Join(base, "server/dist/index.js"),
		)
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		roots := []string{
			filepath.Join(dir, "../Resources"),
			// Linux packaging installs resources under lib/<app>.
			filepath.Join(dir, "../lib/CodeNomad"),
			filepath.Join(dir, "../lib/codenomad"),
		}
		for _, root := range roots {
			for _, rel := range []string{
				"server/dist/bin.js",
				"server/dist/index.js",
				"server/dist/server/bin.js",
				"server/dist/server/index.js",
				"resources/server/dist/bin.js",
				"resources/server/dist/index.js",
				"resources/server/dist/server/bin.js",
				"resources/server/dist/server/index.js",
			} {
				candidates = append(candidates, filepath.Join(root, rel))
			}
		}
	}
	return firstExisting(candidates)
}

// firstExisting returns the first candidate present on disk,
// canonicalized when possible for stable logging.
func firstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if clean, err := filepath.EvalSymlinks(p); err == nil {
				return clean, true
			}
			return p, true
		}
	}
	return "", false
}
