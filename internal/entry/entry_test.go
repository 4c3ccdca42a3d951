package entry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("// stub\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestResolveDevPrefersTSX(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "node_modules/tsx/dist/cli.js"))
	touch(t, filepath.Join(dir, "packages/server/src/index.ts"))
	t.Chdir(dir)

	e, err := Resolve(true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.Runner != RunnerTSX {
		t.Fatalf("runner = %v, want tsx", e.Runner)
	}
	if filepath.Base(e.RunnerPath) != "cli.js" {
		t.Fatalf("runner path = %q", e.RunnerPath)
	}
	if filepath.Base(e.Entry) != "index.ts" {
		t.Fatalf("entry = %q", e.Entry)
	}
}

func TestResolveDevFallsBackToDist(t *testing.T) {
	// Dist candidates are anchored three directories above cwd.
	root := t.TempDir()
	cwd := filepath.Join(root, "packages/tauri-app/src-tauri")
	if err := os.MkdirAll(cwd, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, filepath.Join(root, "packages/server/dist/bin.js"))
	t.Chdir(cwd)

	// Dev requested, but no tsx runner present: built artifact wins.
	e, err := Resolve(true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.Runner != RunnerNode {
		t.Fatalf("runner = %v, want node", e.Runner)
	}
	if filepath.Base(e.Entry) != "bin.js" {
		t.Fatalf("entry = %q", e.Entry)
	}
}

func TestResolveDistPrefersBinOverIndex(t *testing.T) {
	root := t.TempDir()
	cwd := filepath.Join(root, "a/b/c")
	if err := os.MkdirAll(cwd, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, filepath.Join(root, "packages/server/dist/bin.js"))
	touch(t, filepath.Join(root, "packages/server/dist/index.js"))
	t.Chdir(cwd)

	e, err := Resolve(false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(e.Entry) != "bin.js" {
		t.Fatalf("entry = %q, want bin.js first", e.Entry)
	}
}

func TestResolveNotFound(t *testing.T) {
	root := t.TempDir()
	cwd := filepath.Join(root, "a/b/c")
	if err := os.MkdirAll(cwd, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Chdir(cwd)

	_, err := Resolve(false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNodeBinaryOverride(t *testing.T) {
	t.Setenv("NODE_BINARY", "/opt/node/bin/node")
	if got := NodeBinary(); got != "/opt/node/bin/node" {
		t.Fatalf("node binary = %q", got)
	}
	t.Setenv("NODE_BINARY", "")
	if got := NodeBinary(); got != "node" {
		t.Fatalf("default node binary = %q", got)
	}
}

func TestRunnerArgsOrder(t *testing.T) {
	e := ResolvedEntry{Entry: "/x/index.ts", Runner: RunnerTSX, RunnerPath: "/x/tsx.js"}
	got := e.RunnerArgs([]string{"serve", "--port", "0"})
	want := []string{"/x/tsx.js", "/x/index.ts", "serve", "--port", "0"}
	if len(got) != len(want) {
		t.Fatalf("args = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	direct := ResolvedEntry{Entry: "/x/bin.js", Runner: RunnerNode}
	got = direct.RunnerArgs([]string{"serve"})
	if len(got) != 2 || got[0] != "/x/bin.js" {
		t.Fatalf("direct args = %v", got)
	}
}
