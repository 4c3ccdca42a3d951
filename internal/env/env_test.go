package env

import (
	"strings"
	"testing"
)

func lookup(list []string, key string) (string, bool) {
	for _, kv := range list {
		if strings.HasPrefix(kv, key+"=") {
			return strings.TrimPrefix(kv, key+"="), true
		}
	}
	return "", false
}

func TestMergePrecedence(t *testing.T) {
	e := New()
	e.env = Var{"PATH": "/usr/bin", "LANG": "C"}
	e.Set("LANG", "en_US.UTF-8")

	out := e.Merge([]string{"ELECTRON_RUN_AS_NODE=1", "LANG=ko_KR.UTF-8"})

	if v, ok := lookup(out, "PATH"); !ok || v != "/usr/bin" {
		t.Fatalf("PATH = %q %v", v, ok)
	}
	// extra entries override Var overrides which override the base
	if v, _ := lookup(out, "LANG"); v != "ko_KR.UTF-8" {
		t.Fatalf("LANG = %q", v)
	}
	if v, _ := lookup(out, "ELECTRON_RUN_AS_NODE"); v != "1" {
		t.Fatalf("marker = %q", v)
	}
}

func TestMergeSkipsMalformedEntries(t *testing.T) {
	e := New()
	e.env = Var{"A": "1"}
	out := e.Merge([]string{"novalue", "=empty-key"})
	if len(out) != 1 {
		t.Fatalf("out = %v", out)
	}
}

func TestMergeUsesOSEnvByDefault(t *testing.T) {
	t.Setenv("NOMADHOST_ENV_MARKER", "yes")
	e := New()
	out := e.Merge(nil)
	if v, ok := lookup(out, "NOMADHOST_ENV_MARKER"); !ok || v != "yes" {
		t.Fatalf("OS env not used: %q %v", v, ok)
	}
}
