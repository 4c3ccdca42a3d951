package main

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/neuralnomads/nomadhost"
)

type sleepLauncher struct{}

func (sleepLauncher) Launch(bool, string) (*exec.Cmd, error) {
	return exec.Command("sh", "-c", "sleep 5"), nil
}

func newTestDaemon(t *testing.T) *APIClient {
	t.Helper()
	sup := nomadhost.New(nomadhost.Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Launcher: sleepLauncher{},
		BindHost: func() string { return "127.0.0.1" },
	})
	t.Cleanup(sup.Stop)
	srv := httptest.NewServer(nomadhost.HTTPHandler(sup, nil, "/api", false))
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL+"/api", 5*time.Second)
}

func TestClientDefaults(t *testing.T) {
	c := NewAPIClient("", 0)
	if c.baseURL != "http://localhost:8080/api" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
	if c.client.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v", c.client.Timeout)
	}
}

func TestClientStatusRoundTrip(t *testing.T) {
	c := newTestDaemon(t)
	if !c.IsReachable() {
		t.Fatal("daemon not reachable")
	}
	st, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.State != nomadhost.StateStopped {
		t.Fatalf("state = %q, want stopped", st.State)
	}
}

func TestClientLifecycle(t *testing.T) {
	c := newTestDaemon(t)
	if err := c.Start(false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	st, err := c.Restart(false)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if st.State != nomadhost.StateStarting {
		t.Fatalf("restart snapshot state = %q, want starting", st.State)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("final Stop: %v", err)
	}
}

func TestClientUnreachable(t *testing.T) {
	c := NewAPIClient("http://127.0.0.1:1/api", 200*time.Millisecond)
	if c.IsReachable() {
		t.Fatal("unexpectedly reachable")
	}
	if _, err := c.GetStatus(); err == nil {
		t.Fatal("GetStatus on dead endpoint succeeded")
	}
	if err := c.Stop(); err == nil {
		t.Fatal("Stop on dead endpoint succeeded")
	}
}
