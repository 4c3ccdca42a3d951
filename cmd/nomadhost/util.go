package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/neuralnomads/nomadhost"
)

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printStatus(w io.Writer, st nomadhost.Status) {
	_, _ = fmt.Fprintf(w, "state: %s\n", st.State)
	if st.PID != 0 {
		_, _ = fmt.Fprintf(w, "pid:   %d\n", st.PID)
	}
	if st.URL != "" {
		_, _ = fmt.Fprintf(w, "url:   %s\n", st.URL)
	}
	if st.Error != "" {
		_, _ = fmt.Fprintf(w, "error: %s\n", st.Error)
	}
}
