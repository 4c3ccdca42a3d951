package main

import "time"

// Flag structs to decouple cobra from logic for testing.

type ServeFlags struct {
	Listen       string // HTTP control API listen address
	BasePath     string // URL prefix for the API
	Dev          bool   // launch the CLI against the workspace sources
	NoStart      bool   // bring up the API without launching the CLI
	LogLevel     string
	LogDir       string // capture CLI stdout/stderr under this directory
	HistoryDSN   string // lifecycle event sink, empty disables
	Metrics      bool
	StartTimeout time.Duration
	StopGrace    time.Duration
}

type ControlFlags struct {
	Dev bool
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type StatusFlags struct {
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}
