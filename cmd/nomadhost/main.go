package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/neuralnomads/nomadhost"
)

var version = "dev"

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command with its subcommands.
func buildRoot() *cobra.Command {
	serveFlags := &ServeFlags{}
	statusFlags := &StatusFlags{}
	startFlags := &ControlFlags{}
	stopFlags := &ControlFlags{}
	restartFlags := &ControlFlags{}

	root := &cobra.Command{
		Use:           "nomadhost",
		Short:         "Host daemon for the CodeNomad CLI server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		createServeCommand(serveFlags),
		createStatusCommand(statusFlags),
		createStartCommand(startFlags),
		createStopCommand(stopFlags),
		createRestartCommand(restartFlags),
		createVersionCommand(),
	)
	return root
}

// createServeCommand creates the serve subcommand.
func createServeCommand(flags *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the CLI supervisor and its control API",
		Long: `Run the supervisor daemon: launch the CodeNomad CLI server,
watch its output for readiness, and expose the control API.

Examples:
  nomadhost serve                       # launch the CLI and serve the API
  nomadhost serve --dev                 # run the CLI from workspace sources
  nomadhost serve --no-start            # API only, start the CLI later
  nomadhost serve --history-dsn state.db --metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags)
		},
	}

	cmd.Flags().StringVar(&flags.Listen, "listen", "127.0.0.1:8080", "control API listen address")
	cmd.Flags().StringVar(&flags.BasePath, "base-path", "/api", "URL prefix for the control API")
	cmd.Flags().BoolVar(&flags.Dev, "dev", false, "run the CLI from workspace sources via tsx")
	cmd.Flags().BoolVar(&flags.NoStart, "no-start", false, "do not launch the CLI on startup")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "info", "daemon log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&flags.LogDir, "log-dir", "", "capture CLI stdout/stderr under this directory")
	cmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "lifecycle history sink DSN (clickhouse://, postgres://, sqlite:// or file path)")
	cmd.Flags().BoolVar(&flags.Metrics, "metrics", false, "expose prometheus metrics on the API")
	cmd.Flags().DurationVar(&flags.StartTimeout, "start-timeout", 0, "override the readiness deadline")
	cmd.Flags().DurationVar(&flags.StopGrace, "stop-grace", 0, "override the graceful stop window")
	return cmd
}

func runServe(flags *ServeFlags) error {
	log := nomadhost.NewLogger(parseLevel(flags.LogLevel))

	var hist nomadhost.HistorySink
	if flags.HistoryDSN != "" {
		sink, err := nomadhost.NewHistorySink(flags.HistoryDSN)
		if err != nil {
			return fmt.Errorf("history sink: %w", err)
		}
		hist = sink
		defer func() { _ = sink.Close() }()
	}

	if flags.Metrics {
		if err := nomadhost.RegisterMetricsDefault(); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	bus := nomadhost.NewBus()
	sup := nomadhost.New(nomadhost.Options{
		Emitter:      nomadhost.MultiEmitter(bus, nomadhost.SlogEmitter(log)),
		Logger:       log,
		History:      hist,
		Capture:      nomadhost.CaptureConfig{Dir: flags.LogDir},
		StartTimeout: flags.StartTimeout,
		StopGrace:    flags.StopGrace,
		Metrics:      flags.Metrics,
	})

	srv := nomadhost.NewHTTPServer(flags.Listen, flags.BasePath, sup, bus, flags.Metrics)
	log.Info("control API listening", "addr", flags.Listen, "base", flags.BasePath)

	if !flags.NoStart {
		sup.Start(flags.Dev)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", "signal", sig.String())

	sup.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// createStatusCommand creates the status subcommand.
func createStatusCommand(flags *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the CLI server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			if !client.IsReachable() {
				return fmt.Errorf("daemon not reachable at %s", flags.APIUrl)
			}
			st, err := client.GetStatus()
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

// createStartCommand creates the start subcommand.
func createStartCommand(flags *ControlFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Launch the CLI server through the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			if err := client.Start(flags.Dev); err != nil {
				return err
			}
			cmd.Println("start requested")
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.Dev, "dev", false, "run the CLI from workspace sources via tsx")
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

// createStopCommand creates the stop subcommand.
func createStopCommand(flags *ControlFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Terminate the CLI server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			if err := client.Stop(); err != nil {
				return err
			}
			cmd.Println("stopped")
			return nil
		},
	}
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

// createRestartCommand creates the restart subcommand.
func createRestartCommand(flags *ControlFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the CLI server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(flags.APIUrl, flags.APITimeout)
			st, err := client.Restart(flags.Dev)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.Dev, "dev", false, "run the CLI from workspace sources via tsx")
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the nomadhost version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("nomadhost", version)
		},
	}
}

func addAPIFlags(cmd *cobra.Command, url *string, timeout *time.Duration) {
	cmd.Flags().StringVar(url, "api-url", "http://localhost:8080/api", "daemon API base URL")
	cmd.Flags().DurationVar(timeout, "api-timeout", 10*time.Second, "daemon API request timeout")
}
