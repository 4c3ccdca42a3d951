package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/neuralnomads/nomadhost/internal/command"
	"github.com/neuralnomads/nomadhost/internal/config"
	"github.com/neuralnomads/nomadhost/internal/entry"
	"github.com/neuralnomads/nomadhost/internal/env"
	"github.com/neuralnomads/nomadhost/internal/events"
	"github.com/neuralnomads/nomadhost/internal/history"
	"github.com/neuralnomads/nomadhost/internal/logger"
	"github.com/neuralnomads/nomadhost/internal/metrics"
	"github.com/neuralnomads/nomadhost/internal/navigation"
)

const (
	// DefaultStartTimeout bounds the wait for a readiness signal.
	DefaultStartTimeout = 60 * time.Second
	// DefaultStopGrace is the window between the terminate signal and
	// the forced kill.
	DefaultStopGrace = 4 * time.Second

	readyTimeoutMsg = "CLI did not start in time"
)

// Launcher builds the unstarted child command for one run. The
// production launcher resolves the CLI entry and invocation; tests
// substitute their own.
type Launcher interface {
	Launch(dev bool, host string) (*exec.Cmd, error)
}

// Options configures a Supervisor. Zero values select working
// defaults.
type Options struct {
	Emitter      events.Emitter       // host notification sink
	Navigator    navigation.Navigator // host display surface
	Logger       *slog.Logger
	History      history.Sink  // lifecycle event export, optional
	Capture      logger.Config // child output capture files, optional
	Launcher     Launcher      // nil selects the CLI launcher
	BindHost     func() string // nil selects config.ListeningHost
	ExtraEnv     []string      // extra K=V entries for the child
	StartTimeout time.Duration
	StopGrace    time.Duration
	Metrics      bool // update prometheus collectors
}

// Supervisor owns the lifecycle of one CLI server process: spawn,
// readiness detection, timeout enforcement, and termination. All
// state is behind a single lock; the ready flag is a separate atomic
// so the log-scanning path never contends with status readers.
type Supervisor struct {
	mu       sync.Mutex
	status   Status
	child    *exec.Cmd
	waitDone chan struct{}
	dev      bool
	gen      uint64 // run generation; bumped by Start and Stop

	ready     atomic.Bool
	spawnedAt atomic.Int64 // unix nanos, for the time-to-ready metric

	emitter      events.Emitter
	nav          navigation.Navigator
	log          *slog.Logger
	hist         history.Sink
	capture      logger.Config
	launcher     Launcher
	bindHost     func() string
	startTimeout time.Duration
	stopGrace    time.Duration
	metricsOn    bool
}

// New creates a stopped Supervisor.
func New(opts Options) *Supervisor {
	s := &Supervisor{
		status:       Status{State: StateStopped},
		emitter:      opts.Emitter,
		nav:          opts.Navigator,
		log:          opts.Logger,
		hist:         opts.History,
		capture:      opts.Capture,
		launcher:     opts.Launcher,
		bindHost:     opts.BindHost,
		startTimeout: opts.StartTimeout,
		stopGrace:    opts.StopGrace,
		metricsOn:    opts.Metrics,
	}
	if s.emitter == nil {
		s.emitter = events.Nop{}
	}
	if s.nav == nil {
		s.nav = navigation.Nop{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.hist == nil {
		s.hist = history.Nop{}
	}
	if s.launcher == nil {
		s.launcher = &CLILauncher{Env: env.New(), ExtraEnv: opts.ExtraEnv}
	}
	if s.bindHost == nil {
		s.bindHost = config.ListeningHost
	}
	if s.startTimeout <= 0 {
		s.startTimeout = DefaultStartTimeout
	}
	if s.stopGrace <= 0 {
		s.stopGrace = DefaultStopGrace
	}
	return s
}

// Status returns a snapshot of the current status.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Dev reports the development flag of the most recent Start.
func (s *Supervisor) Dev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev
}

// Start stops any existing child, resets status to starting, and
// launches the spawn worker. It never blocks on the spawn work; spawn
// and resolution failures surface asynchronously as an error status
// plus a cli:error event.
func (s *Supervisor) Start(dev bool) {
	s.log.Info("cli start requested", "dev", dev)
	s.Stop()
	s.ready.Store(false)

	s.mu.Lock()
	s.dev = dev
	s.gen++
	gen := s.gen
	s.status = Status{State: StateStarting}
	snap := s.status
	s.mu.Unlock()

	if s.metricsOn {
		metrics.IncStart()
		metrics.SetState(string(StateStarting))
	}
	s.record(history.EventStart, snap)
	s.emitStatus(snap)

	go s.spawn(gen, dev)
}

// Restart performs a stop-then-start and returns the immediate
// post-start snapshot. The eventual outcome (ready or error) arrives
// through events.
func (s *Supervisor) Restart(dev bool) Status {
	s.Start(dev)
	return s.Status()
}

// Stop terminates the current child, if any: terminate signal, then a
// bounded grace period, then a forced kill. Afterwards status is
// unconditionally reset to stopped with all transient fields cleared.
// Stop is idempotent and never reports failure.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	s.gen++ // invalidate any spawn worker still resolving
	cmd := s.child
	wd := s.waitDone
	s.child = nil
	s.waitDone = nil
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		pid := cmd.Process.Pid
		s.log.Info("stopping cli", "pid", pid)
		terminate(pid)
		if wd != nil {
			select {
			case <-wd:
			case <-time.After(s.stopGrace):
				kill(pid)
				select {
				case <-wd:
				case <-time.After(200 * time.Millisecond):
					// best-effort; the exit watcher will reap
				}
			}
		}
		if s.metricsOn {
			metrics.IncStop()
		}
		s.record(history.EventStop, Status{State: StateStopped, PID: pid})
	}

	s.mu.Lock()
	s.status = Status{State: StateStopped}
	s.mu.Unlock()
	if s.metricsOn {
		metrics.SetState(string(StateStopped))
	}
}

// spawn is the background setup worker for one run: it resolves the
// bind host and invocation, starts the child with piped output, and
// hands off to the monitor, timer, and exit watcher. The generation
// token keeps a slow worker from attaching its child to a newer run.
func (s *Supervisor) spawn(gen uint64, dev bool) {
	cmd, err := s.launcher.Launch(dev, s.bindHost())
	if err != nil {
		s.failStart(gen, err, metrics.ReasonResolve)
		return
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.failStart(gen, fmt.Errorf("pipe stdout: %w", err), metrics.ReasonSpawn)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.failStart(gen, fmt.Errorf("pipe stderr: %w", err), metrics.ReasonSpawn)
		return
	}
	s.log.Info("spawning cli", "program", cmd.Path, "args", cmd.Args[1:])

	wd := make(chan struct{})
	s.mu.Lock()
	if s.gen != gen {
		// A newer start or an explicit stop superseded this run
		// while it was resolving; never launch its child.
		s.mu.Unlock()
		_ = stdout.Close()
		_ = stderr.Close()
		return
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		s.failStart(gen, fmt.Errorf("spawn cli: %w", err), metrics.ReasonSpawn)
		return
	}
	pid := cmd.Process.Pid
	s.spawnedAt.Store(time.Now().UnixNano())
	s.child = cmd
	s.waitDone = wd
	s.status.PID = pid
	snap := s.status
	s.mu.Unlock()
	s.log.Info("cli spawned", "pid", pid)
	s.emitStatus(snap)

	go s.watchOutput(cmd, stdout, stderr)
	go s.watchTimeout(cmd)
	go s.watchExit(cmd, wd)
}

func (s *Supervisor) failStart(gen uint64, err error, reason string) {
	s.log.Error("cli spawn failed", "error", err)
	s.mu.Lock()
	if s.gen != gen {
		// The failed run no longer owns the status.
		s.mu.Unlock()
		return
	}
	s.status.State = StateError
	s.status.Error = err.Error()
	snap := s.status
	s.mu.Unlock()
	if s.metricsOn {
		if errors.Is(err, entry.ErrNotFound) || errors.Is(err, command.ErrRuntimeNotFound) {
			reason = metrics.ReasonResolve
		}
		metrics.IncError(reason)
		metrics.SetState(string(StateError))
	}
	s.record(history.EventError, snap)
	s.emitter.Emit(events.EventError, events.ErrorPayload{Message: err.Error()})
	s.emitStatus(snap)
}

// watchOutput drains stdout to end-of-stream, then stderr. The
// readiness signal is expected on stdout; stderr produced while stdout
// is live is only scanned after stdout closes.
func (s *Supervisor) watchOutput(cmd *exec.Cmd, stdout, stderr io.Reader) {
	var outW, errW io.WriteCloser
	if s.capture.Enabled() {
		var err error
		outW, errW, err = s.capture.Writers("cli")
		if err != nil {
			s.log.Warn("cli output capture disabled", "error", err)
		}
	}
	s.scanStream(cmd, stdout, "stdout", outW)
	s.scanStream(cmd, stderr, "stderr", errW)
	if outW != nil {
		_ = outW.Close()
	}
	if errW != nil {
		_ = errW.Close()
	}
}

func (s *Supervisor) scanStream(cmd *exec.Cmd, r io.Reader, stream string, capture io.Writer) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		s.log.Info("cli output", "stream", stream, "line", line)
		if capture != nil {
			_, _ = capture.Write([]byte(line + "\n"))
		}
		// Keep draining after readiness so a full pipe buffer never
		// blocks the child, but skip the pattern matching.
		if s.ready.Load() {
			continue
		}
		if port, ok := ExtractReadySignal(line); ok {
			s.markReady(cmd, port)
		}
	}
}

// markReady performs the one-shot readiness transition for the run
// that owns cmd.
func (s *Supervisor) markReady(cmd *exec.Cmd, port int) {
	s.mu.Lock()
	if s.child != cmd {
		// A monitor still draining a previous run's pipe must not
		// mark the current run ready with a stale port.
		s.mu.Unlock()
		return
	}
	if s.ready.Swap(true) {
		s.mu.Unlock()
		return
	}
	url := fmt.Sprintf("http://127.0.0.1:%d", port)
	s.status.State = StateReady
	s.status.Port = port
	s.status.URL = url
	s.status.Error = ""
	snap := s.status
	s.mu.Unlock()

	s.log.Info("cli ready", "url", url)
	if s.metricsOn {
		metrics.IncReady()
		metrics.SetState(string(StateReady))
		if at := s.spawnedAt.Load(); at > 0 {
			metrics.ObserveTimeToReady(time.Since(time.Unix(0, at)).Seconds())
		}
	}
	if err := s.nav.Navigate(url); err != nil {
		s.log.Warn("navigation failed", "url", url, "error", err)
	}
	s.record(history.EventReady, snap)
	s.emitter.Emit(events.EventReady, snap)
	s.emitStatus(snap)
}

// watchTimeout enforces the startup deadline for one run.
func (s *Supervisor) watchTimeout(cmd *exec.Cmd) {
	time.Sleep(s.startTimeout)
	if s.ready.Load() {
		return
	}
	s.mu.Lock()
	if s.child != cmd {
		// A newer run (or an explicit stop) owns the status now.
		s.mu.Unlock()
		return
	}
	s.status.State = StateError
	s.status.Error = readyTimeoutMsg
	snap := s.status
	s.mu.Unlock()

	s.log.Error("timeout waiting for cli readiness")
	if cmd.Process != nil {
		kill(cmd.Process.Pid)
	}
	if s.metricsOn {
		metrics.IncError(metrics.ReasonTimeout)
		metrics.SetState(string(StateError))
	}
	s.record(history.EventError, snap)
	s.emitter.Emit(events.EventError, events.ErrorPayload{Message: readyTimeoutMsg})
	s.emitStatus(snap)
}

// watchExit reaps the child and classifies the exit against the status
// observed at that moment.
func (s *Supervisor) watchExit(cmd *exec.Cmd, wd chan struct{}) {
	err := cmd.Wait()
	close(wd)

	s.mu.Lock()
	if s.child != cmd {
		// An explicit stop took ownership of this run; it resets the
		// status itself.
		s.mu.Unlock()
		return
	}
	s.child = nil
	s.waitDone = nil
	failed := s.status.State != StateReady
	if failed {
		s.status.State = StateError
		if s.status.Error == "" {
			s.status.Error = earlyExitMessage(cmd, err)
		}
	} else {
		s.status = Status{State: StateStopped}
	}
	snap := s.status
	s.mu.Unlock()

	if failed {
		s.log.Error("cli exited before ready", "error", snap.Error)
		if s.metricsOn {
			metrics.IncError(metrics.ReasonEarlyExit)
			metrics.SetState(string(StateError))
		}
		s.record(history.EventError, snap)
		s.emitter.Emit(events.EventError, events.ErrorPayload{Message: snap.Error})
	} else {
		s.log.Info("cli stopped cleanly")
		if s.metricsOn {
			metrics.SetState(string(StateStopped))
		}
		s.record(history.EventStop, snap)
	}
	s.emitStatus(snap)
}

func earlyExitMessage(cmd *exec.Cmd, err error) string {
	if state := cmd.ProcessState; state != nil {
		return fmt.Sprintf("CLI exited early: %s", state)
	}
	if err != nil {
		return fmt.Sprintf("CLI exited early: %v", err)
	}
	return "CLI exited early"
}

func (s *Supervisor) emitStatus(snap Status) {
	s.emitter.Emit(events.EventStatus, snap)
}

// record exports a lifecycle event to the history sink without
// blocking the supervision path.
func (s *Supervisor) record(t history.EventType, snap Status) {
	if _, ok := s.hist.(history.Nop); ok {
		return
	}
	e := history.Event{
		Type:       t,
		OccurredAt: time.Now(),
		Record: history.Record{
			State: string(snap.State),
			PID:   snap.PID,
			Port:  snap.Port,
			URL:   snap.URL,
			Error: snap.Error,
		},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.hist.Send(ctx, e); err != nil {
			s.log.Warn("history sink send failed", "event", t, "error", err)
		}
	}()
}
