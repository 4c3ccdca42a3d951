package supervisor

// State is the supervision state of the CLI server process.
type State string

const (
	StateStarting State = "starting"
	StateReady    State = "ready"
	StateError    State = "error"
	StateStopped  State = "stopped"
)

// Status is the single source of truth for supervision state. It is
// mutated only by the supervisor's workers under one lock; callers
// always receive a copy.
//
// Port and URL are populated exactly when State is ready; Error is
// non-empty exactly when State is error.
type Status struct {
	State State  `json:"state"`
	PID   int    `json:"pid,omitempty"`
	Port  int    `json:"port,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}
