package system

import "fmt"

// SystemState is the lifecycle phase of the core process.
type SystemState string

const (
	StateInitializing SystemState = "INITIALIZING"
	StateRunning      SystemState = "RUNNING"
	StateStopping     SystemState = "STOPPING"
	StateStopped      SystemState = "STOPPED"
	StateError        SystemState = "ERROR"
)

var transitions = map[SystemState][]SystemState{
	StateInitializing: {StateRunning, StateStopping, StateError},
	StateRunning:      {StateStopping, StateError},
	StateStopping:     {StateStopped, StateError},
	StateStopped:      {StateInitializing},
	StateError:        {StateInitializing, StateStopping, StateStopped},
}

func (s SystemState) String() string {
	if _, ok := transitions[s]; !ok {
		return "UNKNOWN"
	}
	return string(s)
}

// Accepting reports whether actor invocations should be served.
func (s SystemState) Accepting() bool {
	return s == StateRunning
}

func ValidateTransition(from, to SystemState) error {
	allowed, ok := transitions[from]
	if !ok {
		return fmt.Errorf("invalid current state: %s", from)
	}

	for _, next := range allowed {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("invalid state transition: %s -> %s", from, to)
}
