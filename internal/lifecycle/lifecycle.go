// Package lifecycle drives actuator plugins through the host-managed
// state machine: unconfigured -> inactive -> active -> finalized. A failed
// callback parks the actuator in the error state, from which only shutdown
// makes progress.
package lifecycle

import (
	"fmt"
	"sync"

	"github.com/armature-dev/armature/internal/actuator"
	"github.com/armature-dev/armature/internal/hardware"
)

// State enumerates the lifecycle positions an actuator can occupy.
type State string

const (
	StateUnconfigured State = "unconfigured"
	StateInactive     State = "inactive"
	StateActive       State = "active"
	StateFinalized    State = "finalized"
	StateError        State = "error"
)

// TransitionFunc observes completed transitions (journal, TUI).
type TransitionFunc func(component string, from, to State)

// Managed pairs an actuator with its lifecycle state and serializes
// transitions.
type Managed struct {
	mu        sync.Mutex
	component string
	act       actuator.Actuator
	state     State
	onChange  TransitionFunc
}

// Manage wraps an actuator for the named component.
func Manage(component string, act actuator.Actuator) (*Managed, error) {
	if component == "" {
		return nil, fmt.Errorf("lifecycle: component name is required")
	}
	if act == nil {
		return nil, fmt.Errorf("lifecycle: actuator is required for %s", component)
	}
	return &Managed{component: component, act: act, state: StateUnconfigured}, nil
}

// OnTransition installs a transition observer. Pass nil to remove it.
func (m *Managed) OnTransition(fn TransitionFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Component returns the component name this record manages.
func (m *Managed) Component() string { return m.component }

// Actuator returns the managed plugin instance.
func (m *Managed) Actuator() actuator.Actuator { return m.act }

// State returns the current lifecycle state.
func (m *Managed) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Configure runs the plugin's Init against the component declaration.
// Valid only from unconfigured.
func (m *Managed) Configure(component hardware.Component) error {
	return m.transition(StateUnconfigured, StateInactive, "configure", func() error {
		return m.act.Init(component)
	})
}

// Activate runs the plugin's Activate callback. Valid only from inactive.
func (m *Managed) Activate() error {
	return m.transition(StateInactive, StateActive, "activate", m.act.Activate)
}

// Deactivate runs the plugin's Deactivate callback. Valid only from active.
func (m *Managed) Deactivate() error {
	return m.transition(StateActive, StateInactive, "deactivate", m.act.Deactivate)
}

// Shutdown finalizes the actuator from any state. An active actuator is
// deactivated first; shutdown of an already finalized actuator is a no-op.
func (m *Managed) Shutdown() error {
	m.mu.Lock()
	if m.state == StateFinalized {
		m.mu.Unlock()
		return nil
	}
	if m.state == StateActive {
		m.mu.Unlock()
		if err := m.Deactivate(); err != nil {
			return fmt.Errorf("lifecycle: %s: shutdown: %w", m.component, err)
		}
		m.mu.Lock()
	}
	from := m.state
	m.state = StateFinalized
	observer := m.onChange
	m.mu.Unlock()
	if observer != nil {
		observer(m.component, from, StateFinalized)
	}
	return nil
}

func (m *Managed) transition(from, to State, label string, callback func() error) error {
	m.mu.Lock()
	if m.state != from {
		current := m.state
		m.mu.Unlock()
		return fmt.Errorf("lifecycle: %s: cannot %s from %s", m.component, label, current)
	}
	m.mu.Unlock()

	// Callbacks may block for seconds (startup countdowns), so they run
	// outside the lock.
	if err := callback(); err != nil {
		m.mu.Lock()
		prev := m.state
		m.state = StateError
		observer := m.onChange
		m.mu.Unlock()
		if observer != nil {
			observer(m.component, prev, StateError)
		}
		return fmt.Errorf("lifecycle: %s: %s: %w", m.component, label, err)
	}

	m.mu.Lock()
	prev := m.state
	m.state = to
	observer := m.onChange
	m.mu.Unlock()
	if observer != nil {
		observer(m.component, prev, to)
	}
	return nil
}
