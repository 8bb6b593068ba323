// Package host owns resolved actuators and drives them: lifecycle
// transitions on start/stop and the fixed-rate read/write control cycle in
// between.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/armature-dev/armature/internal/actuator"
	"github.com/armature-dev/armature/internal/hardware"
	"github.com/armature-dev/armature/internal/journal"
	"github.com/armature-dev/armature/internal/lifecycle"
	"github.com/armature-dev/armature/internal/logging"
)

// JointSnapshot is the per-joint view published after every cycle.
type JointSnapshot struct {
	Component string  `json:"component"`
	Joint     string  `json:"joint"`
	Lifecycle string  `json:"lifecycle"`
	State     float64 `json:"state"`
	Command   float64 `json:"command"`
}

// Snapshot captures the host's view of every joint after a control cycle.
type Snapshot struct {
	Cycle  uint64          `json:"cycle"`
	At     time.Time       `json:"at"`
	Joints []JointSnapshot `json:"joints"`
}

// Option customizes host construction.
type Option func(*Host)

// WithLogger overrides the default no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(h *Host) {
		if log != nil {
			h.log = log
		}
	}
}

// WithJournal records lifecycle transitions and run summaries.
func WithJournal(j *journal.Journal) Option {
	return func(h *Host) { h.journal = j }
}

// WithClock allows tests to control snapshot timestamps.
func WithClock(clock func() time.Time) Option {
	return func(h *Host) {
		if clock != nil {
			h.clock = clock
		}
	}
}

type unit struct {
	component hardware.Component
	managed   *lifecycle.Managed
	states    []*hardware.Handle
	commands  []*hardware.Handle
}

// Host drives a set of actuators resolved from a hardware description.
type Host struct {
	log     *logging.Logger
	journal *journal.Journal
	clock   func() time.Time
	period  time.Duration

	units []*unit

	mu       sync.RWMutex
	started  bool
	cycle    uint64
	snapshot Snapshot
}

// New resolves every component in the description against the registry and
// prepares (but does not start) the control loop.
func New(desc hardware.Description, reg *actuator.Registry, period time.Duration, opts ...Option) (*Host, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("host: registry is required")
	}
	if period <= 0 {
		return nil, fmt.Errorf("host: control period must be positive, got %s", period)
	}
	h := &Host{
		log:    logging.Nop(),
		clock:  func() time.Time { return time.Now().UTC() },
		period: period,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	for _, component := range desc.Components {
		act, err := reg.Resolve(component.Plugin)
		if err != nil {
			return nil, fmt.Errorf("host: component %s: %w", component.Name, err)
		}
		managed, err := lifecycle.Manage(component.Name, act)
		if err != nil {
			return nil, err
		}
		managed.OnTransition(h.observeTransition)
		h.units = append(h.units, &unit{component: component, managed: managed})
	}
	return h, nil
}

// Period returns the configured control cycle period.
func (h *Host) Period() time.Duration { return h.period }

// Start configures and activates every actuator. Plugin startup countdowns
// block here, matching the synchronous lifecycle the plugins expect.
func (h *Host) Start() error {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return fmt.Errorf("host: already started")
	}
	h.mu.Unlock()

	for _, u := range h.units {
		if err := u.managed.Configure(u.component); err != nil {
			return err
		}
		u.states = u.managed.Actuator().StateInterfaces()
		u.commands = u.managed.Actuator().CommandInterfaces()
		if err := u.managed.Activate(); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.started = true
	h.mu.Unlock()
	h.journal.Info("host started: %d components, period %s", len(h.units), h.period)
	h.publish()
	return nil
}

// Stop deactivates and finalizes every actuator. Errors are collected so one
// failing plugin does not leave the rest unfinalized.
func (h *Host) Stop() error {
	var errs []error
	for _, u := range h.units {
		if u.managed.State() == lifecycle.StateActive {
			if err := u.managed.Deactivate(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := u.managed.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	h.mu.Lock()
	h.started = false
	h.mu.Unlock()
	h.publish()
	h.journal.Info("host stopped")
	return errors.Join(errs...)
}

// Run starts the actuators and drives the control cycle until the context is
// cancelled, then stops them.
func (h *Host) Run(ctx context.Context) error {
	if err := h.Start(); err != nil {
		return err
	}
	defer func() {
		if err := h.Stop(); err != nil {
			h.log.Errorw("stop failed", "error", err)
		}
	}()

	ticker := time.NewTicker(h.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.journal.Info("control loop finished after %d cycles", h.Snapshot().Cycle)
			return nil
		case <-ticker.C:
			if err := h.Cycle(); err != nil {
				return err
			}
		}
	}
}

// Cycle performs one read/publish/write pass over all active actuators.
func (h *Host) Cycle() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return fmt.Errorf("host: not started")
	}
	for _, u := range h.units {
		if u.managed.State() != lifecycle.StateActive {
			continue
		}
		if err := u.managed.Actuator().Read(); err != nil {
			return fmt.Errorf("host: read %s: %w", u.component.Name, err)
		}
	}
	h.cycle++
	h.snapshot = h.buildSnapshotLocked()
	for _, u := range h.units {
		if u.managed.State() != lifecycle.StateActive {
			continue
		}
		if err := u.managed.Actuator().Write(); err != nil {
			return fmt.Errorf("host: write %s: %w", u.component.Name, err)
		}
	}
	return nil
}

// Snapshot returns the most recently published snapshot.
func (h *Host) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot
}

// SetCommand updates the position command for the named joint. It is safe to
// call concurrently with the control loop.
func (h *Host) SetCommand(joint string, value float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, u := range h.units {
		for _, handle := range u.commands {
			if handle.Joint() == joint && handle.Kind() == hardware.KindPosition {
				handle.Set(value)
				h.log.Infow("command set", "joint", joint, "command", value)
				return nil
			}
		}
	}
	return fmt.Errorf("host: no position command interface for joint %s", joint)
}

// Joints returns the names of all joints with a position command interface.
func (h *Host) Joints() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var names []string
	for _, u := range h.units {
		for _, handle := range u.commands {
			if handle.Kind() == hardware.KindPosition {
				names = append(names, handle.Joint())
			}
		}
	}
	return names
}

func (h *Host) publish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = h.buildSnapshotLocked()
}

func (h *Host) buildSnapshotLocked() Snapshot {
	snap := Snapshot{Cycle: h.cycle, At: h.clock()}
	for _, u := range h.units {
		state := string(u.managed.State())
		for i, stateHandle := range u.states {
			js := JointSnapshot{
				Component: u.component.Name,
				Joint:     stateHandle.Joint(),
				Lifecycle: state,
				State:     stateHandle.Get(),
			}
			if i < len(u.commands) {
				js.Command = u.commands[i].Get()
			}
			snap.Joints = append(snap.Joints, js)
		}
	}
	return snap
}

func (h *Host) observeTransition(component string, from, to lifecycle.State) {
	h.log.Infow("lifecycle transition", "component", component, "from", from, "to", to)
	if h.journal != nil {
		h.journal.Transition(component, from, to)
	}
}
