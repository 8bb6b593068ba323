package hardware

import "fmt"

// Handle is a named, kinded view over a single float64 cell owned by an
// actuator. The host reads state handles and writes command handles without
// knowing anything about the plugin behind them.
type Handle struct {
	joint string
	kind  InterfaceKind
	cell  *float64
}

// NewHandle binds a handle to the given storage cell.
func NewHandle(joint string, kind InterfaceKind, cell *float64) (*Handle, error) {
	if joint == "" {
		return nil, fmt.Errorf("hardware: handle joint name is required")
	}
	if !kind.valid() {
		return nil, fmt.Errorf("hardware: handle for %s: unknown interface kind %q", joint, kind)
	}
	if cell == nil {
		return nil, fmt.Errorf("hardware: handle %s/%s: storage cell is nil", joint, kind)
	}
	return &Handle{joint: joint, kind: kind, cell: cell}, nil
}

// Joint returns the joint the handle belongs to.
func (h *Handle) Joint() string { return h.joint }

// Kind returns the interface kind the handle carries.
func (h *Handle) Kind() InterfaceKind { return h.kind }

// Get reads the current value.
func (h *Handle) Get() float64 { return *h.cell }

// Set stores a new value.
func (h *Handle) Set(value float64) { *h.cell = value }
