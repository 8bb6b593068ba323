package actuator

import "github.com/armature-dev/armature/internal/hardware"

// Base provides common plumbing for actuators (identity + exported handles).
type Base struct {
	info     Info
	states   []*hardware.Handle
	commands []*hardware.Handle
}

// NewBase seeds the helper with plugin info.
func NewBase(info Info) Base {
	return Base{info: info}
}

// SetStateInterfaces records the handles exported for reading.
func (b *Base) SetStateInterfaces(handles ...*hardware.Handle) {
	b.states = append([]*hardware.Handle{}, handles...)
}

// SetCommandInterfaces records the handles exported for writing.
func (b *Base) SetCommandInterfaces(handles ...*hardware.Handle) {
	b.commands = append([]*hardware.Handle{}, handles...)
}

// Info implements Actuator.Info.
func (b *Base) Info() Info {
	return b.info
}

// StateInterfaces implements Actuator.StateInterfaces.
func (b *Base) StateInterfaces() []*hardware.Handle {
	return append([]*hardware.Handle{}, b.states...)
}

// CommandInterfaces implements Actuator.CommandInterfaces.
func (b *Base) CommandInterfaces() []*hardware.Handle {
	return append([]*hardware.Handle{}, b.commands...)
}
