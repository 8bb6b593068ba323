package hardware

import (
	"fmt"
	"strconv"
	"strings"
)

// InterfaceKind identifies what quantity a command or state interface carries.
type InterfaceKind string

const (
	KindPosition InterfaceKind = "position"
	KindVelocity InterfaceKind = "velocity"
	KindEffort   InterfaceKind = "effort"
)

// KnownKinds lists every interface kind the host understands.
var KnownKinds = []InterfaceKind{KindPosition, KindVelocity, KindEffort}

func (k InterfaceKind) valid() bool {
	for _, known := range KnownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// InterfaceInfo declares a single command or state interface on a joint.
type InterfaceInfo struct {
	Kind InterfaceKind `yaml:"kind"`
	Min  *float64      `yaml:"min,omitempty"`
	Max  *float64      `yaml:"max,omitempty"`
}

// Validate ensures the interface declaration is well-formed.
func (i InterfaceInfo) Validate() error {
	if !i.Kind.valid() {
		return fmt.Errorf("hardware: unknown interface kind %q", i.Kind)
	}
	if i.Min != nil && i.Max != nil && *i.Min > *i.Max {
		return fmt.Errorf("hardware: interface %s: min %g exceeds max %g", i.Kind, *i.Min, *i.Max)
	}
	return nil
}

// JointInfo declares one joint of a component and the interfaces it exposes.
type JointInfo struct {
	Name              string          `yaml:"name"`
	CommandInterfaces []InterfaceInfo `yaml:"command_interfaces"`
	StateInterfaces   []InterfaceInfo `yaml:"state_interfaces"`
}

// Validate ensures the joint declaration is well-formed.
func (j JointInfo) Validate() error {
	if strings.TrimSpace(j.Name) == "" {
		return fmt.Errorf("hardware: joint name is required")
	}
	for idx, iface := range j.CommandInterfaces {
		if err := iface.Validate(); err != nil {
			return fmt.Errorf("hardware: joint %s: command_interfaces[%d]: %w", j.Name, idx, err)
		}
	}
	for idx, iface := range j.StateInterfaces {
		if err := iface.Validate(); err != nil {
			return fmt.Errorf("hardware: joint %s: state_interfaces[%d]: %w", j.Name, idx, err)
		}
	}
	return nil
}

// Params holds the raw key/value parameters declared for a component.
// Values stay strings on disk; typed accessors parse on demand.
type Params map[string]string

// Float parses the named parameter as a float64.
func (p Params) Float(key string) (float64, error) {
	raw, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("hardware: parameter %q is not set", key)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("hardware: parameter %q: parse %q as float: %w", key, raw, err)
	}
	return value, nil
}

// Int parses the named parameter as an int.
func (p Params) Int(key string) (int, error) {
	raw, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("hardware: parameter %q is not set", key)
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("hardware: parameter %q: parse %q as int: %w", key, raw, err)
	}
	return value, nil
}

// Component describes one hardware component: the plugin that drives it,
// its parameters, and the joints it owns.
type Component struct {
	Name   string      `yaml:"name"`
	Plugin string      `yaml:"plugin"`
	Params Params      `yaml:"params,omitempty"`
	Joints []JointInfo `yaml:"joints"`
}

// Validate ensures the component declaration is well-formed. Plugin type
// resolution is deferred to the actuator registry.
func (c Component) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("hardware: component name is required")
	}
	if strings.TrimSpace(c.Plugin) == "" {
		return fmt.Errorf("hardware: component %s: plugin is required", c.Name)
	}
	if len(c.Joints) == 0 {
		return fmt.Errorf("hardware: component %s: at least one joint is required", c.Name)
	}
	seen := make(map[string]struct{}, len(c.Joints))
	for _, joint := range c.Joints {
		if err := joint.Validate(); err != nil {
			return fmt.Errorf("hardware: component %s: %w", c.Name, err)
		}
		if _, dup := seen[joint.Name]; dup {
			return fmt.Errorf("hardware: component %s: duplicate joint %s", c.Name, joint.Name)
		}
		seen[joint.Name] = struct{}{}
	}
	return nil
}

// Description is the root of a parsed hardware description file.
type Description struct {
	Components []Component `yaml:"components"`
}

// Validate ensures the description as a whole is well-formed.
func (d Description) Validate() error {
	if len(d.Components) == 0 {
		return fmt.Errorf("hardware: description declares no components")
	}
	seen := make(map[string]struct{}, len(d.Components))
	for _, component := range d.Components {
		if err := component.Validate(); err != nil {
			return err
		}
		if _, dup := seen[component.Name]; dup {
			return fmt.Errorf("hardware: duplicate component name %s", component.Name)
		}
		seen[component.Name] = struct{}{}
	}
	return nil
}
