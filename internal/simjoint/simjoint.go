// Package simjoint implements the built-in simulated rotary joint actuator.
// It models a single revolute joint whose position chases the commanded
// value with a linear low-pass step each read cycle.
package simjoint

import (
	"fmt"
	"math"
	"time"

	"github.com/armature-dev/armature/internal/actuator"
	"github.com/armature-dev/armature/internal/hardware"
	"github.com/armature-dev/armature/internal/logging"
)

// PluginType is the registry key for the simulated rotary joint.
const PluginType = "sim-rotary-joint"

// Parameter keys read from the component's parameter map.
const (
	ParamStartDurationSec = "start_duration_sec"
	ParamStopDurationSec  = "stop_duration_sec"
	ParamSlowdown         = "slowdown"
)

// Joint is a simulated single-joint rotary actuator.
type Joint struct {
	actuator.Base
	log *logging.Logger

	joint    string
	startSec int
	stopSec  int
	slowdown float64

	state   float64
	command float64

	// sleep is swapped out by tests so countdowns don't block.
	sleep func(time.Duration)
}

// New constructs an unconfigured simulated joint.
func New(log *logging.Logger) *Joint {
	if log == nil {
		log = logging.Nop()
	}
	return &Joint{
		Base: actuator.NewBase(actuator.Info{
			Type:        PluginType,
			Name:        "Simulated Rotary Joint",
			Description: "Single revolute joint with first-order simulated dynamics.",
			Version:     "1.0.0",
		}),
		log:   log,
		sleep: time.Sleep,
	}
}

// Register installs the plugin factory on the given registry.
func Register(reg *actuator.Registry, log *logging.Logger) error {
	return reg.Register(PluginType, func() (actuator.Actuator, error) {
		return New(log), nil
	})
}

// Init validates the declared interface shape and reads the simulation
// parameters. The joint must expose exactly one position command interface
// and exactly one position state interface; anything else is a fatal
// initialization error.
func (j *Joint) Init(component hardware.Component) error {
	if len(component.Joints) == 0 {
		return fmt.Errorf("simjoint: component %s declares no joints", component.Name)
	}
	joint := component.Joints[0]

	if got := len(joint.CommandInterfaces); got != 1 {
		return fmt.Errorf("simjoint: joint %s has %d command interfaces, 1 expected", joint.Name, got)
	}
	if kind := joint.CommandInterfaces[0].Kind; kind != hardware.KindPosition {
		return fmt.Errorf("simjoint: joint %s has %s command interface, %s expected",
			joint.Name, kind, hardware.KindPosition)
	}
	if got := len(joint.StateInterfaces); got != 1 {
		return fmt.Errorf("simjoint: joint %s has %d state interfaces, 1 expected", joint.Name, got)
	}
	if kind := joint.StateInterfaces[0].Kind; kind != hardware.KindPosition {
		return fmt.Errorf("simjoint: joint %s has %s state interface, %s expected",
			joint.Name, kind, hardware.KindPosition)
	}

	startSec, err := component.Params.Int(ParamStartDurationSec)
	if err != nil {
		return fmt.Errorf("simjoint: component %s: %w", component.Name, err)
	}
	stopSec, err := component.Params.Int(ParamStopDurationSec)
	if err != nil {
		return fmt.Errorf("simjoint: component %s: %w", component.Name, err)
	}
	slowdown, err := component.Params.Float(ParamSlowdown)
	if err != nil {
		return fmt.Errorf("simjoint: component %s: %w", component.Name, err)
	}
	if slowdown == 0 {
		return fmt.Errorf("simjoint: component %s: slowdown must be non-zero", component.Name)
	}

	j.joint = joint.Name
	j.startSec = startSec
	j.stopSec = stopSec
	j.slowdown = slowdown
	j.state = math.NaN()
	j.command = math.NaN()

	stateHandle, err := hardware.NewHandle(j.joint, hardware.KindPosition, &j.state)
	if err != nil {
		return fmt.Errorf("simjoint: %w", err)
	}
	commandHandle, err := hardware.NewHandle(j.joint, hardware.KindPosition, &j.command)
	if err != nil {
		return fmt.Errorf("simjoint: %w", err)
	}
	j.SetStateInterfaces(stateHandle)
	j.SetCommandInterfaces(commandHandle)
	return nil
}

// Activate simulates hardware startup: one blocking second per configured
// start second with a countdown log, then defaults the joint to zero if it
// was never positioned.
func (j *Joint) Activate() error {
	j.log.Infow("starting, please wait", "joint", j.joint, "seconds", j.startSec)
	j.countdown(j.startSec)
	if math.IsNaN(j.state) {
		j.state = 0
		j.command = 0
	}
	j.log.Infow("successfully started", "joint", j.joint)
	return nil
}

// Deactivate simulates hardware shutdown with the configured stop countdown.
func (j *Joint) Deactivate() error {
	j.log.Infow("stopping, please wait", "joint", j.joint, "seconds", j.stopSec)
	j.countdown(j.stopSec)
	j.log.Infow("successfully stopped", "joint", j.joint)
	return nil
}

// Read advances the simulated state toward the command with a first-order
// low-pass step.
func (j *Joint) Read() error {
	j.state += (j.command - j.state) / j.slowdown
	j.log.Debugw("read state", "joint", j.joint, "state", j.state)
	return nil
}

// Write would push the command to real hardware; the simulation just logs it.
func (j *Joint) Write() error {
	j.log.Debugw("wrote command", "joint", j.joint, "command", j.command)
	return nil
}

func (j *Joint) countdown(seconds int) {
	for i := 0; i < seconds; i++ {
		j.sleep(time.Second)
		j.log.Infow("countdown", "joint", j.joint, "seconds_left", seconds-i)
	}
}
