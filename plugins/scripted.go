package plugins

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/armature-dev/armature/internal/actuator"
	"github.com/armature-dev/armature/internal/hardware"
	"github.com/armature-dev/armature/internal/logging"
)

const stepFuncName = "Step"

// Optional countdown parameters understood by scripted actuators.
const (
	ParamStartDurationSec = "start_duration_sec"
	ParamStopDurationSec  = "stop_duration_sec"
)

// stepFunc advances the simulated state one cycle.
type stepFunc func(state, command float64) float64

// scriptedActuator runs user-supplied dynamics from a plugin definition. The
// script is interpreted once at construction; each read cycle calls its Step
// function with the current state and command.
type scriptedActuator struct {
	actuator.Base
	definition Definition
	log        *logging.Logger
	step       stepFunc

	joint    string
	startSec int
	stopSec  int
	state    float64
	command  float64

	sleep func(time.Duration)
}

func newScriptedActuator(def Definition, log *logging.Logger) (*scriptedActuator, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	normalized := def.Normalized()
	if log == nil {
		log = logging.Nop()
	}
	step, err := compileStep(normalized)
	if err != nil {
		return nil, err
	}
	name := normalized.Name
	if name == "" {
		name = normalized.Type
	}
	return &scriptedActuator{
		Base: actuator.NewBase(actuator.Info{
			Type:        normalized.Type,
			Name:        name,
			Description: normalized.Description,
			Version:     normalized.Version,
		}),
		definition: normalized,
		log:        log,
		step:       step,
		sleep:      time.Sleep,
	}, nil
}

// Init applies the same interface-shape contract as the built-in simulated
// joint: exactly one position command and one position state interface.
func (s *scriptedActuator) Init(component hardware.Component) error {
	if len(component.Joints) == 0 {
		return fmt.Errorf("plugin %s: component %s declares no joints", s.definition.Type, component.Name)
	}
	joint := component.Joints[0]
	if got := len(joint.CommandInterfaces); got != 1 {
		return fmt.Errorf("plugin %s: joint %s has %d command interfaces, 1 expected",
			s.definition.Type, joint.Name, got)
	}
	if kind := joint.CommandInterfaces[0].Kind; kind != hardware.KindPosition {
		return fmt.Errorf("plugin %s: joint %s has %s command interface, %s expected",
			s.definition.Type, joint.Name, kind, hardware.KindPosition)
	}
	if got := len(joint.StateInterfaces); got != 1 {
		return fmt.Errorf("plugin %s: joint %s has %d state interfaces, 1 expected",
			s.definition.Type, joint.Name, got)
	}
	if kind := joint.StateInterfaces[0].Kind; kind != hardware.KindPosition {
		return fmt.Errorf("plugin %s: joint %s has %s state interface, %s expected",
			s.definition.Type, joint.Name, kind, hardware.KindPosition)
	}

	params := mergeParams(s.definition.Params, component.Params)
	startSec, err := optionalIntParam(params, ParamStartDurationSec)
	if err != nil {
		return fmt.Errorf("plugin %s: component %s: %w", s.definition.Type, component.Name, err)
	}
	stopSec, err := optionalIntParam(params, ParamStopDurationSec)
	if err != nil {
		return fmt.Errorf("plugin %s: component %s: %w", s.definition.Type, component.Name, err)
	}

	s.joint = joint.Name
	s.startSec = startSec
	s.stopSec = stopSec
	s.state = math.NaN()
	s.command = math.NaN()

	stateHandle, err := hardware.NewHandle(s.joint, hardware.KindPosition, &s.state)
	if err != nil {
		return fmt.Errorf("plugin %s: %w", s.definition.Type, err)
	}
	commandHandle, err := hardware.NewHandle(s.joint, hardware.KindPosition, &s.command)
	if err != nil {
		return fmt.Errorf("plugin %s: %w", s.definition.Type, err)
	}
	s.SetStateInterfaces(stateHandle)
	s.SetCommandInterfaces(commandHandle)
	return nil
}

func (s *scriptedActuator) Activate() error {
	s.log.Infow("starting scripted actuator", "type", s.definition.Type, "joint", s.joint)
	s.countdown(s.startSec)
	if math.IsNaN(s.state) {
		s.state = 0
		s.command = 0
	}
	return nil
}

func (s *scriptedActuator) Deactivate() error {
	s.log.Infow("stopping scripted actuator", "type", s.definition.Type, "joint", s.joint)
	s.countdown(s.stopSec)
	return nil
}

func (s *scriptedActuator) Read() error {
	next := s.step(s.state, s.command)
	if math.IsInf(next, 0) || math.IsNaN(next) {
		return fmt.Errorf("plugin %s: script produced a non-finite state for joint %s",
			s.definition.Type, s.joint)
	}
	s.state = next
	s.log.Debugw("read state", "type", s.definition.Type, "joint", s.joint, "state", s.state)
	return nil
}

func (s *scriptedActuator) Write() error {
	s.log.Debugw("wrote command", "type", s.definition.Type, "joint", s.joint, "command", s.command)
	return nil
}

func (s *scriptedActuator) countdown(seconds int) {
	for i := 0; i < seconds; i++ {
		s.sleep(time.Second)
		s.log.Infow("countdown", "joint", s.joint, "seconds_left", seconds-i)
	}
}

// compileStep interprets the definition's script and extracts its Step
// function.
func compileStep(def Definition) (stepFunc, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("plugin %s: interpreter symbols: %w", def.Type, err)
	}
	if _, err := i.Eval(def.Script); err != nil {
		return nil, fmt.Errorf("plugin %s: interpret script: %w", def.Type, err)
	}
	value, err := i.Eval(stepFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: script must define %s: %w", def.Type, stepFuncName, err)
	}
	if typed, ok := value.Interface().(func(float64, float64) float64); ok {
		return typed, nil
	}
	if value.Kind() != reflect.Func || value.Type().NumIn() != 2 || value.Type().NumOut() != 1 {
		return nil, fmt.Errorf("plugin %s: %s must be func(state, command float64) float64", def.Type, stepFuncName)
	}
	return func(state, command float64) float64 {
		out := value.Call([]reflect.Value{
			reflect.ValueOf(state),
			reflect.ValueOf(command),
		})
		return out[0].Float()
	}, nil
}

func mergeParams(defaults, overrides hardware.Params) hardware.Params {
	merged := make(hardware.Params, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}

func optionalIntParam(params hardware.Params, key string) (int, error) {
	if _, ok := params[key]; !ok {
		return 0, nil
	}
	return params.Int(key)
}
