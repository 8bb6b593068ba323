package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/armature-dev/armature/internal/actuator"
	"github.com/armature-dev/armature/internal/hardware"
	"github.com/armature-dev/armature/internal/host"
	"github.com/armature-dev/armature/internal/logging"
	"github.com/armature-dev/armature/internal/simjoint"
	"github.com/armature-dev/armature/plugins"
)

// joint-runner drives a single actuator outside a full project: it builds a
// one-component description in memory, runs a fixed number of control cycles,
// and prints the state after each one. Useful for trying out a plugin
// definition before wiring it into hardware.yaml.
func main() {
	pluginType := flag.String("type", simjoint.PluginType, "actuator plugin type to run")
	jointName := flag.String("joint", "joint1", "joint name for the synthetic component")
	cycles := flag.Int("cycles", 10, "number of control cycles to run")
	command := flag.Float64("command", 1.0, "position command applied before the first cycle")
	period := flag.Duration("period", 100*time.Millisecond, "control cycle period")
	pluginDir := flag.String("plugin-dir", "", "directory with external actuator definitions")
	params := keyValueFlag{}
	flag.Var(&params, "set", "actuator parameter (key=value, repeatable)")
	flag.Parse()

	if *cycles <= 0 {
		die("--cycles must be positive")
	}

	log := logging.Nop()
	reg := actuator.NewRegistry()
	if err := simjoint.Register(reg, log); err != nil {
		die("register built-ins: %v", err)
	}
	if dir := strings.TrimSpace(*pluginDir); dir != "" {
		if _, err := plugins.RegisterDefinitions(reg, dir, log); err != nil {
			die("load plugins: %v", err)
		}
	}

	desc := hardware.Description{
		Components: []hardware.Component{{
			Name:   "runner",
			Plugin: *pluginType,
			Params: hardware.Params(params),
			Joints: []hardware.JointInfo{{
				Name:              *jointName,
				CommandInterfaces: []hardware.InterfaceInfo{{Kind: hardware.KindPosition}},
				StateInterfaces:   []hardware.InterfaceInfo{{Kind: hardware.KindPosition}},
			}},
		}},
	}

	h, err := host.New(desc, reg, *period)
	if err != nil {
		die("build host: %v", err)
	}
	if err := h.Start(); err != nil {
		die("start: %v", err)
	}
	if err := h.SetCommand(*jointName, *command); err != nil {
		die("set command: %v", err)
	}

	fmt.Printf("Running %s on %s for %d cycle(s), command %g\n", *pluginType, *jointName, *cycles, *command)
	for i := 0; i < *cycles; i++ {
		if err := h.Cycle(); err != nil {
			die("cycle %d: %v", i+1, err)
		}
		snap := h.Snapshot()
		for _, joint := range snap.Joints {
			fmt.Printf("cycle %3d  %s  state=%.6f  command=%.6f\n",
				snap.Cycle, joint.Joint, joint.State, joint.Command)
		}
		time.Sleep(*period)
	}
	if err := h.Stop(); err != nil {
		die("stop: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type keyValueFlag map[string]string

func (kv *keyValueFlag) String() string {
	if kv == nil || len(*kv) == 0 {
		return ""
	}
	var pairs []string
	for key, value := range *kv {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
	}
	return strings.Join(pairs, ", ")
}

func (kv *keyValueFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return fmt.Errorf("parameter key is empty in %q", value)
	}
	if *kv == nil {
		*kv = keyValueFlag{}
	}
	(*kv)[key] = parts[1]
	return nil
}
