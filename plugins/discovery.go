package plugins

import (
	"fmt"

	"github.com/armature-dev/armature/internal/actuator"
	"github.com/armature-dev/armature/internal/logging"
)

// LoadAll gathers every definition under dir: YAML files first, then Go
// definition files interpreted in-process. Duplicate actuator types across
// any two sources are rejected with both paths named.
func LoadAll(dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	all := make([]DefinitionFile, 0, len(yamlDefs)+len(goDefs))
	all = append(all, yamlDefs...)
	all = append(all, goDefs...)

	seen := make(map[string]string, len(all))
	for _, def := range all {
		if prev, ok := seen[def.Definition.Type]; ok {
			return nil, fmt.Errorf("plugin: duplicate actuator type %s (%s and %s)",
				def.Definition.Type, prev, def.Path)
		}
		seen[def.Definition.Type] = def.Path
	}
	return all, nil
}

// RegisterDefinitions loads every scripted definition under dir and registers
// a factory for each into the registry. Scripts are compiled eagerly so a
// broken plugin fails at startup rather than mid-activation.
func RegisterDefinitions(reg *actuator.Registry, dir string, log *logging.Logger) (int, error) {
	if reg == nil {
		return 0, fmt.Errorf("plugin: registry is required")
	}
	if log == nil {
		log = logging.Nop()
	}
	defs, err := LoadAll(dir)
	if err != nil {
		return 0, err
	}
	for _, file := range defs {
		def := file.Definition
		if _, err := newScriptedActuator(def, log); err != nil {
			return 0, fmt.Errorf("plugin: %s: %w", file.Path, err)
		}
		factory := func() (actuator.Actuator, error) {
			return newScriptedActuator(def, log)
		}
		if err := reg.Register(def.Type, factory); err != nil {
			return 0, fmt.Errorf("plugin: %s: %w", file.Path, err)
		}
		log.Infow("registered scripted actuator", "type", def.Type, "source", file.Path)
	}
	return len(defs), nil
}
