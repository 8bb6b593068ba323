package plugins

import (
	"fmt"
	"strings"

	"github.com/armature-dev/armature/internal/hardware"
)

// Definition describes an external scripted actuator loaded from
// .armature/plugins. The struct mirrors the on-disk schema and is
// intentionally narrow so the host can validate plugin metadata before
// wiring it into the registry.
type Definition struct {
	Type        string          `json:"type" yaml:"type"`
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string          `json:"version" yaml:"version"`
	Script      string          `json:"script" yaml:"script"`
	Params      hardware.Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def Definition) Normalized() Definition {
	clone := Definition{
		Type:        strings.TrimSpace(def.Type),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Version:     strings.TrimSpace(def.Version),
		Script:      strings.TrimSpace(def.Script),
	}
	if len(def.Params) > 0 {
		clone.Params = make(hardware.Params, len(def.Params))
		for key, value := range def.Params {
			trimmed := strings.TrimSpace(key)
			if trimmed == "" {
				continue
			}
			clone.Params[trimmed] = value
		}
	}
	return clone
}

// Validate ensures the definition is well-formed and its script declares the
// step function the interpreter will look up.
func (def Definition) Validate() error {
	normalized := def.Normalized()
	if normalized.Type == "" {
		return fmt.Errorf("plugin: type is required")
	}
	if strings.ContainsAny(normalized.Type, "/\\") {
		return fmt.Errorf("plugin %s: type must not contain path separators", normalized.Type)
	}
	if normalized.Version == "" {
		return fmt.Errorf("plugin %s: version is required", normalized.Type)
	}
	if normalized.Script == "" {
		return fmt.Errorf("plugin %s: script is required", normalized.Type)
	}
	if !strings.Contains(normalized.Script, "func "+stepFuncName) {
		return fmt.Errorf("plugin %s: script must declare func %s(state, command float64) float64",
			normalized.Type, stepFuncName)
	}
	return nil
}
