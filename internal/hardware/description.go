package hardware

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseDescription decodes and validates a hardware description payload.
func ParseDescription(data []byte) (Description, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Description{}, fmt.Errorf("hardware: description payload is empty")
	}
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return Description{}, fmt.Errorf("hardware: decode description: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return Description{}, err
	}
	return desc, nil
}

// LoadDescription reads a hardware description file from disk.
func LoadDescription(path string) (Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Description{}, fmt.Errorf("hardware: read %s: %w", path, err)
	}
	desc, err := ParseDescription(data)
	if err != nil {
		return Description{}, fmt.Errorf("hardware: %s: %w", path, err)
	}
	return desc, nil
}
