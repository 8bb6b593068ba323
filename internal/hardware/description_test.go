package hardware

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDescription = `
components:
  - name: arm
    plugin: sim-rotary-joint
    params:
      start_duration_sec: "2"
      stop_duration_sec: "3"
      slowdown: "50.0"
    joints:
      - name: joint1
        command_interfaces:
          - kind: position
        state_interfaces:
          - kind: position
`

func TestParseDescription(t *testing.T) {
	desc, err := ParseDescription([]byte(sampleDescription))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(desc.Components) != 1 {
		t.Fatalf("expected 1 component, got %d", len(desc.Components))
	}
	component := desc.Components[0]
	if component.Plugin != "sim-rotary-joint" {
		t.Fatalf("unexpected plugin %q", component.Plugin)
	}
	if len(component.Joints) != 1 || component.Joints[0].Name != "joint1" {
		t.Fatalf("unexpected joints: %+v", component.Joints)
	}
	if kind := component.Joints[0].CommandInterfaces[0].Kind; kind != KindPosition {
		t.Fatalf("expected position command interface, got %s", kind)
	}
}

func TestParseDescriptionRejectsEmptyPayload(t *testing.T) {
	if _, err := ParseDescription([]byte("   \n")); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestParseDescriptionRejectsUnknownKind(t *testing.T) {
	payload := strings.Replace(sampleDescription, "kind: position", "kind: torque", 1)
	_, err := ParseDescription([]byte(payload))
	if err == nil {
		t.Fatal("expected error for unknown interface kind")
	}
	if !strings.Contains(err.Error(), "torque") {
		t.Fatalf("error should name the bad kind: %v", err)
	}
}

func TestParseDescriptionRejectsDuplicateComponents(t *testing.T) {
	payload := sampleDescription + strings.Replace(sampleDescription, "components:\n", "", 1)
	if _, err := ParseDescription([]byte(payload)); err == nil {
		t.Fatal("expected error for duplicate component names")
	}
}

func TestLoadDescription(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arm.yaml")
	if err := os.WriteFile(path, []byte(sampleDescription), 0o644); err != nil {
		t.Fatalf("write description: %v", err)
	}
	desc, err := LoadDescription(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if desc.Components[0].Name != "arm" {
		t.Fatalf("unexpected component name %q", desc.Components[0].Name)
	}
}

func TestLoadDescriptionMissingFile(t *testing.T) {
	if _, err := LoadDescription(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParamsFloat(t *testing.T) {
	params := Params{"slowdown": " 50.5 ", "bad": "fast"}
	value, err := params.Float("slowdown")
	if err != nil {
		t.Fatalf("float: %v", err)
	}
	if value != 50.5 {
		t.Fatalf("expected 50.5, got %g", value)
	}
	if _, err := params.Float("bad"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := params.Float("absent"); err == nil {
		t.Fatal("expected missing-key error")
	}
}

func TestParamsInt(t *testing.T) {
	params := Params{"start_duration_sec": "3"}
	value, err := params.Int("start_duration_sec")
	if err != nil {
		t.Fatalf("int: %v", err)
	}
	if value != 3 {
		t.Fatalf("expected 3, got %d", value)
	}
	if _, err := params.Int("absent"); err == nil {
		t.Fatal("expected missing-key error")
	}
}

func TestInterfaceInfoBounds(t *testing.T) {
	lo, hi := -1.0, 1.0
	good := InterfaceInfo{Kind: KindPosition, Min: &lo, Max: &hi}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid bounds rejected: %v", err)
	}
	bad := InterfaceInfo{Kind: KindPosition, Min: &hi, Max: &lo}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error when min exceeds max")
	}
}

func TestHandle(t *testing.T) {
	cell := 1.5
	handle, err := NewHandle("joint1", KindPosition, &cell)
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	if handle.Get() != 1.5 {
		t.Fatalf("expected 1.5, got %g", handle.Get())
	}
	handle.Set(2.5)
	if cell != 2.5 {
		t.Fatalf("set should write through to the cell, got %g", cell)
	}
	if _, err := NewHandle("joint1", KindPosition, nil); err == nil {
		t.Fatal("expected error for nil cell")
	}
	if _, err := NewHandle("joint1", "torque", &cell); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
