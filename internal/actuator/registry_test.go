package actuator

import (
	"strings"
	"testing"

	"github.com/armature-dev/armature/internal/hardware"
)

type stubActuator struct {
	Base
	initErr error
}

func newStubActuator(pluginType string) *stubActuator {
	return &stubActuator{Base: NewBase(Info{
		Type:    pluginType,
		Name:    "Stub " + pluginType,
		Version: "0.1.0",
	})}
}

func (s *stubActuator) Init(hardware.Component) error { return s.initErr }
func (s *stubActuator) Activate() error               { return nil }
func (s *stubActuator) Deactivate() error             { return nil }
func (s *stubActuator) Read() error                   { return nil }
func (s *stubActuator) Write() error                  { return nil }

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("stub", func() (Actuator, error) {
		return newStubActuator("stub"), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	act, err := reg.Resolve("stub")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if act.Info().Type != "stub" {
		t.Fatalf("unexpected type %q", act.Info().Type)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	factory := func() (Actuator, error) { return newStubActuator("stub"), nil }
	if err := reg.Register("stub", factory); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := reg.Register("stub", factory)
	if err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Resolve("ghost"); err == nil {
		t.Fatal("expected unknown plugin type error")
	}
}

func TestRegistryValidatesInfo(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("anonymous", func() (Actuator, error) {
		return &stubActuator{Base: NewBase(Info{Type: "anonymous"})}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := reg.Resolve("anonymous"); err == nil {
		t.Fatal("expected info validation error for missing name")
	}
}

func TestRegistryTypesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		name := name
		reg.MustRegister(name, func() (Actuator, error) { return newStubActuator(name), nil })
	}
	types := reg.Types()
	want := []string{"alpha", "mid", "zeta"}
	if len(types) != len(want) {
		t.Fatalf("expected %d types, got %d", len(want), len(types))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, types)
		}
	}
}

func TestBaseCopiesHandles(t *testing.T) {
	cell := 0.0
	handle, err := hardware.NewHandle("joint1", hardware.KindPosition, &cell)
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	base := NewBase(Info{Type: "stub", Name: "Stub", Version: "0.1.0"})
	base.SetStateInterfaces(handle)
	got := base.StateInterfaces()
	if len(got) != 1 || got[0] != handle {
		t.Fatalf("unexpected state interfaces: %v", got)
	}
	got[0] = nil
	if again := base.StateInterfaces(); again[0] != handle {
		t.Fatal("StateInterfaces must return a defensive copy")
	}
}
