package lifecycle

import (
	"errors"
	"strings"
	"testing"

	"github.com/armature-dev/armature/internal/actuator"
	"github.com/armature-dev/armature/internal/hardware"
)

type fakeActuator struct {
	actuator.Base
	initErr       error
	activateErr   error
	deactivateErr error
	calls         []string
}

func newFakeActuator() *fakeActuator {
	return &fakeActuator{Base: actuator.NewBase(actuator.Info{
		Type:    "fake",
		Name:    "Fake",
		Version: "0.1.0",
	})}
}

func (f *fakeActuator) Init(hardware.Component) error {
	f.calls = append(f.calls, "init")
	return f.initErr
}

func (f *fakeActuator) Activate() error {
	f.calls = append(f.calls, "activate")
	return f.activateErr
}

func (f *fakeActuator) Deactivate() error {
	f.calls = append(f.calls, "deactivate")
	return f.deactivateErr
}

func (f *fakeActuator) Read() error  { return nil }
func (f *fakeActuator) Write() error { return nil }

func TestLifecycleHappyPath(t *testing.T) {
	fake := newFakeActuator()
	managed, err := Manage("arm", fake)
	if err != nil {
		t.Fatalf("manage: %v", err)
	}
	if managed.State() != StateUnconfigured {
		t.Fatalf("expected unconfigured, got %s", managed.State())
	}
	if err := managed.Configure(hardware.Component{Name: "arm"}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if managed.State() != StateInactive {
		t.Fatalf("expected inactive, got %s", managed.State())
	}
	if err := managed.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if managed.State() != StateActive {
		t.Fatalf("expected active, got %s", managed.State())
	}
	if err := managed.Deactivate(); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := managed.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if managed.State() != StateFinalized {
		t.Fatalf("expected finalized, got %s", managed.State())
	}
	want := []string{"init", "activate", "deactivate"}
	if len(fake.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, fake.calls)
	}
}

func TestLifecycleRejectsInvalidTransitions(t *testing.T) {
	managed, err := Manage("arm", newFakeActuator())
	if err != nil {
		t.Fatalf("manage: %v", err)
	}
	if err := managed.Activate(); err == nil {
		t.Fatal("activate before configure must fail")
	}
	if err := managed.Deactivate(); err == nil {
		t.Fatal("deactivate before activate must fail")
	}
	if err := managed.Configure(hardware.Component{Name: "arm"}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := managed.Configure(hardware.Component{Name: "arm"}); err == nil {
		t.Fatal("double configure must fail")
	}
}

func TestLifecycleFailedInitParksInError(t *testing.T) {
	fake := newFakeActuator()
	fake.initErr = errors.New("one command interface expected")
	managed, err := Manage("arm", fake)
	if err != nil {
		t.Fatalf("manage: %v", err)
	}
	configureErr := managed.Configure(hardware.Component{Name: "arm"})
	if configureErr == nil {
		t.Fatal("expected configure to fail")
	}
	if !strings.Contains(configureErr.Error(), "one command interface expected") {
		t.Fatalf("configure error should wrap the init error: %v", configureErr)
	}
	if managed.State() != StateError {
		t.Fatalf("expected error state, got %s", managed.State())
	}
	if err := managed.Activate(); err == nil {
		t.Fatal("activate from error state must fail")
	}
	if err := managed.Shutdown(); err != nil {
		t.Fatalf("shutdown from error state: %v", err)
	}
	if managed.State() != StateFinalized {
		t.Fatalf("expected finalized, got %s", managed.State())
	}
}

func TestLifecycleShutdownDeactivatesActive(t *testing.T) {
	fake := newFakeActuator()
	managed, err := Manage("arm", fake)
	if err != nil {
		t.Fatalf("manage: %v", err)
	}
	if err := managed.Configure(hardware.Component{Name: "arm"}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := managed.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := managed.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	last := fake.calls[len(fake.calls)-1]
	if last != "deactivate" {
		t.Fatalf("shutdown of an active actuator must deactivate first, calls: %v", fake.calls)
	}
	if err := managed.Shutdown(); err != nil {
		t.Fatalf("second shutdown must be a no-op: %v", err)
	}
}

func TestLifecycleNotifiesObserver(t *testing.T) {
	managed, err := Manage("arm", newFakeActuator())
	if err != nil {
		t.Fatalf("manage: %v", err)
	}
	var seen []State
	managed.OnTransition(func(component string, from, to State) {
		if component != "arm" {
			t.Fatalf("unexpected component %q", component)
		}
		seen = append(seen, to)
	})
	if err := managed.Configure(hardware.Component{Name: "arm"}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := managed.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if len(seen) != 2 || seen[0] != StateInactive || seen[1] != StateActive {
		t.Fatalf("unexpected transitions: %v", seen)
	}
}
