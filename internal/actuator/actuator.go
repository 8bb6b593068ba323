package actuator

import (
	"fmt"

	"github.com/armature-dev/armature/internal/hardware"
)

// Info describes an actuator plugin's identity.
type Info struct {
	Type        string
	Name        string
	Description string
	Version     string
}

// Validate ensures the info block is well-formed.
func (i Info) Validate() error {
	if i.Type == "" {
		return fmt.Errorf("actuator: type is required")
	}
	if i.Name == "" {
		return fmt.Errorf("actuator: name is required for %s", i.Type)
	}
	if i.Version == "" {
		return fmt.Errorf("actuator: version is required for %s", i.Type)
	}
	return nil
}

// Actuator is implemented by every hardware plugin the host can drive.
//
// Init receives the component declaration from the hardware description and
// must report a fatal error if the declared interface shape or parameters do
// not match what the plugin supports. After a successful Init the exported
// state and command handles stay valid until Shutdown.
type Actuator interface {
	Info() Info
	Init(component hardware.Component) error
	StateInterfaces() []*hardware.Handle
	CommandInterfaces() []*hardware.Handle
	Activate() error
	Deactivate() error
	Read() error
	Write() error
}
