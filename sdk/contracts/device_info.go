package contracts

// PortDirection tells whether a device port produces or consumes MIDI.
type PortDirection string

const (
	// InputPort delivers events to the capture side.
	InputPort PortDirection = "in"
	// OutputPort accepts events from the playback side.
	OutputPort PortDirection = "out"
)

// DeviceInfo contains information about a MIDI device port.
type DeviceInfo struct {
	ID           int           // Index accepted by SelectDevice.
	Name         string        // Port name.
	Manufacturer string        // Device manufacturer, when the driver reports one.
	EntityName   string        // Name of the entity to which the port belongs.
	Direction    PortDirection // Input or output.
}
