//go:build darwin
// +build darwin

package mididarwin

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/youpy/go-coremidi"
	"gitlab.com/gomidi/midi/v2"
)

// Output sends MIDI to a CoreMIDI destination.
type Output struct {
	logger      contracts.Logger
	client      coremidi.Client
	port        coremidi.OutputPort
	destination *coremidi.Destination
	mu          sync.Mutex
}

// NewMIDIOutput creates a CoreMIDI output port.
func NewMIDIOutput(options *contracts.RecorderOptions) (contracts.OutputMIDI, error) {
	client, err := coremidi.NewClient(options.TransportConfig.ClientName)
	if err != nil {
		return nil, err
	}
	port, err := coremidi.NewOutputPort(client, "noterecorder output")
	if err != nil {
		return nil, fmt.Errorf("error creating output port: %w", err)
	}
	return &Output{logger: options.Logger, client: client, port: port}, nil
}

// ListDevices returns the CoreMIDI destinations.
func (o *Output) ListDevices() ([]contracts.DeviceInfo, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	if len(destinations) == 0 {
		return nil, transport.ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(destinations))
	for i, d := range destinations {
		entity := d.Entity()
		devices[i] = contracts.DeviceInfo{
			ID:           i,
			Name:         d.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
			Direction:    contracts.OutputPort,
		}
	}
	return devices, nil
}

// SelectDevice picks the destination messages are sent to.
func (o *Output) SelectDevice(deviceID int) error {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	if err := transport.CheckIndex(deviceID, len(destinations)); err != nil {
		return err
	}
	o.mu.Lock()
	o.destination = &destinations[deviceID]
	o.mu.Unlock()
	o.logger.Info("MIDI output selected", o.logger.Field().String("deviceName", destinations[deviceID].Name()))
	return nil
}

// Send writes msg to the selected destination.
func (o *Output) Send(msg midi.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.destination == nil {
		return transport.ErrNotConnected
	}
	packet := coremidi.NewPacket([]byte(msg), 0)
	return packet.Send(&o.port, o.destination)
}

// Close forgets the destination.
func (o *Output) Close() error {
	o.mu.Lock()
	o.destination = nil
	o.mu.Unlock()
	return nil
}
