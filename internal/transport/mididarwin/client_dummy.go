//go:build !darwin
// +build !darwin

package mididarwin

import (
	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

// DummyMIDIClient stands in for CoreMIDI on other systems.
type DummyMIDIClient struct {
	logger contracts.Logger
}

func NewMIDIClient(options *contracts.RecorderOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("Using dummy MIDI client for non-macOS system")
	return &DummyMIDIClient{
		logger: options.Logger,
	}, nil
}

func NewMIDIOutput(options *contracts.RecorderOptions) (contracts.OutputMIDI, error) {
	return nil, transport.ErrUnavailable
}

func (m *DummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, transport.ErrUnavailable
}

func (m *DummyMIDIClient) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy MIDI client")
	return transport.ErrUnavailable
}

func (m *DummyMIDIClient) StartCapture(events contracts.Sink[midi.Message]) error {
	m.logger.Warn("StartCapture called on dummy MIDI client")
	return transport.ErrUnavailable
}

func (m *DummyMIDIClient) Stop() error {
	return nil
}
