//go:build !windows
// +build !windows

package midiwindows

import (
	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient initializes a dummy MIDI client for non-Windows systems.
func NewMIDIClient(options *contracts.RecorderOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("Using dummy MIDI client for non-Windows system")
	return &dummyMIDIClient{
		logger: options.Logger,
	}, nil
}

// NewMIDIOutput reports that winmm output is unavailable.
func NewMIDIOutput(options *contracts.RecorderOptions) (contracts.OutputMIDI, error) {
	return nil, transport.ErrUnavailable
}

func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, transport.ErrUnavailable
}

func (m *dummyMIDIClient) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy MIDI client")
	return transport.ErrUnavailable
}

func (m *dummyMIDIClient) StartCapture(events contracts.Sink[midi.Message]) error {
	m.logger.Warn("StartCapture called on dummy MIDI client")
	return transport.ErrUnavailable
}

func (m *dummyMIDIClient) Stop() error {
	return nil
}
