//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/youpy/go-coremidi"
	"gitlab.com/gomidi/midi/v2"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

type sinkHolder struct {
	sink contracts.Sink[midi.Message]
}

// ClientMid receives MIDI on Darwin (macOS) through CoreMIDI and pushes
// every message of every packet into the capture sink.
type ClientMid struct {
	logger          contracts.Logger
	sink            atomic.Pointer[sinkHolder] // Current capture sink; nil when not capturing.
	client          coremidi.Client            // CoreMIDI client instance for MIDI operations.
	inputPort       *coremidi.InputPort        // Input port, created on first selection.
	portConn        internalPortConnection     // Connection to the MIDI source.
	midiEventFilter *contracts.MIDIEventFilter // Filter for specific MIDI events.
	mu              sync.Mutex                 // Guards port state.
	inflight        sync.RWMutex               // Read-held by packet callbacks; Stop write-locks it to wait for them.
}

// NewMIDIClient creates a CoreMIDI client announced under the configured client name.
func NewMIDIClient(options *contracts.RecorderOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.TransportConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("MIDI client successfully created",
		options.Logger.Field().String("client", options.TransportConfig.ClientName))

	return &ClientMid{
		logger:          options.Logger,
		client:          client,
		midiEventFilter: options.MIDIEventFilter,
	}, nil
}

// ListDevices returns the CoreMIDI sources.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		m.logger.Warn(transport.ErrNoMIDIDevices.Error())
		return nil, transport.ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		sourceEntity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			ID:           i,
			Name:         source.Name(),
			EntityName:   sourceEntity.Name(),
			Manufacturer: sourceEntity.Manufacturer(),
			Direction:    contracts.InputPort,
		}
	}
	return devices, nil
}

// SelectDevice connects the input port to the source with the given ID,
// dropping any previous connection.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if err := transport.CheckIndex(deviceID, len(sources)); err != nil {
		m.logger.Error("cannot select MIDI source", m.logger.Field().Error("error", err))
		return err
	}

	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}

	source := sources[deviceID]
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))

	if m.inputPort == nil {
		port, err := coremidi.NewInputPort(m.client, "noterecorder input", m.handlePacket)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
		}
		m.inputPort = &port
	}

	m.portConn, err = m.inputPort.Connect(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	m.logger.Info("MIDI device successfully connected")
	return nil
}

// handlePacket splits a CoreMIDI packet into messages and forwards the ones
// the filter allows.
func (m *ClientMid) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	m.inflight.RLock()
	defer m.inflight.RUnlock()

	holder := m.sink.Load()
	if holder == nil {
		return
	}
	msgs, dropped := transport.Split(packet.Data)
	if dropped > 0 {
		m.logger.Warn("malformed MIDI bytes skipped",
			m.logger.Field().Int("bytes", dropped),
			m.logger.Field().String("source", source.Name()))
	}
	for _, msg := range msgs {
		transport.Deliver(holder.sink, m.midiEventFilter, msg)
	}
}

// StartCapture starts forwarding received messages into events.
func (m *ClientMid) StartCapture(events contracts.Sink[midi.Message]) error {
	if events == nil {
		return errors.New("StartCapture called with nil sink")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.portConn == nil {
		return transport.ErrNotConnected
	}
	if m.sink.Swap(&sinkHolder{sink: events}) != nil {
		m.logger.Warn("Capture already started; replacing sink")
	}
	m.logger.Info("Starting MIDI event capture")
	return nil
}

// Stop disconnects the source and waits for in-flight callbacks. It is safe
// to call more than once.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}
	m.mu.Unlock()

	if m.sink.Swap(nil) != nil {
		// callbacks that loaded the old sink hold the read lock
		m.inflight.Lock()
		m.inflight.Unlock()
		m.logger.Info("MIDI capture stopped")
	}
	return nil
}
