// Package console is an output transport that logs every message instead
// of playing it. It backs dry runs and machines without a MIDI driver.
package console

import (
	"sync"

	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

// Output implements contracts.OutputMIDI on top of a logger.
type Output struct {
	logger contracts.Logger

	mu     sync.Mutex
	open   bool
	sent   []midi.Message
	record bool
}

// NewMIDIOutput returns a console output that logs at INFO.
func NewMIDIOutput(options *contracts.RecorderOptions) (contracts.OutputMIDI, error) {
	return New(options.Logger), nil
}

// New returns a console output writing to log.
func New(log contracts.Logger) *Output {
	return &Output{logger: log}
}

// Recording makes the output keep a copy of every sent message.
func (o *Output) Recording() *Output {
	o.record = true
	return o
}

// ListDevices returns the single console port.
func (o *Output) ListDevices() ([]contracts.DeviceInfo, error) {
	return []contracts.DeviceInfo{{ID: 0, Name: "console", Direction: contracts.OutputPort}}, nil
}

// SelectDevice opens the console port.
func (o *Output) SelectDevice(deviceID int) error {
	if err := transport.CheckIndex(deviceID, 1); err != nil {
		return err
	}
	o.mu.Lock()
	o.open = true
	o.mu.Unlock()
	return nil
}

// Send logs msg.
func (o *Output) Send(msg midi.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.open {
		return transport.ErrNotConnected
	}
	if o.record {
		o.sent = append(o.sent, append(midi.Message(nil), msg...))
	}
	o.logger.Info("midi out", o.logger.Field().String("msg", msg.String()))
	return nil
}

// Sent returns the messages kept since Recording was called.
func (o *Output) Sent() []midi.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]midi.Message(nil), o.sent...)
}

// Close closes the console port.
func (o *Output) Close() error {
	o.mu.Lock()
	o.open = false
	o.mu.Unlock()
	return nil
}
