//go:build midi_native

// Package rtmidi is the cross-platform transport built on gomidi's rtmidi
// driver. It is compiled only with the midi_native build tag because the
// driver needs cgo and the system MIDI headers.
package rtmidi

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Available reports whether the rtmidi driver is part of this build.
func Available() bool { return true }

// Input receives MIDI from an rtmidi input port.
type Input struct {
	logger contracts.Logger
	filter *contracts.MIDIEventFilter
	drv    *rtmididrv.Driver

	mu   sync.Mutex
	in   drivers.In
	stop func()
}

// NewMIDIClient opens the rtmidi driver for input.
func NewMIDIClient(options *contracts.RecorderOptions) (contracts.ClientMIDI, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	options.Logger.Info("rtmidi input driver opened")
	return &Input{logger: options.Logger, filter: options.MIDIEventFilter, drv: drv}, nil
}

// ListDevices lists the input ports.
func (c *Input) ListDevices() ([]contracts.DeviceInfo, error) {
	ins, err := c.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list MIDI inputs: %w", err)
	}
	if len(ins) == 0 {
		return nil, transport.ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{ID: i, Name: in.String(), Direction: contracts.InputPort}
	}
	return devices, nil
}

// SelectDevice opens the input port with the given ID, closing the previous one.
func (c *Input) SelectDevice(deviceID int) error {
	ins, err := c.drv.Ins()
	if err != nil {
		return fmt.Errorf("list MIDI inputs: %w", err)
	}
	if err := transport.CheckIndex(deviceID, len(ins)); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closePort()
	in := ins[deviceID]
	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", in.String(), err)
	}
	c.in = in
	c.logger.Info("MIDI device selected", c.logger.Field().String("deviceName", in.String()))
	return nil
}

// StartCapture listens on the selected port and pushes every allowed
// message into events.
func (c *Input) StartCapture(events contracts.Sink[midi.Message]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.in == nil {
		return transport.ErrNotConnected
	}
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	name := c.in.String()
	stop, err := midi.ListenTo(c.in, func(msg midi.Message, _ int32) {
		transport.Deliver(events, c.filter, append(midi.Message(nil), msg...))
	}, midi.UseSysEx(), midi.HandleError(func(listenErr error) {
		c.logger.Warn("MIDI listener error",
			c.logger.Field().String("device", name),
			c.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		return fmt.Errorf("listen %q: %w", name, err)
	}
	c.stop = stop
	c.logger.Info("Starting MIDI event capture", c.logger.Field().String("device", name))
	return nil
}

// Stop ends the listener and closes the port and the driver.
func (c *Input) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closePort()
	return c.drv.Close()
}

func (c *Input) closePort() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.in != nil {
		_ = c.in.Close()
		c.in = nil
	}
}

// Output sends MIDI to an rtmidi output port.
type Output struct {
	logger contracts.Logger
	drv    *rtmididrv.Driver

	mu   sync.Mutex
	out  drivers.Out
	send func(midi.Message) error
}

// NewMIDIOutput opens the rtmidi driver for output.
func NewMIDIOutput(options *contracts.RecorderOptions) (contracts.OutputMIDI, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return &Output{logger: options.Logger, drv: drv}, nil
}

// ListDevices lists the output ports.
func (o *Output) ListDevices() ([]contracts.DeviceInfo, error) {
	outs, err := o.drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("list MIDI outputs: %w", err)
	}
	if len(outs) == 0 {
		return nil, transport.ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(outs))
	for i, out := range outs {
		devices[i] = contracts.DeviceInfo{ID: i, Name: out.String(), Direction: contracts.OutputPort}
	}
	return devices, nil
}

// SelectDevice opens the output port with the given ID.
func (o *Output) SelectDevice(deviceID int) error {
	outs, err := o.drv.Outs()
	if err != nil {
		return fmt.Errorf("list MIDI outputs: %w", err)
	}
	if err := transport.CheckIndex(deviceID, len(outs)); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.out != nil {
		_ = o.out.Close()
	}
	out := outs[deviceID]
	send, err := midi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open %q: %w", out.String(), err)
	}
	o.out, o.send = out, send
	o.logger.Info("MIDI output selected", o.logger.Field().String("deviceName", out.String()))
	return nil
}

// Send writes msg to the selected port.
func (o *Output) Send(msg midi.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return transport.ErrNotConnected
	}
	return o.send(msg)
}

// Close closes the port and the driver.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.out != nil {
		_ = o.out.Close()
		o.out, o.send = nil, nil
	}
	return o.drv.Close()
}
