//go:build windows
// +build windows

package midiwindows

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"golang.org/x/sys/windows"
)

type HMIDIOUT windows.Handle

type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

var (
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutReset      = winmm.NewProc("midiOutReset")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// Output plays MIDI through a winmm output device such as the
// Microsoft GS Wavetable Synth.
type Output struct {
	logger contracts.Logger
	handle HMIDIOUT
	mu     sync.Mutex
}

// NewMIDIOutput creates an unopened winmm output.
func NewMIDIOutput(options *contracts.RecorderOptions) (contracts.OutputMIDI, error) {
	return &Output{logger: options.Logger}, nil
}

// ListDevices lists the available MIDI output devices.
func (o *Output) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		return nil, transport.ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			ID:           int(i),
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
			Direction:    contracts.OutputPort,
		})
	}
	return devices, nil
}

// SelectDevice opens the output device, closing any previous one.
func (o *Output) SelectDevice(deviceID int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	r0, _, _ := procMidiOutGetNumDevs.Call()
	if err := transport.CheckIndex(deviceID, int(uint32(r0))); err != nil {
		return err
	}
	if err := o.close(); err != nil {
		return err
	}
	r1, _, err := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&o.handle)),
		uintptr(deviceID),
		0, 0, 0,
	)
	if r1 != 0 {
		return fmt.Errorf("failed to open MIDI output %d: %v", deviceID, err)
	}
	o.logger.Info("MIDI output connected", o.logger.Field().Int("deviceID", deviceID))
	return nil
}

// Send writes one short message. System exclusive is not supported.
func (o *Output) Send(msg midi.Message) error {
	if len(msg) == 0 || len(msg) > 3 {
		return fmt.Errorf("cannot send %d byte message as a short message", len(msg))
	}
	var packed uintptr
	for i, b := range msg {
		packed |= uintptr(b) << (8 * i)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.handle == 0 {
		return transport.ErrNotConnected
	}
	if r1, _, err := procMidiOutShortMsg.Call(uintptr(o.handle), packed); r1 != 0 {
		return fmt.Errorf("midiOutShortMsg: %v", err)
	}
	return nil
}

// Close silences and closes the device.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.close()
}

func (o *Output) close() error {
	if o.handle == 0 {
		return nil
	}
	procMidiOutReset.Call(uintptr(o.handle))
	if r1, _, err := procMidiOutClose.Call(uintptr(o.handle)); r1 != 0 {
		return fmt.Errorf("midiOutClose: %v", err)
	}
	o.handle = 0
	return nil
}
