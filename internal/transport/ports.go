// Package transport holds helpers shared by the platform MIDI transports.
package transport

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"gitlab.com/gomidi/midi/v2"
)

// Error definitions shared by every transport.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNotConnected      = errors.New("no MIDI device selected")
	ErrUnavailable       = errors.New("MIDI transport not available on this platform or build")
)

// MatchPort returns the index of the port called want: an exact match wins,
// then the first case-insensitive substring match. It returns -1 when
// nothing matches or want is empty.
func MatchPort(devices []contracts.DeviceInfo, want string) int {
	if want == "" {
		return -1
	}
	for i, d := range devices {
		if d.Name == want {
			return i
		}
	}
	lower := strings.ToLower(want)
	for i, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), lower) {
			return i
		}
	}
	return -1
}

// SelectByName selects the port named want on c.
func SelectByName(c interface {
	ListDevices() ([]contracts.DeviceInfo, error)
	SelectDevice(int) error
}, want string) error {
	devices, err := c.ListDevices()
	if err != nil {
		return err
	}
	idx := MatchPort(devices, want)
	if idx < 0 {
		return fmt.Errorf("%w: no port matches %q", ErrInvalidMIDIDevice, want)
	}
	return c.SelectDevice(devices[idx].ID)
}

// CheckIndex validates a device id against the number of ports.
func CheckIndex(deviceID, count int) error {
	if count == 0 {
		return ErrNoMIDIDevices
	}
	if deviceID < 0 || deviceID >= count {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidMIDIDevice, deviceID, count)
	}
	return nil
}

// Split cuts a packet of concatenated MIDI messages into single messages,
// expanding running status. Bytes that do not form a well-formed message
// are skipped and counted in dropped.
func Split(data []byte) (msgs []midi.Message, dropped int) {
	var running byte
	for i := 0; i < len(data); {
		b := data[i]
		var candidate []byte
		switch {
		case b >= 0xF8:
			candidate = data[i : i+1]
		case b == 0xF0:
			end := bytes.IndexByte(data[i:], 0xF7)
			if end < 0 {
				return msgs, dropped + len(data) - i
			}
			candidate = data[i : i+end+1]
			running = 0
		case b >= 0x80:
			n := recording.MessageLength(b)
			if n == 0 || i+n > len(data) {
				dropped++
				i++
				continue
			}
			candidate = data[i : i+n]
			running = 0
			if b < 0xF0 {
				running = b
			}
		default:
			if running == 0 {
				dropped++
				i++
				continue
			}
			n := recording.MessageLength(running) - 1
			if i+n > len(data) {
				return msgs, dropped + len(data) - i
			}
			msg, err := recording.Decode(append([]byte{running}, data[i:i+n]...))
			if err != nil {
				dropped++
				i++
				continue
			}
			msgs = append(msgs, msg)
			i += n
			continue
		}

		msg, err := recording.Decode(candidate)
		if err != nil {
			dropped++
			i++
			continue
		}
		msgs = append(msgs, msg)
		i += len(candidate)
	}
	return msgs, dropped
}

// Deliver pushes msg into sink when the filter allows it.
func Deliver(sink contracts.Sink[midi.Message], filter *contracts.MIDIEventFilter, msg midi.Message) bool {
	if sink == nil || len(msg) == 0 || !filter.Allows(msg[0]) {
		return false
	}
	sink.Push(msg)
	return true
}
