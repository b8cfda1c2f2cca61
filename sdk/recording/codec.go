package recording

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// SystemReset is the sentinel that ends a capture.
var SystemReset = midi.Message{0xFF}

// NoteVelocity extracts the pitch and velocity of a note-on or note-off.
func NoteVelocity(msg midi.Message) (pitch, velocity uint8, ok bool) {
	var ch uint8
	if msg.GetNoteOn(&ch, &pitch, &velocity) || msg.GetNoteOff(&ch, &pitch, &velocity) {
		return pitch, velocity, true
	}
	return 0, 0, false
}

// IsSentinel reports whether msg is a System Reset.
func IsSentinel(msg midi.Message) bool {
	return len(msg) == 1 && msg[0] == SystemReset[0]
}

// NoteMessage builds a note-off for velocity 0 and a note-on otherwise.
func NoteMessage(channel, note, velocity uint8) midi.Message {
	if velocity == 0 {
		return midi.NoteOff(channel, note)
	}
	return midi.NoteOn(channel, note, velocity)
}

// Encode returns the wire bytes of msg. The result does not alias msg.
func Encode(msg midi.Message) []byte {
	return append([]byte(nil), msg...)
}

// Decode parses exactly one MIDI message. It is the inverse of Encode for
// well-formed messages and fails with ErrMalformedEvent otherwise.
func Decode(b []byte) (midi.Message, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedEvent)
	}
	status := b[0]
	if status < 0x80 {
		return nil, fmt.Errorf("%w: data byte 0x%02X where a status byte was expected", ErrMalformedEvent, status)
	}

	if status == 0xF0 {
		if len(b) < 2 || b[len(b)-1] != 0xF7 {
			return nil, fmt.Errorf("%w: unterminated system exclusive", ErrMalformedEvent)
		}
		if err := checkData(b[1 : len(b)-1]); err != nil {
			return nil, err
		}
		return midi.Message(Encode(b)), nil
	}

	want := MessageLength(status)
	if want == 0 {
		return nil, fmt.Errorf("%w: undefined status 0x%02X", ErrMalformedEvent, status)
	}
	if len(b) != want {
		return nil, fmt.Errorf("%w: status 0x%02X takes %d bytes, got %d", ErrMalformedEvent, status, want, len(b))
	}
	if err := checkData(b[1:]); err != nil {
		return nil, err
	}
	return midi.Message(Encode(b)), nil
}

// MessageLength returns the total length of a fixed-size message starting
// with status, or 0 for system exclusive and undefined status bytes.
func MessageLength(status byte) int {
	switch {
	case status < 0x80:
		return 0
	case status < 0xF0:
		switch status & 0xF0 {
		case 0xC0, 0xD0:
			return 2
		}
		return 3
	}
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	case 0xF6, 0xF8, 0xF9, 0xFA, 0xFB, 0xFC, 0xFD, 0xFE, 0xFF:
		return 1
	}
	return 0
}

func checkData(data []byte) error {
	for i, d := range data {
		if d >= 0x80 {
			return fmt.Errorf("%w: byte %d (0x%02X) is not a data byte", ErrMalformedEvent, i+1, d)
		}
	}
	return nil
}
