package recording

import (
	"bytes"
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestDecodeWellFormed(t *testing.T) {
	msgs := []midi.Message{
		midi.NoteOn(0, 60, 100),
		midi.NoteOff(15, 0),
		midi.ProgramChange(3, 42),
		midi.ControlChange(1, 7, 127),
		{0xF0, 0x7E, 0x01, 0xF7},
		{0xF8},
		SystemReset,
	}
	for _, msg := range msgs {
		got, err := Decode(Encode(msg))
		if err != nil {
			t.Fatalf("Decode(% X): %v", []byte(msg), err)
		}
		if !bytes.Equal(got, msg) {
			t.Fatalf("Decode(% X)=% X", []byte(msg), []byte(got))
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":       {},
		"data byte":   {0x3C, 0x40},
		"truncated":   {0x90, 0x3C},
		"too long":    {0xC0, 0x01, 0x02},
		"bad data":    {0x90, 0x3C, 0x80},
		"undefined":   {0xF4},
		"open sysex":  {0xF0, 0x01},
		"sysex data":  {0xF0, 0x90, 0xF7},
		"long rt msg": {0xFF, 0x00},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(b); !errors.Is(err, ErrMalformedEvent) {
				t.Fatalf("err=%v; want ErrMalformedEvent", err)
			}
		})
	}
}

func TestNoteVelocity(t *testing.T) {
	if p, v, ok := NoteVelocity(midi.NoteOn(4, 61, 99)); !ok || p != 61 || v != 99 {
		t.Fatalf("note on: %d %d %v", p, v, ok)
	}
	if p, _, ok := NoteVelocity(midi.NoteOffVelocity(0, 62, 30)); !ok || p != 62 {
		t.Fatalf("note off: %d %v", p, ok)
	}
	if _, _, ok := NoteVelocity(midi.ControlChange(0, 1, 1)); ok {
		t.Fatalf("control change reported as note")
	}
	if _, _, ok := NoteVelocity(SystemReset); ok {
		t.Fatalf("system reset reported as note")
	}
}

func TestSentinelAndNoteMessage(t *testing.T) {
	if !IsSentinel(midi.Message{0xFF}) || IsSentinel(midi.NoteOn(0, 60, 1)) {
		t.Fatalf("IsSentinel misclassifies")
	}
	if msg := NoteMessage(1, 60, 0); msg[0] != 0x81 {
		t.Fatalf("velocity 0 built % X; want note off", []byte(msg))
	}
	if msg := NoteMessage(1, 60, 5); msg[0] != 0x91 || msg[2] != 5 {
		t.Fatalf("built % X; want note on", []byte(msg))
	}
}
