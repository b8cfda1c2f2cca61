// Package recorder is the public entry point for capturing and replaying
// MIDI takes. It applies options, picks a transport for the running system
// and drives the timing loops.
package recorder

import (
	"context"
	"time"

	"github.com/leandrodaf/noterecorder/internal/engine"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"gitlab.com/gomidi/midi/v2"
)

// DecodeError is returned by Play and PlayStereo when a stored event is not
// a valid MIDI message.
type DecodeError = engine.DecodeError

// Capture records note events from in until a System Reset is received,
// forwarding every other message to out as transform(msg).
//
// Returns:
//   - *recording.Recording: The captured take, first note at time 0.
//   - error: An error if the options are invalid.
func Capture[M any](in contracts.Source[midi.Message], out contracts.Sink[M], transform func(midi.Message) M, opts ...contracts.Option) (*recording.Recording, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return engine.Capture(settings(&options), in, out, transform), nil
}

// CaptureWithDurations records played notes from in, ending after
// inactivity without note events once no note is sounding.
func CaptureWithDurations(in contracts.Source[midi.Message], inactivity time.Duration, opts ...contracts.Option) (*recording.NoteRecording, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return engine.CaptureWithDurations(settings(&options), in, inactivity), nil
}

// Play replays rec into out. With contracts.WithLoopDelay it repeats forever
// and returns only when ctx is done.
func Play[M any](ctx context.Context, rec *recording.Recording, out contracts.Sink[M], transform func(midi.Message) M, opts ...contracts.Option) error {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return err
	}
	return engine.Play(ctx, settings(&options), rec, out, transform, options.LoopDelay)
}

// PlayStereo replays two takes against one clock, the left take first on ties.
func PlayStereo[M any](ctx context.Context, left, right *recording.Recording, out contracts.Sink[M], leftFn, rightFn func(midi.Message) M, opts ...contracts.Option) error {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return err
	}
	return engine.PlayStereo(ctx, settings(&options), left, right, out, leftFn, rightFn)
}

// Passthrough wraps msg for both speakers.
func Passthrough(msg midi.Message) contracts.OutputMessage {
	return contracts.OutputMessage{Msg: msg, Speaker: contracts.SpeakerBoth}
}

// ToSpeaker returns a transform that routes every message to s.
func ToSpeaker(s contracts.Speaker) func(midi.Message) contracts.OutputMessage {
	return func(msg midi.Message) contracts.OutputMessage {
		return contracts.OutputMessage{Msg: msg, Speaker: s}
	}
}

// Stop returns the sentinel that ends a Capture.
func Stop() midi.Message {
	return append(midi.Message(nil), recording.SystemReset...)
}
