package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"gitlab.com/gomidi/midi/v2"
)

// DecodeError reports a stored event that is not a valid MIDI message.
type DecodeError struct {
	Track string // "left" or "right" for stereo playback, empty otherwise
	Index int
	Time  float64
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s track record %d at %.6fs: %v", e.Track, e.Index, e.Time, e.Err)
	}
	return fmt.Sprintf("record %d at %.6fs: %v", e.Index, e.Time, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WaitUntil blocks until the wall clock is past deadline. It sleeps until
// spin before the deadline and then spins, yielding the processor between
// checks. A negative spin busy-waits for the whole interval.
func WaitUntil(ctx context.Context, deadline time.Time, spin time.Duration) error {
	if spin >= 0 {
		if d := time.Until(deadline) - spin; d > 0 {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	for !time.Now().After(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type track[M any] struct {
	name      string
	seq       *recording.Sequence
	transform func(midi.Message) M
}

// goal returns the offset of the head record.
func (tr *track[M]) goal() (float64, bool) {
	rec, ok := tr.seq.Peek()
	return rec.Time, ok
}

// step dispatches the head record if elapsed is past its offset.
func (tr *track[M]) step(log contracts.Logger, elapsed float64, out contracts.Sink[M]) (bool, error) {
	rec, ok := tr.seq.Peek()
	if !ok || !(elapsed > rec.Time) {
		return false, nil
	}
	index := tr.seq.Index()
	msg, err := recording.Decode(rec.Event)
	if err != nil {
		return false, &DecodeError{Track: tr.name, Index: index, Time: rec.Time, Err: err}
	}
	tr.seq.Pop()
	out.Push(tr.transform(msg))
	log.Debug("event dispatched",
		log.Field().String("track", tr.name),
		log.Field().Int("index", index),
		log.Field().Float64("goal", rec.Time),
		log.Field().Float64("late", elapsed-rec.Time),
	)
	return true, nil
}

// Play replays rec into out, dispatching each event once the time elapsed
// since the start of the pass exceeds the event's offset.
//
// With a nil loopDelay Play makes a single pass. Otherwise it pauses for
// *loopDelay after each pass and starts over from the first event, forever;
// cancelling ctx is the only way to stop it, and Play then returns ctx.Err().
// A stored event that does not decode halts playback with a *DecodeError.
func Play[M any](ctx context.Context, s Settings, rec *recording.Recording, out contracts.Sink[M], transform func(midi.Message) M, loopDelay *time.Duration) error {
	log := s.log()
	for pass := 1; ; pass++ {
		log.Info("playback pass started",
			log.Field().Int("pass", pass),
			log.Field().Int("records", rec.Len()),
			log.Field().Float64("duration", rec.Duration()),
		)
		if err := playPass(ctx, s, log, &track[M]{seq: rec.Sequence(), transform: transform}, out); err != nil {
			if _, ok := err.(*DecodeError); ok {
				log.Error("playback halted", log.Field().Error("error", err))
			}
			return err
		}
		if loopDelay == nil {
			return nil
		}
		if err := sleep(ctx, *loopDelay); err != nil {
			return err
		}
	}
}

func playPass[M any](ctx context.Context, s Settings, log contracts.Logger, tr *track[M], out contracts.Sink[M]) error {
	kickoff := time.Now()
	for tr.seq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		dispatched, err := tr.step(log, time.Since(kickoff).Seconds(), out)
		if err != nil {
			return err
		}
		if dispatched {
			continue
		}
		goal, _ := tr.goal()
		if err := WaitUntil(ctx, kickoff.Add(seconds(goal)), s.SpinWindow); err != nil {
			return err
		}
	}
	return nil
}
