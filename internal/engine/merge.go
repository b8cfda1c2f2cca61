package engine

import (
	"context"
	"math"
	"time"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"gitlab.com/gomidi/midi/v2"
)

// PlayStereo replays two recordings against one shared start instant,
// interleaving their events into out by time. When events of both tracks
// are due together the left one is dispatched first. It returns once both
// tracks are exhausted.
func PlayStereo[M any](ctx context.Context, s Settings, left, right *recording.Recording, out contracts.Sink[M], leftFn, rightFn func(midi.Message) M) error {
	log := s.log()
	tracks := [2]*track[M]{
		{name: "left", seq: left.Sequence(), transform: leftFn},
		{name: "right", seq: right.Sequence(), transform: rightFn},
	}
	log.Info("stereo playback started",
		log.Field().Int("left", left.Len()),
		log.Field().Int("right", right.Len()),
	)

	kickoff := time.Now()
	for tracks[0].seq.Len()+tracks[1].seq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		var dispatched bool
		for _, tr := range tracks {
			ok, err := tr.step(log, time.Since(kickoff).Seconds(), out)
			if err != nil {
				log.Error("stereo playback halted", log.Field().Error("error", err))
				return err
			}
			dispatched = dispatched || ok
		}
		if dispatched {
			continue
		}

		next := math.Inf(1)
		for _, tr := range tracks {
			if g, ok := tr.goal(); ok && g < next {
				next = g
			}
		}
		if err := WaitUntil(ctx, kickoff.Add(seconds(next)), s.SpinWindow); err != nil {
			return err
		}
	}
	return nil
}
