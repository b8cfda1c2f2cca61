package engine

import (
	"math"
	"time"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"gitlab.com/gomidi/midi/v2"
)

// Capture records note events from in until a System Reset arrives.
//
// The first note event is stamped 0 and later ones with the time elapsed
// since it. Every message except the sentinel is forwarded to out as
// transform(msg), so a monitor can hear what is being recorded. Capture
// returns only on the sentinel; stopping it from outside means pushing one.
func Capture[M any](s Settings, in contracts.Source[midi.Message], out contracts.Sink[M], transform func(midi.Message) M) *recording.Recording {
	log := s.log()
	rec := recording.New()
	w := newIdler(in, s.IdlePoll)
	defer w.stop()

	var (
		reference time.Time
		started   bool
		last      float64
		forwarded int
	)
	log.Info("capture started", log.Field().String("session", s.Session))

	for {
		msg, ok := in.Pop()
		if !ok {
			w.wait(0)
			continue
		}

		if pitch, velocity, isNote := recording.NoteVelocity(msg); isNote {
			var t float64
			if !started {
				reference = time.Now()
				started = true
			} else {
				t = time.Since(reference).Seconds()
				if t <= last {
					t = math.Nextafter(last, math.Inf(1))
				}
			}
			rec.Append(t, msg)
			last = t
			log.Debug("event stamped",
				log.Field().Float64("time", t),
				log.Field().Uint8("pitch", pitch),
				log.Field().Uint8("velocity", velocity),
			)
		} else if recording.IsSentinel(msg) {
			log.Info("capture stopped",
				log.Field().String("session", s.Session),
				log.Field().Int("records", rec.Len()),
				log.Field().Int("forwarded", forwarded),
				log.Field().Float64("duration", rec.Duration()),
			)
			return rec
		}

		out.Push(transform(msg))
		forwarded++
	}
}
