package engine

import (
	"time"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"gitlab.com/gomidi/midi/v2"
)

const pitchSpace = 128

type pendingNote struct {
	velocity uint8
	onset    float64
	onsetAt  time.Time
	open     bool
}

// pendingTable holds at most one open note per pitch.
type pendingTable struct {
	slots [pitchSpace]pendingNote
	count int
}

func checkPitch(pitch uint8) {
	if int(pitch) >= pitchSpace {
		violate(ErrPitchOutOfRange, "pitch %d", pitch)
	}
}

func (p *pendingTable) open(pitch, velocity uint8, onset float64, at time.Time) {
	checkPitch(pitch)
	p.slots[pitch] = pendingNote{velocity: velocity, onset: onset, onsetAt: at, open: true}
	p.count++
}

func (p *pendingTable) close(pitch uint8) (pendingNote, bool) {
	checkPitch(pitch)
	n := p.slots[pitch]
	if !n.open {
		return pendingNote{}, false
	}
	p.slots[pitch] = pendingNote{}
	p.count--
	return n, true
}

// CaptureWithDurations pairs note-ons with the next note-off of the same
// pitch and records each pair as a PlayedNote.
//
// A note-on for a pitch that is already sounding closes the sounding note
// first. Note-offs without a matching note-on and all non-note messages are
// ignored. The capture ends once no note is sounding and no note event has
// arrived for inactivity (counted from the start of the capture until the
// first event).
func CaptureWithDurations(s Settings, in contracts.Source[midi.Message], inactivity time.Duration) *recording.NoteRecording {
	log := s.log()
	notes := recording.NewNoteRecording()
	w := newIdler(in, s.IdlePoll)
	defer w.stop()

	var (
		table     pendingTable
		reference time.Time
		started   bool
		lastEvent = time.Now()
	)
	emit := func(pitch uint8, n pendingNote, at time.Time, forced bool) {
		played := recording.PlayedNote{
			Pitch:    pitch,
			Velocity: n.velocity,
			Onset:    n.onset,
			Duration: at.Sub(n.onsetAt).Seconds(),
		}
		notes.Append(played)
		log.Debug("note closed",
			log.Field().Uint8("pitch", pitch),
			log.Field().Float64("duration", played.Duration),
			log.Field().Bool("forced", forced),
		)
	}

	log.Info("duration capture started",
		log.Field().String("session", s.Session),
		log.Field().Duration("inactivity", inactivity),
	)
	for {
		msg, ok := in.Pop()
		if !ok {
			if table.count > 0 {
				w.wait(0)
				continue
			}
			remaining := inactivity - time.Since(lastEvent)
			if remaining <= 0 {
				log.Info("duration capture stopped",
					log.Field().String("session", s.Session),
					log.Field().Int("notes", notes.Len()),
				)
				return notes
			}
			w.wait(remaining)
			continue
		}

		pitch, velocity, isNote := recording.NoteVelocity(msg)
		if !isNote {
			continue
		}
		now := time.Now()
		lastEvent = now
		if !started {
			reference = now
			started = true
		}

		if msg[0]&0xF0 == 0x90 && velocity > 0 {
			if prev, open := table.close(pitch); open {
				emit(pitch, prev, now, true)
			}
			table.open(pitch, velocity, now.Sub(reference).Seconds(), now)
			continue
		}
		if prev, open := table.close(pitch); open {
			emit(pitch, prev, now, false)
		} else {
			log.Debug("unmatched note off ignored", log.Field().Uint8("pitch", pitch))
		}
	}
}
