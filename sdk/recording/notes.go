package recording

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"go.uber.org/multierr"
)

// PlayedNote is a note-on matched with its note-off.
// Onset is seconds after the first note of the take.
type PlayedNote struct {
	Pitch    uint8   `json:"pitch"`
	Velocity uint8   `json:"velocity"`
	Onset    float64 `json:"onset"`
	Duration float64 `json:"duration"`
}

// NoteRecording lists played notes in the order they were closed.
type NoteRecording struct {
	notes []PlayedNote
}

// NewNoteRecording returns an empty note recording.
func NewNoteRecording() *NoteRecording {
	return &NoteRecording{}
}

// Append stores a closed note. A negative or NaN duration panics.
func (n *NoteRecording) Append(note PlayedNote) {
	if math.IsNaN(note.Duration) || note.Duration < 0 {
		violate(ErrNonMonotonic, "note %d has duration %v", note.Pitch, note.Duration)
	}
	n.notes = append(n.notes, note)
}

// Len returns the number of notes.
func (n *NoteRecording) Len() int { return len(n.notes) }

// Notes returns a copy of the notes.
func (n *NoteRecording) Notes() []PlayedNote {
	return append([]PlayedNote(nil), n.notes...)
}

// MarshalJSON implements json.Marshaler.
func (n *NoteRecording) MarshalJSON() ([]byte, error) {
	notes := n.notes
	if notes == nil {
		notes = []PlayedNote{}
	}
	return json.Marshal(struct {
		Notes []PlayedNote `json:"notes"`
	}{Notes: notes})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NoteRecording) UnmarshalJSON(data []byte) error {
	var raw struct {
		Notes *[]struct {
			Pitch    int     `json:"pitch"`
			Velocity int     `json:"velocity"`
			Onset    float64 `json:"onset"`
			Duration float64 `json:"duration"`
		} `json:"notes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRecording, err)
	}
	if raw.Notes == nil {
		return fmt.Errorf("%w: missing notes", ErrMalformedRecording)
	}

	var errs error
	notes := make([]PlayedNote, 0, len(*raw.Notes))
	for i, p := range *raw.Notes {
		switch {
		case p.Pitch < 0 || p.Pitch > 127:
			errs = multierr.Append(errs, fmt.Errorf("note %d: pitch %d out of range", i, p.Pitch))
		case p.Velocity < 0 || p.Velocity > 127:
			errs = multierr.Append(errs, fmt.Errorf("note %d: velocity %d out of range", i, p.Velocity))
		case p.Onset < 0 || p.Duration < 0:
			errs = multierr.Append(errs, fmt.Errorf("note %d: negative onset or duration", i))
		default:
			notes = append(notes, PlayedNote{
				Pitch:    uint8(p.Pitch),
				Velocity: uint8(p.Velocity),
				Onset:    p.Onset,
				Duration: p.Duration,
			})
		}
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRecording, errs)
	}
	n.notes = notes
	return nil
}

// ToRecording renders the notes as note-on/note-off pairs on channel.
// Events are ordered by time with note-offs first on ties; events that would
// share a timestamp are moved to the next representable time. A note's own
// note-off always follows its note-on.
func (n *NoteRecording) ToRecording(channel uint8) *Recording {
	type event struct {
		t  float64
		on bool
		tm TimedMessage
	}
	events := make([]event, 0, 2*len(n.notes))
	for _, p := range n.notes {
		// a note always ends after it starts, even with a zero duration
		end := math.Max(p.Onset+p.Duration, math.Nextafter(p.Onset, math.Inf(1)))
		events = append(events,
			event{t: p.Onset, on: true, tm: TimedMessage{Msg: NoteMessage(channel, p.Pitch, p.Velocity)}},
			event{t: end, tm: TimedMessage{Msg: NoteMessage(channel, p.Pitch, 0)}},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].t != events[j].t {
			return events[i].t < events[j].t
		}
		return !events[i].on && events[j].on
	})

	seq := make([]TimedMessage, len(events))
	last := math.Inf(-1)
	for i, ev := range events {
		t := ev.t
		if t <= last {
			t = math.Nextafter(last, math.Inf(1))
		}
		last = t
		seq[i] = TimedMessage{Time: t, Msg: ev.tm.Msg}
	}
	return FromSequence(seq)
}
