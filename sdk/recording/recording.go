// Package recording holds captured MIDI takes: timestamped raw events, the
// note durations derived from them, and their persisted JSON form.
package recording

import (
	"bytes"
	"iter"
	"math"

	"gitlab.com/gomidi/midi/v2"
)

// Record is one captured event, Time seconds after the first note of the take.
type Record struct {
	Time  float64
	Event []byte
}

// TimedMessage pairs a message with its offset in seconds.
type TimedMessage struct {
	Time float64
	Msg  midi.Message
}

// Recording is an insertion-ordered list of records with strictly increasing times.
// It has a single writer (the capture loop); once capture ends it is read-only.
type Recording struct {
	records []Record
}

// New returns an empty recording.
func New() *Recording {
	return &Recording{}
}

// FromSequence builds a recording from messages already in time order.
// It panics like Append if the times are not strictly increasing.
func FromSequence(seq []TimedMessage) *Recording {
	r := &Recording{records: make([]Record, 0, len(seq))}
	for _, tm := range seq {
		r.Append(tm.Time, tm.Msg)
	}
	return r
}

// Append stores msg at time t. A time that is negative, NaN or not greater
// than the last stored time is a programming error and panics with ErrNonMonotonic.
func (r *Recording) Append(t float64, msg midi.Message) {
	if math.IsNaN(t) || t < 0 {
		violate(ErrNonMonotonic, "time %v is not a non-negative number", t)
	}
	if n := len(r.records); n > 0 && t <= r.records[n-1].Time {
		violate(ErrNonMonotonic, "time %v after %v", t, r.records[n-1].Time)
	}
	r.records = append(r.records, Record{Time: t, Event: Encode(msg)})
}

// Len returns the number of records.
func (r *Recording) Len() int {
	return len(r.records)
}

// Duration returns the time of the last record, 0 when empty.
func (r *Recording) Duration() float64 {
	if len(r.records) == 0 {
		return 0
	}
	return r.records[len(r.records)-1].Time
}

// Records returns a copy of the records.
func (r *Recording) Records() []Record {
	out := make([]Record, len(r.records))
	for i, rec := range r.records {
		out[i] = Record{Time: rec.Time, Event: append([]byte(nil), rec.Event...)}
	}
	return out
}

// All yields (time, event bytes) in insertion order.
func (r *Recording) All() iter.Seq2[float64, []byte] {
	return func(yield func(float64, []byte) bool) {
		for _, rec := range r.records {
			if !yield(rec.Time, append([]byte(nil), rec.Event...)) {
				return
			}
		}
	}
}

// Equal reports whether both recordings hold the same records.
func (r *Recording) Equal(other *Recording) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.records) != len(other.records) {
		return false
	}
	for i, rec := range r.records {
		o := other.records[i]
		if rec.Time != o.Time || !bytes.Equal(rec.Event, o.Event) {
			return false
		}
	}
	return true
}

// Sequence returns a fresh cursor positioned at the first record.
// Each playback pass takes its own, so looped playback always restarts
// from a pristine copy.
func (r *Recording) Sequence() *Sequence {
	return &Sequence{records: r.records[:len(r.records):len(r.records)]}
}

// Sequence is a forward-only cursor over a recording's records.
type Sequence struct {
	records []Record
	next    int
}

// Len returns the number of records not yet popped.
func (s *Sequence) Len() int {
	return len(s.records) - s.next
}

// Index returns the position of the head record within the recording.
func (s *Sequence) Index() int {
	return s.next
}

// Peek returns the head record without consuming it.
func (s *Sequence) Peek() (Record, bool) {
	if s.next >= len(s.records) {
		return Record{}, false
	}
	return s.records[s.next], true
}

// Pop consumes and returns the head record.
func (s *Sequence) Pop() (Record, bool) {
	rec, ok := s.Peek()
	if ok {
		s.next++
	}
	return rec, ok
}
