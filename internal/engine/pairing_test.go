package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/leandrodaf/noterecorder/sdk/queue"
	"gitlab.com/gomidi/midi/v2"
)

func TestCaptureWithDurationsPairsNotes(t *testing.T) {
	in := queue.New[midi.Message]()
	go func() {
		in.Push(midi.NoteOn(0, 60, 100))
		time.Sleep(200 * time.Millisecond)
		in.Push(midi.NoteOff(0, 60))
	}()

	notes := CaptureWithDurations(Settings{IdlePoll: time.Millisecond}, in, 100*time.Millisecond).Notes()
	if len(notes) != 1 {
		t.Fatalf("got %d notes; want 1", len(notes))
	}
	n := notes[0]
	if n.Pitch != 60 || n.Velocity != 100 || n.Onset != 0 {
		t.Fatalf("unexpected note %+v", n)
	}
	if math.Abs(n.Duration-0.2) > 0.05 {
		t.Fatalf("duration %v; want about 0.2", n.Duration)
	}
}

func TestCaptureWithDurationsForceCloses(t *testing.T) {
	in := queue.New[midi.Message]()
	in.Push(midi.NoteOn(0, 60, 100))
	in.Push(midi.NoteOn(0, 60, 90))
	in.Push(midi.NoteOff(0, 61)) // unmatched
	in.Push(midi.ControlChange(0, 1, 1))
	in.Push(midi.NoteOn(0, 60, 0)) // velocity 0 ends the note

	notes := CaptureWithDurations(Settings{}, in, 20*time.Millisecond).Notes()
	if len(notes) != 2 {
		t.Fatalf("got %d notes; want 2: %+v", len(notes), notes)
	}
	if notes[0].Velocity != 100 || notes[1].Velocity != 90 {
		t.Fatalf("force-closed note must come first: %+v", notes)
	}
	for _, n := range notes {
		if n.Pitch != 60 || n.Duration < 0 {
			t.Fatalf("unexpected note %+v", n)
		}
	}
}

func TestCaptureWithDurationsWaitsForPendingNotes(t *testing.T) {
	in := queue.New[midi.Message]()
	in.Push(midi.NoteOn(0, 48, 70))
	go func() {
		// longer than the inactivity window; the sounding note keeps the capture open
		time.Sleep(80 * time.Millisecond)
		in.Push(midi.NoteOff(0, 48))
	}()

	start := time.Now()
	notes := CaptureWithDurations(Settings{IdlePoll: time.Millisecond}, in, 20*time.Millisecond).Notes()
	if len(notes) != 1 {
		t.Fatalf("got %d notes; want 1", len(notes))
	}
	if time.Since(start) < 100*time.Millisecond {
		t.Fatalf("returned before the note closed and the window elapsed")
	}
}

func TestCaptureWithDurationsEmpty(t *testing.T) {
	start := time.Now()
	notes := CaptureWithDurations(Settings{IdlePoll: time.Millisecond}, queue.New[midi.Message](), 30*time.Millisecond)
	elapsed := time.Since(start)
	if notes.Len() != 0 {
		t.Fatalf("got %d notes; want 0", notes.Len())
	}
	if elapsed < 30*time.Millisecond || elapsed > time.Second {
		t.Fatalf("returned after %v; want about 30ms", elapsed)
	}
}

func TestPendingTableRejectsPitchOutOfRange(t *testing.T) {
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ErrPitchOutOfRange) {
			t.Fatalf("recovered %v; want ErrPitchOutOfRange", err)
		}
	}()
	var table pendingTable
	table.open(128, 1, 0, time.Now())
}

func TestPendingTableCount(t *testing.T) {
	var table pendingTable
	now := time.Now()
	table.open(1, 10, 0, now)
	table.open(2, 10, 0, now)
	if _, ok := table.close(3); ok || table.count != 2 {
		t.Fatalf("closing an idle slot changed the table")
	}
	if n, ok := table.close(1); !ok || n.velocity != 10 || table.count != 1 {
		t.Fatalf("close(1)=%+v,%v count=%d", n, ok, table.count)
	}
}
