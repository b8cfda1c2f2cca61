package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"gitlab.com/gomidi/midi/v2"
)

const tolerance = 30 * time.Millisecond

type arrival struct {
	at  time.Duration
	msg midi.Message
}

// recorder collects dispatched messages with their arrival time.
type recorder struct {
	mu    sync.Mutex
	start time.Time
	got   []arrival
}

func newRecorder() *recorder { return &recorder{start: time.Now()} }

func (r *recorder) Push(msg midi.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, arrival{at: time.Since(r.start), msg: msg})
}

func (r *recorder) arrivals() []arrival {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]arrival(nil), r.got...)
}

func take(times ...float64) *recording.Recording {
	seq := make([]recording.TimedMessage, len(times))
	for i, tm := range times {
		seq[i] = recording.TimedMessage{Time: tm, Msg: midi.NoteOn(0, uint8(60+i), 100)}
	}
	return recording.FromSequence(seq)
}

func checkTiming(t *testing.T, got []arrival, goals []float64) {
	t.Helper()
	if len(got) != len(goals) {
		t.Fatalf("dispatched %d events; want %d", len(got), len(goals))
	}
	for i, g := range goals {
		goal := seconds(g)
		if got[i].at < goal || got[i].at > goal+tolerance {
			t.Fatalf("event %d at %v; want within [%v, %v]", i, got[i].at, goal, goal+tolerance)
		}
	}
}

func TestPlayKeepsTiming(t *testing.T) {
	for name, spin := range map[string]time.Duration{
		"sleep then spin": contracts.DefaultSpinWindow,
		"busy wait":       -1,
	} {
		t.Run(name, func(t *testing.T) {
			out := newRecorder()
			err := Play(context.Background(), Settings{SpinWindow: spin}, take(0, 0.1, 0.3), contracts.Sink[midi.Message](out), identity, nil)
			if err != nil {
				t.Fatalf("Play: %v", err)
			}
			checkTiming(t, out.arrivals(), []float64{0, 0.1, 0.3})
		})
	}
}

func TestPlayEmptyRecording(t *testing.T) {
	out := newRecorder()
	if err := Play(context.Background(), Settings{}, recording.New(), contracts.Sink[midi.Message](out), identity, nil); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(out.arrivals()) != 0 {
		t.Fatalf("empty recording dispatched events")
	}
}

func TestPlayPerpetual(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	t.Cleanup(cancel)

	delay := 200 * time.Millisecond
	out := newRecorder()
	err := Play(ctx, Settings{SpinWindow: contracts.DefaultSpinWindow}, take(0, 0.1), contracts.Sink[midi.Message](out), identity, &delay)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v; want deadline exceeded", err)
	}

	got := out.arrivals()
	if len(got) < 4 {
		t.Fatalf("got %d events; want at least two passes", len(got))
	}
	// the second pass restarts from the first event after the pause
	restart := 300 * time.Millisecond
	if got[2].at < restart || got[2].at > restart+2*tolerance {
		t.Fatalf("second pass started at %v; want about %v", got[2].at, restart)
	}
	if got[2].msg[1] != 60 || got[3].msg[1] != 61 {
		t.Fatalf("second pass did not replay from the start")
	}
}

func TestPlayHaltsOnMalformedEvent(t *testing.T) {
	rec, err := recording.Deserialize([]byte(`{"records":[[0,[144,60,100]],[0.01,[144,60]]]}`))
	if err != nil {
		t.Fatal(err)
	}
	out := newRecorder()
	err = Play(context.Background(), Settings{}, rec, contracts.Sink[midi.Message](out), identity, nil)

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Index != 1 {
		t.Fatalf("err=%v; want DecodeError for record 1", err)
	}
	if !errors.Is(err, recording.ErrMalformedEvent) {
		t.Fatalf("err=%v does not wrap ErrMalformedEvent", err)
	}
	if len(out.arrivals()) != 1 {
		t.Fatalf("dispatched %d events before the bad one; want 1", len(out.arrivals()))
	}
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Play(ctx, Settings{}, take(0, 5), contracts.Sink[midi.Message](newRecorder()), identity, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v; want context.Canceled", err)
	}
}

func TestWaitUntil(t *testing.T) {
	for _, spin := range []time.Duration{2 * time.Millisecond, 0, -1} {
		deadline := time.Now().Add(20 * time.Millisecond)
		if err := WaitUntil(context.Background(), deadline, spin); err != nil {
			t.Fatalf("spin %v: %v", spin, err)
		}
		if !time.Now().After(deadline) {
			t.Fatalf("spin %v: returned before the deadline", spin)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := WaitUntil(ctx, time.Now().Add(time.Hour), time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v; want deadline exceeded", err)
	}
}
