package engine

import (
	"testing"
	"time"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/queue"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"gitlab.com/gomidi/midi/v2"
)

func identity(msg midi.Message) midi.Message { return msg }

// waitLen blocks until q holds n items.
func waitLen[T any](t *testing.T, q *queue.Queue[T], n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for q.Len() < n {
		if time.Now().After(deadline) {
			t.Errorf("queue never reached %d items", n)
			return
		}
		time.Sleep(100 * time.Microsecond)
	}
}

func TestCaptureStampsRelativeTimes(t *testing.T) {
	for name, s := range map[string]Settings{
		"notified":  {IdlePoll: time.Millisecond},
		"busy poll": {},
	} {
		t.Run(name, func(t *testing.T) {
			in := queue.New[midi.Message]()
			out := queue.New[midi.Message]()
			const gap = 50 * time.Millisecond

			go func() {
				in.Push(midi.NoteOn(0, 60, 100))
				waitLen(t, out, 1)
				time.Sleep(gap)
				in.Push(midi.ControlChange(0, 64, 127))
				in.Push(midi.NoteOff(0, 60))
				waitLen(t, out, 3)
				in.Push(recording.SystemReset)
			}()

			rec := Capture(s, in, out, identity)
			recs := rec.Records()
			if len(recs) != 2 {
				t.Fatalf("got %d records; want 2", len(recs))
			}
			if recs[0].Time != 0 {
				t.Fatalf("first record at %v; want 0", recs[0].Time)
			}
			if d := recs[1].Time - recs[0].Time; d < gap.Seconds() || d > gap.Seconds()+0.1 {
				t.Fatalf("delta %v; want about %v", d, gap.Seconds())
			}
			if out.Len() != 3 {
				t.Fatalf("forwarded %d messages; want 3 without the sentinel", out.Len())
			}
		})
	}
}

func TestCaptureSentinelOnly(t *testing.T) {
	in := queue.New[midi.Message]()
	out := queue.New[midi.Message]()
	in.Push(recording.SystemReset)

	rec := Capture(Settings{IdlePoll: time.Millisecond}, in, out, identity)
	if rec.Len() != 0 || out.Len() != 0 {
		t.Fatalf("records=%d forwarded=%d; want empty", rec.Len(), out.Len())
	}
}

func TestCaptureStopsAtSentinel(t *testing.T) {
	in := queue.New[midi.Message]()
	out := queue.New[contracts.OutputMessage]()
	in.Push(midi.NoteOn(1, 64, 90))
	in.Push(recording.SystemReset)
	in.Push(midi.NoteOff(1, 64))

	rec := Capture(Settings{}, in, out, func(msg midi.Message) contracts.OutputMessage {
		return contracts.OutputMessage{Msg: msg, Speaker: contracts.SpeakerLeft}
	})
	if rec.Len() != 1 {
		t.Fatalf("got %d records; want 1", rec.Len())
	}
	if in.Len() != 1 {
		t.Fatalf("events after the sentinel must stay queued, %d left", in.Len())
	}
	fwd, _ := out.Pop()
	if fwd.Speaker != contracts.SpeakerLeft || fwd.Msg[0] != 0x91 {
		t.Fatalf("forwarded %+v", fwd)
	}
}

func TestCaptureKeepsTimesIncreasing(t *testing.T) {
	in := queue.New[midi.Message]()
	for i := 0; i < 200; i++ {
		in.Push(midi.NoteOn(0, uint8(i%128), 1))
	}
	in.Push(recording.SystemReset)

	rec := Capture(Settings{}, in, contracts.SinkFunc[midi.Message](func(midi.Message) {}), identity)
	prev := -1.0
	for tm := range rec.All() {
		if tm <= prev {
			t.Fatalf("time %v after %v", tm, prev)
		}
		prev = tm
	}
}
