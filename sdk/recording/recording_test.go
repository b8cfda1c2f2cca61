package recording

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func mustPanicWith(t *testing.T, sentinel error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, sentinel) {
			t.Fatalf("panic value %v; want %v", r, sentinel)
		}
	}()
	fn()
}

func TestAppendKeepsOrder(t *testing.T) {
	r := New()
	r.Append(0, midi.NoteOn(0, 60, 100))
	r.Append(0.25, midi.NoteOff(0, 60))
	r.Append(0.5, midi.NoteOn(0, 62, 90))

	if r.Len() != 3 {
		t.Fatalf("Len=%d; want 3", r.Len())
	}
	if r.Duration() != 0.5 {
		t.Fatalf("Duration=%v; want 0.5", r.Duration())
	}
	var times []float64
	for tm, ev := range r.All() {
		times = append(times, tm)
		if _, err := Decode(ev); err != nil {
			t.Fatalf("stored event does not decode: %v", err)
		}
	}
	want := []float64{0, 0.25, 0.5}
	for i := range want {
		if times[i] != want[i] {
			t.Fatalf("times=%v; want %v", times, want)
		}
	}
}

func TestAppendRejectsNonIncreasingTime(t *testing.T) {
	r := New()
	r.Append(0.1, midi.NoteOn(0, 60, 100))
	mustPanicWith(t, ErrNonMonotonic, func() { r.Append(0.1, midi.NoteOff(0, 60)) })
	mustPanicWith(t, ErrNonMonotonic, func() { r.Append(0.05, midi.NoteOff(0, 60)) })
	mustPanicWith(t, ErrNonMonotonic, func() { New().Append(-1, midi.NoteOff(0, 60)) })
}

func TestRecordsDoNotAlias(t *testing.T) {
	msg := midi.NoteOn(0, 60, 100)
	r := New()
	r.Append(0, msg)
	msg[1] = 10
	recs := r.Records()
	recs[0].Event[2] = 1
	if got := r.Records()[0].Event; got[1] != 60 || got[2] != 100 {
		t.Fatalf("stored event changed: % X", got)
	}
}

func TestSequenceIsRestartable(t *testing.T) {
	r := FromSequence([]TimedMessage{
		{Time: 0, Msg: midi.NoteOn(0, 60, 100)},
		{Time: 1, Msg: midi.NoteOff(0, 60)},
	})
	for pass := 0; pass < 2; pass++ {
		seq := r.Sequence()
		if seq.Len() != 2 {
			t.Fatalf("pass %d: Len=%d; want 2", pass, seq.Len())
		}
		head, ok := seq.Peek()
		if !ok || head.Time != 0 || seq.Index() != 0 {
			t.Fatalf("pass %d: Peek=%v,%v", pass, head, ok)
		}
		seq.Pop()
		rec, _ := seq.Pop()
		if rec.Time != 1 || seq.Index() != 2 {
			t.Fatalf("pass %d: second record %v", pass, rec)
		}
		if _, ok := seq.Pop(); ok {
			t.Fatalf("pass %d: expected exhausted sequence", pass)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	for name, r := range map[string]*Recording{
		"empty": New(),
		"notes": FromSequence([]TimedMessage{
			{Time: 0, Msg: midi.NoteOn(0, 60, 100)},
			{Time: 0.123456789, Msg: midi.NoteOff(0, 60)},
			{Time: 2.5, Msg: midi.ControlChange(1, 64, 127)},
		}),
	} {
		t.Run(name, func(t *testing.T) {
			data, err := r.Serialize()
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			if !strings.HasSuffix(string(data), "\n") {
				t.Fatalf("serialized text lacks trailing newline: %q", data)
			}
			got, err := Deserialize(data)
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if !got.Equal(r) {
				t.Fatalf("round trip mismatch: %v vs %v", got.Records(), r.Records())
			}
		})
	}
}

func TestDeserializeReadsExistingFiles(t *testing.T) {
	data := []byte(`{"records":[[0.0,[144,60,100]],[0.5,[128,60,0]]]}` + "\n")
	r, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	recs := r.Records()
	if len(recs) != 2 || recs[1].Time != 0.5 || recs[1].Event[0] != 0x80 {
		t.Fatalf("unexpected records %v", recs)
	}
}

func TestDeserializeMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"records":`,
		"missing records": `{}`,
		"bad tuple":       `{"records":[[0.0]]}`,
		"byte range":      `{"records":[[0.0,[144,300,1]]]}`,
		"negative time":   `{"records":[[-1,[144,60,1]]]}`,
		"non increasing":  `{"records":[[1,[144,60,1]],[1,[128,60,0]]]}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Deserialize([]byte(text)); !errors.Is(err, ErrMalformedRecording) {
				t.Fatalf("err=%v; want ErrMalformedRecording", err)
			}
		})
	}
}

func TestDeserializeReportsEveryProblem(t *testing.T) {
	_, err := Deserialize([]byte(`{"records":[[0,[999]],[0.5,[144,60,1]],["x",[1]]]}`))
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "record 0") || !strings.Contains(msg, "record 2") {
		t.Fatalf("error does not name both bad records: %v", msg)
	}
}

func TestDeserializeKeepsUndecodableEvents(t *testing.T) {
	r, err := Deserialize([]byte(`{"records":[[0,[144,60]]]}`))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	for _, ev := range r.All() {
		if _, err := Decode(ev); !errors.Is(err, ErrMalformedEvent) {
			t.Fatalf("Decode err=%v; want ErrMalformedEvent", err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.json")
	r := FromSequence([]TimedMessage{{Time: 0, Msg: midi.NoteOn(2, 64, 80)}})
	if err := r.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Equal(r) {
		t.Fatalf("loaded recording differs")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v; want ErrNotFound", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrMalformedRecording) {
		t.Fatalf("err=%v; want ErrMalformedRecording", err)
	}
}
