package main

import (
	"bufio"
	"bytes"
	"flag"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/noterecorder/internal/config"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"gitlab.com/gomidi/midi/v2"
)

func TestParsePerpetual(t *testing.T) {
	rest, delay, err := parsePerpetual([]string{"take.json", "-perpetual:1.5", "-spin", "1ms"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delay == nil || *delay != 1500*time.Millisecond {
		t.Fatalf("delay=%v; want 1.5s", delay)
	}
	if strings.Join(rest, " ") != "take.json -spin 1ms" {
		t.Fatalf("rest=%v", rest)
	}

	_, delay, err = parsePerpetual([]string{"take.json"})
	if err != nil || delay != nil {
		t.Fatalf("expected no delay, got %v, %v", delay, err)
	}

	for _, bad := range []string{"-perpetual", "-perpetual:", "-perpetual:x", "-perpetual:-1"} {
		if _, _, err := parsePerpetual([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	notes := fs.Bool("notes", false, "")
	spin := fs.Duration("spin", 0, "")
	files, err := parseInterspersed(fs, []string{"left.json", "-notes", "right.json", "-spin", "3ms"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 || files[0] != "left.json" || files[1] != "right.json" {
		t.Fatalf("files=%v", files)
	}
	if !*notes || *spin != 3*time.Millisecond {
		t.Fatalf("flags not parsed: notes=%v spin=%v", *notes, *spin)
	}
}

func TestExplicitFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := config.DefaultConfig()
	cfg.InputDevice = "Piano"
	cfg.OutputDevice = "Synth"
	cfg.LogLevel = "debug"
	cfg.SpinWindow = config.Duration{Duration: 5 * time.Millisecond}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c := addCommon(fs)
	if err := fs.Parse([]string{"-config", path, "-out", "Wavetable"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := c.resolve(fs); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.in != "Piano" {
		t.Fatalf("in=%q; want value from config", c.in)
	}
	if c.out != "Wavetable" {
		t.Fatalf("out=%q; want explicit flag", c.out)
	}
	if c.logLevel != "debug" || c.spin != 5*time.Millisecond {
		t.Fatalf("logLevel=%q spin=%v; want config values", c.logLevel, c.spin)
	}
}

func TestResolveRejectsUnknownLevel(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c := addCommon(fs)
	path := filepath.Join(t.TempDir(), "missing.json")
	if err := fs.Parse([]string{"-config", path, "-log-level", "loud"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := c.resolve(fs); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}

func TestParseSpeaker(t *testing.T) {
	for in, want := range map[string]string{"": "both", "left": "left", "r": "right"} {
		got, err := parseSpeaker(in)
		if err != nil || got.String() != want {
			t.Fatalf("parseSpeaker(%q)=%v,%v; want %s", in, got, err, want)
		}
	}
	if _, err := parseSpeaker("center"); err == nil {
		t.Fatalf("expected error for unknown speaker")
	}
}

func TestPrintRecording(t *testing.T) {
	rec := recording.FromSequence([]recording.TimedMessage{
		{Time: 0, Msg: midi.NoteOn(0, 60, 100)},
		{Time: 0.25, Msg: midi.ControlChange(0, 64, 127)},
		{Time: 0.5, Msg: midi.NoteOff(0, 60)},
	})
	path := filepath.Join(t.TempDir(), "take.json")
	if err := rec.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	var buf bytes.Buffer
	if err := runPrint([]string{path}, &buf); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"0.000\t  60\t 100\n", "0.500\t  60\t   0\n", "3 events, 0.500s, 1 not shown"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0.250") {
		t.Fatalf("control change should not be listed:\n%s", out)
	}
}

func TestPrintNotes(t *testing.T) {
	notes := recording.NewNoteRecording()
	notes.Append(recording.PlayedNote{Pitch: 64, Velocity: 90, Onset: 0, Duration: 0.75})
	path := filepath.Join(t.TempDir(), "notes.json")
	if err := notes.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	var buf bytes.Buffer
	if err := runPrint([]string{path, "-notes"}, &buf); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "0.000\t  64\t  90\t0.750\n") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestPrintMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := runPrint([]string{filepath.Join(t.TempDir(), "nope.json")}, &buf); err == nil {
		t.Fatalf("expected error for a missing file")
	}
	if err := runPrint(nil, &buf); err != errUsage {
		t.Fatalf("err=%v; want errUsage", err)
	}
}

func TestPromptPath(t *testing.T) {
	var out bytes.Buffer
	got := promptPath(bufio.NewReader(strings.NewReader("mine.json\n")), &out, "take-1.json")
	if got != "mine.json" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(out.String(), "[take-1.json]") {
		t.Fatalf("prompt should show the default: %q", out.String())
	}
	if got := promptPath(bufio.NewReader(strings.NewReader("\n")), &out, "take-1.json"); got != "take-1.json" {
		t.Fatalf("empty line: got %q", got)
	}
	if got := promptPath(bufio.NewReader(strings.NewReader("")), &out, "take-1.json"); got != "take-1.json" {
		t.Fatalf("EOF: got %q", got)
	}
}

func TestProgramTableFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Programs = map[int]int{1: 0, 2: 33}
	programs, err := programTable(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := programs.Get(1); !ok || n != 33 {
		t.Fatalf("channel 2 program=%d,%v; want 33", n, ok)
	}
	cfg.Programs = map[int]int{17: 1}
	if _, err := programTable(cfg); err == nil {
		t.Fatalf("expected error for channel 17")
	}
}

func TestDefaultTakeName(t *testing.T) {
	name := defaultTakeName()
	if !strings.HasPrefix(name, "take-") || filepath.Ext(name) != ".json" || len(name) != len("take-12345678.json") {
		t.Fatalf("unexpected name %q", name)
	}
}
