package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/leandrodaf/noterecorder/sdk/recording"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
)

func runPrint(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("print", flag.ContinueOnError)
	notes := fs.Bool("notes", false, "the file holds played notes with durations")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: noterecorder print FILE [-notes]")
		fs.PrintDefaults()
	}
	files, err := parseInterspersed(fs, args)
	if err != nil {
		return errUsage
	}
	if len(files) != 1 {
		fs.Usage()
		return errUsage
	}

	if *notes {
		n, err := recording.LoadNotes(files[0])
		if err != nil {
			return err
		}
		printNotes(w, n)
		return nil
	}
	rec, err := recording.Load(files[0])
	if err != nil {
		return err
	}
	printRecording(w, rec)
	return nil
}

// printRecording lists the note events of rec, one per line as
// time, pitch and velocity. Other events are counted but not listed.
func printRecording(w io.Writer, rec *recording.Recording) {
	fmt.Fprintln(w, headerStyle.Render("time\tnote\t vel"))
	skipped := 0
	for t, event := range rec.All() {
		msg, err := recording.Decode(event)
		if err != nil {
			skipped++
			continue
		}
		pitch, vel, ok := recording.NoteVelocity(msg)
		if !ok {
			skipped++
			continue
		}
		fmt.Fprintf(w, "%.3f\t%4d\t%4d\n", t, pitch, vel)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d events, %.3fs, %d not shown", rec.Len(), rec.Duration(), skipped)))
}

func printNotes(w io.Writer, n *recording.NoteRecording) {
	fmt.Fprintln(w, headerStyle.Render("onset\tnote\t vel\tlength"))
	for _, p := range n.Notes() {
		fmt.Fprintf(w, "%.3f\t%4d\t%4d\t%.3f\n", p.Onset, p.Pitch, p.Velocity, p.Duration)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d notes", n.Len())))
}
