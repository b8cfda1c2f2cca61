package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/queue"
	"github.com/leandrodaf/noterecorder/sdk/recorder"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/multierr"
)

// openInput opens the configured input port and starts capturing into a queue.
func openInput(c *common, opts []contracts.Option) (contracts.ClientMIDI, *queue.Queue[midi.Message], error) {
	in, err := recorder.NewInput(opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := recorder.SelectPort(in, c.in, 0); err != nil {
		in.Stop()
		return nil, nil, fmt.Errorf("select input: %w", err)
	}
	events := queue.New[midi.Message]()
	if err := in.StartCapture(events); err != nil {
		in.Stop()
		return nil, nil, err
	}
	return in, events, nil
}

// defaultTakeName names a take after the first block of a fresh session id.
func defaultTakeName() string {
	id, _, _ := strings.Cut(recorder.NewSessionID(), "-")
	return "take-" + id + ".json"
}

// promptPath asks for a file name on r, falling back to def on an empty line.
func promptPath(r *bufio.Reader, w io.Writer, def string) string {
	fmt.Fprintf(w, "Save as [%s]: ", def)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	if line = strings.TrimSpace(line); line != "" {
		return line
	}
	return def
}

func runRecord(args []string) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	c := addCommon(fs)
	output := fs.String("o", "", "file to save the take to (prompted when empty)")
	monitor := fs.Bool("monitor", false, "play the input through the output port while recording")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: noterecorder record [options]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	cfg, err := c.resolve(fs)
	if err != nil {
		return err
	}
	_, opts := c.options()

	in, events, err := openInput(c, opts)
	if err != nil {
		return err
	}

	var out contracts.Sink[contracts.OutputMessage] = contracts.SinkFunc[contracts.OutputMessage](func(contracts.OutputMessage) {})
	var monitorPump *pump
	if *monitor {
		if monitorPump, err = openOutput(c, cfg, opts); err != nil {
			in.Stop()
			return err
		}
		out = monitorPump.queue
	}

	stdin := bufio.NewReader(os.Stdin)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	pressed := make(chan struct{})
	go func() {
		stdin.ReadString('\n')
		close(pressed)
	}()
	go func() {
		select {
		case <-ctx.Done():
		case <-pressed:
		}
		events.Push(recorder.Stop())
	}()

	fmt.Println("Recording... press Enter to stop.")
	rec, err := recorder.Capture(events, out, recorder.Passthrough, opts...)

	closeErr := recorder.Close(in, nil)
	if monitorPump != nil {
		closeErr = multierr.Append(closeErr, monitorPump.Close())
	}
	if err != nil {
		return multierr.Append(err, closeErr)
	}
	fmt.Printf("Captured %d events over %.3fs.\n", rec.Len(), rec.Duration())

	path := *output
	if path == "" {
		// interrupted takes are saved under the default name without prompting
		if ctx.Err() != nil {
			path = defaultTakeName()
		} else {
			path = promptPath(stdin, os.Stdout, defaultTakeName())
		}
	}
	if err := rec.Save(path); err != nil {
		return multierr.Append(err, closeErr)
	}
	fmt.Printf("Saved %s\n", path)
	return closeErr
}

func runDurations(args []string) error {
	fs := flag.NewFlagSet("durations", flag.ContinueOnError)
	c := addCommon(fs)
	output := fs.String("o", "", "file to save the notes to (default take-<id>.json)")
	inactivity := fs.Duration("inactivity", 0, "stop after this long without notes (default from config, 3s)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: noterecorder durations [options]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	cfg, err := c.resolve(fs)
	if err != nil {
		return err
	}
	wait := cfg.Inactivity.Duration
	if *inactivity > 0 {
		wait = *inactivity
	}
	_, opts := c.options()

	in, events, err := openInput(c, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Recording... stops %s after the last note is released.\n", wait.Round(time.Millisecond))
	notes, err := recorder.CaptureWithDurations(events, wait, opts...)
	closeErr := recorder.Close(in, nil)
	if err != nil {
		return multierr.Append(err, closeErr)
	}

	path := *output
	if path == "" {
		path = defaultTakeName()
	}
	if err := notes.Save(path); err != nil {
		return multierr.Append(err, closeErr)
	}
	fmt.Printf("Saved %d notes to %s\n", notes.Len(), path)
	return closeErr
}
