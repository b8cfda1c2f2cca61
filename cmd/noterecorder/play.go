package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/recorder"
	"github.com/leandrodaf/noterecorder/sdk/recording"
	"go.uber.org/multierr"
)

func parseSpeaker(s string) (contracts.Speaker, error) {
	switch s {
	case "", "both":
		return contracts.SpeakerBoth, nil
	case "left", "l":
		return contracts.SpeakerLeft, nil
	case "right", "r":
		return contracts.SpeakerRight, nil
	}
	return contracts.SpeakerBoth, fmt.Errorf("unknown speaker %q (want left, right or both)", s)
}

// loadTake reads a raw take, or a note take rendered on channel 1 when notes is set.
func loadTake(path string, notes bool) (*recording.Recording, error) {
	if !notes {
		return recording.Load(path)
	}
	n, err := recording.LoadNotes(path)
	if err != nil {
		return nil, err
	}
	return n.ToRecording(0), nil
}

func runPlay(args []string) error {
	args, perpetual, err := parsePerpetual(args)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	c := addCommon(fs)
	loopDelay := fs.Duration("loop-delay", -1, "repeat forever, pausing this long between passes")
	speaker := fs.String("speaker", "both", "route playback to left, right or both")
	notes := fs.Bool("notes", false, "the file holds played notes with durations")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: noterecorder play FILE [-perpetual:SECS] [options]")
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
	cfg, err := c.resolve(fs)
	if err != nil {
		return err
	}
	s, err := parseSpeaker(*speaker)
	if err != nil {
		return err
	}

	rec, err := loadTake(files[0], *notes)
	if err != nil {
		return err
	}

	log, opts := c.options()
	switch {
	case perpetual != nil:
		opts = append(opts, contracts.WithLoopDelay(*perpetual))
	case *loopDelay >= 0:
		opts = append(opts, contracts.WithLoopDelay(*loopDelay))
	case cfg.LoopDelay != nil:
		opts = append(opts, contracts.WithLoopDelay(cfg.LoopDelay.Duration))
	}

	out, err := openOutput(c, cfg, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("playing", log.Field().String("file", files[0]), log.Field().Int("events", rec.Len()))
	err = recorder.Play(ctx, rec, out.queue, recorder.ToSpeaker(s), opts...)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return multierr.Append(err, out.Close())
}

func runStereo(args []string) error {
	fs := flag.NewFlagSet("stereo", flag.ContinueOnError)
	c := addCommon(fs)
	notes := fs.Bool("notes", false, "both files hold played notes with durations")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: noterecorder stereo LEFT RIGHT [options]")
		fs.PrintDefaults()
	}
	files, err := parseInterspersed(fs, args)
	if err != nil {
		return errUsage
	}
	if len(files) != 2 {
		fs.Usage()
		return errUsage
	}
	cfg, err := c.resolve(fs)
	if err != nil {
		return err
	}

	left, err := loadTake(files[0], *notes)
	if err != nil {
		return err
	}
	right, err := loadTake(files[1], *notes)
	if err != nil {
		return err
	}

	_, opts := c.options()
	out, err := openOutput(c, cfg, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = recorder.PlayStereo(ctx, left, right, out.queue,
		recorder.ToSpeaker(contracts.SpeakerLeft), recorder.ToSpeaker(contracts.SpeakerRight), opts...)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return multierr.Append(err, out.Close())
}
