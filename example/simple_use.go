package main

import (
	"context"
	"fmt"
	"time"

	"github.com/leandrodaf/noterecorder/internal/logger"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/queue"
	"github.com/leandrodaf/noterecorder/sdk/recorder"
	"gitlab.com/gomidi/midi/v2"
)

func main() {
	log := logger.NewZapLogger()
	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
	}

	events := queue.New[midi.Message]()
	client, err := recorder.NewInput(opts...)
	if err == nil {
		err = liveInput(client, events)
		defer client.Stop()
	}
	if err != nil {
		log.Warn("No MIDI input, playing a scale instead", log.Field().Error("error", err))
		go scale(events)
	} else {
		fmt.Println("Capturing for five seconds...")
		time.AfterFunc(5*time.Second, func() { events.Push(recorder.Stop()) })
	}

	rec, err := recorder.Capture(events, contracts.SinkFunc[contracts.OutputMessage](func(contracts.OutputMessage) {}), recorder.Passthrough, opts...)
	if err != nil {
		log.Error("Capture failed", log.Field().Error("error", err))
		return
	}
	log.Info("Captured take", log.Field().Int("events", rec.Len()))

	out, err := recorder.NewConsoleOutput(opts...)
	if err != nil {
		log.Error("Failed to open console output", log.Field().Error("error", err))
		return
	}
	if err := out.SelectDevice(0); err != nil {
		log.Error("Failed to select output", log.Field().Error("error", err))
		return
	}

	played := queue.New[contracts.OutputMessage]()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- recorder.RunOutput(ctx, played, out, nil, opts...) }()

	if err := recorder.Play(context.Background(), rec, played, recorder.ToSpeaker(contracts.SpeakerLeft), opts...); err != nil {
		log.Error("Playback failed", log.Field().Error("error", err))
	}
	cancel()
	<-done
	out.Close()
}

func liveInput(client contracts.ClientMIDI, events *queue.Queue[midi.Message]) error {
	devices, err := client.ListDevices()
	if err != nil {
		return err
	}
	fmt.Println("Available MIDI devices:", devices)
	if err := client.SelectDevice(0); err != nil {
		return err
	}
	return client.StartCapture(events)
}

// scale plays a C major scale into events and stops the capture.
func scale(events *queue.Queue[midi.Message]) {
	for _, key := range []uint8{60, 62, 64, 65, 67, 69, 71, 72} {
		events.Push(midi.NoteOn(0, key, 100))
		time.Sleep(150 * time.Millisecond)
		events.Push(midi.NoteOff(0, key))
	}
	events.Push(recorder.Stop())
}
