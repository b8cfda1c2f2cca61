package recorder

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

// Route applies the speaker of m to its message: left plays on channel 1,
// right on channel 2 and both leaves the channel alone. System messages are
// never rechanneled. The result does not alias m.Msg.
func Route(m contracts.OutputMessage) midi.Message {
	msg := append(midi.Message(nil), m.Msg...)
	if len(msg) == 0 || msg[0] < 0x80 || msg[0] >= 0xF0 {
		return msg
	}
	switch m.Speaker {
	case contracts.SpeakerLeft:
		msg[0] = msg[0] & 0xF0
	case contracts.SpeakerRight:
		msg[0] = msg[0]&0xF0 | 0x01
	}
	return msg
}

// RunOutput pumps queued output messages to dev until ctx is done. Each
// message is routed to its speaker's channel, preceded by a Program Change
// when programs holds one that was not sent yet. Send failures are logged
// and the message is skipped.
//
// Returns:
//   - error: An error if the options are invalid; otherwise nil once ctx is done.
func RunOutput(ctx context.Context, in contracts.Source[contracts.OutputMessage], dev contracts.OutputMIDI, programs *ProgramTable, opts ...contracts.Option) error {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return err
	}
	log := options.Logger

	var notify <-chan struct{}
	if n, ok := in.(contracts.Notifier); ok {
		notify = n.Notify()
	}
	var timer *time.Timer
	if options.IdlePoll > 0 {
		timer = time.NewTimer(options.IdlePoll)
		defer timer.Stop()
	}

	sent, failed := 0, 0
	for {
		m, ok := in.Pop()
		if !ok {
			if ctx.Err() != nil {
				log.Info("output stopped", log.Field().Int("sent", sent), log.Field().Int("failed", failed))
				return nil
			}
			if timer == nil {
				runtime.Gosched()
				continue
			}
			timer.Reset(options.IdlePoll)
			select {
			case <-ctx.Done():
			case <-notify:
			case <-timer.C:
			}
			continue
		}

		if err := deliver(dev, programs, m); err != nil {
			failed++
			log.Warn("output send failed", log.Field().Error("error", err))
			continue
		}
		sent++
	}
}

func deliver(dev contracts.OutputMIDI, programs *ProgramTable, m contracts.OutputMessage) error {
	msg := Route(m)
	if len(msg) > 0 && msg[0] >= 0x80 && msg[0] < 0xF0 {
		channel := msg[0] & 0x0F
		if number, ok := programs.take(channel); ok {
			if err := dev.Send(midi.ProgramChange(channel, number)); err != nil {
				return fmt.Errorf("program change on channel %d: %w", channel, err)
			}
		}
	}
	return dev.Send(msg)
}
