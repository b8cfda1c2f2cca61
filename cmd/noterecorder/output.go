package main

import (
	"context"
	"fmt"

	"github.com/leandrodaf/noterecorder/internal/config"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/queue"
	"github.com/leandrodaf/noterecorder/sdk/recorder"
)

// pump owns an output port and the goroutine that feeds it.
type pump struct {
	queue  *queue.Queue[contracts.OutputMessage]
	dev    contracts.OutputMIDI
	cancel context.CancelFunc
	done   chan error
}

// openOutput opens the configured output port, or the console when dryRun
// is set, and starts pumping queued messages to it.
func openOutput(c *common, cfg *config.Config, opts []contracts.Option) (*pump, error) {
	var (
		dev contracts.OutputMIDI
		err error
	)
	if c.dryRun {
		dev, err = recorder.NewConsoleOutput(opts...)
	} else {
		dev, err = recorder.NewOutput(opts...)
	}
	if err != nil {
		return nil, err
	}
	if err := recorder.SelectPort(dev, c.out, 0); err != nil {
		dev.Close()
		return nil, fmt.Errorf("select output: %w", err)
	}

	programs, err := programTable(cfg)
	if err != nil {
		dev.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &pump{
		queue:  queue.New[contracts.OutputMessage](),
		dev:    dev,
		cancel: cancel,
		done:   make(chan error, 1),
	}
	go func() {
		p.done <- recorder.RunOutput(ctx, p.queue, dev, programs, opts...)
	}()
	return p, nil
}

// Close flushes the queue, stops the pump and closes the port.
func (p *pump) Close() error {
	p.cancel()
	err := <-p.done
	if err != nil {
		p.dev.Close()
		return err
	}
	return recorder.Close(nil, p.dev)
}

// programTable converts the configured 1-based channel programs.
func programTable(cfg *config.Config) (*recorder.ProgramTable, error) {
	programs := recorder.NewProgramTable()
	for ch, prog := range cfg.Programs {
		if ch < 1 || ch > 16 || prog < 0 || prog > 127 {
			return nil, fmt.Errorf("program %d on channel %d out of range", prog, ch)
		}
		if err := programs.Set(uint8(ch-1), uint8(prog)); err != nil {
			return nil, err
		}
	}
	return programs, nil
}
