package recorder

import (
	"fmt"
	"sync"
)

type program struct {
	number uint8
	set    bool
	sent   bool
}

// ProgramTable holds the instrument selected for each MIDI channel. The
// output pump sends a Program Change for a channel before the first message
// it routes there after the program was set.
type ProgramTable struct {
	mu       sync.Mutex
	channels [16]program
}

// NewProgramTable returns a table with no programs set.
func NewProgramTable() *ProgramTable {
	return &ProgramTable{}
}

// Set selects program for channel (0-15).
func (p *ProgramTable) Set(channel, number uint8) error {
	if channel > 15 || number > 127 {
		return fmt.Errorf("program %d on channel %d out of range", number, channel)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[channel] = program{number: number, set: true}
	return nil
}

// Get returns the program selected for channel.
func (p *ProgramTable) Get(channel uint8) (uint8, bool) {
	if channel > 15 {
		return 0, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.channels[channel]
	return c.number, c.set
}

// Resend marks every program as not yet sent, for example after the output
// device changed.
func (p *ProgramTable) Resend() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.channels {
		p.channels[i].sent = false
	}
}

// take returns the program for channel if it has not been sent yet and
// marks it sent.
func (p *ProgramTable) take(channel uint8) (uint8, bool) {
	if p == nil || channel > 15 {
		return 0, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	c := &p.channels[channel]
	if !c.set || c.sent {
		return 0, false
	}
	c.sent = true
	return c.number, true
}
