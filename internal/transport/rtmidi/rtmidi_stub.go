//go:build !midi_native

package rtmidi

import (
	"fmt"

	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
)

// Available reports whether the rtmidi driver is part of this build.
func Available() bool { return false }

// NewMIDIClient is not supported without the midi_native build tag.
func NewMIDIClient(options *contracts.RecorderOptions) (contracts.ClientMIDI, error) {
	return nil, fmt.Errorf("%w: build with -tags midi_native", transport.ErrUnavailable)
}

// NewMIDIOutput is not supported without the midi_native build tag.
func NewMIDIOutput(options *contracts.RecorderOptions) (contracts.OutputMIDI, error) {
	return nil, fmt.Errorf("%w: build with -tags midi_native", transport.ErrUnavailable)
}
