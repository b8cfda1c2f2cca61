//go:build !midi_native

package rtmidi

import (
	"errors"
	"testing"

	"github.com/leandrodaf/noterecorder/internal/logger"
	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
)

func TestStubReportsUnavailable(t *testing.T) {
	if Available() {
		t.Fatalf("stub build claims rtmidi is available")
	}
	opts := &contracts.RecorderOptions{Logger: logger.NewNop()}
	if _, err := NewMIDIClient(opts); !errors.Is(err, transport.ErrUnavailable) {
		t.Fatalf("NewMIDIClient err=%v", err)
	}
	if _, err := NewMIDIOutput(opts); !errors.Is(err, transport.ErrUnavailable) {
		t.Fatalf("NewMIDIOutput err=%v", err)
	}
}
