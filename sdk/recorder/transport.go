package recorder

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/noterecorder/internal/transport"
	"github.com/leandrodaf/noterecorder/internal/transport/console"
	"github.com/leandrodaf/noterecorder/internal/transport/mididarwin"
	"github.com/leandrodaf/noterecorder/internal/transport/midiwindows"
	"github.com/leandrodaf/noterecorder/internal/transport/rtmidi"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"go.uber.org/multierr"
)

// ErrUnsupportedOS is returned when the operating system is not supported by the MIDI transports.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// ErrUnavailable is returned by transports that are not part of this build.
var ErrUnavailable = transport.ErrUnavailable

// inputInitializers maps OS names to corresponding MIDI input initializers.
var inputInitializers = map[string]func(*contracts.RecorderOptions) (contracts.ClientMIDI, error){
	"darwin":  mididarwin.NewMIDIClient,  // macOS (Darwin) CoreMIDI input.
	"windows": midiwindows.NewMIDIClient, // Windows winmm input.
}

// outputInitializers maps OS names to corresponding MIDI output initializers.
var outputInitializers = map[string]func(*contracts.RecorderOptions) (contracts.OutputMIDI, error){
	"darwin":  mididarwin.NewMIDIOutput,
	"windows": midiwindows.NewMIDIOutput,
}

// NewInput creates the MIDI input transport for the running system. The
// rtmidi driver is preferred when the binary was built with it.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI input client.
//   - error: An error if the operating system is unsupported or if initialization fails.
func NewInput(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	if rtmidi.Available() {
		return rtmidi.NewMIDIClient(&options)
	}
	if initializer, exists := inputInitializers[runtime.GOOS]; exists {
		return initializer(&options)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}

// NewOutput creates the MIDI output transport for the running system.
func NewOutput(opts ...contracts.Option) (contracts.OutputMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	if rtmidi.Available() {
		return rtmidi.NewMIDIOutput(&options)
	}
	if initializer, exists := outputInitializers[runtime.GOOS]; exists {
		return initializer(&options)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}

// NewConsoleOutput creates an output that logs messages instead of playing them.
func NewConsoleOutput(opts ...contracts.Option) (contracts.OutputMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return console.NewMIDIOutput(&options)
}

// SelectPort selects the port called name on dev, or the port with index
// fallback when name is empty.
func SelectPort(dev interface {
	ListDevices() ([]contracts.DeviceInfo, error)
	SelectDevice(int) error
}, name string, fallback int) error {
	if name != "" {
		return transport.SelectByName(dev, name)
	}
	return dev.SelectDevice(fallback)
}

// Close releases an input and an output transport, reporting every failure.
func Close(in contracts.ClientMIDI, out contracts.OutputMIDI) error {
	var err error
	if in != nil {
		err = multierr.Append(err, in.Stop())
	}
	if out != nil {
		err = multierr.Append(err, out.Close())
	}
	return err
}
