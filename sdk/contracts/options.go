package contracts

import "time"

// MIDICommand is the high nibble of a channel voice status byte, used for event filtering.
type MIDICommand byte

const (
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// ControlChange is the MIDI command for a Control Change event (0xB0).
	ControlChange MIDICommand = 0xB0
	// ProgramChange is the MIDI command for a Program Change event (0xC0).
	ProgramChange MIDICommand = 0xC0
)

// MIDIEventFilter allows users to specify which MIDI commands an input transport forwards.
// System messages (status 0xF0 and above) are never filtered.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of MIDI commands to forward.
}

// Allows reports whether a message with the given status byte passes the filter.
func (f *MIDIEventFilter) Allows(status byte) bool {
	if f == nil || len(f.Commands) == 0 || status >= 0xF0 {
		return true
	}
	for _, c := range f.Commands {
		if status&0xF0 == byte(c) {
			return true
		}
	}
	return false
}

// TransportConfig holds configuration shared by the MIDI transports.
type TransportConfig struct {
	ClientName string // Name announced to the OS MIDI service.
	InputPort  string // Preferred input port name (exact, then substring match).
	OutputPort string // Preferred output port name (exact, then substring match).
}

// Default scheduling parameters.
const (
	DefaultSpinWindow = 2 * time.Millisecond
	DefaultIdlePoll   = time.Millisecond
)

// RecorderOptions defines the configuration for capture and playback.
type RecorderOptions struct {
	Logger          Logger           // Logger for sessions, passes and events.
	LogLevel        LogLevel         // Level of logging to use.
	LogFilePath     string           // File path for logging if file logging is enabled.
	SpinWindow      time.Duration    // Busy-wait window before a dispatch deadline; negative spins for the whole wait.
	IdlePoll        time.Duration    // Upper bound on one idle wait of a capture loop; zero busy-polls.
	LoopDelay       *time.Duration   // Delay between perpetual playback passes; nil plays once.
	MIDIEventFilter *MIDIEventFilter // Optional filter applied by input transports.
	TransportConfig *TransportConfig // Configuration for the MIDI transports.

	spinWindowSet bool
	idlePollSet   bool
}

// SpinWindowSet reports whether WithSpinWindow was applied.
func (o *RecorderOptions) SpinWindowSet() bool { return o.spinWindowSet }

// IdlePollSet reports whether WithIdlePoll was applied.
func (o *RecorderOptions) IdlePollSet() bool { return o.idlePollSet }

// Option is a function that modifies RecorderOptions.
type Option func(*RecorderOptions)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(opts *RecorderOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *RecorderOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile sends log output to the given file.
func WithLogFile(path string) Option {
	return func(opts *RecorderOptions) {
		opts.LogFilePath = path
	}
}

// WithSpinWindow sets how long before a dispatch deadline the scheduler stops
// sleeping and starts spinning. A negative window busy-waits for the whole gap.
func WithSpinWindow(d time.Duration) Option {
	return func(opts *RecorderOptions) {
		opts.SpinWindow = d
		opts.spinWindowSet = true
	}
}

// WithIdlePoll bounds a single idle wait of the capture loops. Zero selects
// the pure busy-poll loop.
func WithIdlePoll(d time.Duration) Option {
	return func(opts *RecorderOptions) {
		opts.IdlePoll = d
		opts.idlePollSet = true
	}
}

// WithLoopDelay makes playback perpetual, pausing d between passes.
func WithLoopDelay(d time.Duration) Option {
	return func(opts *RecorderOptions) {
		opts.LoopDelay = &d
	}
}

// WithMIDIEventFilter sets the MIDI event filter for input transports.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *RecorderOptions) {
		opts.MIDIEventFilter = &filter
	}
}

// WithTransportConfig sets the transport configuration.
func WithTransportConfig(config TransportConfig) Option {
	return func(opts *RecorderOptions) {
		opts.TransportConfig = &config
	}
}
