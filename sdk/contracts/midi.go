package contracts

import "gitlab.com/gomidi/midi/v2"

// Source is the consuming end of a non-blocking queue. Pop never blocks;
// ok is false when nothing is queued, which is a normal state.
type Source[T any] interface {
	Pop() (item T, ok bool)
}

// Notifier is implemented by sources that can wake an idle consumer.
// The channel receives (at most one pending) signal after each push.
type Notifier interface {
	Notify() <-chan struct{}
}

// Sink is the producing end of a non-blocking queue.
type Sink[T any] interface {
	Push(item T)
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc[T any] func(item T)

// Push calls f(item).
func (f SinkFunc[T]) Push(item T) { f(item) }

// Speaker selects where an outgoing message is rendered.
type Speaker int

const (
	// SpeakerBoth leaves the message on its own channel.
	SpeakerBoth Speaker = iota
	// SpeakerLeft routes the message to the left output channel.
	SpeakerLeft
	// SpeakerRight routes the message to the right output channel.
	SpeakerRight
)

func (s Speaker) String() string {
	switch s {
	case SpeakerLeft:
		return "left"
	case SpeakerRight:
		return "right"
	default:
		return "both"
	}
}

// OutputMessage is a transport-level playback command.
type OutputMessage struct {
	Msg     midi.Message
	Speaker Speaker
}

// ClientMIDI defines the input transport.
type ClientMIDI interface {
	Stop() error                                  // Stops the client and releases resources.
	ListDevices() ([]DeviceInfo, error)           // Lists all available input ports.
	SelectDevice(deviceID int) error              // Selects an input port by its ID.
	StartCapture(events Sink[midi.Message]) error // Starts pushing every received message into events.
}

// OutputMIDI defines the output transport.
type OutputMIDI interface {
	ListDevices() ([]DeviceInfo, error) // Lists all available output ports.
	SelectDevice(deviceID int) error    // Opens an output port by its ID.
	Send(msg midi.Message) error        // Writes one message to the open port.
	Close() error                       // Closes the port.
}
