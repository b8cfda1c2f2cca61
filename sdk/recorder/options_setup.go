package recorder

import (
	"errors"

	"github.com/google/uuid"
	"github.com/leandrodaf/noterecorder/internal/engine"
	"github.com/leandrodaf/noterecorder/internal/logger"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
)

// DefaultClientName is announced to the OS MIDI service when no TransportConfig is given.
const DefaultClientName = "noterecorder"

var (
	errNegativeIdlePoll  = errors.New("idle poll must not be negative")
	errNegativeLoopDelay = errors.New("loop delay must not be negative")
)

// applyDefaultOptions sets default values for RecorderOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify RecorderOptions.
//
// Returns:
//   - contracts.RecorderOptions: The finalized options with defaults applied.
//   - error: An error if an option holds an invalid value.
func applyDefaultOptions(opts ...contracts.Option) (contracts.RecorderOptions, error) {
	options := &contracts.RecorderOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.IdlePoll < 0 {
		return contracts.RecorderOptions{}, errNegativeIdlePoll
	}
	if options.LoopDelay != nil && *options.LoopDelay < 0 {
		return contracts.RecorderOptions{}, errNegativeLoopDelay
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if !options.SpinWindowSet() {
		options.SpinWindow = contracts.DefaultSpinWindow
	}
	if !options.IdlePollSet() {
		options.IdlePoll = contracts.DefaultIdlePoll
	}
	if options.TransportConfig == nil {
		options.TransportConfig = &contracts.TransportConfig{ClientName: DefaultClientName}
	} else if options.TransportConfig.ClientName == "" {
		cfg := *options.TransportConfig
		cfg.ClientName = DefaultClientName
		options.TransportConfig = &cfg
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	return *options, nil
}

// settings derives the engine settings for one session.
func settings(options *contracts.RecorderOptions) engine.Settings {
	return engine.Settings{
		Logger:     options.Logger,
		SpinWindow: options.SpinWindow,
		IdlePoll:   options.IdlePoll,
		Session:    NewSessionID(),
	}
}

// NewSessionID returns a random identifier for a capture session or take.
func NewSessionID() string {
	return uuid.NewString()
}
