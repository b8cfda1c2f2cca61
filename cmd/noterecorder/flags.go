package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leandrodaf/noterecorder/internal/config"
	"github.com/leandrodaf/noterecorder/internal/logger"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
)

// errUsage is returned after usage has been printed for bad arguments.
var errUsage = errors.New("usage")

// common holds the flags every command shares.
type common struct {
	configPath string
	in         string
	out        string
	logLevel   string
	logFile    string
	spin       time.Duration
	dryRun     bool
}

func addCommon(fs *flag.FlagSet) *common {
	c := &common{}
	fs.StringVar(&c.configPath, "config", "", "path to the JSON config (default ~/.config/noterecorder/config.json)")
	fs.StringVar(&c.in, "in", "", "MIDI input port name (exact or substring)")
	fs.StringVar(&c.out, "out", "", "MIDI output port name (exact or substring)")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&c.logFile, "log-file", "", "write logs to this file instead of stderr")
	fs.DurationVar(&c.spin, "spin", contracts.DefaultSpinWindow, "busy-wait window before each dispatch; negative spins for the whole gap")
	fs.BoolVar(&c.dryRun, "dry-run", false, "log output messages instead of sending them to a MIDI port")
	return c
}

// resolve loads the config file and fills every flag the user did not set
// explicitly from it.
func (c *common) resolve(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["in"] {
		c.in = cfg.InputDevice
	}
	if !set["out"] {
		c.out = cfg.OutputDevice
	}
	if !set["log-level"] {
		c.logLevel = cfg.LogLevel
	}
	if !set["log-file"] {
		c.logFile = cfg.LogFile
	}
	if !set["spin"] {
		c.spin = cfg.SpinWindow.Duration
	}
	if _, ok := contracts.ParseLogLevel(c.logLevel); !ok && c.logLevel != "" {
		return nil, fmt.Errorf("unknown log level %q", c.logLevel)
	}
	return cfg, nil
}

// options turns the resolved flags into recorder options.
func (c *common) options() (contracts.Logger, []contracts.Option) {
	log := logger.NewZapLogger()
	level, _ := contracts.ParseLogLevel(c.logLevel)
	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(level),
		contracts.WithSpinWindow(c.spin),
		contracts.WithTransportConfig(contracts.TransportConfig{InputPort: c.in, OutputPort: c.out}),
	}
	if c.logFile != "" {
		opts = append(opts, contracts.WithLogFile(c.logFile))
	}
	return log, opts
}

// parsePerpetual extracts the "-perpetual:SECS" argument, which the flag
// package cannot express, and returns the remaining arguments.
func parsePerpetual(args []string) (rest []string, delay *time.Duration, err error) {
	for _, a := range args {
		name := strings.TrimLeft(a, "-")
		if !strings.HasPrefix(a, "-") || !strings.HasPrefix(name, "perpetual") {
			rest = append(rest, a)
			continue
		}
		value, ok := strings.CutPrefix(name, "perpetual:")
		if !ok {
			return nil, nil, fmt.Errorf("%s: expected -perpetual:SECONDS", a)
		}
		secs, err := strconv.ParseFloat(value, 64)
		if err != nil || secs < 0 {
			return nil, nil, fmt.Errorf("%s: delay must be a non-negative number of seconds", a)
		}
		d := time.Duration(secs * float64(time.Second))
		delay = &d
	}
	return rest, delay, nil
}

// parseInterspersed parses flags that may appear before or after positional
// arguments and returns the positionals.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
