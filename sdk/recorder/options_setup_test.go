package recorder

import (
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/noterecorder/internal/logger"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
)

func TestApplyDefaultOptions(t *testing.T) {
	options, err := applyDefaultOptions(contracts.WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	if options.SpinWindow != contracts.DefaultSpinWindow || options.IdlePoll != contracts.DefaultIdlePoll {
		t.Fatalf("defaults not applied: spin=%v poll=%v", options.SpinWindow, options.IdlePoll)
	}
	if options.TransportConfig.ClientName != DefaultClientName {
		t.Fatalf("client name %q", options.TransportConfig.ClientName)
	}
	if options.LoopDelay != nil {
		t.Fatalf("loop delay set by default")
	}
}

func TestApplyDefaultOptionsKeepsExplicitZero(t *testing.T) {
	options, err := applyDefaultOptions(
		contracts.WithLogger(logger.NewNop()),
		contracts.WithSpinWindow(0),
		contracts.WithIdlePoll(0),
		contracts.WithLoopDelay(1500*time.Millisecond),
		contracts.WithTransportConfig(contracts.TransportConfig{InputPort: "Piano"}),
	)
	if err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	if options.SpinWindow != 0 || options.IdlePoll != 0 {
		t.Fatalf("explicit zero overridden: spin=%v poll=%v", options.SpinWindow, options.IdlePoll)
	}
	if options.LoopDelay == nil || *options.LoopDelay != 1500*time.Millisecond {
		t.Fatalf("loop delay %v", options.LoopDelay)
	}
	if options.TransportConfig.ClientName != DefaultClientName || options.TransportConfig.InputPort != "Piano" {
		t.Fatalf("transport config %+v", options.TransportConfig)
	}
}

func TestApplyDefaultOptionsRejectsNegative(t *testing.T) {
	nop := contracts.WithLogger(logger.NewNop())
	if _, err := applyDefaultOptions(nop, contracts.WithIdlePoll(-time.Millisecond)); !errors.Is(err, errNegativeIdlePoll) {
		t.Fatalf("err=%v", err)
	}
	if _, err := applyDefaultOptions(nop, contracts.WithLoopDelay(-time.Second)); !errors.Is(err, errNegativeLoopDelay) {
		t.Fatalf("err=%v", err)
	}
}

func TestSessionIDsDiffer(t *testing.T) {
	if NewSessionID() == NewSessionID() {
		t.Fatalf("session ids repeat")
	}
}
