// Package engine implements the capture and playback timing loops: the
// sentinel-terminated capture loop, the inactivity-terminated note pairing
// capture, the single-track playback scheduler and the two-track merge.
package engine

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/leandrodaf/noterecorder/internal/logger"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	pkgerrors "github.com/pkg/errors"
)

// ErrPitchOutOfRange marks a note event whose pitch does not fit the pending table.
var ErrPitchOutOfRange = errors.New("engine: pitch out of range")

// Settings tunes the loops. The zero value busy-polls on capture and
// busy-waits on playback.
type Settings struct {
	Logger     contracts.Logger
	SpinWindow time.Duration // negative: spin for the whole wait
	IdlePoll   time.Duration // zero: yield and re-poll
	Session    string        // tag attached to log entries
}

func (s Settings) log() contracts.Logger {
	if s.Logger == nil {
		return logger.NewNop()
	}
	return s.Logger
}

// seconds converts an offset in seconds to a Duration, rounding up so a
// deadline is never earlier than its goal.
func seconds(t float64) time.Duration {
	return time.Duration(math.Ceil(t * float64(time.Second)))
}

// idler blocks a consumer whose source ran dry.
type idler struct {
	notify <-chan struct{}
	poll   time.Duration
	timer  *time.Timer
}

func newIdler(src any, poll time.Duration) *idler {
	w := &idler{poll: poll}
	if n, ok := src.(contracts.Notifier); ok {
		w.notify = n.Notify()
	}
	return w
}

// wait returns after a push notification, after the poll interval or after
// max (when positive and shorter), whichever comes first. Without a poll
// interval it only yields.
func (w *idler) wait(max time.Duration) {
	if w.poll <= 0 {
		runtime.Gosched()
		return
	}
	d := w.poll
	if max > 0 && max < d {
		d = max
	}
	if w.timer == nil {
		w.timer = time.NewTimer(d)
	} else {
		w.timer.Reset(d)
	}
	select {
	case <-w.notify:
	case <-w.timer.C:
	}
}

func (w *idler) stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
}

func violate(sentinel error, format string, args ...any) {
	panic(pkgerrors.WithStack(fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)))
}
