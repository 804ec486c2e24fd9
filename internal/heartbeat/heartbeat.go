// Package heartbeat keeps a host watchdog informed while a long step runs.
//
// Automation hosts kill jobs that stay silent for too long. A Monitor writes a
// trace line at a fixed interval between Start and the returned stop func, so
// callers bracket exactly the steps that can run long:
//
//	stop := monitor.Start("package")
//	defer stop()
package heartbeat

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultInterval = 50 * time.Second

// Signal starts a keep-alive scope. The returned func ends it and is safe to
// call more than once.
type Signal interface {
	Start(scope string) (stop func())
}

// Nop is a Signal that does nothing.
type Nop struct{}

func (Nop) Start(string) func() { return func() {} }

// Monitor emits a "heartbeating" trace entry every Interval while a scope is open.
type Monitor struct {
	Logger   zerolog.Logger
	Interval time.Duration
	now      func() time.Time
}

func NewMonitor(logger zerolog.Logger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{Logger: logger, Interval: interval, now: time.Now}
}

func (m *Monitor) Start(scope string) func() {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	now := m.now
	if now == nil {
		now = time.Now
	}
	logger := m.Logger.With().Str("scope", scope).Logger()
	started := now()
	logger.Trace().Msg("heartbeat started")

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case t := <-ticker.C:
				logger.Trace().
					Dur("elapsed", t.Sub(started)).
					Msg("heartbeating")
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-exited
			logger.Trace().Dur("elapsed", now().Sub(started)).Msg("heartbeat stopped")
		})
	}
}
