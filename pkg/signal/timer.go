package signal

import (
	"sync"
	"time"
)

// Timer is a recurring timer armed by the refresh scheduler. Stop must
// be safe to call more than once and must prevent any further ticks.
type Timer interface {
	Stop()
}

// TimerFactory creates a recurring timer firing tick every interval.
// Tests inject a manual factory to drive ticks deterministically.
type TimerFactory func(interval time.Duration, tick func()) Timer

// NewTickerTimer is the default TimerFactory, backed by time.Ticker.
func NewTickerTimer(interval time.Duration, tick func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go t.run(tick)
	return t
}

type tickerTimer struct {
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func (t *tickerTimer) run(tick func()) {
	for {
		select {
		case <-t.ticker.C:
			tick()
		case <-t.done:
			return
		}
	}
}

func (t *tickerTimer) Stop() {
	t.stopOnce.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
