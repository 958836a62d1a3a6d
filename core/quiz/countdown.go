package quiz

import (
	"fmt"
	"sync"
	"time"
)

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

// newTicker is mockable in tests.
var newTicker = func(d time.Duration) ticker { return timeTicker{time.NewTicker(d)} }

// Countdown counts seconds down to zero on its own goroutine.
// It never goes below zero and stops ticking once it gets there.
type Countdown struct {
	mu        sync.Mutex
	remaining int

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartCountdown starts counting down from `seconds`.
// onExpire, if set, is called once when zero is reached, after the ticker goroutine is done ticking;
// it is never called when the countdown is stopped first.
func StartCountdown(seconds int, onExpire func()) *Countdown {
	return startCountdown(seconds, time.Second, onExpire)
}

// startCountdown counts down with one tick every `every`.
func startCountdown(seconds int, every time.Duration, onExpire func()) *Countdown {
	cd := &Countdown{
		remaining: seconds,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if seconds <= 0 {
		cd.remaining = 0
		close(cd.done)
		return cd
	}
	go cd.run(newTicker(every), onExpire)
	return cd
}

func (cd *Countdown) run(t ticker, onExpire func()) {
	finish := func() {
		t.Stop()
		close(cd.done)
	}
	for {
		select {
		case <-cd.stop:
			finish()
			return
		case <-t.C():
			if cd.tick() > 0 {
				continue
			}
			finish()
			select {
			case <-cd.stop:
			default:
				if onExpire != nil {
					onExpire()
				}
			}
			return
		}
	}
}

func (cd *Countdown) tick() int {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	if cd.remaining > 0 {
		cd.remaining--
	}
	return cd.remaining
}

// Remaining returns the number of seconds left.
func (cd *Countdown) Remaining() int {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.remaining
}

// Expired reports whether the countdown reached zero.
func (cd *Countdown) Expired() bool {
	return cd.Remaining() == 0
}

// Stop cancels the countdown and waits for its goroutine to stop ticking. It is safe to call many times,
// including from onExpire.
func (cd *Countdown) Stop() {
	cd.stopOnce.Do(func() { close(cd.stop) })
	<-cd.done
}

// FormatRemaining renders seconds as m:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
