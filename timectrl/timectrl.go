package timectrl

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock time so run timing can be tested.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Stopwatch measures the duration of a tracing run.
type Stopwatch struct {
	clock Clock
	start time.Time
}

// NewStopwatch starts a stopwatch on clock; a nil clock means the wall clock.
func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock()
	}
	return &Stopwatch{clock: clock, start: clock.Now()}
}

// Elapsed returns the time since the stopwatch started.
func (s *Stopwatch) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}

// Rate returns count per second of elapsed time, or 0 before any time has
// passed.
func (s *Stopwatch) Rate(count int) float64 {
	secs := s.Elapsed().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(count) / secs
}

// TimeController fires registered listeners every Tick until stopped. The
// engine uses it for periodic progress reports while workers run.
type TimeController struct {
	mu   sync.RWMutex
	Tick time.Duration

	elapsed   time.Duration
	listeners []func(time.Duration)
}

// NewTimeController constructs a controller.
func NewTimeController(tick time.Duration) *TimeController {
	return &TimeController{Tick: tick}
}

// Elapsed returns the time accumulated by completed ticks.
func (tc *TimeController) Elapsed() time.Duration {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.elapsed
}

// AddListener registers a callback invoked on every tick with the elapsed
// time. Listeners must be added before Start.
func (tc *TimeController) AddListener(fn func(time.Duration)) {
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller in a separate goroutine. The returned function
// stops it and blocks until the last listener call has returned. A
// non-positive Tick never fires.
func (tc *TimeController) Start() (stop func()) {
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		if tc.Tick <= 0 {
			<-quit
			return
		}

		ticker := time.NewTicker(tc.Tick)
		defer ticker.Stop()

		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
			}

			tc.mu.Lock()
			tc.elapsed += tc.Tick
			elapsed := tc.elapsed
			tc.mu.Unlock()

			for _, fn := range tc.listeners {
				fn(elapsed)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(quit) })
		<-done
	}
}
