package timer

import "sync"

// startTickerLocked launches the display refresh loop. Callers hold mu and
// have already detached any previous loop.
func (e *Engine) startTickerLocked() {
	e.gen++
	gen := e.gen
	ticker := e.clock.NewTicker(e.interval)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C():
				e.tick(gen)
			}
		}
	}()

	var once sync.Once
	e.stop = func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}

// detachTickerLocked invalidates the running loop and returns a function
// that stops it and waits for it to exit. The wait must happen after mu is
// released because the loop takes mu on every tick.
func (e *Engine) detachTickerLocked() func() {
	e.gen++
	stop := e.stop
	e.stop = nil
	if stop == nil {
		return func() {}
	}
	return stop
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || !e.state.Running || e.state.Paused {
		return
	}
	e.state.Elapsed = e.elapsedAt(e.clock.Now())
}
