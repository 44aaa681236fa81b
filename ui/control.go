package ui

import "sync"

// Control coordinates pause, resume and stop between front ends and the
// tick goroutine.
type Control struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pauseReq bool
	paused   bool
	stopped  bool
}

// NewControl creates a control in the running state.
func NewControl() *Control {
	c := &Control{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// RequestPause asks the tick goroutine to pause and waits until it has
// stopped between ticks. It returns at once if the goroutine has exited.
func (c *Control) RequestPause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.pauseReq = true
	for !c.paused && !c.stopped {
		c.cond.Wait()
	}
}

// RequestResume releases a paused tick goroutine and waits until it has
// left the parked state, so IsPaused is false on return.
func (c *Control) RequestResume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseReq = false
	c.cond.Broadcast()
	for c.paused && !c.stopped {
		c.cond.Wait()
	}
}

// CheckPause is called by the tick goroutine between ticks. It parks while
// a pause is requested and returns false once the goroutine should exit.
func (c *Control) CheckPause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pauseReq && !c.stopped {
		if !c.paused {
			c.paused = true
			c.cond.Broadcast()
		}
		c.cond.Wait()
	}
	if c.paused {
		c.paused = false
		c.cond.Broadcast()
	}
	return !c.stopped
}

// Stop tells the tick goroutine to exit and wakes it if paused.
func (c *Control) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.pauseReq = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

// IsPaused reports whether the tick goroutine is parked.
func (c *Control) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}
