package session

import (
	"context"
	"time"
)

// startRevealLocked runs the typing animation for the entry at index. Each tick reveals
// one more rune; cancel stops it and finishRevealLocked shows the rest.
func (c *Controller) startRevealLocked(ctx context.Context, cancel context.CancelFunc, index int, delay time.Duration) {
	t := &typing{cancel: cancel, index: index}
	c.typing = t
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.stopReveal(t)
				return
			case <-ticker.C:
			}
			if done := c.revealStep(t); done {
				c.changed()
				return
			}
			c.changed()
		}
	}()
}

func (c *Controller) revealStep(t *typing) (done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typing != t || t.index >= len(c.state.Transcript) {
		return true
	}
	e := &c.state.Transcript[t.index]
	e.Revealed++
	if e.Typing() {
		return false
	}
	c.typing = nil
	t.cancel()
	return true
}

// stopReveal handles cancellation from the caller's context rather than from navigation
func (c *Controller) stopReveal(t *typing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typing != t {
		return
	}
	if t.index < len(c.state.Transcript) {
		c.state.Transcript[t.index].revealAll()
	}
	c.typing = nil
}
