// Package cue manages the single visible cue on a follower device and its
// automatic expiry.
package cue

import (
	"sync"
	"time"

	"github.com/silasdani/bandaid/internal/model"
)

// Presenter holds at most one visible cue and one pending clear timer.
// A new cue cancels the pending clear and restarts the cycle; an empty-text
// cue clears the display immediately. onChange fires with the new visible
// cue (nil for cleared) and is never called under the presenter lock.
type Presenter struct {
	defaultDuration time.Duration
	onChange        func(*model.Cue)

	mu      sync.Mutex
	current *model.Cue
	timer   *time.Timer
	gen     uint64 // invalidates timers from superseded cues
}

func NewPresenter(defaultDuration time.Duration, onChange func(*model.Cue)) *Presenter {
	return &Presenter{defaultDuration: defaultDuration, onChange: onChange}
}

// Show displays the cue and schedules its expiry. Zero or negative duration
// falls back to the configured default.
func (p *Presenter) Show(c model.Cue) {
	p.mu.Lock()
	p.gen++
	p.stopTimerLocked()

	if c.Text == "" {
		p.current = nil
		p.mu.Unlock()
		p.onChange(nil)
		return
	}

	visible := c
	p.current = &visible
	d := time.Duration(c.Duration) * time.Millisecond
	if d <= 0 {
		d = p.defaultDuration
	}
	gen := p.gen
	p.timer = time.AfterFunc(d, func() { p.expire(gen) })
	p.mu.Unlock()
	p.onChange(&visible)
}

// Clear removes the visible cue and cancels any pending expiry.
func (p *Presenter) Clear() {
	p.mu.Lock()
	p.gen++
	p.stopTimerLocked()
	wasVisible := p.current != nil
	p.current = nil
	p.mu.Unlock()
	if wasVisible {
		p.onChange(nil)
	}
}

// Current returns the visible cue, nil when cleared or expired.
func (p *Presenter) Current() *model.Cue {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	c := *p.current
	return &c
}

// Stop cancels any pending expiry without touching the visible cue. Used on
// teardown so no timer fires after the session is gone.
func (p *Presenter) Stop() {
	p.mu.Lock()
	p.gen++
	p.stopTimerLocked()
	p.mu.Unlock()
}

func (p *Presenter) expire(gen uint64) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return // a newer cue or clear superseded this timer
	}
	p.current = nil
	p.timer = nil
	p.mu.Unlock()
	p.onChange(nil)
}

func (p *Presenter) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
