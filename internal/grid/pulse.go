package grid

import (
	"sync"
	"time"
)

// Pulser collapses a burst of triggers into a single callback that fires
// once the burst has been quiet for the configured delay.
type Pulser struct {
	mu    sync.Mutex
	delay time.Duration
	fire  func()
	timer *time.Timer
}

// NewPulser creates a pulser that calls fire after delay of quiet
func NewPulser(delay time.Duration, fire func()) *Pulser {
	return &Pulser{delay: delay, fire: fire}
}

// Trigger (re)starts the quiet period
func (p *Pulser) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.fire)
}

// Stop cancels a pending pulse
func (p *Pulser) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
