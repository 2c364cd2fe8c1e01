package model

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock accounts thinking time for one side. It is informational: running
// out of time does not end a game.
type Clock struct {
	mu          sync.Mutex
	initial     time.Duration
	timeLeft    time.Duration
	lastStarted time.Time // When the clock was last started
	isRunning   bool
	now         func() time.Time
}

func NewClock(initialTime time.Duration) *Clock {
	return &Clock{
		initial:   initialTime,
		timeLeft:  initialTime,
		isRunning: false,
		now:       time.Now,
	}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = c.now()
		c.isRunning = true
		log.Trace().Time("at", c.lastStarted).Msg("clock started")
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.timeLeft -= c.now().Sub(c.lastStarted)
		c.isRunning = false
		log.Trace().Dur("timeLeft", c.timeLeft).Msg("clock stopped")
	}
}

// Reset stops the clock and restores its initial time.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timeLeft = c.initial
	c.isRunning = false
}

func (c *Clock) GetTimeLeft() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.timeLeft - c.now().Sub(c.lastStarted)
	}
	return c.timeLeft
}

// Tenths is the remaining time in tenths of a second, the unit clients
// display.
func (c *Clock) Tenths() int {
	return int(c.GetTimeLeft().Milliseconds() / 100)
}
