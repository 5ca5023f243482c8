package clock

import (
	"sync"
	"time"
)

// System wall clock in a fixed location
type System struct {
	loc *time.Location
}

// New system clock, an empty location means UTC
func New(location string) (*System, error) {
	loc := time.UTC
	if location != "" {
		l, err := time.LoadLocation(location)
		if err != nil {
			return nil, err
		}
		loc = l
	}

	return &System{loc: loc}, nil
}

func (c *System) Now() time.Time {
	return time.Now().In(c.loc)
}

// Manual clock that only moves when told to
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual manual clock starting at now
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Manual) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t
func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
