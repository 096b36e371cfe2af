package clock

import (
	"sync"
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "America/Sao_Paulo"

// Clock supplies the current instant in the canonical location.
type Clock interface {
	Now() time.Time
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolves tz, falling back to DefaultTimezone and then UTC.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// ======================================================
// SYSTEM
// ======================================================

type System struct {
	loc *time.Location
}

func NewSystem(tz string) System {
	return System{loc: Location(tz)}
}

func (s System) Now() time.Time {
	return time.Now().In(s.loc)
}

func (s System) Location() *time.Location {
	return s.loc
}

// ======================================================
// FIXED (tests, seed)
// ======================================================

type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
