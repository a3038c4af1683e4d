package service

import "time"

// Clock returns the current time. Check-in dates are taken from it in its own location.
type Clock func() time.Time

func (c Clock) orNow() Clock {
	if c == nil {
		return time.Now
	}
	return c
}
