// Package clock is the wall-clock collaborator for the aggregation window.
// The system implementation leans on the platform timezone database for
// local time and daylight correction.
package clock

import "time"

type Clock interface {
	Now() time.Time
	// MinutesSinceMidnight returns how many minutes into the local day we are.
	MinutesSinceMidnight() int
	// TimeString returns the local time as HH:MM:SS, 24-hour.
	TimeString() string
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

func (s System) MinutesSinceMidnight() int {
	now := s.Now()
	return now.Hour()*60 + now.Minute()
}

func (s System) TimeString() string {
	return s.Now().Format("15:04:05")
}
