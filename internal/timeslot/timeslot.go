// Package timeslot canonicalizes appointment times and validates them
// against the clinic's bookable grid. Slots are zero-duration point bookings
// keyed by a "HH:MM" string; "9:00" and "09:00" mean the same slot.
package timeslot

import (
	"fmt"
	"time"
)

// Normalize parses a 24-hour clock time and returns it zero-padded as "HH:MM".
func Normalize(value string) (string, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return "", fmt.Errorf("invalid time %q: expected 24-hour HH:MM", value)
	}
	return parsed.Format("15:04"), nil
}

// Grid defines the bookable slots: every Interval minutes from Open through
// Close inclusive.
type Grid struct {
	Open     string
	Close    string
	Interval time.Duration
}

// NewGrid builds a Grid from configuration strings, normalizing boundaries.
func NewGrid(open, close string, intervalMinutes int) (Grid, error) {
	o, err := Normalize(open)
	if err != nil {
		return Grid{}, fmt.Errorf("grid open: %w", err)
	}
	c, err := Normalize(close)
	if err != nil {
		return Grid{}, fmt.Errorf("grid close: %w", err)
	}
	if intervalMinutes <= 0 {
		return Grid{}, fmt.Errorf("grid interval must be positive, got %d", intervalMinutes)
	}
	if minutesOf(c) < minutesOf(o) {
		return Grid{}, fmt.Errorf("grid close %s before open %s", c, o)
	}
	return Grid{Open: o, Close: c, Interval: time.Duration(intervalMinutes) * time.Minute}, nil
}

// Contains reports whether the already-normalized time lands on the grid.
func (g Grid) Contains(value string) bool {
	m := minutesOf(value)
	open := minutesOf(g.Open)
	if m < open || m > minutesOf(g.Close) {
		return false
	}
	return (m-open)%int(g.Interval.Minutes()) == 0
}

// Slots enumerates every bookable time on the grid in order.
func (g Grid) Slots() []string {
	var out []string
	step := int(g.Interval.Minutes())
	for m := minutesOf(g.Open); m <= minutesOf(g.Close); m += step {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

// minutesOf converts a normalized "HH:MM" to minutes since midnight.
func minutesOf(value string) int {
	var h, m int
	fmt.Sscanf(value, "%d:%d", &h, &m)
	return h*60 + m
}
