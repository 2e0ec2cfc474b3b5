// Package model defines the core domain models used throughout the application.
package model

import (
	"errors"
	"fmt"
)

// ErrInvalidFrequency is returned when a frequency value is not one of the
// supported recurrence frequencies.
var ErrInvalidFrequency = errors.New("invalid frequency")

// Frequency represents how often a recurring template repeats.
type Frequency string

// Supported recurrence frequencies.
const (
	FrequencyWeekly      Frequency = "weekly"
	FrequencyFortnightly Frequency = "fortnightly"
	FrequencyMonthly     Frequency = "monthly"
	FrequencyQuarterly   Frequency = "quarterly"
	FrequencyAnnually    Frequency = "annually"
)

// frequencyInterval holds the reference interval data for one frequency.
// Schedule generation and pattern inference both consume this table so the
// two sides can never disagree on what a frequency means.
type frequencyInterval struct {
	days          int
	months        int
	toleranceDays int
}

var frequencyIntervals = map[Frequency]frequencyInterval{
	FrequencyWeekly:      {days: 7, months: 0, toleranceDays: 2},
	FrequencyFortnightly: {days: 14, months: 0, toleranceDays: 3},
	FrequencyMonthly:     {days: 30, months: 1, toleranceDays: 5},
	FrequencyQuarterly:   {days: 90, months: 3, toleranceDays: 10},
	FrequencyAnnually:    {days: 365, months: 12, toleranceDays: 20},
}

// Frequencies returns all supported frequencies in ascending interval order.
func Frequencies() []Frequency {
	return []Frequency{
		FrequencyWeekly,
		FrequencyFortnightly,
		FrequencyMonthly,
		FrequencyQuarterly,
		FrequencyAnnually,
	}
}

// ParseFrequency validates a raw frequency string.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if _, ok := frequencyIntervals[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

// Valid reports whether the frequency is one of the supported values.
func (f Frequency) Valid() bool {
	_, ok := frequencyIntervals[f]
	return ok
}

// Days returns the reference interval in days (7/14/30/90/365).
func (f Frequency) Days() int {
	return frequencyIntervals[f].days
}

// Months returns the calendar-month step for month-anchored frequencies,
// or zero for week-based frequencies.
func (f Frequency) Months() int {
	return frequencyIntervals[f].months
}

// ToleranceDays returns the band around the reference interval within which
// an observed day-gap still counts as this frequency.
func (f Frequency) ToleranceDays() int {
	return frequencyIntervals[f].toleranceDays
}

// WeekBased reports whether the frequency is anchored to a weekday rather
// than a day of month.
func (f Frequency) WeekBased() bool {
	return f == FrequencyWeekly || f == FrequencyFortnightly
}
