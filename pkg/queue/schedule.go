package queue

import (
	"fmt"
	"time"
)

// Schedule computes the next run strictly after a given instant.
type Schedule interface {
	Next(after time.Time) time.Time
	String() string
}

type intervalSchedule struct {
	interval time.Duration
}

// EveryInterval runs a task every d. Non-positive values fall back to one minute.
func EveryInterval(d time.Duration) Schedule {
	if d <= 0 {
		d = time.Minute
	}
	return intervalSchedule{interval: d}
}

func EveryMinutes(n int) Schedule {
	return EveryInterval(time.Duration(n) * time.Minute)
}

func (s intervalSchedule) Next(after time.Time) time.Time {
	return after.Add(s.interval)
}

func (s intervalSchedule) String() string {
	return "every " + s.interval.String()
}

type dailySchedule struct {
	hour, minute int
}

// DailyAt runs a task once per day at hour:minute in the location of the reference time.
func DailyAt(hour, minute int) Schedule {
	return dailySchedule{hour: hour % 24, minute: minute % 60}
}

func (s dailySchedule) Next(after time.Time) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), s.hour, s.minute, 0, 0, after.Location())
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s dailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", s.hour, s.minute)
}
