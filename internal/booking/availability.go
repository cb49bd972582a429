package booking

import (
	"fmt"
	"slices"
	"time"
)

// TimeSlot is a half-open time window [StartTime, EndTime).
type TimeSlot struct {
	StartTime time.Time
	EndTime   time.Time
}

// Overlaps reports whether the two half-open windows share any instant.
// Back-to-back windows do not overlap.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.StartTime.Before(o.EndTime) && s.EndTime.After(o.StartTime)
}

// Empty reports whether the window has no length.
func (s TimeSlot) Empty() bool {
	return !s.EndTime.After(s.StartTime)
}

// TimeOfDay is a wall-clock time within the business day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

// BusinessHours is the daily operating window and the slot step used to present it.
type BusinessHours struct {
	Location *time.Location
	Open     TimeOfDay
	Close    TimeOfDay
	SlotStep time.Duration
}

// NewBusinessHours parses and validates an operating window.
func NewBusinessHours(loc *time.Location, openAt, closeAt string, step time.Duration) (BusinessHours, error) {
	if loc == nil {
		loc = time.UTC
	}
	o, err := ParseTimeOfDay(openAt)
	if err != nil {
		return BusinessHours{}, err
	}
	c, err := ParseTimeOfDay(closeAt)
	if err != nil {
		return BusinessHours{}, err
	}
	if c.minutes() <= o.minutes() {
		return BusinessHours{}, fmt.Errorf("closing time %s must be after opening time %s", closeAt, openAt)
	}
	if step <= 0 {
		return BusinessHours{}, fmt.Errorf("slot step must be positive, got %s", step)
	}
	return BusinessHours{Location: loc, Open: o, Close: c, SlotStep: step}, nil
}

// Window materializes the operating window for the calendar date of day.
func (h BusinessHours) Window(day time.Time) TimeSlot {
	y, m, d := day.Date()
	return TimeSlot{
		StartTime: time.Date(y, m, d, h.Open.Hour, h.Open.Minute, 0, 0, h.Location),
		EndTime:   time.Date(y, m, d, h.Close.Hour, h.Close.Minute, 0, 0, h.Location),
	}
}

// ParseDate parses a YYYY-MM-DD calendar date in the business time zone.
func (h BusinessHours) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, h.Location)
}

// FreeWindows subtracts busy from window. Busy windows are clipped to window
// first and need not be sorted or merged. The result is chronological and
// contains no empty windows.
func FreeWindows(window TimeSlot, busy []TimeSlot) []TimeSlot {
	if window.Empty() {
		return nil
	}

	clipped := make([]TimeSlot, 0, len(busy))
	for _, b := range busy {
		if !b.Overlaps(window) {
			continue
		}
		if b.StartTime.Before(window.StartTime) {
			b.StartTime = window.StartTime
		}
		if b.EndTime.After(window.EndTime) {
			b.EndTime = window.EndTime
		}
		clipped = append(clipped, b)
	}
	slices.SortFunc(clipped, func(a, b TimeSlot) int {
		return a.StartTime.Compare(b.StartTime)
	})

	free := []TimeSlot{window}
	for _, b := range clipped {
		next := make([]TimeSlot, 0, len(free)+1)
		for _, f := range free {
			if !b.Overlaps(f) {
				next = append(next, f)
				continue
			}
			if b.StartTime.After(f.StartTime) {
				next = append(next, TimeSlot{StartTime: f.StartTime, EndTime: b.StartTime})
			}
			if b.EndTime.Before(f.EndTime) {
				next = append(next, TimeSlot{StartTime: b.EndTime, EndTime: f.EndTime})
			}
		}
		free = next
	}
	return free
}

// SplitSlots cuts each free window into consecutive step-sized slots.
// A trailing remainder shorter than step is dropped.
func SplitSlots(free []TimeSlot, step time.Duration) []TimeSlot {
	if step <= 0 {
		return nil
	}
	var slots []TimeSlot
	for _, f := range free {
		for t := f.StartTime; !t.Add(step).After(f.EndTime); t = t.Add(step) {
			slots = append(slots, TimeSlot{StartTime: t, EndTime: t.Add(step)})
		}
	}
	return slots
}

// CalculateAvailability returns the bookable slots of window given the busy windows.
func CalculateAvailability(window TimeSlot, busy []TimeSlot, step time.Duration) []TimeSlot {
	return SplitSlots(FreeWindows(window, busy), step)
}
