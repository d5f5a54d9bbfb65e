// Package recurrence expands one submitted event into the concrete instances
// of a series.
package recurrence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/mmynk/outings/internal/apperr"
	"github.com/mmynk/outings/internal/models"
)

// lastCommonMonthDay is the highest day number every month has.
const lastCommonMonthDay = 28

// Validate checks the recurrence bounds. An empty mode means none.
func Validate(spec models.RecurrenceSpec) error {
	switch spec.Mode {
	case "", models.RecurrenceNone:
		return nil
	case models.RecurrenceWeekly, models.RecurrenceBiweekly, models.RecurrenceMonthly:
	case models.RecurrenceCustom:
		if spec.IntervalDays < models.MinIntervalDays || spec.IntervalDays > models.MaxIntervalDays {
			return apperr.Invalid("intervalDays", "must be between %d and %d, got %d",
				models.MinIntervalDays, models.MaxIntervalDays, spec.IntervalDays)
		}
	default:
		return apperr.Invalid("recurrence", "unknown mode %q", spec.Mode)
	}
	if spec.Count < models.MinOccurrences || spec.Count > models.MaxOccurrences {
		return apperr.Invalid("occurrenceCount", "must be between %d and %d, got %d",
			models.MinOccurrences, models.MaxOccurrences, spec.Count)
	}
	return nil
}

// Expand turns template into the ordered instances of spec.
//
// Mode none yields a single copy without a series id. Other modes yield
// exactly spec.Count copies sharing a fresh series id, where instance k starts
// k periods after the template and keeps the template's duration. Monthly
// instances keep the day of month, clamped to the last day of shorter months
// (Jan 31 -> Feb 29 -> Mar 31). Wall-clock time is kept in the template's
// location.
//
// Instance IDs are left empty for the store to assign.
func Expand(template *models.Event, spec models.RecurrenceSpec) ([]*models.Event, error) {
	if template.Date.IsZero() {
		return nil, apperr.Invalid("date", "is required")
	}
	if err := Validate(spec); err != nil {
		return nil, err
	}

	base := template.Date.Truncate(time.Second)
	if spec.Mode == "" || spec.Mode == models.RecurrenceNone {
		ev := instance(template, base, "")
		return []*models.Event{ev}, nil
	}

	starts, err := occurrences(base, spec)
	if err != nil {
		return nil, err
	}
	if len(starts) != spec.Count {
		return nil, fmt.Errorf("recurrence produced %d instances, want %d", len(starts), spec.Count)
	}

	seriesID := uuid.New().String()
	events := make([]*models.Event, len(starts))
	for i, start := range starts {
		events[i] = instance(template, start, seriesID)
	}
	return events, nil
}

// occurrences computes the start times of a series with rrule.
func occurrences(base time.Time, spec models.RecurrenceSpec) ([]time.Time, error) {
	opt := rrule.ROption{
		Dtstart:  base,
		Count:    spec.Count,
		Interval: 1,
	}

	switch spec.Mode {
	case models.RecurrenceWeekly:
		opt.Freq = rrule.WEEKLY
	case models.RecurrenceBiweekly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	case models.RecurrenceCustom:
		opt.Freq = rrule.DAILY
		opt.Interval = spec.IntervalDays
	case models.RecurrenceMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday, opt.Bysetpos = clampedMonthDay(base.Day())
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}
	return r.All(), nil
}

// clampedMonthDay returns BYMONTHDAY/BYSETPOS values that select day in every
// month, or the month's last day when day does not exist in it.
// For day 31 this is BYMONTHDAY=28,29,30,31;BYSETPOS=-1.
func clampedMonthDay(day int) ([]int, []int) {
	if day <= lastCommonMonthDay {
		return []int{day}, nil
	}
	days := make([]int, 0, day-lastCommonMonthDay+1)
	for d := lastCommonMonthDay; d <= day; d++ {
		days = append(days, d)
	}
	return days, []int{-1}
}

// instance copies template, moving it to start and keeping its duration.
func instance(template *models.Event, start time.Time, seriesID string) *models.Event {
	ev := *template
	ev.ID = ""
	ev.SeriesID = seriesID
	ev.Date = start
	ev.Attendees = nil
	ev.RemindedAt = nil
	if template.EndDate != nil {
		end := start.Add(template.Duration())
		ev.EndDate = &end
	}
	return &ev
}
