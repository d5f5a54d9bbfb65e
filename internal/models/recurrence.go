package models

// RecurrenceMode selects how a submitted event repeats.
type RecurrenceMode string

const (
	RecurrenceNone     RecurrenceMode = "none"
	RecurrenceWeekly   RecurrenceMode = "weekly"
	RecurrenceBiweekly RecurrenceMode = "biweekly"
	RecurrenceMonthly  RecurrenceMode = "monthly"
	RecurrenceCustom   RecurrenceMode = "custom"
)

// Bounds for RecurrenceSpec.
const (
	MinOccurrences  = 2
	MaxOccurrences  = 52
	MinIntervalDays = 1
	MaxIntervalDays = 365
)

// RecurrenceSpec is the (mode, interval, count) tuple describing how one
// template expands into a series.
type RecurrenceSpec struct {
	Mode RecurrenceMode

	// IntervalDays is the period for RecurrenceCustom. Ignored otherwise.
	IntervalDays int

	// Count is the number of instances for every mode except RecurrenceNone.
	Count int
}
