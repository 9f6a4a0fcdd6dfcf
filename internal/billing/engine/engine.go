// Package engine computes billed revenue from raw meal-consumption events.
// Every function here is pure: no I/O, no clock reads, no shared state, so
// dashboards and exporters can call the same computation without drift.
package engine

import (
	"fmt"
	"time"
)

// WalkInEmployeeID marks anonymous point-of-sale consumptions. Walk-ins are
// excluded from billing unless the company opts in via Config.IncludeWalkIns.
const WalkInEmployeeID = "anonymous"

// Config is the per-company billing configuration the engine operates on.
type Config struct {
	// MealPriceCents is the price charged per billable meal, in cents.
	MealPriceCents int64
	// DailyTarget is the minimum number of meals billed on a chargeable
	// day. Zero disables the minimum (pure pay-per-meal).
	DailyTarget int
	// ChargeableWeekdays lists the weekdays the minimum applies to.
	// Empty means the default Monday through Thursday.
	ChargeableWeekdays []time.Weekday
	// Location is the company's calendar zone. Nil means UTC.
	Location *time.Location
	// IncludeWalkIns counts anonymous POS sales toward billing.
	IncludeWalkIns bool
}

// Event is a single meal consumption. Voided events never bill.
type Event struct {
	EmployeeID string
	OccurredAt time.Time
	Voided     bool
}

// Date is a calendar day in the company's zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Weekday reports the day of week for the date.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// DailyRow is one invoice line: a day with a nonzero billed count.
type DailyRow struct {
	Date          Date  `json:"date"`
	ActualCount   int   `json:"actual_count"`
	BilledCount   int   `json:"billed_count"`
	SubtotalCents int64 `json:"subtotal_cents"`
}

// DefaultChargeableWeekdays is applied when a company has no explicit set.
var DefaultChargeableWeekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
}

// ComputeDailyBilling buckets the company's events by local calendar day and
// produces one row per day of the month with a nonzero billed count.
//
// The minimum guarantee only tops up: billed = max(actual, target) on
// chargeable weekdays when target > 0, otherwise billed = actual. Days with
// zero actual consumption but a nonzero target on a chargeable weekday still
// appear as line items. Malformed periods yield an empty result.
func ComputeDailyBilling(cfg Config, events []Event, year int, month time.Month) []DailyRow {
	if year <= 0 || month < time.January || month > time.December {
		return nil
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	chargeable := weekdaySet(cfg.ChargeableWeekdays)

	counts := make(map[int]int)
	for _, ev := range events {
		if ev.Voided {
			continue
		}
		if !cfg.IncludeWalkIns && ev.EmployeeID == WalkInEmployeeID {
			continue
		}
		local := ev.OccurredAt.In(loc)
		if local.Year() != year || local.Month() != month {
			continue
		}
		counts[local.Day()]++
	}

	lastDay := daysInMonth(year, month)
	rows := make([]DailyRow, 0, lastDay)
	for day := 1; day <= lastDay; day++ {
		date := Date{Year: year, Month: month, Day: day}
		actual := counts[day]

		billed := actual
		if cfg.DailyTarget > 0 && chargeable[date.Weekday()] && actual < cfg.DailyTarget {
			billed = cfg.DailyTarget
		}
		if billed == 0 {
			continue
		}

		rows = append(rows, DailyRow{
			Date:          date,
			ActualCount:   actual,
			BilledCount:   billed,
			SubtotalCents: int64(billed) * cfg.MealPriceCents,
		})
	}
	return rows
}

// ComputeMonthlyTotal sums row subtotals in integer cents. Order of rows does
// not affect the result.
func ComputeMonthlyTotal(rows []DailyRow) int64 {
	var total int64
	for _, row := range rows {
		total += row.SubtotalCents
	}
	return total
}

// CompanyInput pairs one company's configuration with its events for
// fleet-wide revenue aggregation.
type CompanyInput struct {
	Config Config
	Events []Event
}

// ComputeRevenueAcrossCompanies totals monthly revenue over a set of
// companies. Callers must pass each company exactly once.
func ComputeRevenueAcrossCompanies(inputs []CompanyInput, year int, month time.Month) int64 {
	var total int64
	for _, input := range inputs {
		total += ComputeMonthlyTotal(ComputeDailyBilling(input.Config, input.Events, year, month))
	}
	return total
}

func weekdaySet(weekdays []time.Weekday) map[time.Weekday]bool {
	if len(weekdays) == 0 {
		weekdays = DefaultChargeableWeekdays
	}
	set := make(map[time.Weekday]bool, len(weekdays))
	for _, wd := range weekdays {
		set[wd] = true
	}
	return set
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
