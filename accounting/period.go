package accounting

import (
	"fmt"
	"sort"
)

// =============================================================================
// PERIOD GROUPING - The core day-accounting algorithm
// =============================================================================

// WindowMonths is the length of the rolling window a period covers.
const WindowMonths = 36

// UndatedPeriodID identifies the synthetic period holding only contracts
// without valid dates.
const UndatedPeriodID = "period-undated"

// WindowEnd returns the last day of the window opened at start.
func WindowEnd(start Date) Date {
	return start.AddMonths(WindowMonths).AddDays(-1)
}

// ComputePeriods groups contracts into consecutive 36-month periods and
// accounts the days used in each against limitInDays.
//
// Contracts without a positive-length date range never count towards the
// limit; they are appended to the last period (or to a synthetic undated
// period when nothing is dated) so they stay visible for editing.
//
// The input slice is not modified. Identical input yields identical output.
func ComputePeriods(contracts []ContractRange, limitInDays int) []Period {
	if len(contracts) == 0 {
		return []Period{}
	}

	var dated, undated []ContractRange
	for _, c := range contracts {
		if c.Accountable() {
			dated = append(dated, c.Clone())
		} else {
			undated = append(undated, c.Clone())
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].StartDate.Before(*dated[j].StartDate)
	})

	var periods []Period
	var current *Period
	for _, c := range dated {
		if current == nil || c.StartDate.After(*current.EndDate) {
			periods = append(periods, openPeriod(*c.StartDate))
			current = &periods[len(periods)-1]
		}
		current.Contracts = append(current.Contracts, c)
		current.TotalDaysUsed += InclusiveDays(*c.StartDate, *c.EndDate)
	}

	for i := range periods {
		settle(&periods[i], limitInDays)
	}

	if len(undated) > 0 {
		if len(periods) == 0 {
			periods = append(periods, Period{
				ID:            UndatedPeriodID,
				RemainingDays: limitInDays,
			})
		}
		last := &periods[len(periods)-1]
		last.Contracts = append(last.Contracts, undated...)
	}

	return periods
}

func openPeriod(start Date) Period {
	end := WindowEnd(start)
	return Period{
		ID:        periodID(start),
		StartDate: start.Ptr(),
		EndDate:   end.Ptr(),
	}
}

func periodID(start Date) string {
	return fmt.Sprintf("period-%d", start.normalize().UnixMilli())
}

// settle fills in the remaining days and exactly one of the roll-over
// dates. Only dated contracts may be present when it runs.
func settle(p *Period, limitInDays int) {
	p.RemainingDays = limitInDays - p.TotalDaysUsed
	if p.RemainingDays >= 0 {
		latest := *p.Contracts[0].EndDate
		for _, c := range p.Contracts[1:] {
			if c.EndDate.After(latest) {
				latest = *c.EndDate
			}
		}
		p.CanExtendUntil = latest.AddDays(p.RemainingDays).Ptr()
		return
	}
	p.ResetDate = p.StartDate.AddMonths(WindowMonths).Ptr()
}

// TotalDaysUsed sums days across periods. It is informational only: the
// limit is enforced per period.
func TotalDaysUsed(periods []Period) int {
	total := 0
	for _, p := range periods {
		total += p.TotalDaysUsed
	}
	return total
}

// LatestDated returns the most recent dated period, if any.
func LatestDated(periods []Period) (Period, bool) {
	for i := len(periods) - 1; i >= 0; i-- {
		if !periods[i].Undated() {
			return periods[i], true
		}
	}
	return Period{}, false
}
