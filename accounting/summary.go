package accounting

import "sync"

// =============================================================================
// PERSON SUMMARY
// =============================================================================

// PersonSummary is everything the presentation layer needs for one person.
type PersonSummary struct {
	PersonID    string
	FullName    string
	LimitInDays int
	Contracts   []ContractRange
	Periods     []Period

	// TotalDaysUsed sums all periods and is informational only.
	TotalDaysUsed int
	// RemainingDays refers to the latest dated period, or the full limit
	// when nothing is dated yet.
	RemainingDays int
	// Exceeded is true when any period is over the limit.
	Exceeded bool
}

// Summarize computes the periods for one person.
func Summarize(person PersonAccount, limitInDays int) PersonSummary {
	periods := ComputePeriods(person.Contracts, limitInDays)

	s := PersonSummary{
		PersonID:      person.ID,
		FullName:      person.FullName,
		LimitInDays:   limitInDays,
		Contracts:     person.Clone().Contracts,
		Periods:       periods,
		TotalDaysUsed: TotalDaysUsed(periods),
		RemainingDays: limitInDays,
	}
	if latest, ok := LatestDated(periods); ok {
		s.RemainingDays = latest.RemainingDays
	}
	for _, p := range periods {
		if p.Exceeded() {
			s.Exceeded = true
			break
		}
	}
	return s
}

// SummarizeAll summarizes every person concurrently, one goroutine per
// person. Output order matches input order.
func SummarizeAll(persons []PersonAccount, limitInDays int) []PersonSummary {
	out := make([]PersonSummary, len(persons))

	var wg sync.WaitGroup
	for i := range persons {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = Summarize(persons[i], limitInDays)
		}(i)
	}
	wg.Wait()

	return out
}
