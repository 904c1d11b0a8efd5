/*
Package accounting computes how much of a statutory temporary-work limit a
person has used across a series of fixed-term contracts.

KEY CONCEPTS:
  - ContractRange: one contract with optional start and end dates
  - Period: a 36-month accounting window anchored at the first contract
    that opened it, with days used, days remaining and roll-over dates
  - PersonAccount: a person and a snapshot of their contracts

DESIGN PRINCIPLES:
 1. Pure: no I/O, no shared state, no errors for malformed input
 2. Recomputed: periods are derived from scratch on every change
 3. Calendar dates only: day counts never depend on time zones

USAGE:
	periods := accounting.ComputePeriods(person.Contracts, accounting.Limit548)
	for _, p := range periods {
		if p.Exceeded() {
			fmt.Println("limit exceeded, new period from", p.ResetDate)
		}
	}

SEE ALSO:
  - period.go: the grouping algorithm
  - summary.go: per-person aggregation
*/
package accounting

import "fmt"

// =============================================================================
// CONTRACT RANGE
// =============================================================================

// ContractRange is one fixed-term contract. Either date may be absent while
// the user is still filling it in.
type ContractRange struct {
	ID        string `json:"id"`
	StartDate *Date  `json:"startDate,omitempty"`
	EndDate   *Date  `json:"endDate,omitempty"`
}

func present(d *Date) bool { return d != nil && !d.IsZero() }

// HasDates reports whether both dates are set.
func (c ContractRange) HasDates() bool {
	return present(c.StartDate) && present(c.EndDate)
}

// Valid reports whether both dates are set and the end is not before the start.
func (c ContractRange) Valid() bool {
	return c.HasDates() && c.EndDate.AfterOrEqual(*c.StartDate)
}

// Accountable reports whether the contract counts towards the limit.
// Zero-length and inverted ranges are kept for display but never counted.
func (c ContractRange) Accountable() bool {
	return c.HasDates() && c.EndDate.After(*c.StartDate)
}

// DaysUsed is the inclusive day count shown for a single contract row,
// or 0 when the range is incomplete or inverted.
func (c ContractRange) DaysUsed() int {
	if !c.Valid() {
		return 0
	}
	return InclusiveDays(*c.StartDate, *c.EndDate)
}

func (c ContractRange) String() string {
	return fmt.Sprintf("%s [%s, %s]", c.ID, optString(c.StartDate), optString(c.EndDate))
}

func optString(d *Date) string {
	if !present(d) {
		return "-"
	}
	return d.String()
}

// =============================================================================
// PERIOD
// =============================================================================

// Period is one 36-month accounting window. The trailing undated period
// (if any) has no StartDate/EndDate and only holds contracts awaiting dates.
type Period struct {
	ID             string          `json:"id"`
	StartDate      *Date           `json:"startDate,omitempty"`
	EndDate        *Date           `json:"endDate,omitempty"`
	Contracts      []ContractRange `json:"contracts"`
	TotalDaysUsed  int             `json:"totalDaysUsed"`
	RemainingDays  int             `json:"remainingDays"`
	CanExtendUntil *Date           `json:"canExtendUntil,omitempty"`
	ResetDate      *Date           `json:"resetDate,omitempty"`
}

// Exceeded reports whether the period used more days than the limit.
func (p Period) Exceeded() bool { return p.RemainingDays < 0 }

// ExceededBy is the number of days over the limit, 0 when within it.
func (p Period) ExceededBy() int {
	if p.RemainingDays >= 0 {
		return 0
	}
	return -p.RemainingDays
}

// Undated reports whether this is the synthetic period for contracts
// without valid dates.
func (p Period) Undated() bool { return p.StartDate == nil }

// Contains reports whether d falls inside the period window [Start, End].
func (p Period) Contains(d Date) bool {
	if p.Undated() {
		return false
	}
	return d.AfterOrEqual(*p.StartDate) && d.BeforeOrEqual(*p.EndDate)
}

func (p Period) String() string {
	return fmt.Sprintf("%s [%s, %s] used=%d remaining=%d",
		p.ID, optString(p.StartDate), optString(p.EndDate), p.TotalDaysUsed, p.RemainingDays)
}

// =============================================================================
// PERSON ACCOUNT
// =============================================================================

// PersonAccount is a person together with a snapshot of their contracts.
type PersonAccount struct {
	ID        string          `json:"id"`
	FullName  string          `json:"fullName"`
	Contracts []ContractRange `json:"contracts"`
}

// Clone returns a deep copy so callers can build a new snapshot without
// touching the original.
func (p PersonAccount) Clone() PersonAccount {
	out := PersonAccount{ID: p.ID, FullName: p.FullName}
	if p.Contracts != nil {
		out.Contracts = make([]ContractRange, len(p.Contracts))
		for i, c := range p.Contracts {
			out.Contracts[i] = c.Clone()
		}
	}
	return out
}

// Clone copies the contract including its date pointers.
func (c ContractRange) Clone() ContractRange {
	out := ContractRange{ID: c.ID}
	if c.StartDate != nil {
		out.StartDate = c.StartDate.Ptr()
	}
	if c.EndDate != nil {
		out.EndDate = c.EndDate.Ptr()
	}
	return out
}

// FindContract returns the index of the contract with the given id, or -1.
func (p PersonAccount) FindContract(id string) int {
	for i, c := range p.Contracts {
		if c.ID == id {
			return i
		}
	}
	return -1
}
