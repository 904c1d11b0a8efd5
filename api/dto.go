/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the accounting model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

DATES:
  Dates travel as ISO strings ("2006-01-02"; full RFC 3339 timestamps are
  accepted on input). Roll-over dates are also returned in the Polish
  display form ("02.01.2006") for the presentation layer.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/tempwork/accounting"
	"github.com/warp/tempwork/workspace"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ContractDTO represents a contract in API responses.
type ContractDTO struct {
	ID        string  `json:"id"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	DaysUsed  int     `json:"days_used"`
}

// ContractInput is a contract inside a calculate request.
type ContractInput struct {
	ID        string  `json:"id"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// PeriodDTO represents one accounting period.
type PeriodDTO struct {
	ID                    string        `json:"id"`
	StartDate             *string       `json:"start_date"`
	EndDate               *string       `json:"end_date"`
	Undated               bool          `json:"undated"`
	Contracts             []ContractDTO `json:"contracts"`
	TotalDaysUsed         int           `json:"total_days_used"`
	RemainingDays         int           `json:"remaining_days"`
	Exceeded              bool          `json:"exceeded"`
	ExceededBy            int           `json:"exceeded_by"`
	UtilizationPct        float64       `json:"utilization_pct"`
	CanExtendUntil        *string       `json:"can_extend_until,omitempty"`
	CanExtendUntilDisplay *string       `json:"can_extend_until_display,omitempty"`
	ResetDate             *string       `json:"reset_date,omitempty"`
	ResetDateDisplay      *string       `json:"reset_date_display,omitempty"`
}

// PersonDTO represents a person with their computed periods.
type PersonDTO struct {
	ID            string        `json:"id"`
	FullName      string        `json:"full_name"`
	LimitInDays   int           `json:"limit_in_days"`
	Contracts     []ContractDTO `json:"contracts"`
	Periods       []PeriodDTO   `json:"periods"`
	TotalDaysUsed int           `json:"total_days_used"`
	RemainingDays int           `json:"remaining_days"`
	Exceeded      bool          `json:"exceeded"`
}

// CalculateRequest runs the engine without touching stored state.
type CalculateRequest struct {
	LimitInDays int             `json:"limit_in_days"`
	Contracts   []ContractInput `json:"contracts"`
}

// CalculateResponse is the result of a stateless calculation.
type CalculateResponse struct {
	LimitInDays   int         `json:"limit_in_days"`
	Periods       []PeriodDTO `json:"periods"`
	TotalDaysUsed int         `json:"total_days_used"`
}

// LimitsDTO describes the current and selectable limits.
type LimitsDTO struct {
	LimitInDays int   `json:"limit_in_days"`
	Allowed     []int `json:"allowed"`
}

// SetLimitRequest selects a new limit.
type SetLimitRequest struct {
	LimitInDays int `json:"limit_in_days"`
}

// CreatePersonRequest is the request to add a person.
type CreatePersonRequest struct {
	FullName string `json:"full_name"`
}

// UpdatePersonRequest renames a person.
type UpdatePersonRequest struct {
	FullName string `json:"full_name"`
}

// UpdateContractRequest sets both dates of a contract; null or "" clears one.
type UpdateContractRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// SessionDTO summarizes a saved session.
type SessionDTO struct {
	Name        string `json:"name"`
	SavedAt     string `json:"saved_at"`
	Persons     int    `json:"persons"`
	LimitInDays int    `json:"limit_in_days"`
}

// SaveSessionRequest names the session to save.
type SaveSessionRequest struct {
	Name string `json:"name"`
}

// StateDTO is the whole workspace.
type StateDTO struct {
	LimitInDays int         `json:"limit_in_days"`
	Persons     []PersonDTO `json:"persons"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func dateString(d *accounting.Date) *string {
	if d == nil || d.IsZero() {
		return nil
	}
	s := d.String()
	return &s
}

func displayString(d *accounting.Date) *string {
	if d == nil || d.IsZero() {
		return nil
	}
	s := d.Display()
	return &s
}

func toContractDTO(c accounting.ContractRange) ContractDTO {
	return ContractDTO{
		ID:        c.ID,
		StartDate: dateString(c.StartDate),
		EndDate:   dateString(c.EndDate),
		DaysUsed:  c.DaysUsed(),
	}
}

func toContractDTOs(cs []accounting.ContractRange) []ContractDTO {
	dtos := make([]ContractDTO, len(cs))
	for i, c := range cs {
		dtos[i] = toContractDTO(c)
	}
	return dtos
}

func toPeriodDTO(p accounting.Period, limit int) PeriodDTO {
	return PeriodDTO{
		ID:                    p.ID,
		StartDate:             dateString(p.StartDate),
		EndDate:               dateString(p.EndDate),
		Undated:               p.Undated(),
		Contracts:             toContractDTOs(p.Contracts),
		TotalDaysUsed:         p.TotalDaysUsed,
		RemainingDays:         p.RemainingDays,
		Exceeded:              p.Exceeded(),
		ExceededBy:            p.ExceededBy(),
		UtilizationPct:        accounting.Utilization(p.TotalDaysUsed, limit).InexactFloat64(),
		CanExtendUntil:        dateString(p.CanExtendUntil),
		CanExtendUntilDisplay: displayString(p.CanExtendUntil),
		ResetDate:             dateString(p.ResetDate),
		ResetDateDisplay:      displayString(p.ResetDate),
	}
}

func toPeriodDTOs(periods []accounting.Period, limit int) []PeriodDTO {
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p, limit)
	}
	return dtos
}

func toPersonDTO(s accounting.PersonSummary) PersonDTO {
	return PersonDTO{
		ID:            s.PersonID,
		FullName:      s.FullName,
		LimitInDays:   s.LimitInDays,
		Contracts:     toContractDTOs(s.Contracts),
		Periods:       toPeriodDTOs(s.Periods, s.LimitInDays),
		TotalDaysUsed: s.TotalDaysUsed,
		RemainingDays: s.RemainingDays,
		Exceeded:      s.Exceeded,
	}
}

func toPersonDTOs(summaries []accounting.PersonSummary) []PersonDTO {
	dtos := make([]PersonDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toPersonDTO(s)
	}
	return dtos
}

func toSessionDTO(s workspace.Session) SessionDTO {
	return SessionDTO{
		Name:        s.Name,
		SavedAt:     s.SavedAt.UTC().Format(time.RFC3339),
		Persons:     len(s.State.Persons),
		LimitInDays: s.State.LimitInDays,
	}
}

// toContractRanges converts calculate input leniently: a date string that
// doesn't parse is treated as absent, so the contract lands in the undated
// bucket instead of failing the request.
func toContractRanges(in []ContractInput) []accounting.ContractRange {
	out := make([]accounting.ContractRange, len(in))
	for i, c := range in {
		out[i] = accounting.ContractRange{
			ID:        c.ID,
			StartDate: lenientDate(c.StartDate),
			EndDate:   lenientDate(c.EndDate),
		}
	}
	return out
}

func lenientDate(s *string) *accounting.Date {
	if s == nil {
		return nil
	}
	d, err := accounting.ParseOptionalDate(*s)
	if err != nil {
		return nil
	}
	return d
}

// strictDate parses an edit request date; nil and "" both clear the date.
func strictDate(s *string) (*accounting.Date, error) {
	if s == nil {
		return nil, nil
	}
	return accounting.ParseOptionalDate(*s)
}
