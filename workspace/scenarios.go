package workspace

import (
	"context"
	"time"

	"github.com/warp/tempwork/accounting"
)

// =============================================================================
// DEMO SCENARIOS
// =============================================================================

// Scenario is a pre-built workspace for demos and manual testing.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	build       func() AppState
}

var scenarios = []Scenario{
	{
		ID:          "within-limit",
		Name:        "Within Limit",
		Description: "One worker, two contracts, 500 of 548 days used",
		build:       withinLimitScenario,
	},
	{
		ID:          "limit-exceeded",
		Name:        "Limit Exceeded",
		Description: "One worker two days over the 548-day limit",
		build:       limitExceededScenario,
	},
	{
		ID:          "new-period",
		Name:        "New Period",
		Description: "Contracts spanning two 36-month periods, plus one awaiting dates",
		build:       newPeriodScenario,
	},
	{
		ID:          "team",
		Name:        "Team",
		Description: "Three workers under the 540-day limit",
		build:       teamScenario,
	},
}

// Scenarios lists the available demo scenarios.
func Scenarios() []Scenario {
	return append([]Scenario(nil), scenarios...)
}

// LoadScenario replaces the current state with a demo scenario.
func (s *Service) LoadScenario(ctx context.Context, id string) (Scenario, error) {
	for _, sc := range scenarios {
		if sc.ID == id {
			if err := s.ReplaceState(ctx, sc.build()); err != nil {
				return Scenario{}, err
			}
			return sc, nil
		}
	}
	return Scenario{}, notFound(ErrScenarioNotFound, id)
}

func d(year int, month time.Month, day int) *accounting.Date {
	return accounting.NewDate(year, month, day).Ptr()
}

func withinLimitScenario() AppState {
	return AppState{
		LimitInDays: accounting.Limit548,
		Persons: []accounting.PersonAccount{{
			ID:       "demo-anna",
			FullName: "Anna Nowak",
			Contracts: []accounting.ContractRange{
				{ID: "demo-anna-1", StartDate: d(2024, time.February, 17), EndDate: d(2024, time.December, 31)},
				{ID: "demo-anna-2", StartDate: d(2025, time.January, 1), EndDate: d(2025, time.June, 30)},
			},
		}},
	}
}

func limitExceededScenario() AppState {
	return AppState{
		LimitInDays: accounting.Limit548,
		Persons: []accounting.PersonAccount{{
			ID:       "demo-piotr",
			FullName: "Piotr Wiśniewski",
			Contracts: []accounting.ContractRange{
				{ID: "demo-piotr-1", StartDate: d(2024, time.January, 1), EndDate: d(2024, time.December, 31)},
				{ID: "demo-piotr-2", StartDate: d(2025, time.March, 1), EndDate: d(2025, time.August, 31)},
			},
		}},
	}
}

func newPeriodScenario() AppState {
	return AppState{
		LimitInDays: accounting.Limit548,
		Persons: []accounting.PersonAccount{{
			ID:       "demo-ewa",
			FullName: "Ewa Zielińska",
			Contracts: []accounting.ContractRange{
				{ID: "demo-ewa-1", StartDate: d(2021, time.January, 1), EndDate: d(2022, time.December, 31)},
				{ID: "demo-ewa-2", StartDate: d(2024, time.March, 1), EndDate: d(2024, time.August, 31)},
				{ID: "demo-ewa-3", StartDate: d(2024, time.October, 1)},
			},
		}},
	}
}

func teamScenario() AppState {
	return AppState{
		LimitInDays: accounting.Limit540,
		Persons: []accounting.PersonAccount{
			{
				ID:       "demo-tomasz",
				FullName: "Tomasz Lewandowski",
				Contracts: []accounting.ContractRange{
					{ID: "demo-tomasz-1", StartDate: d(2025, time.January, 1), EndDate: d(2025, time.March, 31)},
				},
			},
			{
				ID:       "demo-magda",
				FullName: "Magdalena Wójcik",
				Contracts: []accounting.ContractRange{
					{ID: "demo-magda-1", StartDate: d(2023, time.June, 1), EndDate: d(2024, time.May, 31)},
					{ID: "demo-magda-2", StartDate: d(2024, time.July, 1), EndDate: d(2024, time.December, 31)},
				},
			},
			{
				ID:        "demo-kasia",
				FullName:  "Katarzyna Kamińska",
				Contracts: []accounting.ContractRange{{ID: "demo-kasia-1"}},
			},
		},
	}
}
