package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/warp/tempwork/accounting"
)

// Theme colors
var (
	colorBorder = lipgloss.Color("#575653")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorRed    = lipgloss.Color("#D14D41")
	colorMuted  = lipgloss.Color("#6F6E69")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderPeriods renders one contract table per period followed by its
// limit status.
func renderPeriods(periods []accounting.Period, limit int) string {
	if len(periods) == 0 {
		return mutedStyle.Render("No contracts.") + "\n"
	}

	var b strings.Builder
	for i, p := range periods {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(periodTitle(p)))
		b.WriteString("\n")
		b.WriteString(contractTable(p.Contracts).Render())
		b.WriteString("\n")
		b.WriteString(periodStatus(p, limit))
		b.WriteString("\n")
	}
	return b.String()
}

func periodTitle(p accounting.Period) string {
	if p.Undated() {
		return "Contracts awaiting dates"
	}
	return fmt.Sprintf("Period %s to %s", p.StartDate.Display(), p.EndDate.Display())
}

func contractTable(contracts []accounting.ContractRange) *table.Table {
	rows := make([][]string, len(contracts))
	for i, c := range contracts {
		rows[i] = []string{c.ID, displayDate(c.StartDate), displayDate(c.EndDate), strconv.Itoa(c.DaysUsed())}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Contract", "Start", "End", "Days").
		Rows(rows...)
}

func periodStatus(p accounting.Period, limit int) string {
	if p.Undated() {
		return mutedStyle.Render(fmt.Sprintf("%d days remaining until contracts have dates", p.RemainingDays))
	}
	used := fmt.Sprintf("Used %d of %d days (%s%%)", p.TotalDaysUsed, limit,
		accounting.Utilization(p.TotalDaysUsed, limit).StringFixed(2))
	if p.Exceeded() {
		return warnStyle.Render(fmt.Sprintf("%s. Limit exceeded by %d days, next period from %s",
			used, p.ExceededBy(), p.ResetDate.Display()))
	}
	return okStyle.Render(fmt.Sprintf("%s. %d days remaining, can extend until %s",
		used, p.RemainingDays, p.CanExtendUntil.Display()))
}

func displayDate(d *accounting.Date) string {
	if d == nil || d.IsZero() {
		return "-"
	}
	return d.Display()
}
