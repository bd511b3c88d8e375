// Package ui renders view state to the terminal. It is presentation
// only: everything it shows arrives in an explicit snapshot, and every
// amount carries the symbol of the session's current currency.
package ui

import (
	"fmt"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/dashboard"
	"bilancio/internal/notify"
	"bilancio/internal/report"

	"github.com/charmbracelet/lipgloss"
)

const chartWidth = 30

type Renderer struct {
	styles Styles
}

func NewRenderer(theme core.Theme) *Renderer {
	return &Renderer{styles: StylesFor(theme)}
}

// Dashboard renders the full main screen from a snapshot.
func (r *Renderer) Dashboard(state dashboard.ViewState) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(fmt.Sprintf("(%s) %s", state.Initial, state.Username)))
	if state.Email != "" {
		b.WriteString(r.styles.Muted.Render("  " + state.Email))
	}
	b.WriteString("\n\n")

	if state.HasSummary {
		b.WriteString(r.summaryCards(state.Summary, state.Currency))
		b.WriteString("\n")
	}

	// An empty series produces no chart rather than an error.
	if state.HasSummary && len(state.Summary.Daily) > 0 {
		b.WriteString(r.styles.Title.Render("Income & Expense Trend"))
		b.WriteString("\n")
		b.WriteString(r.trendChart(state.Summary.Daily, state.Currency))
		b.WriteString("\n")
	}

	if len(state.Distribution) > 0 {
		b.WriteString(r.styles.Title.Render("Expenses by Category"))
		b.WriteString("\n")
		b.WriteString(r.distributionChart(state.Distribution, state.Currency))
		b.WriteString("\n")
	}

	b.WriteString(r.styles.Title.Render("Recent Transactions"))
	b.WriteString("\n")
	if len(state.Recent) == 0 {
		b.WriteString(r.styles.Muted.Render("No transactions yet"))
		b.WriteString("\n")
	} else {
		b.WriteString(r.Transactions(state.Recent, state.Currency))
	}

	return b.String()
}

func (r *Renderer) summaryCards(summary core.Summary, currency string) string {
	income := r.styles.Card.Render(
		r.styles.Muted.Render("Total Income") + "\n" +
			r.styles.Income.Render(core.FormatMoney(summary.TotalIncome, currency)))
	expense := r.styles.Card.Render(
		r.styles.Muted.Render("Total Expense") + "\n" +
			r.styles.Expense.Render(core.FormatMoney(summary.TotalExpense, currency)))
	balance := r.styles.Card.Render(
		r.styles.Muted.Render("Balance") + "\n" +
			r.styles.Balance.Render(core.FormatMoney(summary.Balance, currency)))

	cards := lipgloss.JoinHorizontal(lipgloss.Top, income, " ", expense, " ", balance) + "\n"

	if !summary.TodayIncome.IsZero() || !summary.TodayExpense.IsZero() {
		cards += r.styles.Muted.Render(fmt.Sprintf("Today  +%s  -%s",
			core.FormatMoney(summary.TodayIncome, currency),
			core.FormatMoney(summary.TodayExpense, currency))) + "\n"
	}
	return cards
}

func (r *Renderer) trendChart(daily []core.DailyPoint, currency string) string {
	max := 0.0
	for _, p := range daily {
		if v := p.Income.InexactFloat64(); v > max {
			max = v
		}
		if v := p.Expense.InexactFloat64(); v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, p := range daily {
		b.WriteString(r.styles.Muted.Render(p.Date))
		b.WriteString("  ")
		b.WriteString(r.styles.Income.Render(bar(p.Income.InexactFloat64(), max)))
		b.WriteString(" ")
		b.WriteString(core.FormatMoney(p.Income, currency))
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", 12))
		b.WriteString(r.styles.Expense.Render(bar(p.Expense.InexactFloat64(), max)))
		b.WriteString(" ")
		b.WriteString(core.FormatMoney(p.Expense, currency))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) distributionChart(totals []core.CategoryTotal, currency string) string {
	max := 0.0
	longest := 0
	for _, ct := range totals {
		if v := ct.Total.InexactFloat64(); v > max {
			max = v
		}
		if len(ct.Name) > longest {
			longest = len(ct.Name)
		}
	}

	var b strings.Builder
	for _, ct := range totals {
		b.WriteString(fmt.Sprintf("%-*s  ", longest, ct.Name))
		b.WriteString(r.styles.Expense.Render(bar(ct.Total.InexactFloat64(), max)))
		b.WriteString(" ")
		b.WriteString(core.FormatMoney(ct.Total, currency))
		b.WriteString("\n")
	}
	return b.String()
}

// Transactions renders a record list, signed and dated.
func (r *Renderer) Transactions(records []core.Transaction, currency string) string {
	var b strings.Builder
	for _, t := range records {
		amount := core.FormatSigned(t.Amount, t.Type, currency)
		if t.Type == core.TypeIncome {
			amount = r.styles.Income.Render(amount)
		} else {
			amount = r.styles.Expense.Render(amount)
		}
		b.WriteString(fmt.Sprintf("%6d  %s  %-12s %s  %s\n",
			t.ID,
			r.styles.Muted.Render(t.Date.String()),
			amount,
			t.Description,
			r.styles.Muted.Render(t.CategoryName)))
	}
	return b.String()
}

// Report renders a date-range breakdown.
func (r *Renderer) Report(rep report.Report, currency string) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(
		fmt.Sprintf("Report %s to %s", rep.Start.String(), rep.End.String())))
	b.WriteString("\n\n")

	b.WriteString(r.styles.Income.Render("Total Income  " + core.FormatMoney(rep.IncomeTotal, currency)))
	b.WriteString("\n")
	for _, ct := range rep.IncomeByCategory {
		b.WriteString(fmt.Sprintf("  %-20s %s\n", ct.Name, core.FormatMoney(ct.Total, currency)))
	}

	b.WriteString(r.styles.Expense.Render("Total Expenses  " + core.FormatMoney(rep.ExpenseTotal, currency)))
	b.WriteString("\n")
	for _, ct := range rep.ExpenseByCategory {
		b.WriteString(fmt.Sprintf("  %-20s %s\n", ct.Name, core.FormatMoney(ct.Total, currency)))
	}

	return b.String()
}

// Notification renders one transient message in its severity color.
func (r *Renderer) Notification(n notify.Notification) string {
	switch n.Severity {
	case notify.SeveritySuccess:
		return r.styles.Success.Render("✓ " + n.Message)
	case notify.SeverityError:
		return r.styles.Error.Render("✗ " + n.Message)
	default:
		return r.styles.Info.Render("• " + n.Message)
	}
}

// Categories renders the form-population lists.
func (r *Renderer) Categories(income, expense []core.Category) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Income Categories"))
	b.WriteString("\n")
	for _, c := range income {
		b.WriteString(fmt.Sprintf("  %3d  %s\n", c.ID, c.Name))
	}
	b.WriteString(r.styles.Title.Render("Expense Categories"))
	b.WriteString("\n")
	for _, c := range expense {
		b.WriteString(fmt.Sprintf("  %3d  %s\n", c.ID, c.Name))
	}
	return b.String()
}

func bar(value, max float64) string {
	if max <= 0 || value < 0 {
		return ""
	}
	n := int(value / max * chartWidth)
	if n == 0 && value > 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
