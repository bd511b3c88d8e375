// Package report builds date-range income/expense breakdowns from raw
// records, grouped per category on the client.
package report

import (
	"context"
	"errors"

	"bilancio/internal/api"
	"bilancio/internal/core"

	"golang.org/x/sync/errgroup"
)

// ErrMissingRange is returned when either boundary date is absent.
var ErrMissingRange = errors.New("start and end dates are required")

// Lister is the slice of the api client the builder consumes.
type Lister interface {
	Incomes(ctx context.Context, f api.ListFilter) ([]core.Transaction, error)
	Expenses(ctx context.Context, f api.ListFilter) ([]core.Transaction, error)
}

type Report struct {
	Start core.Date
	End   core.Date

	IncomeTotal       core.Amount
	ExpenseTotal      core.Amount
	IncomeByCategory  []core.CategoryTotal
	ExpenseByCategory []core.CategoryTotal
}

// Build fetches both sides of the range together and aggregates them.
// Unlike the dashboard totals, these are sums over the fetched records:
// the report is a view over raw rows, not a mirror of the server
// summary.
func Build(ctx context.Context, lister Lister, start, end core.Date) (Report, error) {
	if start.IsZero() || end.IsZero() {
		return Report{}, ErrMissingRange
	}

	filter := api.ListFilter{StartDate: start, EndDate: end}
	var incomes, expenses []core.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = lister.Incomes(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = lister.Expenses(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return Report{
		Start:             start,
		End:               end,
		IncomeTotal:       core.SumAmounts(incomes),
		ExpenseTotal:      core.SumAmounts(expenses),
		IncomeByCategory:  core.GroupByCategory(incomes),
		ExpenseByCategory: core.GroupByCategory(expenses),
	}, nil
}
