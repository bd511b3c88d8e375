package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bilancio/internal/api"
	"bilancio/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu sync.Mutex

	profile    core.Profile
	profileErr error

	categories    []core.Category
	categoriesErr error

	summary     core.Summary
	summaryErr  error
	summaryHook func(call int)
	summaryCall int

	incomes     []core.Transaction
	incomesErr  error
	expenses    []core.Transaction
	expensesErr error
}

func (f *fakeAPI) Profile(context.Context) (core.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeAPI) Categories(context.Context) ([]core.Category, error) {
	return f.categories, f.categoriesErr
}

func (f *fakeAPI) Dashboard(context.Context) (core.Summary, error) {
	f.mu.Lock()
	f.summaryCall++
	call := f.summaryCall
	hook := f.summaryHook
	summary := f.summary
	err := f.summaryErr
	f.mu.Unlock()
	// The summary is captured before the hook blocks, so an in-flight
	// stale call keeps returning the value current at fetch time.
	if hook != nil {
		hook(call)
	}
	return summary, err
}

func (f *fakeAPI) Incomes(context.Context, api.ListFilter) ([]core.Transaction, error) {
	return f.incomes, f.incomesErr
}

func (f *fakeAPI) Expenses(context.Context, api.ListFilter) ([]core.Transaction, error) {
	return f.expenses, f.expensesErr
}

type fakeSession struct {
	mu       sync.Mutex
	username string
	currency string
	setCalls []string
}

func (s *fakeSession) Username() (string, bool) { return s.username, s.username != "" }
func (s *fakeSession) Currency() (string, bool) { return s.currency, s.currency != "" }

func (s *fakeSession) SetCurrency(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currency = code
	s.setCalls = append(s.setCalls, code)
	return nil
}

type fakeReconciler struct {
	mu     sync.Mutex
	themes []core.Theme
}

func (r *fakeReconciler) Reconcile(t core.Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes = append(r.themes, t)
}

func (r *fakeReconciler) seen() []core.Theme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Theme(nil), r.themes...)
}

func amt(f float64) core.Amount {
	return core.NewAmount(decimal.NewFromFloat(f))
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	require.NoError(t, err)
	return d
}

func tx(t *testing.T, id int64, typ core.TransactionType, category string, amount float64, date string) core.Transaction {
	t.Helper()
	return core.Transaction{
		ID:           id,
		Amount:       amt(amount),
		CategoryName: category,
		Description:  "d",
		Date:         mustDate(t, date),
		Type:         typ,
	}
}

func fullFake(t *testing.T) *fakeAPI {
	t.Helper()
	return &fakeAPI{
		profile: core.Profile{Username: "alice", Email: "alice@example.com", Currency: "EUR", Theme: core.ThemeDark},
		categories: []core.Category{
			{ID: 1, Name: "Salary", Type: core.TypeIncome},
			{ID: 2, Name: "Food", Type: core.TypeExpense},
			{ID: 3, Name: "Rent", Type: core.TypeExpense},
		},
		summary: core.Summary{
			TotalIncome:  amt(1000),
			TotalExpense: amt(400),
			Balance:      amt(600),
			Daily:        []core.DailyPoint{{Date: "2025-05-01", Income: amt(100), Expense: amt(20)}},
		},
		incomes: []core.Transaction{
			tx(t, 1, core.TypeIncome, "Salary", 1000, "2025-05-01"),
		},
		expenses: []core.Transaction{
			tx(t, 2, core.TypeExpense, "Food", 150, "2025-05-02"),
			tx(t, 3, core.TypeExpense, "Rent", 250, "2025-05-03"),
			tx(t, 4, core.TypeExpense, "Food", 50, "2025-04-28"),
		},
	}
}

func TestLoadAllHappyPath(t *testing.T) {
	fake := fullFake(t)
	session := &fakeSession{}
	themes := &fakeReconciler{}
	agg := New(fake, session, themes)

	state := agg.LoadAll(context.Background())

	assert.Equal(t, "alice", state.Username)
	assert.Equal(t, "alice@example.com", state.Email)
	assert.Equal(t, "A", state.Initial)
	assert.Equal(t, "EUR", state.Currency)
	assert.Equal(t, []string{"EUR"}, session.setCalls, "server currency mirrored into the session")
	assert.Equal(t, []core.Theme{core.ThemeDark}, themes.seen(), "server theme reconciled after a successful profile load")

	require.Len(t, state.IncomeCategories, 1)
	require.Len(t, state.ExpenseCategories, 2)

	require.True(t, state.HasSummary)
	assert.Equal(t, "600.00", state.Summary.Balance.Display())

	// Distribution grouped by category, largest first.
	require.Len(t, state.Distribution, 2)
	assert.Equal(t, "Rent", state.Distribution[0].Name)
	assert.Equal(t, "250.00", state.Distribution[0].Total.Display())
	assert.Equal(t, "Food", state.Distribution[1].Name)
	assert.Equal(t, "200.00", state.Distribution[1].Total.Display())

	// Recent feed: merged, tagged, newest first.
	require.Len(t, state.Recent, 4)
	assert.Equal(t, int64(3), state.Recent[0].ID)
	assert.Equal(t, int64(2), state.Recent[1].ID)
	assert.Equal(t, int64(1), state.Recent[2].ID)
	assert.Equal(t, core.TypeIncome, state.Recent[2].Type)
	assert.Equal(t, int64(4), state.Recent[3].ID)
}

func TestLoadAllProfileFailureFallsBackWithoutAborting(t *testing.T) {
	fake := fullFake(t)
	fake.profileErr = errors.New("profile down")
	session := &fakeSession{username: "bob", currency: "GBP"}
	themes := &fakeReconciler{}
	agg := New(fake, session, themes)

	state := agg.LoadAll(context.Background())

	assert.Equal(t, "bob", state.Username, "falls back to the stored username")
	assert.Equal(t, "B", state.Initial)
	assert.Equal(t, "GBP", state.Currency)
	assert.Empty(t, themes.seen(), "a failed profile fetch must not reconcile the theme")

	// Siblings still completed.
	assert.True(t, state.HasSummary)
	assert.NotEmpty(t, state.ExpenseCategories)
	assert.NotEmpty(t, state.Recent)
}

func TestLoadAllProfileFailureWithEmptySession(t *testing.T) {
	fake := fullFake(t)
	fake.profileErr = errors.New("profile down")
	agg := New(fake, &fakeSession{}, &fakeReconciler{})

	state := agg.LoadAll(context.Background())
	assert.Equal(t, "User", state.Username, "placeholder identity when nothing is stored")
	assert.Equal(t, "USD", state.Currency)
}

func TestLoadAllSummaryFailureLeavesSiblingsIntact(t *testing.T) {
	fake := fullFake(t)
	fake.summaryErr = errors.New("summary down")
	agg := New(fake, &fakeSession{}, &fakeReconciler{})

	state := agg.LoadAll(context.Background())

	assert.False(t, state.HasSummary)
	assert.Equal(t, "alice", state.Username)
	assert.NotEmpty(t, state.Distribution)
	assert.NotEmpty(t, state.Recent)
}

func TestLoadAllEmptyDailySeries(t *testing.T) {
	fake := fullFake(t)
	fake.summary.Daily = nil
	agg := New(fake, &fakeSession{}, &fakeReconciler{})

	state := agg.LoadAll(context.Background())
	require.True(t, state.HasSummary, "an empty series is data, not an error")
	assert.Empty(t, state.Summary.Daily)
}

func TestLoadAllListFailureSkipsBothLists(t *testing.T) {
	fake := fullFake(t)
	fake.incomesErr = errors.New("income down")
	agg := New(fake, &fakeSession{}, &fakeReconciler{})

	state := agg.LoadAll(context.Background())
	assert.Empty(t, state.Recent)
	assert.Empty(t, state.Incomes)
	// The distribution step fetches expenses on its own and still ran.
	assert.NotEmpty(t, state.Distribution)
}

func TestRecentFeedTruncatesToLimit(t *testing.T) {
	fake := fullFake(t)
	fake.incomes = nil
	for i := 1; i <= 15; i++ {
		fake.incomes = append(fake.incomes,
			tx(t, int64(i), core.TypeIncome, "Salary", 10, "2025-05-01"))
	}
	fake.expenses = nil
	agg := New(fake, &fakeSession{}, &fakeReconciler{})

	state := agg.LoadAll(context.Background())
	assert.Len(t, state.Recent, RecentLimit)
	assert.Len(t, state.Incomes, 15, "the full list keeps everything")
}

func TestOverlappingLoadsDiscardStaleGeneration(t *testing.T) {
	fake := fullFake(t)
	firstEntered := make(chan struct{})
	release := make(chan struct{})
	fake.summaryHook = func(call int) {
		if call == 1 {
			close(firstEntered)
			<-release
		}
	}

	agg := New(fake, &fakeSession{}, &fakeReconciler{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		agg.LoadAll(context.Background()) // generation 1, summary blocked
	}()

	select {
	case <-firstEntered:
	case <-time.After(5 * time.Second):
		t.Fatal("first load never reached the summary step")
	}

	// A newer load completes while the old one is still in flight.
	fake.mu.Lock()
	fake.summary.Balance = amt(999)
	fake.mu.Unlock()
	state := agg.LoadAll(context.Background())
	require.True(t, state.HasSummary)
	assert.Equal(t, "999.00", state.Summary.Balance.Display())

	// Unblock the stale step; its commit must be discarded.
	close(release)
	wg.Wait()

	final := agg.Snapshot()
	assert.Equal(t, "999.00", final.Summary.Balance.Display(), "stale result must not overwrite newer state")
	assert.Equal(t, uint64(2), final.Generation)
}

func TestRefreshUpdatesSummaryRelevantState(t *testing.T) {
	fake := fullFake(t)
	session := &fakeSession{}
	agg := New(fake, session, &fakeReconciler{})
	agg.LoadAll(context.Background())

	fake.summary.TotalExpense = amt(450)
	fake.summary.Balance = amt(550)
	fake.expenses = append(fake.expenses,
		tx(t, 9, core.TypeExpense, "Food", 50, "2025-05-04"))

	state := agg.Refresh(context.Background(), core.TypeExpense)

	assert.Equal(t, "550.00", state.Summary.Balance.Display())
	assert.Equal(t, int64(9), state.Recent[0].ID)
	assert.Equal(t, "250.00", state.Distribution[0].Total.Display())
	// Identity and categories stay from the earlier full load.
	assert.Equal(t, "alice", state.Username)
	assert.NotEmpty(t, state.IncomeCategories)
}
