// Package dashboard orchestrates the parallel fetches behind the main
// screen and reconciles them into a renderable ViewState. Steps run
// independently and tolerate partial failure: one step's error is
// logged and defaults substituted, the siblings complete regardless.
// Each fetch happens exactly once per invocation; there is no retry.
package dashboard

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"bilancio/internal/api"
	"bilancio/internal/core"
	"bilancio/internal/log"

	"golang.org/x/sync/errgroup"
)

// API is the slice of the api client the aggregator consumes.
type API interface {
	Profile(ctx context.Context) (core.Profile, error)
	Categories(ctx context.Context) ([]core.Category, error)
	Dashboard(ctx context.Context) (core.Summary, error)
	Incomes(ctx context.Context, f api.ListFilter) ([]core.Transaction, error)
	Expenses(ctx context.Context, f api.ListFilter) ([]core.Transaction, error)
}

// Session is the slice of the session store the aggregator consumes.
type Session interface {
	Username() (string, bool)
	Currency() (string, bool)
	SetCurrency(code string) error
}

// ThemeReconciler receives the server-side theme after a successful
// profile load.
type ThemeReconciler interface {
	Reconcile(theme core.Theme)
}

type Aggregator struct {
	api     API
	session Session
	themes  ThemeReconciler
	log     *log.Logger

	mu    sync.Mutex
	gen   atomic.Uint64
	state ViewState
}

type Option func(*Aggregator)

// WithLogger attaches a logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Aggregator) { a.log = logger.WithComponent(log.ComponentDashboard) }
}

func New(apiClient API, session Session, themes ThemeReconciler, opts ...Option) *Aggregator {
	a := &Aggregator{
		api:     apiClient,
		session: session,
		themes:  themes,
		log:     log.New(log.Config{Component: log.ComponentDashboard}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadAll runs every aggregation step concurrently and returns the
// resulting snapshot. Overlapping invocations are resolved by the
// generation counter: a step completing for a superseded generation is
// discarded instead of overwriting newer state.
func (a *Aggregator) LoadAll(ctx context.Context) ViewState {
	gen := a.gen.Add(1)
	a.log.Debug("loading dashboard", log.FieldOperation, log.OpLoadAll, log.FieldGeneration, gen)

	// Plain group, not WithContext: one step failing must not cancel
	// its siblings.
	var g errgroup.Group
	g.Go(func() error { a.loadProfile(ctx, gen); return nil })
	g.Go(func() error { a.loadCategories(ctx, gen); return nil })
	g.Go(func() error { a.loadSummary(ctx, gen); return nil })
	g.Go(func() error { a.loadDistribution(ctx, gen); return nil })
	g.Go(func() error { a.loadLists(ctx, gen); return nil })
	_ = g.Wait()

	return a.Snapshot()
}

// Refresh re-runs the summary-relevant steps and the list reloads after
// a mutation. The delete/create flow is not complete from the user's
// perspective until this returns, since totals depend on server
// recomputation.
func (a *Aggregator) Refresh(ctx context.Context, typ core.TransactionType) ViewState {
	gen := a.gen.Add(1)
	a.log.Debug("refreshing after mutation",
		log.FieldOperation, log.OpRefresh, log.FieldRecordType, string(typ), log.FieldGeneration, gen)

	var g errgroup.Group
	g.Go(func() error { a.loadSummary(ctx, gen); return nil })
	g.Go(func() error { a.loadDistribution(ctx, gen); return nil })
	g.Go(func() error { a.loadLists(ctx, gen); return nil })
	_ = g.Wait()

	return a.Snapshot()
}

// Snapshot returns a copy of the current view state.
func (a *Aggregator) Snapshot() ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// commit applies a state change unless a newer load has started since
// this step's generation was issued.
func (a *Aggregator) commit(gen uint64, apply func(*ViewState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen.Load() {
		a.log.Debug("discarding stale step result",
			log.FieldGeneration, gen, "current_generation", a.gen.Load())
		return
	}
	apply(&a.state)
	a.state.Generation = gen
}

func (a *Aggregator) loadProfile(ctx context.Context, gen uint64) {
	profile, err := a.api.Profile(ctx)
	if err != nil {
		a.log.Warn("profile load failed, using local fallback",
			log.FieldStep, "profile", log.FieldError, err)
		username, ok := a.session.Username()
		if !ok {
			username = "User"
		}
		currency, ok := a.session.Currency()
		if !ok {
			currency = "USD"
		}
		a.commit(gen, func(s *ViewState) {
			s.Username = username
			s.Email = ""
			s.Initial = initialOf(username)
			s.Currency = currency
		})
		return
	}

	currency := profile.Currency
	if currency == "" {
		currency = "USD"
	}
	if err := a.session.SetCurrency(currency); err != nil {
		a.log.Error("persisting currency failed", log.FieldCurrency, currency, log.FieldError, err)
	}
	// Server wins on theme, but only because this fetch succeeded.
	a.themes.Reconcile(profile.Theme)

	a.commit(gen, func(s *ViewState) {
		s.Username = profile.Username
		s.Email = profile.Email
		s.Initial = initialOf(profile.Username)
		s.Currency = currency
	})
}

func (a *Aggregator) loadCategories(ctx context.Context, gen uint64) {
	categories, err := a.api.Categories(ctx)
	if err != nil {
		a.log.Warn("category load failed", log.FieldStep, "categories", log.FieldError, err)
		return
	}
	income, expense := partitionCategories(categories)
	a.commit(gen, func(s *ViewState) {
		s.IncomeCategories = income
		s.ExpenseCategories = expense
	})
}

func (a *Aggregator) loadSummary(ctx context.Context, gen uint64) {
	summary, err := a.api.Dashboard(ctx)
	if err != nil {
		a.log.Warn("summary load failed", log.FieldStep, "summary", log.FieldError, err)
		return
	}
	a.commit(gen, func(s *ViewState) {
		s.Summary = summary
		s.HasSummary = true
	})
}

func (a *Aggregator) loadDistribution(ctx context.Context, gen uint64) {
	expenses, err := a.api.Expenses(ctx, api.ListFilter{})
	if err != nil {
		a.log.Warn("distribution load failed", log.FieldStep, "distribution", log.FieldError, err)
		return
	}
	distribution := core.GroupByCategory(expenses)
	a.commit(gen, func(s *ViewState) {
		s.Distribution = distribution
	})
}

func (a *Aggregator) loadLists(ctx context.Context, gen uint64) {
	// Both fetches of this step go out together, like the rest of the
	// steps; if either fails the whole step is skipped.
	g, gctx := errgroup.WithContext(ctx)
	var incomes, expenses []core.Transaction
	g.Go(func() error {
		var err error
		incomes, err = a.api.Incomes(gctx, api.ListFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = a.api.Expenses(gctx, api.ListFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		a.log.Warn("transaction list load failed", log.FieldStep, "lists", log.FieldError, err)
		return
	}

	recent := mergeRecent(incomes, expenses)
	a.commit(gen, func(s *ViewState) {
		s.Incomes = incomes
		s.Expenses = expenses
		s.Recent = recent
	})
}

func initialOf(username string) string {
	if username == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(username)
	return strings.ToUpper(string(r))
}
