// Command bilancio is a terminal client for the expense tracker API:
// it signs in, renders the dashboard, and manages income and expense
// records. The server is the sole source of truth; the client re-reads
// after every change.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"bilancio/internal/api"
	"bilancio/internal/cli"
	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/dashboard"
	"bilancio/internal/forms"
	"bilancio/internal/log"
	"bilancio/internal/notify"
	"bilancio/internal/report"
	"bilancio/internal/session"
	"bilancio/internal/theme"
	"bilancio/internal/ui"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("BILANCIO_LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	store := cli.OpenSession(logger, cfg.SessionDBPath)
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := newApp(cfg, store, logger)
	defer a.themes.Flush()

	args := os.Args[1:]
	command := "dashboard"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	var err error
	switch command {
	case "login":
		err = a.cmdLogin(ctx, args)
	case "register":
		err = a.cmdRegister(ctx, args)
	case "logout":
		err = a.cmdLogout()
	case "dashboard":
		err = a.cmdDashboard(ctx)
	case "income":
		err = a.cmdTransactions(ctx, core.TypeIncome, args)
	case "expense":
		err = a.cmdTransactions(ctx, core.TypeExpense, args)
	case "categories":
		err = a.cmdCategories(ctx)
	case "settings":
		err = a.cmdSettings(ctx, args)
	case "report":
		err = a.cmdReport(ctx, args)
	case "export":
		err = a.cmdExport(ctx, args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Debug("command failed", log.FieldError, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Print(`Usage: bilancio <command> [flags]

Commands:
  login       Sign in and store the session token
  register    Create an account
  logout      Clear the session (theme preference is kept)
  dashboard   Show totals, charts and recent activity (default)
  income      Manage income records: add, list, edit, delete
  expense     Manage expense records: add, list, edit, delete
  categories  List categories for form population
  settings    Change currency or theme
  report      Income/expense breakdown for a date range
  export      Download the PDF report
`)
}

type app struct {
	cfg    *config.Config
	store  *session.Store
	logger *log.Logger
	api    *api.Client
	themes *theme.Controller
	center *notify.Center
	agg    *dashboard.Aggregator
	forms  *forms.Handler
}

func newApp(cfg *config.Config, store *session.Store, logger *log.Logger) *app {
	a := &app{cfg: cfg, store: store, logger: logger}

	a.api = api.New(cfg.APIBaseURL, store,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
		api.WithUnauthorizedHandler(func() {
			fmt.Fprintln(os.Stderr, "Session expired. Please run 'bilancio login'.")
		}))

	a.themes = theme.New(store, a.api, theme.WithLogger(logger))
	a.themes.Init()

	a.center = notify.New(notify.WithSink(func(n notify.Notification) {
		fmt.Println(a.renderer().Notification(n))
	}))

	a.agg = dashboard.New(a.api, store, a.themes, dashboard.WithLogger(logger))
	a.forms = forms.New(a.api, a.agg, a.center,
		forms.WithConfirm(confirmPrompt),
		forms.WithLogger(logger))

	return a
}

// renderer is rebuilt on demand so a theme reconciled mid-command takes
// effect on the next render.
func (a *app) renderer() *ui.Renderer {
	return ui.NewRenderer(a.themes.Current())
}

func (a *app) currency() string {
	if code, ok := a.store.Currency(); ok {
		return code
	}
	return "USD"
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "email or username")
	fs.Parse(args)

	identity := *user
	if identity == "" {
		identity = promptLine("Email or username: ")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	result, err := a.api.Login(ctx, identity, password)
	if err != nil {
		a.center.Error(authErrorMessage(err, "Login failed"))
		return err
	}

	if err := a.store.SetToken(result.Token); err != nil {
		return err
	}
	if err := a.store.SetUsername(result.Username); err != nil {
		return err
	}

	a.logger.Info("logged in", log.FieldOperation, log.OpLogin)
	return a.cmdDashboard(ctx)
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	username := fs.String("user", "", "username")
	fs.Parse(args)

	if *email == "" {
		*email = promptLine("Email: ")
	}
	if *username == "" {
		*username = promptLine("Username: ")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	result, err := a.api.Register(ctx, *email, *username, password)
	if err != nil {
		a.center.Error(authErrorMessage(err, "Registration failed"))
		return err
	}

	if err := a.store.SetToken(result.Token); err != nil {
		return err
	}
	if err := a.store.SetUsername(result.Username); err != nil {
		return err
	}

	a.center.Success("Registration successful! Loading your dashboard...")
	a.logger.Info("registered", log.FieldOperation, log.OpRegister)
	return a.cmdDashboard(ctx)
}

func (a *app) cmdLogout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.logger.Info("logged out", log.FieldOperation, log.OpLogout)
	fmt.Println("Logged out.")
	return nil
}

func (a *app) cmdDashboard(ctx context.Context) error {
	if _, ok := a.store.Token(); !ok {
		fmt.Fprintln(os.Stderr, "Not logged in. Please run 'bilancio login'.")
		return fmt.Errorf("no session")
	}

	state := a.agg.LoadAll(ctx)
	fmt.Print(a.renderer().Dashboard(state))
	return nil
}

func (a *app) cmdTransactions(ctx context.Context, typ core.TransactionType, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "add":
		fs := flag.NewFlagSet(string(typ)+" add", flag.ExitOnError)
		amount := fs.String("amount", "", "amount, e.g. 12.34")
		category := fs.String("category", "", "category id")
		description := fs.String("desc", "", "description")
		date := fs.String("date", "", "date YYYY-MM-DD (default today)")
		fs.Parse(args)
		return a.forms.Submit(ctx, typ, forms.Draft{
			Amount:      *amount,
			CategoryID:  *category,
			Description: *description,
			Date:        *date,
		})

	case "edit":
		fs := flag.NewFlagSet(string(typ)+" edit", flag.ExitOnError)
		id := fs.Int64("id", 0, "record id")
		amount := fs.String("amount", "", "amount")
		category := fs.String("category", "", "category id")
		description := fs.String("desc", "", "description")
		date := fs.String("date", "", "date YYYY-MM-DD")
		fs.Parse(args)
		if *id == 0 {
			return fmt.Errorf("missing -id")
		}
		return a.forms.SubmitUpdate(ctx, typ, *id, forms.Draft{
			Amount:      *amount,
			CategoryID:  *category,
			Description: *description,
			Date:        *date,
		})

	case "delete":
		fs := flag.NewFlagSet(string(typ)+" delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "record id")
		fs.Parse(args)
		if *id == 0 {
			return fmt.Errorf("missing -id")
		}
		return a.forms.Delete(ctx, typ, *id)

	case "list":
		fs := flag.NewFlagSet(string(typ)+" list", flag.ExitOnError)
		category := fs.Int64("category", 0, "filter by category id")
		date := fs.String("date", "", "exact date YYYY-MM-DD")
		start := fs.String("start", "", "start date YYYY-MM-DD")
		end := fs.String("end", "", "end date YYYY-MM-DD")
		fs.Parse(args)

		filter := api.ListFilter{CategoryID: *category}
		var err error
		if filter.Date, err = optionalDate(*date); err != nil {
			return err
		}
		if filter.StartDate, err = optionalDate(*start); err != nil {
			return err
		}
		if filter.EndDate, err = optionalDate(*end); err != nil {
			return err
		}

		var records []core.Transaction
		if typ == core.TypeIncome {
			records, err = a.api.Incomes(ctx, filter)
		} else {
			records, err = a.api.Expenses(ctx, filter)
		}
		if err != nil {
			a.center.Error("Failed to load " + string(typ) + " records")
			return err
		}
		if len(records) == 0 {
			fmt.Printf("No %s records yet\n", typ)
			return nil
		}
		fmt.Print(a.renderer().Transactions(records, a.currency()))
		return nil

	default:
		return fmt.Errorf("unknown %s subcommand %q", typ, sub)
	}
}

func (a *app) cmdCategories(ctx context.Context) error {
	categories, err := a.api.Categories(ctx)
	if err != nil {
		a.center.Error("Failed to load categories")
		return err
	}

	var income, expense []core.Category
	for _, c := range categories {
		if c.Type == core.TypeIncome {
			income = append(income, c)
		} else {
			expense = append(expense, c)
		}
	}
	fmt.Print(a.renderer().Categories(income, expense))
	return nil
}

func (a *app) cmdSettings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	currency := fs.String("currency", "", "currency code, e.g. EUR")
	themeFlag := fs.String("theme", "", "light, dark or toggle")
	fs.Parse(args)

	if *currency == "" && *themeFlag == "" {
		fmt.Printf("Currency: %s\nTheme: %s\n", a.currency(), a.themes.Current())
		return nil
	}

	if *themeFlag == "toggle" {
		applied := a.themes.Toggle()
		fmt.Printf("Theme: %s\n", applied)
	} else if *themeFlag != "" {
		t := core.Theme(*themeFlag)
		if !t.Valid() {
			return fmt.Errorf("invalid theme %q", *themeFlag)
		}
		a.themes.Apply(t)
		update := api.SettingsUpdate{Theme: &t}
		if err := a.api.UpdateSettings(ctx, update); err != nil {
			// Local preference stands even when the sync fails.
			a.logger.Warn("theme sync failed", log.FieldError, err)
		}
	}

	if *currency != "" {
		code := strings.ToUpper(*currency)
		current := a.themes.Current()
		err := a.api.UpdateSettings(ctx, api.SettingsUpdate{Currency: &code, Theme: &current})
		if err != nil {
			a.center.Error(settingsErrorMessage(err))
			return err
		}
		if err := a.store.SetCurrency(code); err != nil {
			return err
		}
		a.center.Success("Settings saved successfully!")

		state := a.agg.LoadAll(ctx)
		fmt.Print(a.renderer().Dashboard(state))
	}
	return nil
}

func (a *app) cmdReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	start := fs.String("start", "", "start date YYYY-MM-DD")
	end := fs.String("end", "", "end date YYYY-MM-DD")
	fs.Parse(args)

	startDate, err := optionalDate(*start)
	if err != nil {
		return err
	}
	endDate, err := optionalDate(*end)
	if err != nil {
		return err
	}
	if startDate.IsZero() || endDate.IsZero() {
		a.center.Error("Please select start and end dates")
		return report.ErrMissingRange
	}

	rep, err := report.Build(ctx, a.api, startDate, endDate)
	if err != nil {
		a.center.Error("Failed to generate report")
		return err
	}

	fmt.Print(a.renderer().Report(rep, a.currency()))
	a.center.Success("Report generated successfully!")
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	start := fs.String("start", "", "start date YYYY-MM-DD")
	end := fs.String("end", "", "end date YYYY-MM-DD")
	output := fs.String("o", "", "output file (default expense-report-<today>.pdf)")
	fs.Parse(args)

	startDate, err := optionalDate(*start)
	if err != nil {
		return err
	}
	endDate, err := optionalDate(*end)
	if err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = "expense-report-" + core.Today().String() + ".pdf"
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := a.api.ExportPDF(ctx, startDate, endDate, f); err != nil {
		os.Remove(path)
		a.center.Error("Failed to export PDF")
		return err
	}

	a.logger.Info("report exported", log.FieldOperation, log.OpExport, "path", path)
	a.center.Success("PDF exported successfully!")
	return nil
}

func authErrorMessage(err error, fallback string) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	if errors.Is(err, api.ErrNetwork) {
		return "Network error. Please try again."
	}
	return fallback
}

func settingsErrorMessage(err error) string {
	if errors.Is(err, api.ErrNetwork) {
		return "Network error"
	}
	return "Failed to save settings"
}

func optionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func confirmPrompt(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
