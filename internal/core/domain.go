package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type (
	Theme string

	TransactionType string

	// Date is a calendar date without a time component. It travels on
	// the wire as YYYY-MM-DD.
	Date struct {
		time.Time
	}

	// Category is owned by the server and never mutated here.
	Category struct {
		ID   int64           `json:"id"`
		Name string          `json:"name"`
		Type TransactionType `json:"type"`
	}

	// Profile mirrors the server-side user record.
	Profile struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Currency string `json:"currency"`
		Theme    Theme  `json:"theme"`
	}

	// Transaction is an income or expense record. The server is the
	// sole source of truth; ids are never generated locally.
	Transaction struct {
		ID           int64
		Amount       Amount
		CategoryID   int64
		CategoryName string
		Description  string
		Date         Date
		Type         TransactionType
	}

	// DailyPoint is one entry of the dashboard time series.
	DailyPoint struct {
		Date    string `json:"date"`
		Income  Amount `json:"income"`
		Expense Amount `json:"expense"`
	}

	// Summary is the server-computed dashboard aggregate. It is derived
	// state and never cached across program runs.
	Summary struct {
		TotalIncome    Amount       `json:"total_income"`
		TotalExpense   Amount       `json:"total_expense"`
		Balance        Amount       `json:"balance"`
		TodayIncome    Amount       `json:"today_income"`
		TodayExpense   Amount       `json:"today_expense"`
		MonthlyIncome  Amount       `json:"monthly_income"`
		MonthlyExpense Amount       `json:"monthly_expense"`
		Daily          []DailyPoint `json:"daily_data"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidTheme    = errors.New("invalid theme")
)

const dateLayout = "2006-01-02"

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return Date{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Other flips a theme, used by the toggle.
func (t Theme) Other() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
