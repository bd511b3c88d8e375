package api

import (
	"fmt"
	"net/url"
	"strconv"

	"bilancio/internal/core"
)

// AuthResult carries what the auth endpoints return and the client
// persists: the bearer token and the display username.
type AuthResult struct {
	Token    string
	Username string
}

// SettingsUpdate is a partial update of the server-side user settings.
// Nil fields are omitted from the request.
type SettingsUpdate struct {
	Currency *string     `json:"currency,omitempty"`
	Theme    *core.Theme `json:"theme,omitempty"`
}

// TransactionInput is the client-assembled payload for creating or
// updating an income or expense record. Ids are never set here; the
// server owns them.
type TransactionInput struct {
	Amount      core.Amount
	CategoryID  int64
	Description string
	Date        core.Date
}

// ListFilter narrows list fetches. Zero values are not sent.
type ListFilter struct {
	CategoryID int64
	Date       core.Date
	StartDate  core.Date
	EndDate    core.Date
}

func (f ListFilter) query() string {
	q := url.Values{}
	if f.CategoryID != 0 {
		q.Set("category_id", strconv.FormatInt(f.CategoryID, 10))
	}
	if !f.Date.IsZero() {
		q.Set("date", f.Date.String())
	}
	if !f.StartDate.IsZero() {
		q.Set("start_date", f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		q.Set("end_date", f.EndDate.String())
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

type loginRequest struct {
	EmailOrUsername string `json:"email_or_username"`
	Password        string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		Username string `json:"username"`
	} `json:"user"`
}

// transactionRecord is the wire shape of an income or expense record.
// The date arrives as income_date or expense_date depending on type;
// some deployments emit a plain date field instead, so all three are
// accepted and normalized.
type transactionRecord struct {
	ID           int64       `json:"id"`
	Amount       core.Amount `json:"amount"`
	CategoryID   int64       `json:"category_id"`
	CategoryName string      `json:"category_name"`
	Description  string      `json:"description"`
	Date         string      `json:"date"`
	IncomeDate   string      `json:"income_date"`
	ExpenseDate  string      `json:"expense_date"`
}

func (r transactionRecord) toTransaction(typ core.TransactionType) (core.Transaction, error) {
	raw := r.Date
	if raw == "" {
		raw = r.IncomeDate
	}
	if raw == "" {
		raw = r.ExpenseDate
	}
	date, err := core.ParseDate(raw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record %d: %w", r.ID, err)
	}
	return core.Transaction{
		ID:           r.ID,
		Amount:       r.Amount,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		Description:  r.Description,
		Date:         date,
		Type:         typ,
	}, nil
}

// transactionPayload is the wire shape of a create/update request. The
// date field name is type-specific; the server rejects a bare date.
type transactionPayload struct {
	Amount      core.Amount `json:"amount"`
	CategoryID  int64       `json:"category_id"`
	Description string      `json:"description"`
	IncomeDate  string      `json:"income_date,omitempty"`
	ExpenseDate string      `json:"expense_date,omitempty"`
}

func payloadFor(typ core.TransactionType, in TransactionInput) transactionPayload {
	p := transactionPayload{
		Amount:      in.Amount,
		CategoryID:  in.CategoryID,
		Description: in.Description,
	}
	if typ == core.TypeIncome {
		p.IncomeDate = in.Date.String()
	} else {
		p.ExpenseDate = in.Date.String()
	}
	return p
}

func endpointFor(typ core.TransactionType) string {
	if typ == core.TypeIncome {
		return "/income"
	}
	return "/expense"
}
