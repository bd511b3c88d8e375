// Package forms validates and submits create/update/delete operations
// for income and expense records, then triggers the dashboard refresh.
// Failures surface the server message verbatim when one exists; there
// is no speculative local mutation and no retry.
package forms

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"bilancio/internal/api"
	"bilancio/internal/core"
	"bilancio/internal/dashboard"
	"bilancio/internal/log"
	"bilancio/internal/notify"
)

// Mutator is the slice of the api client the handlers consume.
type Mutator interface {
	CreateTransaction(ctx context.Context, typ core.TransactionType, in api.TransactionInput) error
	UpdateTransaction(ctx context.Context, typ core.TransactionType, id int64, in api.TransactionInput) error
	DeleteTransaction(ctx context.Context, typ core.TransactionType, id int64) error
}

// Refresher re-runs the dashboard aggregation after a mutation.
type Refresher interface {
	Refresh(ctx context.Context, typ core.TransactionType) dashboard.ViewState
}

// Notifier receives user-facing feedback.
type Notifier interface {
	Notify(message string, severity notify.Severity)
}

// Draft carries raw form field values before parsing.
type Draft struct {
	Amount      string
	CategoryID  string
	Description string
	Date        string
}

type Handler struct {
	api       Mutator
	refresher Refresher
	notifier  Notifier
	confirm   func(prompt string) bool
	log       *log.Logger
}

type Option func(*Handler)

// WithConfirm injects the delete confirmation step. Without one every
// delete is refused.
func WithConfirm(fn func(prompt string) bool) Option {
	return func(h *Handler) { h.confirm = fn }
}

// WithLogger attaches a logger.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) { h.log = logger.WithComponent(log.ComponentForms) }
}

func New(mutator Mutator, refresher Refresher, notifier Notifier, opts ...Option) *Handler {
	h := &Handler{
		api:       mutator,
		refresher: refresher,
		notifier:  notifier,
		confirm:   func(string) bool { return false },
		log:       log.New(log.Config{Component: log.ComponentForms}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// parseDraft assembles the transaction payload: amount as a decimal,
// category id as an integer, description as free text, date as an ISO
// calendar date (today when left empty). Anything beyond parsing is the
// server's call.
func parseDraft(d Draft) (api.TransactionInput, error) {
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		return api.TransactionInput{}, err
	}

	categoryID, err := strconv.ParseInt(strings.TrimSpace(d.CategoryID), 10, 64)
	if err != nil {
		return api.TransactionInput{}, core.ErrInvalidCategory
	}

	date := core.Today()
	if strings.TrimSpace(d.Date) != "" {
		date, err = core.ParseDate(d.Date)
		if err != nil {
			return api.TransactionInput{}, err
		}
	}

	return api.TransactionInput{
		Amount:      amount,
		CategoryID:  categoryID,
		Description: d.Description,
		Date:        date,
	}, nil
}

// Submit creates a record from a draft. On success the caller may clear
// its form; the summary and lists have already been re-fetched when
// this returns.
func (h *Handler) Submit(ctx context.Context, typ core.TransactionType, d Draft) error {
	in, err := parseDraft(d)
	if err != nil {
		h.notifier.Notify(parseMessage(err), notify.SeverityError)
		return err
	}

	if err := h.api.CreateTransaction(ctx, typ, in); err != nil {
		h.notifier.Notify(errorMessage(err, "Failed to add "+string(typ)), notify.SeverityError)
		return err
	}

	h.log.Info("record created", log.FieldOperation, log.OpCreate, log.FieldRecordType, string(typ))
	h.notifier.Notify(capitalize(string(typ))+" added successfully!", notify.SeveritySuccess)
	h.refresher.Refresh(ctx, typ)
	return nil
}

// SubmitUpdate replaces an existing record from a draft.
func (h *Handler) SubmitUpdate(ctx context.Context, typ core.TransactionType, id int64, d Draft) error {
	in, err := parseDraft(d)
	if err != nil {
		h.notifier.Notify(parseMessage(err), notify.SeverityError)
		return err
	}

	if err := h.api.UpdateTransaction(ctx, typ, id, in); err != nil {
		h.notifier.Notify(errorMessage(err, "Failed to update "+string(typ)), notify.SeverityError)
		return err
	}

	h.log.Info("record updated",
		log.FieldOperation, log.OpUpdate, log.FieldRecordType, string(typ), log.FieldRecordID, id)
	h.notifier.Notify(capitalize(string(typ))+" updated successfully!", notify.SeveritySuccess)
	h.refresher.Refresh(ctx, typ)
	return nil
}

// Delete removes a record after explicit confirmation. A failed delete
// leaves prior state rendered; a successful one is complete only after
// the summary and list re-fetch.
func (h *Handler) Delete(ctx context.Context, typ core.TransactionType, id int64) error {
	if !h.confirm("Are you sure you want to delete this " + string(typ) + "?") {
		h.log.Debug("delete not confirmed",
			log.FieldRecordType, string(typ), log.FieldRecordID, id)
		return nil
	}

	if err := h.api.DeleteTransaction(ctx, typ, id); err != nil {
		h.notifier.Notify(errorMessage(err, "Failed to delete "+string(typ)), notify.SeverityError)
		return err
	}

	h.log.Info("record deleted",
		log.FieldOperation, log.OpDelete, log.FieldRecordType, string(typ), log.FieldRecordID, id)
	h.notifier.Notify(capitalize(string(typ))+" deleted", notify.SeveritySuccess)
	h.refresher.Refresh(ctx, typ)
	return nil
}

// errorMessage picks what the user sees: the server message verbatim
// when present, a network notice for transport failures, otherwise the
// generic fallback.
func errorMessage(err error, fallback string) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	if errors.Is(err, api.ErrNetwork) {
		return "Network error. Please try again."
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return "Session expired. Please log in again."
	}
	return fallback
}

func parseMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Please enter a valid amount"
	case errors.Is(err, core.ErrInvalidCategory):
		return "Please select a category"
	case errors.Is(err, core.ErrInvalidDate):
		return "Please enter a valid date (YYYY-MM-DD)"
	default:
		return "Invalid input"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
