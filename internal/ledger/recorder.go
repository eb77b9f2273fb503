package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashgram/internal/models"
	"cashgram/internal/parser"
)

// ErrInvalidAmount is returned for amounts that are not positive.
var ErrInvalidAmount = errors.New("amount must be positive")

// Store is the persistence the ledger needs.
type Store interface {
	EnsureCategory(ctx context.Context, userID int64, name, icon, color string) (*models.Category, error)
	CreateExpense(ctx context.Context, userID, categoryID, amount int64, description string, date time.Time) (*models.Expense, error)
}

// Ledger records expenses against per-user categories.
type Ledger struct {
	store Store
	now   func() time.Time
}

// New creates a Ledger.
func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Resolve returns the user's category with the given name, creating it with
// the default style when missing.
func (l *Ledger) Resolve(ctx context.Context, userID int64, name string) (*models.Category, error) {
	name = CanonicalName(name)
	s := StyleFor(name)
	c, err := l.store.EnsureCategory(ctx, userID, name, s.Icon, s.Color)
	if err != nil {
		return nil, fmt.Errorf("resolve category %q: %w", name, err)
	}
	return c, nil
}

// Record stores an expense. A zero date means now.
func (l *Ledger) Record(ctx context.Context, userID, categoryID, amount int64, description string, date time.Time) (*models.Expense, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if date.IsZero() {
		date = l.now()
	}
	e, err := l.store.CreateExpense(ctx, userID, categoryID, amount, description, date)
	if err != nil {
		return nil, fmt.Errorf("record expense: %w", err)
	}
	return e, nil
}

// Capture resolves the parsed category and records the expense now.
func (l *Ledger) Capture(ctx context.Context, userID int64, p parser.Expense) (*models.Expense, error) {
	c, err := l.Resolve(ctx, userID, p.Category)
	if err != nil {
		return nil, err
	}
	return l.Record(ctx, userID, c.ID, p.Amount, p.Description, time.Time{})
}
