package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"cashgram/internal/models"
)

const expenseSelect = `
	SELECT e.id, e.user_id, e.category_id, e.amount, e.description, e.date, e.created_at,
		c.id, c.user_id, c.name, c.icon, c.color
	FROM expenses e
	JOIN categories c ON c.id = e.category_id`

// ExpenseFilter narrows ListExpenses. Zero values mean "no constraint".
type ExpenseFilter struct {
	CategoryID int64
	Start      time.Time
	End        time.Time
	Limit      int
}

// ExpenseUpdate holds fields to change. Nil fields are left as they are.
type ExpenseUpdate struct {
	Amount      *int64
	Description *string
	CategoryID  *int64
	Date        *time.Time
}

// CreateExpense inserts an expense for the user. The category must belong to
// the same user, otherwise ErrCategoryNotFound is returned.
func (db *DB) CreateExpense(ctx context.Context, userID, categoryID, amount int64, description string, date time.Time) (*models.Expense, error) {
	if date.IsZero() {
		date = db.timestamp()
	}

	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkCategoryOwner(ctx, db, tx, userID, categoryID); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			db.q("INSERT INTO expenses (user_id, category_id, amount, description, date, created_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"),
			userID, categoryID, amount, description, date.UTC(), db.timestamp(),
		).Scan(&id)
	})
	if err != nil {
		return nil, err
	}
	return db.GetExpense(ctx, userID, id)
}

// GetExpense retrieves a single expense owned by the user.
func (db *DB) GetExpense(ctx context.Context, userID, id int64) (*models.Expense, error) {
	row := db.conn.QueryRowContext(ctx,
		db.q(expenseSelect+" WHERE e.id = ? AND e.user_id = ?"),
		id, userID,
	)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// ListExpenses returns the user's expenses, newest first.
func (db *DB) ListExpenses(ctx context.Context, userID int64, f ExpenseFilter) ([]models.Expense, error) {
	where := []string{"e.user_id = ?"}
	args := []any{userID}
	if f.CategoryID != 0 {
		where = append(where, "e.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.Start.IsZero() {
		where = append(where, "e.date >= ?")
		args = append(args, f.Start.UTC())
	}
	if !f.End.IsZero() {
		where = append(where, "e.date <= ?")
		args = append(args, f.End.UTC())
	}

	query := expenseSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY e.date DESC, e.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, db.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// UpdateExpense applies u to an expense owned by the user.
func (db *DB) UpdateExpense(ctx context.Context, userID, id int64, u ExpenseUpdate) (*models.Expense, error) {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var e models.Expense
		err := tx.QueryRowContext(ctx,
			db.q("SELECT amount, description, category_id, date FROM expenses WHERE id = ? AND user_id = ?"),
			id, userID,
		).Scan(&e.Amount, &e.Description, &e.CategoryID, &e.Date)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if u.Amount != nil {
			e.Amount = *u.Amount
		}
		if u.Description != nil {
			e.Description = *u.Description
		}
		if u.Date != nil {
			e.Date = *u.Date
		}
		if u.CategoryID != nil && *u.CategoryID != e.CategoryID {
			if err := checkCategoryOwner(ctx, db, tx, userID, *u.CategoryID); err != nil {
				return err
			}
			e.CategoryID = *u.CategoryID
		}

		_, err = tx.ExecContext(ctx,
			db.q("UPDATE expenses SET amount = ?, description = ?, category_id = ?, date = ? WHERE id = ? AND user_id = ?"),
			e.Amount, e.Description, e.CategoryID, e.Date.UTC(), id, userID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return db.GetExpense(ctx, userID, id)
}

// DeleteExpense removes an expense owned by the user.
func (db *DB) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		db.q("DELETE FROM expenses WHERE id = ? AND user_id = ?"),
		id, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryTotals sums the user's expenses per category between start and end
// (inclusive), largest total first.
func (db *DB) CategoryTotals(ctx context.Context, userID int64, start, end time.Time) ([]models.CategoryTotal, error) {
	rows, err := db.conn.QueryContext(ctx, db.q(`
		SELECT c.id, c.name, c.icon, c.color, SUM(e.amount), COUNT(*)
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ? AND e.date >= ? AND e.date <= ?
		GROUP BY c.id, c.name, c.icon, c.color
		ORDER BY SUM(e.amount) DESC, c.name
	`), userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Category, &ct.Icon, &ct.Color, &ct.Total, &ct.Count); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (*models.Expense, error) {
	var e models.Expense
	var c models.Category
	if err := s.Scan(
		&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt,
		&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color,
	); err != nil {
		return nil, err
	}
	e.Category = &c
	return &e, nil
}

func checkCategoryOwner(ctx context.Context, db *DB, tx *sql.Tx, userID, categoryID int64) error {
	var one int
	err := tx.QueryRowContext(ctx,
		db.q("SELECT 1 FROM categories WHERE id = ? AND user_id = ?"),
		categoryID, userID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCategoryNotFound
	}
	return err
}
