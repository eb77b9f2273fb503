package storage

import (
	"context"
	"database/sql"
	"errors"

	"cashgram/internal/models"
)

const categoryColumns = "id, user_id, name, icon, color"

// CreateCategory inserts a new category. Returns ErrDuplicate if the user
// already has one with the same name.
func (db *DB) CreateCategory(ctx context.Context, userID int64, name, icon, color string) (*models.Category, error) {
	c := &models.Category{UserID: userID, Name: name, Icon: icon, Color: color}
	err := db.conn.QueryRowContext(ctx,
		db.q("INSERT INTO categories (user_id, name, icon, color) VALUES (?, ?, ?, ?) RETURNING id"),
		userID, name, icon, color,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// EnsureCategory returns the user's category with the given name, creating it
// when missing. Concurrent callers for the same name get the same row.
func (db *DB) EnsureCategory(ctx context.Context, userID int64, name, icon, color string) (*models.Category, error) {
	if _, err := db.conn.ExecContext(ctx,
		db.q("INSERT INTO categories (user_id, name, icon, color) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, name) DO NOTHING"),
		userID, name, icon, color,
	); err != nil {
		return nil, err
	}
	row := db.conn.QueryRowContext(ctx,
		db.q("SELECT "+categoryColumns+" FROM categories WHERE user_id = ? AND name = ?"),
		userID, name,
	)
	return scanCategory(row)
}

// ListCategories returns the user's categories ordered by name.
func (db *DB) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		db.q("SELECT "+categoryColumns+" FROM categories WHERE user_id = ? ORDER BY name"),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanCategory(row *sql.Row) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
