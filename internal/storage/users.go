package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cashgram/internal/models"
)

// CreateUser creates a user and its starting categories in one transaction.
// A phone that is already registered yields ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, phone, passwordHash, name string, categories []models.Category) (*models.User, error) {
	u := &models.User{Phone: phone, Name: name, PasswordHash: passwordHash, CreatedAt: db.timestamp()}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			db.q("INSERT INTO users (phone, password_hash, name, created_at) VALUES (?, ?, ?, ?) RETURNING id"),
			phone, passwordHash, nullString(name), u.CreatedAt,
		).Scan(&u.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}

		for _, c := range categories {
			if _, err := tx.ExecContext(ctx,
				db.q("INSERT INTO categories (user_id, name, icon, color) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, name) DO NOTHING"),
				u.ID, c.Name, c.Icon, c.Color,
			); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		db.q("SELECT id, phone, password_hash, name, created_at FROM users WHERE id = ?"),
		id,
	)
	return scanUser(row)
}

// GetUserByPhone retrieves a user by normalized phone number.
func (db *DB) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		db.q("SELECT id, phone, password_hash, name, created_at FROM users WHERE phone = ?"),
		phone,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var name sql.NullString
	if err := row.Scan(&u.ID, &u.Phone, &u.PasswordHash, &name, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Name = name.String
	return &u, nil
}
