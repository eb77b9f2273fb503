package storage

import (
	"context"
	"database/sql"
	"errors"

	"cashgram/internal/models"
)

// GetChatSession returns the session mapped to a chat identity.
func (db *DB) GetChatSession(ctx context.Context, chatID string) (*models.ChatSession, error) {
	var s models.ChatSession
	var token sql.NullString
	err := db.conn.QueryRowContext(ctx,
		db.q("SELECT id, chat_id, user_id, token, active, updated_at FROM chat_sessions WHERE chat_id = ?"),
		chatID,
	).Scan(&s.ID, &s.ChatID, &s.UserID, &token, &s.Active, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Token = token.String
	return &s, nil
}

// UpsertChatSession binds chatID to the user with a fresh token. Any mapping
// the user had to a different chat is replaced, so a user is bound to at
// most one chat and a chat to at most one user.
func (db *DB) UpsertChatSession(ctx context.Context, chatID string, userID int64, token string) error {
	now := db.timestamp()
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			db.q("DELETE FROM chat_sessions WHERE user_id = ? AND chat_id <> ?"),
			userID, chatID,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, db.q(`
			INSERT INTO chat_sessions (chat_id, user_id, token, active, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (chat_id) DO UPDATE SET
				user_id = excluded.user_id,
				token = excluded.token,
				active = excluded.active,
				updated_at = excluded.updated_at
		`), chatID, userID, token, true, now)
		return err
	})
}

// DeactivateChatSession marks the chat's session inactive and clears its token.
func (db *DB) DeactivateChatSession(ctx context.Context, chatID string) error {
	res, err := db.conn.ExecContext(ctx,
		db.q("UPDATE chat_sessions SET active = ?, token = NULL, updated_at = ? WHERE chat_id = ?"),
		false, db.timestamp(), chatID,
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

// DeleteChatSession removes any session for the chat. Missing rows are not an error.
func (db *DB) DeleteChatSession(ctx context.Context, chatID string) error {
	_, err := db.conn.ExecContext(ctx, db.q("DELETE FROM chat_sessions WHERE chat_id = ?"), chatID)
	return err
}
