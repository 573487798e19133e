package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/parleyhq/parley/store"
)

func (d *DB) CreateChatHistory(ctx context.Context, create *store.ChatHistory) (*store.ChatHistory, error) {
	fields := []string{"uid", "user_id", "messages", "summary", "created_ts"}
	args := []any{create.UID, create.UserID, create.Messages, create.Summary, create.CreatedTs}

	stmt := `INSERT INTO chat_history (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create chat_history: %w", err)
	}
	return create, nil
}

func (d *DB) ListChatHistories(ctx context.Context, find *store.FindChatHistory) ([]*store.ChatHistory, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = ?"), append(args, *find.UserID)
	}

	query := `SELECT id, uid, user_id, messages, summary, created_ts FROM chat_history WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat_histories: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ChatHistory, 0)
	for rows.Next() {
		h := &store.ChatHistory{}
		if err := rows.Scan(&h.ID, &h.UID, &h.UserID, &h.Messages, &h.Summary, &h.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan chat_history: %w", err)
		}
		list = append(list, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat_histories: %w", err)
	}
	return list, nil
}

func (d *DB) DeleteChatHistory(ctx context.Context, delete *store.DeleteChatHistory) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM chat_history WHERE id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete chat_history: %w", err)
	}
	return nil
}
