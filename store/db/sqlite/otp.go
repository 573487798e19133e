package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/parleyhq/parley/store"
)

func (d *DB) UpsertOTP(ctx context.Context, upsert *store.OTP) error {
	stmt := `INSERT INTO otp (email, code, expires_ts) VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET code = excluded.code, expires_ts = excluded.expires_ts`
	if _, err := d.db.ExecContext(ctx, stmt, upsert.Email, upsert.Code, upsert.ExpiresTs); err != nil {
		return fmt.Errorf("failed to upsert otp: %w", err)
	}
	return nil
}

func (d *DB) GetOTP(ctx context.Context, email string) (*store.OTP, error) {
	o := &store.OTP{}
	err := d.db.QueryRowContext(ctx,
		`SELECT email, code, expires_ts FROM otp WHERE email = ?`, email,
	).Scan(&o.Email, &o.Code, &o.ExpiresTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get otp: %w", err)
	}
	return o, nil
}

func (d *DB) DeleteOTP(ctx context.Context, email string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM otp WHERE email = ?`, email); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}
