package store

import (
	"context"
	"database/sql"
)

// Driver is the interface a database backend implements. It contains every
// method the store facade needs.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate brings the schema up to date.
	Migrate(ctx context.Context) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// ChatHistory model related methods.
	CreateChatHistory(ctx context.Context, create *ChatHistory) (*ChatHistory, error)
	ListChatHistories(ctx context.Context, find *FindChatHistory) ([]*ChatHistory, error)
	DeleteChatHistory(ctx context.Context, delete *DeleteChatHistory) error

	// OTP model related methods.
	UpsertOTP(ctx context.Context, upsert *OTP) error
	GetOTP(ctx context.Context, email string) (*OTP, error)
	DeleteOTP(ctx context.Context, email string) error
}
