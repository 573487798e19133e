// Package store provides database access to users, transcript records, and
// one-time codes through a pluggable driver.
package store

import (
	"context"
	"time"

	"github.com/parleyhq/parley/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	driver Driver

	userCache *cache.Cache // users by email
}

// New creates a new Store over the given driver.
func New(driver Driver) *Store {
	return &Store{
		driver: driver,
		userCache: cache.New(cache.Config{
			DefaultTTL:      10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxItems:        1000,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

// Migrate brings the backing schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	s.userCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(user.Email, user)
	return user, nil
}

// GetUserByEmail returns the user with the given normalized email, or nil
// when no such user exists.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if v, ok := s.userCache.Get(email); ok {
		return v.(*User), nil
	}
	users, err := s.driver.ListUsers(ctx, &FindUser{Email: &email})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	s.userCache.Set(email, users[0])
	return users[0], nil
}

func (s *Store) GetUserByID(ctx context.Context, id int32) (*User, error) {
	users, err := s.driver.ListUsers(ctx, &FindUser{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	user, err := s.GetUserByID(ctx, delete.ID)
	if err == nil && user != nil {
		s.userCache.Delete(user.Email)
	}
	return s.driver.DeleteUser(ctx, delete)
}

func (s *Store) CreateChatHistory(ctx context.Context, create *ChatHistory) (*ChatHistory, error) {
	return s.driver.CreateChatHistory(ctx, create)
}

func (s *Store) ListChatHistories(ctx context.Context, find *FindChatHistory) ([]*ChatHistory, error) {
	return s.driver.ListChatHistories(ctx, find)
}

// GetLatestChatHistory returns the newest transcript record for a user, or
// nil when none exists.
func (s *Store) GetLatestChatHistory(ctx context.Context, userID int32) (*ChatHistory, error) {
	limit := 1
	records, err := s.driver.ListChatHistories(ctx, &FindChatHistory{UserID: &userID, Limit: &limit})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (s *Store) DeleteChatHistory(ctx context.Context, delete *DeleteChatHistory) error {
	return s.driver.DeleteChatHistory(ctx, delete)
}

func (s *Store) UpsertOTP(ctx context.Context, upsert *OTP) error {
	return s.driver.UpsertOTP(ctx, upsert)
}

func (s *Store) GetOTP(ctx context.Context, email string) (*OTP, error) {
	return s.driver.GetOTP(ctx, email)
}

func (s *Store) DeleteOTP(ctx context.Context, email string) error {
	return s.driver.DeleteOTP(ctx, email)
}
