package users

import (
	"context"
	"errors"
)

// ErrNotFound indicates no user record exists for the given id.
var ErrNotFound = errors.New("user not found")

type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByIDs(ctx context.Context, userIDs []string) (map[string]User, error)
}
