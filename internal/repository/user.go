package repository

import (
	"context"

	"github.com/eslsoft/revise/internal/entity"
)

// UserRepository abstracts persistence for users.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}
