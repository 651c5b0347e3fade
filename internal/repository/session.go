package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eslsoft/revise/internal/entity"
)

// ListSessionQuery holds parameters for listing study sessions.
type ListSessionQuery struct {
	Pagination

	UserID   int64
	Statuses []entity.SessionStatus // empty = any status
	From     time.Time              // StartedAt lower bound, zero = unbounded
	To       time.Time              // StartedAt upper bound, zero = unbounded
}

// StudySessionRepository abstracts persistence for study sessions and
// their ordered card lists.
type StudySessionRepository interface {
	Create(ctx context.Context, session *entity.StudySession) (*entity.StudySession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StudySession, error)
	// Update persists the session row (cursor, tallies, status). The
	// card list is immutable after Create.
	Update(ctx context.Context, session *entity.StudySession) (*entity.StudySession, error)
	List(ctx context.Context, query *ListSessionQuery) ([]entity.StudySession, int64, error)
}
