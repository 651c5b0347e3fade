package repository

import (
	"context"
	"time"

	"github.com/eslsoft/revise/internal/entity"
)

// DueCardsQuery selects learning records whose next review has come due.
type DueCardsQuery struct {
	UserID  int64
	Before  time.Time // due cutoff, usually now
	DeckIDs []int64   // empty = no deck restriction
	Limit   int32
}

// CardProgressRepository abstracts persistence for per-user card
// learning records.
type CardProgressRepository interface {
	// Upsert inserts the record or replaces the existing row for the
	// same (user, card) pair.
	Upsert(ctx context.Context, progress *entity.CardProgress) (*entity.CardProgress, error)
	FindByUserCard(ctx context.Context, userID, cardID int64) (*entity.CardProgress, error)

	// ListDue returns records due before the cutoff, most overdue first.
	ListDue(ctx context.Context, query *DueCardsQuery) ([]entity.CardProgress, error)
	CountDue(ctx context.Context, query *DueCardsQuery) (int64, error)

	CountByUser(ctx context.Context, userID int64) (int64, error)
}
