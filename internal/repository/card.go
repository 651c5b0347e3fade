package repository

import (
	"context"

	"github.com/eslsoft/revise/internal/entity"
)

// UnseenCardsQuery selects cards a user has never reviewed.
type UnseenCardsQuery struct {
	UserID  int64
	DeckIDs []int64 // empty = no deck restriction
	Limit   int32
}

// CardRepository abstracts card lookups. Card authoring lives in an
// external system; the review service reads cards and seeds demo data.
type CardRepository interface {
	Create(ctx context.Context, card *entity.Card) (*entity.Card, error)
	GetByID(ctx context.Context, id int64) (*entity.Card, error)
	ListByDecks(ctx context.Context, deckIDs []int64) ([]entity.Card, error)

	// ListUnseen returns cards with no progress row for the user,
	// ordered by card id ascending.
	ListUnseen(ctx context.Context, query *UnseenCardsQuery) ([]entity.Card, error)
	CountUnseen(ctx context.Context, query *UnseenCardsQuery) (int64, error)
}
