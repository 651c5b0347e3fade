package usecase

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

// deckFilter resolves the settings scope to the deck restriction pool
// queries should apply. Nil means no restriction.
func deckFilter(settings *entity.ReviewSettings) []int64 {
	if !settings.DecksRestricted() {
		return nil
	}
	return settings.SelectedDeckIDs
}

// emptySelection reports the degenerate scope: deck-restricted with no
// decks selected. It matches nothing rather than everything.
func emptySelection(settings *entity.ReviewSettings) bool {
	return settings.DecksRestricted() && len(settings.SelectedDeckIDs) == 0
}

// buildPools loads the due and new pools for one session under the
// user's settings. fetchLimit bounds each query; callers pass the most
// the composer could possibly take from one pool.
func (u *reviewUsecase) buildPools(ctx context.Context, userID int64, settings *entity.ReviewSettings, now time.Time, fetchLimit int32) (newPool, duePool []entity.SessionCard, err error) {
	if emptySelection(settings) {
		return nil, nil, nil
	}
	decks := deckFilter(settings)

	dues, err := u.progress.ListDue(ctx, &repository.DueCardsQuery{
		UserID:  userID,
		Before:  now,
		DeckIDs: decks,
		Limit:   fetchLimit,
	})
	if err != nil {
		return nil, nil, err
	}
	duePool = lo.Map(dues, func(p entity.CardProgress, _ int) entity.SessionCard {
		return entity.SessionCard{CardID: p.CardID}
	})

	// The all-learned scope never introduces cards the user has not
	// studied, so the new pool stays empty.
	if settings.Scope == entity.ScopeAllLearned {
		return nil, duePool, nil
	}

	unseen, err := u.cards.ListUnseen(ctx, &repository.UnseenCardsQuery{
		UserID:  userID,
		DeckIDs: decks,
		Limit:   fetchLimit,
	})
	if err != nil {
		return nil, nil, err
	}
	newPool = lo.Map(unseen, func(c entity.Card, _ int) entity.SessionCard {
		return entity.SessionCard{CardID: c.ID, New: true}
	})
	return newPool, duePool, nil
}
