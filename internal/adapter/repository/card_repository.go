package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

const cardColumns = `id, deck_id, front, back, quiz_types, created_at, updated_at`

type cardRow struct {
	ID        int64     `db:"id"`
	DeckID    int64     `db:"deck_id"`
	Front     string    `db:"front"`
	Back      string    `db:"back"`
	QuizTypes string    `db:"quiz_types"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r cardRow) toEntity() *entity.Card {
	return &entity.Card{
		ID:        r.ID,
		DeckID:    r.DeckID,
		Front:     r.Front,
		Back:      r.Back,
		QuizTypes: splitQuizTypes(r.QuizTypes),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type cardRepository struct {
	db *sqlx.DB
}

// NewCardRepository constructs a sqlx-backed card repository.
func NewCardRepository(db *sqlx.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Create(ctx context.Context, card *entity.Card) (*entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := r.db.Rebind(`
		INSERT INTO cards (deck_id, front, back, quiz_types, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	created := *card
	err := r.db.GetContext(ctx, &created.ID, query,
		card.DeckID, card.Front, card.Back, joinQuizTypes(card.QuizTypes),
		card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return &created, nil
}

func (r *cardRepository) GetByID(ctx context.Context, id int64) (*entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var row cardRow
	query := r.db.Rebind(`SELECT ` + cardColumns + ` FROM cards WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return row.toEntity(), nil
}

func (r *cardRepository) ListByDecks(ctx context.Context, deckIDs []int64) ([]entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := `SELECT ` + cardColumns + ` FROM cards`
	args := []any{}
	if len(deckIDs) > 0 {
		in, inArgs, err := sqlx.In(` WHERE deck_id IN (?)`, deckIDs)
		if err != nil {
			return nil, fmt.Errorf("list cards: %w", err)
		}
		query += in
		args = inArgs
	}
	query += ` ORDER BY id`

	var rows []cardRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return lo.Map(rows, func(row cardRow, _ int) entity.Card { return *row.toEntity() }), nil
}

// unseenCardsSQL selects cards with no learning record for the given
// user. The deck filter and limit are appended per query.
const unseenCardsSQL = `
	FROM cards c
	LEFT JOIN card_progress p ON p.card_id = c.id AND p.user_id = ?
	WHERE p.id IS NULL`

func (r *cardRepository) ListUnseen(ctx context.Context, query *repository.UnseenCardsQuery) ([]entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sqlText := `SELECT c.id, c.deck_id, c.front, c.back, c.quiz_types, c.created_at, c.updated_at` + unseenCardsSQL
	args := []any{query.UserID}

	var err error
	sqlText, args, err = appendDeckFilter(sqlText, args, "c.deck_id", query.DeckIDs)
	if err != nil {
		return nil, fmt.Errorf("list unseen cards: %w", err)
	}
	sqlText += ` ORDER BY c.id`
	if query.Limit > 0 {
		sqlText += ` LIMIT ?`
		args = append(args, query.Limit)
	}

	var rows []cardRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(sqlText), args...); err != nil {
		return nil, fmt.Errorf("list unseen cards: %w", err)
	}
	return lo.Map(rows, func(row cardRow, _ int) entity.Card { return *row.toEntity() }), nil
}

func (r *cardRepository) CountUnseen(ctx context.Context, query *repository.UnseenCardsQuery) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	sqlText := `SELECT COUNT(*)` + unseenCardsSQL
	args := []any{query.UserID}

	var err error
	sqlText, args, err = appendDeckFilter(sqlText, args, "c.deck_id", query.DeckIDs)
	if err != nil {
		return 0, fmt.Errorf("count unseen cards: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(sqlText), args...); err != nil {
		return 0, fmt.Errorf("count unseen cards: %w", err)
	}
	return total, nil
}

func appendDeckFilter(query string, args []any, column string, deckIDs []int64) (string, []any, error) {
	if len(deckIDs) == 0 {
		return query, args, nil
	}
	in, inArgs, err := sqlx.In(` AND `+column+` IN (?)`, deckIDs)
	if err != nil {
		return "", nil, err
	}
	return query + in, append(args, inArgs...), nil
}
