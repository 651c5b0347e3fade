package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/pkg/srs"
)

type progressRow struct {
	ID             int64        `db:"id"`
	UserID         int64        `db:"user_id"`
	CardID         int64        `db:"card_id"`
	State          string       `db:"state"`
	Stability      float64      `db:"stability"`
	Difficulty     float64      `db:"difficulty"`
	IntervalDays   int32        `db:"interval_days"`
	Repetitions    int32        `db:"repetitions"`
	Lapses         int32        `db:"lapses"`
	Due            time.Time    `db:"due"`
	LastReview     sql.NullTime `db:"last_review"`
	TotalReviews   int32        `db:"total_reviews"`
	CorrectCount   int32        `db:"correct_count"`
	QualityHistory string       `db:"quality_history"`
	FirstSeenAt    time.Time    `db:"first_seen_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

// progressColumns is the p-prefixed select list shared by every
// card_progress query; joins never leak other tables' columns into it.
const progressColumns = `p.id, p.user_id, p.card_id, p.state, p.stability, p.difficulty,
	p.interval_days, p.repetitions, p.lapses, p.due, p.last_review,
	p.total_reviews, p.correct_count, p.quality_history, p.first_seen_at, p.updated_at`

func (r progressRow) toEntity() (*entity.CardProgress, error) {
	var state srs.State
	if err := state.UnmarshalText([]byte(r.State)); err != nil {
		return nil, fmt.Errorf("card progress %d: %w", r.ID, err)
	}
	history, err := unmarshalGrades(r.QualityHistory)
	if err != nil {
		return nil, fmt.Errorf("card progress %d: %w", r.ID, err)
	}

	progress := &entity.CardProgress{
		ID:     r.ID,
		UserID: r.UserID,
		CardID: r.CardID,
		Memory: srs.Memory{
			State:        state,
			Stability:    r.Stability,
			Difficulty:   r.Difficulty,
			IntervalDays: int(r.IntervalDays),
			Repetitions:  int(r.Repetitions),
			Lapses:       int(r.Lapses),
			Due:          r.Due,
		},
		TotalReviews:   r.TotalReviews,
		CorrectCount:   r.CorrectCount,
		QualityHistory: history,
		FirstSeenAt:    r.FirstSeenAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.LastReview.Valid {
		progress.Memory.LastReview = r.LastReview.Time
	}
	return progress, nil
}

type progressRepository struct {
	db *sqlx.DB
}

// NewCardProgressRepository constructs a sqlx-backed progress repository.
func NewCardProgressRepository(db *sqlx.DB) repository.CardProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, progress *entity.CardProgress) (*entity.CardProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	history, err := marshalGrades(progress.QualityHistory)
	if err != nil {
		return nil, err
	}

	lastReview := nullTime(&progress.Memory.LastReview)
	query := r.db.Rebind(`
		INSERT INTO card_progress (
			user_id, card_id, state, stability, difficulty,
			interval_days, repetitions, lapses, due, last_review,
			total_reviews, correct_count, quality_history, first_seen_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			state = excluded.state,
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			lapses = excluded.lapses,
			due = excluded.due,
			last_review = excluded.last_review,
			total_reviews = excluded.total_reviews,
			correct_count = excluded.correct_count,
			quality_history = excluded.quality_history,
			updated_at = excluded.updated_at
		RETURNING id`)

	saved := *progress
	err = r.db.GetContext(ctx, &saved.ID, query,
		progress.UserID, progress.CardID,
		progress.Memory.State.String(), progress.Memory.Stability, progress.Memory.Difficulty,
		progress.Memory.IntervalDays, progress.Memory.Repetitions, progress.Memory.Lapses,
		progress.Memory.Due, lastReview,
		progress.TotalReviews, progress.CorrectCount, history,
		progress.FirstSeenAt, progress.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert card progress: %w", err)
	}
	return &saved, nil
}

func (r *progressRepository) FindByUserCard(ctx context.Context, userID, cardID int64) (*entity.CardProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var row progressRow
	query := r.db.Rebind(`SELECT ` + progressColumns + ` FROM card_progress p WHERE p.user_id = ? AND p.card_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID, cardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find card progress: %w", err)
	}
	return row.toEntity()
}

func (r *progressRepository) ListDue(ctx context.Context, query *repository.DueCardsQuery) ([]entity.CardProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sqlText, args, err := dueCardsSQL(`SELECT `+progressColumns, query)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}
	sqlText += ` ORDER BY p.due, p.card_id`
	if query.Limit > 0 {
		sqlText += ` LIMIT ?`
		args = append(args, query.Limit)
	}

	var rows []progressRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(sqlText), args...); err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}

	out := make([]entity.CardProgress, 0, len(rows))
	for _, row := range rows {
		progress, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, *progress)
	}
	return out, nil
}

func (r *progressRepository) CountDue(ctx context.Context, query *repository.DueCardsQuery) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	sqlText, args, err := dueCardsSQL(`SELECT COUNT(*)`, query)
	if err != nil {
		return 0, fmt.Errorf("count due cards: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(sqlText), args...); err != nil {
		return 0, fmt.Errorf("count due cards: %w", err)
	}
	return total, nil
}

func (r *progressRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var total int64
	query := r.db.Rebind(`SELECT COUNT(*) FROM card_progress p WHERE p.user_id = ?`)
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("count card progress: %w", err)
	}
	return total, nil
}

func dueCardsSQL(selectList string, query *repository.DueCardsQuery) (string, []any, error) {
	sqlText := selectList + ` FROM card_progress p`
	if len(query.DeckIDs) > 0 {
		sqlText += ` JOIN cards c ON c.id = p.card_id`
	}
	sqlText += ` WHERE p.user_id = ? AND p.due <= ?`
	args := []any{query.UserID, query.Before}
	return appendDeckFilter(sqlText, args, "c.deck_id", query.DeckIDs)
}
