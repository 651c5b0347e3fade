package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

const sessionColumns = `id, user_id, status, current_index, new_count, review_count,
	correct_count, wrong_count, started_at, completed_at`

type sessionRow struct {
	ID           uuid.UUID    `db:"id"`
	UserID       int64        `db:"user_id"`
	Status       string       `db:"status"`
	CurrentIndex int32        `db:"current_index"`
	NewCount     int32        `db:"new_count"`
	ReviewCount  int32        `db:"review_count"`
	CorrectCount int32        `db:"correct_count"`
	WrongCount   int32        `db:"wrong_count"`
	StartedAt    time.Time    `db:"started_at"`
	CompletedAt  sql.NullTime `db:"completed_at"`
}

type sessionCardRow struct {
	SessionID uuid.UUID `db:"session_id"`
	Position  int32     `db:"position"`
	CardID    int64     `db:"card_id"`
	IsNew     bool      `db:"is_new"`
}

func (r sessionRow) toEntity(cards []entity.SessionCard) *entity.StudySession {
	return &entity.StudySession{
		ID:           r.ID,
		UserID:       r.UserID,
		Status:       entity.SessionStatus(r.Status),
		Cards:        cards,
		CurrentIndex: r.CurrentIndex,
		NewCount:     r.NewCount,
		ReviewCount:  r.ReviewCount,
		CorrectCount: r.CorrectCount,
		WrongCount:   r.WrongCount,
		StartedAt:    r.StartedAt,
		CompletedAt:  timePtr(r.CompletedAt),
	}
}

type sessionRepository struct {
	db *sqlx.DB
}

// NewStudySessionRepository constructs a sqlx-backed session repository.
func NewStudySessionRepository(db *sqlx.DB) repository.StudySessionRepository {
	return &sessionRepository{db: db}
}

// Create writes the session row and its ordered card list in one
// transaction so a session never appears with half its cards.
func (r *sessionRepository) Create(ctx context.Context, session *entity.StudySession) (*entity.StudySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	insertSession := tx.Rebind(`
		INSERT INTO study_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = tx.ExecContext(ctx, insertSession,
		session.ID, session.UserID, string(session.Status), session.CurrentIndex,
		session.NewCount, session.ReviewCount, session.CorrectCount, session.WrongCount,
		session.StartedAt, nullTime(session.CompletedAt))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if len(session.Cards) > 0 {
		rows := make([]sessionCardRow, len(session.Cards))
		for i, card := range session.Cards {
			rows[i] = sessionCardRow{
				SessionID: session.ID,
				Position:  int32(i),
				CardID:    card.CardID,
				IsNew:     card.New,
			}
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO session_cards (session_id, position, card_id, is_new)
			VALUES (:session_id, :position, :card_id, :is_new)`, rows)
		if err != nil {
			return nil, fmt.Errorf("create session cards: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	created := *session
	created.Cards = append([]entity.SessionCard(nil), session.Cards...)
	return &created, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StudySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var row sessionRow
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	cards, err := r.loadCards(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return row.toEntity(cards[id]), nil
}

func (r *sessionRepository) Update(ctx context.Context, session *entity.StudySession) (*entity.StudySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := r.db.Rebind(`
		UPDATE study_sessions SET
			status = ?,
			current_index = ?,
			correct_count = ?,
			wrong_count = ?,
			completed_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		string(session.Status), session.CurrentIndex,
		session.CorrectCount, session.WrongCount,
		nullTime(session.CompletedAt), session.ID)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if affected == 0 {
		return nil, entity.ErrUnknownSession
	}

	updated := *session
	updated.Cards = append([]entity.SessionCard(nil), session.Cards...)
	return &updated, nil
}

func (r *sessionRepository) List(ctx context.Context, query *repository.ListSessionQuery) ([]entity.StudySession, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	where := ` WHERE user_id = ?`
	args := []any{query.UserID}

	if len(query.Statuses) > 0 {
		statuses := lo.Map(query.Statuses, func(s entity.SessionStatus, _ int) string { return string(s) })
		in, inArgs, err := sqlx.In(` AND status IN (?)`, statuses)
		if err != nil {
			return nil, 0, fmt.Errorf("list sessions: %w", err)
		}
		where += in
		args = append(args, inArgs...)
	}
	if !query.From.IsZero() {
		where += ` AND started_at >= ?`
		args = append(args, query.From)
	}
	if !query.To.IsZero() {
		where += ` AND started_at < ?`
		args = append(args, query.To)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM study_sessions`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	pageSQL := `SELECT ` + sessionColumns + ` FROM study_sessions` + where + ` ORDER BY started_at DESC, id LIMIT ? OFFSET ?`
	pageArgs := append(args, query.PageSize, query.Offset())

	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(pageSQL), pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	if len(rows) == 0 {
		return []entity.StudySession{}, total, nil
	}

	ids := lo.Map(rows, func(row sessionRow, _ int) uuid.UUID { return row.ID })
	cards, err := r.loadCards(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	sessions := make([]entity.StudySession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, *row.toEntity(cards[row.ID]))
	}
	return sessions, total, nil
}

// loadCards fetches the ordered card lists for a batch of sessions in
// one query.
func (r *sessionRepository) loadCards(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]entity.SessionCard, error) {
	sqlText, args, err := sqlx.In(`
		SELECT session_id, position, card_id, is_new FROM session_cards
		WHERE session_id IN (?)
		ORDER BY session_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("load session cards: %w", err)
	}

	var rows []sessionCardRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(sqlText), args...); err != nil {
		return nil, fmt.Errorf("load session cards: %w", err)
	}

	out := make(map[uuid.UUID][]entity.SessionCard, len(ids))
	for _, row := range rows {
		out[row.SessionID] = append(out[row.SessionID], entity.SessionCard{
			CardID: row.CardID,
			New:    row.IsNew,
		})
	}
	return out, nil
}
