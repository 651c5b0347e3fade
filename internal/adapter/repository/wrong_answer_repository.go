package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/pkg/filterexpr"
)

const wrongAnswerColumns = `id, user_id, card_id, session_id, quiz_type,
	user_answer, correct_answer, reviewed, reviewed_at, created_at`

type wrongAnswerRow struct {
	ID            int64         `db:"id"`
	UserID        int64         `db:"user_id"`
	CardID        int64         `db:"card_id"`
	SessionID     uuid.NullUUID `db:"session_id"`
	QuizType      string        `db:"quiz_type"`
	UserAnswer    string        `db:"user_answer"`
	CorrectAnswer string        `db:"correct_answer"`
	Reviewed      bool          `db:"reviewed"`
	ReviewedAt    sql.NullTime  `db:"reviewed_at"`
	CreatedAt     time.Time     `db:"created_at"`
}

func (r wrongAnswerRow) toEntity() *entity.WrongAnswerRecord {
	record := &entity.WrongAnswerRecord{
		ID:            r.ID,
		UserID:        r.UserID,
		CardID:        r.CardID,
		QuizType:      entity.QuizType(r.QuizType),
		UserAnswer:    r.UserAnswer,
		CorrectAnswer: r.CorrectAnswer,
		Reviewed:      r.Reviewed,
		ReviewedAt:    timePtr(r.ReviewedAt),
		CreatedAt:     r.CreatedAt,
	}
	if r.SessionID.Valid {
		sessionID := r.SessionID.UUID
		record.SessionID = &sessionID
	}
	return record
}

// listWrongAnswersParams receives the bound CEL filter plus the parsed
// order keys.
type listWrongAnswersParams struct {
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool

	CardID      *int64
	QuizType    *string
	QuizTypes   []string
	Reviewed    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type wrongAnswerRepository struct {
	db *sqlx.DB
}

// NewWrongAnswerRepository constructs a sqlx-backed wrong-answer
// repository.
func NewWrongAnswerRepository(db *sqlx.DB) repository.WrongAnswerRepository {
	return &wrongAnswerRepository{db: db}
}

func (r *wrongAnswerRepository) Create(ctx context.Context, record *entity.WrongAnswerRecord) (*entity.WrongAnswerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sessionID := uuid.NullUUID{}
	if record.SessionID != nil {
		sessionID = uuid.NullUUID{UUID: *record.SessionID, Valid: true}
	}
	query := r.db.Rebind(`
		INSERT INTO wrong_answers (
			user_id, card_id, session_id, quiz_type,
			user_answer, correct_answer, reviewed, reviewed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	created := *record
	err := r.db.GetContext(ctx, &created.ID, query,
		record.UserID, record.CardID, sessionID, string(record.QuizType),
		record.UserAnswer, record.CorrectAnswer,
		record.Reviewed, nullTime(record.ReviewedAt), record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create wrong answer: %w", err)
	}
	return &created, nil
}

func (r *wrongAnswerRepository) GetByID(ctx context.Context, userID, id int64) (*entity.WrongAnswerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var row wrongAnswerRow
	query := r.db.Rebind(`SELECT ` + wrongAnswerColumns + ` FROM wrong_answers WHERE id = ? AND user_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wrong answer: %w", err)
	}
	return row.toEntity(), nil
}

func (r *wrongAnswerRepository) Update(ctx context.Context, record *entity.WrongAnswerRecord) (*entity.WrongAnswerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := r.db.Rebind(`
		UPDATE wrong_answers SET reviewed = ?, reviewed_at = ?
		WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		record.Reviewed, nullTime(record.ReviewedAt), record.ID, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("update wrong answer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update wrong answer: %w", err)
	}
	if affected == 0 {
		return nil, entity.ErrUnknownWrongAnswer
	}

	updated := *record
	return &updated, nil
}

func (r *wrongAnswerRepository) List(ctx context.Context, query *repository.ListWrongAnswerQuery) ([]entity.WrongAnswerRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	var p listWrongAnswersParams
	if err := filterexpr.Bind(query, &p, listWrongAnswersSchema); err != nil {
		return nil, 0, fmt.Errorf("%w: %s", entity.ErrInvalidArgument, err)
	}

	where := ` WHERE user_id = ?`
	args := []any{query.UserID}
	if p.CardID != nil {
		where += ` AND card_id = ?`
		args = append(args, *p.CardID)
	}
	if p.QuizType != nil {
		where += ` AND quiz_type = ?`
		args = append(args, *p.QuizType)
	}
	if len(p.QuizTypes) > 0 {
		in, inArgs, err := sqlx.In(` AND quiz_type IN (?)`, p.QuizTypes)
		if err != nil {
			return nil, 0, fmt.Errorf("list wrong answers: %w", err)
		}
		where += in
		args = append(args, inArgs...)
	}
	if p.Reviewed != nil {
		where += ` AND reviewed = ?`
		args = append(args, *p.Reviewed)
	}
	if p.CreatedFrom != nil {
		where += ` AND created_at >= ?`
		args = append(args, *p.CreatedFrom)
	}
	if p.CreatedTo != nil {
		where += ` AND created_at <= ?`
		args = append(args, *p.CreatedTo)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM wrong_answers`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("list wrong answers: %w", err)
	}

	orderBy := orderClause(listWrongAnswersSchema.Order, p.PrimaryKey, p.PrimaryDesc) + ", " +
		orderClause(listWrongAnswersSchema.Order, p.SecondaryKey, p.SecondaryDesc)
	pageSQL := `SELECT ` + wrongAnswerColumns + ` FROM wrong_answers` + where +
		` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`
	pageArgs := append(args, query.PageSize, query.Offset())

	var rows []wrongAnswerRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(pageSQL), pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("list wrong answers: %w", err)
	}

	records := make([]entity.WrongAnswerRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *row.toEntity())
	}
	return records, total, nil
}

// orderClause resolves a parsed order key through the schema whitelist;
// raw request input never reaches the SQL string.
func orderClause(schema filterexpr.OrderSchema, key string, desc bool) string {
	clause := schema.Fields[key].Expr
	if desc {
		clause += " DESC"
	}
	return clause
}
