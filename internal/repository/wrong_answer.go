package repository

import (
	"context"

	"github.com/eslsoft/revise/internal/entity"
)

// ListWrongAnswerQuery holds parameters for listing wrong-answer records.
// Filter accepts a CEL expression over card_id, quiz_type, reviewed and
// create_time; OrderBy accepts create_time and reviewed columns.
type ListWrongAnswerQuery struct {
	Pagination
	FilterOrder

	UserID int64
}

// WrongAnswerRepository abstracts persistence for the wrong-answer book.
type WrongAnswerRepository interface {
	Create(ctx context.Context, record *entity.WrongAnswerRecord) (*entity.WrongAnswerRecord, error)
	GetByID(ctx context.Context, userID, id int64) (*entity.WrongAnswerRecord, error)
	Update(ctx context.Context, record *entity.WrongAnswerRecord) (*entity.WrongAnswerRecord, error)
	List(ctx context.Context, query *ListWrongAnswerQuery) ([]entity.WrongAnswerRecord, int64, error)
}
