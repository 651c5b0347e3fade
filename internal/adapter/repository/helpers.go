package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/pkg/srs"
)

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func joinQuizTypes(types []entity.QuizType) string {
	if len(types) == 0 {
		return ""
	}
	parts := make([]string, len(types))
	for i, qt := range types {
		parts[i] = string(qt)
	}
	return strings.Join(parts, ",")
}

func splitQuizTypes(s string) []entity.QuizType {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	types := make([]entity.QuizType, 0, len(parts))
	for _, part := range parts {
		if qt := entity.ParseQuizType(part); qt != entity.QuizTypeUnspecified {
			types = append(types, qt)
		}
	}
	if len(types) == 0 {
		return nil
	}
	return types
}

// Quality history persists as a JSON array so the column survives driver
// changes and stays readable in ad-hoc queries.
func marshalGrades(grades []srs.Grade) (string, error) {
	if len(grades) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(grades)
	if err != nil {
		return "", fmt.Errorf("marshal quality history: %w", err)
	}
	return string(raw), nil
}

func unmarshalGrades(raw string) ([]srs.Grade, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var grades []srs.Grade
	if err := json.Unmarshal([]byte(raw), &grades); err != nil {
		return nil, fmt.Errorf("unmarshal quality history: %w", err)
	}
	if len(grades) == 0 {
		return nil, nil
	}
	return grades, nil
}
