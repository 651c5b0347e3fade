package filterexpr

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type testMsg struct {
	filter  string
	orderBy string
}

func (m testMsg) GetFilter() string  { return m.filter }
func (m testMsg) GetOrderBy() string { return m.orderBy }

type orderFields struct {
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

type listRecordsParams struct {
	orderFields

	CardID       *int64
	QuizType     *string
	Reviewed     *bool
	AnswerPrefix *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

var recordsSchema = ResourceSchema{
	Filter: map[string]FilterField{
		"card_id": {
			Kind: KindNumber,
			Ops:  map[Op]string{OpEQ: "CardID"},
		},
		"quiz_type": {
			Kind: KindString,
			Ops:  map[Op]string{OpEQ: "QuizType"},
		},
		"reviewed": {
			Kind: KindBool,
			Ops:  map[Op]string{OpEQ: "Reviewed"},
		},
		"user_answer": {
			Kind: KindString,
			Ops:  map[Op]string{OpSW: "AnswerPrefix"},
		},
		"create_time": {
			Kind: KindTimestamp,
			Ops: map[Op]string{
				OpGTE: "CreatedFrom",
				OpLTE: "CreatedTo",
			},
		},
	},
	Order: OrderSchema{
		DefaultPrimary:     "create_time",
		DefaultPrimaryDesc: true,
		FallbackKey:        "id",
		FallbackDesc:       true,
		Fields: map[string]OrderField{
			"create_time": {Expr: "create_time"},
			"reviewed":    {Expr: "reviewed"},
			"id":          {Expr: "id"},
		},
	},
}

func TestBind_Conjunction(t *testing.T) {
	var params listRecordsParams
	timestamp := "2025-01-01T00:00:00Z"
	msg := testMsg{filter: fmt.Sprintf("card_id == 42 && quiz_type == 'choice' && reviewed == false && create_time >= timestamp('%s')", timestamp)}

	if err := Bind(msg, &params, recordsSchema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	if params.CardID == nil || *params.CardID != 42 {
		t.Fatalf("expected CardID 42, got %v", params.CardID)
	}
	if params.QuizType == nil || *params.QuizType != "choice" {
		t.Fatalf("expected QuizType 'choice', got %v", params.QuizType)
	}
	if params.Reviewed == nil || *params.Reviewed != false {
		t.Fatalf("expected Reviewed false, got %v", params.Reviewed)
	}
	if params.CreatedFrom == nil {
		t.Fatalf("expected CreatedFrom to be set")
	}
	wantTime, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !params.CreatedFrom.Equal(wantTime) {
		t.Fatalf("expected CreatedFrom %v, got %v", wantTime, params.CreatedFrom)
	}
	if params.CreatedTo != nil {
		t.Fatalf("expected CreatedTo to stay nil, got %v", params.CreatedTo)
	}
}

func TestBind_BoolLiteral(t *testing.T) {
	var params listRecordsParams
	if err := Bind(testMsg{filter: "reviewed == true"}, &params, recordsSchema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if params.Reviewed == nil || !*params.Reviewed {
		t.Fatalf("expected Reviewed true, got %v", params.Reviewed)
	}
}

func TestBind_TimestampBounds(t *testing.T) {
	var params listRecordsParams
	msg := testMsg{filter: "create_time >= timestamp('2025-01-01T00:00:00Z') && create_time <= timestamp('2025-02-01T00:00:00Z')"}

	if err := Bind(msg, &params, recordsSchema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if params.CreatedFrom == nil || params.CreatedTo == nil {
		t.Fatalf("expected both bounds set, got %v / %v", params.CreatedFrom, params.CreatedTo)
	}
	if !params.CreatedTo.After(*params.CreatedFrom) {
		t.Fatalf("expected CreatedTo after CreatedFrom")
	}
}

func TestBind_ReceiverStartsWith(t *testing.T) {
	var params listRecordsParams
	if err := Bind(testMsg{filter: "user_answer.startsWith('gat')"}, &params, recordsSchema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if params.AnswerPrefix == nil || *params.AnswerPrefix != "gat" {
		t.Fatalf("expected AnswerPrefix 'gat', got %v", params.AnswerPrefix)
	}
}

func TestBind_DefaultOrder(t *testing.T) {
	var params listRecordsParams
	if err := Bind(testMsg{}, &params, recordsSchema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if params.PrimaryKey != "create_time" || !params.PrimaryDesc {
		t.Fatalf("expected default primary create_time desc, got %s desc=%v", params.PrimaryKey, params.PrimaryDesc)
	}
	if params.SecondaryKey != "id" || !params.SecondaryDesc {
		t.Fatalf("expected fallback id desc, got %s desc=%v", params.SecondaryKey, params.SecondaryDesc)
	}
}

func TestBind_ExplicitOrder(t *testing.T) {
	var params listRecordsParams
	msg := testMsg{orderBy: "reviewed asc, create_time desc"}

	if err := Bind(msg, &params, recordsSchema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if params.PrimaryKey != "reviewed" || params.PrimaryDesc {
		t.Fatalf("expected primary reviewed asc, got %s desc=%v", params.PrimaryKey, params.PrimaryDesc)
	}
	if params.SecondaryKey != "create_time" || !params.SecondaryDesc {
		t.Fatalf("expected secondary create_time desc, got %s desc=%v", params.SecondaryKey, params.SecondaryDesc)
	}
}

func TestBind_OrderRejectsUnknownKey(t *testing.T) {
	var params listRecordsParams
	err := Bind(testMsg{orderBy: "password desc"}, &params, recordsSchema)
	if err == nil || !strings.Contains(err.Error(), "cannot be used for ordering") {
		t.Fatalf("expected ordering error, got %v", err)
	}
}

func TestBind_CustomSetter(t *testing.T) {
	type withPG struct {
		orderFields
		QuizType pgtype.Text
	}

	schema := recordsSchema
	schema.Filter = map[string]FilterField{
		"quiz_type": {
			Kind: KindString,
			Ops:  map[Op]string{OpEQ: "QuizType"},
			Setter: func(field reflect.Value, v any) error {
				text, ok := v.(string)
				if !ok {
					return fmt.Errorf("expected string, got %T", v)
				}
				ft := field.Interface().(pgtype.Text)
				ft.String = text
				ft.Valid = true
				field.Set(reflect.ValueOf(ft))
				return nil
			},
		},
	}

	var params withPG
	if err := Bind(testMsg{filter: "quiz_type == 'spell'"}, &params, schema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if !params.QuizType.Valid || params.QuizType.String != "spell" {
		t.Fatalf("expected quiz_type spell, got %+v", params.QuizType)
	}
}

func TestBind_InOperator(t *testing.T) {
	type params struct {
		orderFields
		QuizTypes []string
	}

	schema := recordsSchema
	schema.Filter = map[string]FilterField{
		"quiz_type": {
			Kind: KindString,
			Ops:  map[Op]string{OpIN: "QuizTypes"},
		},
	}

	var p params
	if err := Bind(testMsg{filter: "quiz_type in ['choice', 'spell']"}, &p, schema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	want := []string{"choice", "spell"}
	if !reflect.DeepEqual(p.QuizTypes, want) {
		t.Fatalf("expected QuizTypes %v, got %v", want, p.QuizTypes)
	}
}

func TestBind_Errors(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   string
	}{
		{"unsupported field", "secret == 'x'", "not allowed"},
		{"unsupported operator", "quiz_type >= 'a'", "operator"},
		{"bad literal type", "quiz_type == 1", "expected string"},
		{"bad bool literal", "reviewed == 'yes'", "expected bool"},
		{"bad logical op", "reviewed == true || card_id == 1", "only AND"},
		{"non literal", "card_id <= other_field", "right-hand side"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var params listRecordsParams
			err := Bind(testMsg{filter: tc.filter}, &params, recordsSchema)
			if err == nil {
				t.Fatalf("expected error for %q", tc.filter)
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tc.want)) {
				t.Fatalf("expected error to contain %q, got %v", tc.want, err)
			}
		})
	}
}

func TestBind_ListWrongElementType(t *testing.T) {
	type params struct {
		orderFields
		QuizTypes []string
	}

	schema := recordsSchema
	schema.Filter = map[string]FilterField{
		"quiz_type": {
			Kind: KindString,
			Ops:  map[Op]string{OpIN: "QuizTypes"},
		},
	}

	var p params
	err := Bind(testMsg{filter: "quiz_type in [1]"}, &p, schema)
	if err == nil || !strings.Contains(err.Error(), "list literal elements must be strings") {
		t.Fatalf("expected list literal error, got %v", err)
	}
}

func TestBind_NilBinding(t *testing.T) {
	var params *listRecordsParams
	if err := Bind(testMsg{filter: "reviewed == true"}, params, recordsSchema); err == nil {
		t.Fatalf("expected error when binding is a nil pointer")
	}
}
