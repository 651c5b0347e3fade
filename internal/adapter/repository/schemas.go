package repository

import "github.com/eslsoft/revise/pkg/filterexpr"

var listWrongAnswersSchema = filterexpr.ResourceSchema{
	Filter: map[string]filterexpr.FilterField{
		"card_id": {
			Kind: filterexpr.KindNumber,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "CardID"},
		},
		"quiz_type": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpEQ: "QuizType",
				filterexpr.OpIN: "QuizTypes",
			},
		},
		"reviewed": {
			Kind: filterexpr.KindBool,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Reviewed"},
		},
		"create_time": {
			Kind: filterexpr.KindTimestamp,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "CreatedFrom",
				filterexpr.OpLTE: "CreatedTo",
			},
		},
	},
	Order: filterexpr.OrderSchema{
		DefaultPrimary:     "create_time",
		DefaultPrimaryDesc: true,
		FallbackKey:        "id",
		FallbackDesc:       true,
		Fields: map[string]filterexpr.OrderField{
			"create_time": {Expr: "created_at"},
			"reviewed":    {Expr: "reviewed"},
			"id":          {Expr: "id"},
		},
	},
}
