package entity

// PendingCounts reports how much work is waiting in each pool under the
// user's current settings.
type PendingCounts struct {
	NewCount int64 `json:"new_count"`
	DueCount int64 `json:"due_count"`
}

// DailyProgress aggregates a learner's activity over one local day.
type DailyProgress struct {
	Date        string `json:"date"` // YYYY-MM-DD in the user's timezone
	Goal        int32  `json:"goal"`
	Reviewed    int32  `json:"reviewed"` // answered cards across sessions
	Correct     int32  `json:"correct"`
	Sessions    int32  `json:"sessions"`
	GoalReached bool   `json:"goal_reached"`
}
