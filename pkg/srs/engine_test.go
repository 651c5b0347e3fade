package srs

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func reviewMemory(stability, difficulty float64) Memory {
	return Memory{
		State:        StateReview,
		Stability:    stability,
		Difficulty:   difficulty,
		IntervalDays: int(stability),
		Repetitions:  3,
		Due:          testNow,
		LastReview:   testNow.AddDate(0, 0, -int(stability)),
	}
}

func TestNewEngineDefaults(t *testing.T) {
	e := mustEngine(t, Config{})
	cfg := e.Config()
	if cfg.DesiredRetention != 0.9 {
		t.Errorf("DesiredRetention = %v, want 0.9", cfg.DesiredRetention)
	}
	if cfg.MaxIntervalDays != 365 {
		t.Errorf("MaxIntervalDays = %d, want 365", cfg.MaxIntervalDays)
	}
	if cfg.LearningSteps != 2 {
		t.Errorf("LearningSteps = %d, want 2", cfg.LearningSteps)
	}
	if cfg.Weights != DefaultWeights() {
		t.Errorf("Weights not defaulted")
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"retention too high", Config{DesiredRetention: 1.5}, ErrInvalidConfig},
		{"negative retention", Config{DesiredRetention: -0.1}, ErrInvalidConfig},
		{"negative max interval", Config{MaxIntervalDays: -1}, ErrInvalidConfig},
		{"negative learning steps", Config{LearningSteps: -2}, ErrInvalidConfig},
		{"bad weights", Config{Weights: func() Weights { w := DefaultWeights(); w[20] = 99; return w }()}, ErrInvalidWeights},
	}
	for _, c := range cases {
		if _, err := NewEngine(c.cfg); !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestFirstReviewCorrectEntersLearning(t *testing.T) {
	e := mustEngine(t, Config{})
	m := e.Review(NewMemory(testNow), GradeGood, testNow)

	if m.State != StateLearning {
		t.Fatalf("state = %v, want %v", m.State, StateLearning)
	}
	if m.Repetitions != 1 || m.Lapses != 0 {
		t.Errorf("counters = (%d, %d), want (1, 0)", m.Repetitions, m.Lapses)
	}
	assertFloat(t, "stability", m.Stability, DefaultWeights()[2])
	if m.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", m.IntervalDays)
	}
	if want := testNow.Add(24 * time.Hour); !m.Due.Equal(want) {
		t.Errorf("Due = %v, want %v", m.Due, want)
	}
	if !m.LastReview.Equal(testNow) {
		t.Errorf("LastReview = %v, want %v", m.LastReview, testNow)
	}
}

func TestFirstReviewIncorrectIsALapse(t *testing.T) {
	e := mustEngine(t, Config{})
	m := e.Review(NewMemory(testNow), GradeAgain, testNow)

	if m.State != StateRelearning {
		t.Fatalf("state = %v, want %v", m.State, StateRelearning)
	}
	if m.Repetitions != 0 || m.Lapses != 1 {
		t.Errorf("counters = (%d, %d), want (0, 1)", m.Repetitions, m.Lapses)
	}
	if m.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", m.IntervalDays)
	}
}

func TestFirstReviewEasyGraduatesImmediately(t *testing.T) {
	e := mustEngine(t, Config{})
	m := e.Review(NewMemory(testNow), GradeEasy, testNow)

	if m.State != StateReview {
		t.Fatalf("state = %v, want %v", m.State, StateReview)
	}
	// S0(Easy) = 8.2956, and at retention 0.9 the interval equals the
	// stability, rounded.
	if m.IntervalDays != 8 {
		t.Errorf("IntervalDays = %d, want 8", m.IntervalDays)
	}
}

func TestLearningGraduatesAfterConfiguredSteps(t *testing.T) {
	e := mustEngine(t, Config{})
	m := e.Review(NewMemory(testNow), GradeGood, testNow)
	if m.State != StateLearning {
		t.Fatalf("after 1 success state = %v, want learning", m.State)
	}

	next := m.Due
	m = e.Review(m, GradeGood, next)
	if m.State != StateReview {
		t.Fatalf("after 2 successes state = %v, want review", m.State)
	}
	if m.Repetitions != 2 {
		t.Errorf("Repetitions = %d, want 2", m.Repetitions)
	}
	if m.IntervalDays < 1 {
		t.Errorf("IntervalDays = %d, want >= 1", m.IntervalDays)
	}
}

func TestLearningFailureResetsProgress(t *testing.T) {
	e := mustEngine(t, Config{})
	m := e.Review(NewMemory(testNow), GradeGood, testNow)
	m = e.Review(m, GradeAgain, m.Due)

	if m.State != StateLearning {
		t.Fatalf("state = %v, want learning", m.State)
	}
	if m.Repetitions != 0 || m.Lapses != 1 {
		t.Errorf("counters = (%d, %d), want (0, 1)", m.Repetitions, m.Lapses)
	}
}

func TestReviewFailureEntersRelearning(t *testing.T) {
	e := mustEngine(t, Config{})
	before := reviewMemory(20, 5)
	m := e.Review(before, GradeAgain, testNow)

	if m.State != StateRelearning {
		t.Fatalf("state = %v, want relearning", m.State)
	}
	if m.Repetitions != 0 || m.Lapses != 1 {
		t.Errorf("counters = (%d, %d), want (0, 1)", m.Repetitions, m.Lapses)
	}
	if m.Stability >= before.Stability {
		t.Errorf("lapse should shrink stability: %.4f -> %.4f", before.Stability, m.Stability)
	}
	if m.Difficulty <= before.Difficulty {
		t.Errorf("lapse should raise difficulty: %.4f -> %.4f", before.Difficulty, m.Difficulty)
	}
	if m.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", m.IntervalDays)
	}
}

func TestRelearningRecoversToReview(t *testing.T) {
	e := mustEngine(t, Config{})
	m := e.Review(reviewMemory(20, 5), GradeAgain, testNow)
	m = e.Review(m, GradeGood, m.Due)

	if m.State != StateReview {
		t.Fatalf("state = %v, want review", m.State)
	}
	if m.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1 (restarted after lapse)", m.Repetitions)
	}
	if m.Lapses != 1 {
		t.Errorf("Lapses = %d, want 1 (lapses are monotone)", m.Lapses)
	}
}

func TestReviewSuccessExtendsInterval(t *testing.T) {
	e := mustEngine(t, Config{})
	before := reviewMemory(10, 5)
	m := e.Review(before, GradeGood, testNow)

	if m.State != StateReview {
		t.Fatalf("state = %v, want review", m.State)
	}
	if m.Stability <= before.Stability {
		t.Errorf("stability should grow: %.4f -> %.4f", before.Stability, m.Stability)
	}
	if m.IntervalDays <= before.IntervalDays {
		t.Errorf("interval should extend: %d -> %d", before.IntervalDays, m.IntervalDays)
	}
	if m.Repetitions != before.Repetitions+1 {
		t.Errorf("Repetitions = %d, want %d", m.Repetitions, before.Repetitions+1)
	}
}

func TestSameDayReviewStillUpdates(t *testing.T) {
	e := mustEngine(t, Config{})
	before := reviewMemory(10, 5)
	before.LastReview = testNow.Add(-2 * time.Hour)
	m := e.Review(before, GradeGood, testNow)

	if m.Repetitions != before.Repetitions+1 {
		t.Errorf("same-day review must still count: reps %d -> %d", before.Repetitions, m.Repetitions)
	}
	if m.Difficulty == before.Difficulty {
		t.Errorf("same-day review must still update difficulty")
	}
}

func TestClockSkewDoesNotPanic(t *testing.T) {
	e := mustEngine(t, Config{})
	before := reviewMemory(10, 5)
	before.LastReview = testNow.Add(48 * time.Hour) // future last review
	m := e.Review(before, GradeGood, testNow)
	if m.IntervalDays < 1 {
		t.Errorf("IntervalDays = %d, want >= 1", m.IntervalDays)
	}
}

func TestReviewDoesNotMutateInput(t *testing.T) {
	e := mustEngine(t, Config{})
	before := reviewMemory(10, 5)
	saved := before
	_ = e.Review(before, GradeAgain, testNow)
	if before != saved {
		t.Errorf("input memory mutated: %+v != %+v", before, saved)
	}
}

func TestReviewIsDeterministic(t *testing.T) {
	e := mustEngine(t, Config{})
	a := e.Review(reviewMemory(10, 5), GradeGood, testNow)
	b := e.Review(reviewMemory(10, 5), GradeGood, testNow)
	if a != b {
		t.Errorf("same input produced different schedules: %+v vs %+v", a, b)
	}
}

func TestGradeIntervalOrdering(t *testing.T) {
	e := mustEngine(t, Config{})
	ivls := e.NextIntervals(reviewMemory(10, 5), testNow)
	if len(ivls) != 4 {
		t.Fatalf("NextIntervals returned %d entries, want 4", len(ivls))
	}
	if !(ivls[GradeAgain] <= ivls[GradeHard] && ivls[GradeHard] <= ivls[GradeGood] && ivls[GradeGood] <= ivls[GradeEasy]) {
		t.Errorf("interval ordering broken: %v", ivls)
	}
}

func TestStabilityFloor(t *testing.T) {
	e := mustEngine(t, Config{})
	m := reviewMemory(0.2, 9.5)
	for i := 0; i < 5; i++ {
		m = e.Review(m, GradeAgain, m.Due.Add(48*time.Hour))
		if m.Stability < e.Config().MinStability {
			t.Fatalf("stability %.6f fell below floor %.2f", m.Stability, e.Config().MinStability)
		}
		if m.Difficulty > 10 {
			t.Fatalf("difficulty %.4f exceeded 10", m.Difficulty)
		}
	}
}

func TestRetrievabilityLifecycle(t *testing.T) {
	e := mustEngine(t, Config{})
	if got := e.Retrievability(NewMemory(testNow), testNow); got != 0 {
		t.Errorf("retrievability of unreviewed card = %.4f, want 0", got)
	}

	m := reviewMemory(10, 5)
	m.LastReview = testNow.AddDate(0, 0, -10)
	// Ten days after a review of a card with stability 10 → 0.9.
	assertFloat(t, "R after S days", e.Retrievability(m, testNow), 0.9)

	fresh := e.Retrievability(m, m.LastReview)
	if fresh <= e.Retrievability(m, testNow) {
		t.Errorf("retrievability should decay over time")
	}
}
