// Package srs implements an FSRS-style spaced-repetition memory model.
//
// The engine is a pure function space over Memory values: Review takes a
// memory state, a grade, and a timestamp, and returns the next state.
// Persistence, card identity, and session flow belong to callers.
package srs

import (
	"fmt"
	"math"
	"time"
)

// maxStability caps stability so the power terms in the retention curve
// stay finite (100 years in days).
const maxStability = 36500

// Config configures an Engine. Zero values produce sensible defaults;
// see field comments.
type Config struct {
	Weights          Weights `json:"weights"`           // zero → DefaultWeights
	DesiredRetention float64 `json:"desired_retention"` // zero → 0.9
	MaxIntervalDays  int     `json:"max_interval_days"` // zero → 365

	// LearningSteps is the number of successful answers a card needs in
	// LEARNING before it graduates to REVIEW. Zero → 2. A value of 1
	// graduates cards on their first correct answer.
	LearningSteps int `json:"learning_steps"`

	FirstIntervalDays   int     `json:"first_interval_days"`   // LEARNING interval, zero → 1
	RelearnIntervalDays int     `json:"relearn_interval_days"` // RELEARNING interval, zero → 1
	MinStability        float64 `json:"min_stability"`         // stability floor, zero → 0.1
}

// DefaultConfig returns the configuration the engine runs with when
// nothing is tuned.
func DefaultConfig() Config {
	return Config{
		Weights:             DefaultWeights(),
		DesiredRetention:    0.9,
		MaxIntervalDays:     365,
		LearningSteps:       2,
		FirstIntervalDays:   1,
		RelearnIntervalDays: 1,
		MinStability:        0.1,
	}
}

// Engine schedules reviews at day granularity using the FSRS v6 formulas.
type Engine struct {
	cfg    Config
	decay  float64 // -w[20]
	factor float64 // 0.9^(1/decay) - 1
}

// NewEngine creates an Engine from the given config. Zero-value fields are
// filled with defaults; invalid values return an error wrapping
// ErrInvalidConfig or ErrInvalidWeights.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}

	if cfg.DesiredRetention == 0 {
		cfg.DesiredRetention = 0.9
	}
	if cfg.DesiredRetention <= 0 || cfg.DesiredRetention >= 1 {
		return nil, fmt.Errorf("%w: desired retention %f out of range (0, 1)", ErrInvalidConfig, cfg.DesiredRetention)
	}

	if cfg.MaxIntervalDays == 0 {
		cfg.MaxIntervalDays = 365
	}
	if cfg.MaxIntervalDays < 1 {
		return nil, fmt.Errorf("%w: max interval %d must be at least 1 day", ErrInvalidConfig, cfg.MaxIntervalDays)
	}

	if cfg.LearningSteps == 0 {
		cfg.LearningSteps = 2
	}
	if cfg.LearningSteps < 1 {
		return nil, fmt.Errorf("%w: learning steps %d must be at least 1", ErrInvalidConfig, cfg.LearningSteps)
	}

	if cfg.FirstIntervalDays == 0 {
		cfg.FirstIntervalDays = 1
	}
	if cfg.RelearnIntervalDays == 0 {
		cfg.RelearnIntervalDays = 1
	}
	if cfg.FirstIntervalDays < 1 || cfg.RelearnIntervalDays < 1 {
		return nil, fmt.Errorf("%w: learning intervals must be at least 1 day", ErrInvalidConfig)
	}

	if cfg.MinStability == 0 {
		cfg.MinStability = 0.1
	}
	if cfg.MinStability < 0 {
		return nil, fmt.Errorf("%w: min stability %f must not be negative", ErrInvalidConfig, cfg.MinStability)
	}

	decay := -cfg.Weights[20]
	return &Engine{
		cfg:    cfg,
		decay:  decay,
		factor: math.Pow(0.9, 1.0/decay) - 1.0,
	}, nil
}

// Config returns the engine's effective configuration, defaults applied.
func (e *Engine) Config() Config {
	return e.cfg
}

// Review applies one answer to a memory state and returns the next state.
// The input is never mutated. Correctness of the grade is the caller's
// concern; see Grade.Validate.
func (e *Engine) Review(m Memory, grade Grade, now time.Time) Memory {
	next := m
	e.updateMemory(&next, grade, e.elapsedDays(m, now))
	e.transition(&next, grade)
	next.Due = now.Add(time.Duration(next.IntervalDays) * 24 * time.Hour)
	next.LastReview = now
	return next
}

// Retrievability returns the probability of recalling the card at the
// given time. Cards that were never reviewed have no memory to retrieve
// and report 0.
func (e *Engine) Retrievability(m Memory, now time.Time) float64 {
	if !m.Reviewed() || m.Stability <= 0 {
		return 0
	}
	elapsed := now.Sub(m.LastReview).Hours() / 24.0
	if elapsed < 0 {
		elapsed = 0
	}
	return e.retrievability(elapsed, m.Stability)
}

// NextIntervals previews the interval in days each grade would schedule.
func (e *Engine) NextIntervals(m Memory, now time.Time) map[Grade]int {
	out := make(map[Grade]int, 4)
	for _, g := range []Grade{GradeAgain, GradeHard, GradeGood, GradeEasy} {
		out[g] = e.Review(m, g, now).IntervalDays
	}
	return out
}

// elapsedDays returns the days since the last review, clamped at zero so
// clock skew never produces a negative elapsed time.
func (e *Engine) elapsedDays(m Memory, now time.Time) float64 {
	if !m.Reviewed() {
		return 0
	}
	d := now.Sub(m.LastReview).Hours() / 24.0
	if d < 0 {
		return 0
	}
	return d
}

// updateMemory recomputes stability and difficulty for the answer.
func (e *Engine) updateMemory(m *Memory, grade Grade, elapsedDays float64) {
	if !m.Reviewed() {
		m.Stability = e.clampStability(e.initialStability(grade))
		m.Difficulty = e.initialDifficulty(grade)
		return
	}

	if elapsedDays < 1 {
		// Same-day review: short-term stability curve.
		m.Stability = e.shortTermStability(m.Stability, grade)
	} else {
		r := e.retrievability(elapsedDays, m.Stability)
		if grade == GradeAgain {
			m.Stability = e.clampStability(e.forgetStability(m.Difficulty, m.Stability, r))
		} else {
			m.Stability = e.clampStability(e.recallStability(m.Difficulty, m.Stability, r, grade))
		}
	}
	m.Difficulty = e.nextDifficulty(m.Difficulty, grade)
}

// transition applies the state machine: counters, state, and the interval
// the new state schedules. Stability and difficulty are already updated.
func (e *Engine) transition(m *Memory, grade Grade) {
	if grade == GradeAgain {
		m.Repetitions = 0
		m.Lapses++
		switch m.State {
		case StateLearning:
			m.IntervalDays = e.cfg.FirstIntervalDays
		case StateRelearning:
			m.IntervalDays = e.cfg.RelearnIntervalDays
		default:
			// NEW and REVIEW failures both recover through RELEARNING.
			m.State = StateRelearning
			m.IntervalDays = e.cfg.RelearnIntervalDays
		}
		return
	}

	switch m.State {
	case StateNew, StateLearning:
		if grade == GradeHard && m.State == StateLearning {
			// Hard repeats the current step without advancing.
			m.IntervalDays = e.cfg.FirstIntervalDays
			return
		}
		m.Repetitions++
		if grade == GradeEasy || m.Repetitions >= e.cfg.LearningSteps {
			e.graduate(m)
			return
		}
		m.State = StateLearning
		m.IntervalDays = e.cfg.FirstIntervalDays
	case StateRelearning:
		if grade == GradeHard {
			m.IntervalDays = e.cfg.RelearnIntervalDays
			return
		}
		m.Repetitions++
		e.graduate(m)
	case StateReview:
		m.Repetitions++
		m.IntervalDays = e.nextIntervalDays(m.Stability)
	}
}

// graduate moves a card into the long-term REVIEW cycle.
func (e *Engine) graduate(m *Memory) {
	m.State = StateReview
	m.IntervalDays = e.nextIntervalDays(m.Stability)
}
