package entity

import (
	"testing"
	"time"

	"github.com/eslsoft/revise/pkg/srs"
)

func TestCardProgressRecordAnswer(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	p := NewCardProgress(7, 11, now)
	if p.Memory.State != srs.StateNew {
		t.Fatalf("fresh progress state = %v, want new", p.Memory.State)
	}
	if p.Accuracy() != 0 {
		t.Errorf("accuracy of unreviewed card = %v, want 0", p.Accuracy())
	}

	m := p.Memory
	m.State = srs.StateLearning
	m.Repetitions = 1
	p.RecordAnswer(m, srs.GradeGood, true, now)

	m.Repetitions = 0
	m.Lapses = 1
	p.RecordAnswer(m, srs.GradeAgain, false, now.Add(24*time.Hour))

	if p.TotalReviews != 2 || p.CorrectCount != 1 {
		t.Errorf("tallies = (%d, %d), want (2, 1)", p.TotalReviews, p.CorrectCount)
	}
	if p.Accuracy() != 0.5 {
		t.Errorf("accuracy = %v, want 0.5", p.Accuracy())
	}
	if len(p.QualityHistory) != 2 || p.QualityHistory[0] != srs.GradeGood || p.QualityHistory[1] != srs.GradeAgain {
		t.Errorf("quality history = %v, want [good again]", p.QualityHistory)
	}
	if !p.UpdatedAt.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("UpdatedAt = %v", p.UpdatedAt)
	}
}
