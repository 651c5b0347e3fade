package cmd

import (
	"testing"
	"time"
)

func Test_seedCards(t *testing.T) {
	cards := seedCards()
	if len(cards) == 0 {
		t.Fatal("expected seed cards")
	}
	now := time.Now()
	fronts := map[string]bool{}
	decks := map[int64]bool{}
	for i := range cards {
		c := cards[i]
		c.Normalize(now)
		if err := c.Validate(); err != nil {
			t.Fatalf("card %q invalid: %v", c.Front, err)
		}
		if fronts[c.Front] {
			t.Fatalf("duplicate front %q", c.Front)
		}
		fronts[c.Front] = true
		decks[c.DeckID] = true
		if c.Back == "" {
			t.Fatalf("card %q has no back", c.Front)
		}
		if len(c.QuizTypes) < 2 {
			t.Fatalf("card %q should support choice and spell, got %v", c.Front, c.QuizTypes)
		}
	}
	if len(decks) < 2 {
		t.Fatalf("expected at least 2 demo decks, got %d", len(decks))
	}
}
