/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/eslsoft/revise/internal/adapter/repository"
	"github.com/eslsoft/revise/internal/app"
	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/infrastructure/config"
	"github.com/eslsoft/revise/internal/infrastructure/database"
	"github.com/eslsoft/revise/internal/usecase"
	"github.com/eslsoft/revise/pkg/srs"
)

const (
	simLearnersKey  = "simulate.learners"
	simDaysKey      = "simulate.days"
	simAccuracyKey  = "simulate.accuracy"
	simCardsKey     = "simulate.cards"
	simRetentionKey = "simulate.retention"
	simSeedKey      = "simulate.rand_seed"
)

// simulateCmd runs the whole stack in a closed loop: virtual learners
// answer daily sessions against an in-memory store while a virtual clock
// advances one day per round.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a closed-loop scheduler simulation (dev)",
	Long: `Seed an in-memory sqlite store with cards, then let N virtual learners
answer one session per simulated day with a fixed accuracy. Prints a
per-learner retention and workload summary. Useful as an executable
sanity check of scheduling behaviour after algorithm changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		learners := viper.GetInt(simLearnersKey)
		days := viper.GetInt(simDaysKey)
		accuracy := viper.GetFloat64(simAccuracyKey)
		cardCount := viper.GetInt(simCardsKey)
		retention := viper.GetFloat64(simRetentionKey)
		randSeed := viper.GetInt64(simSeedKey)

		if learners < 1 || days < 1 || cardCount < 1 {
			return fmt.Errorf("learners, days and cards must all be positive")
		}
		if accuracy < 0 || accuracy > 1 {
			return fmt.Errorf("accuracy %.2f outside [0, 1]", accuracy)
		}

		wallStart := time.Now()
		cfg := &config.Config{
			Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
			Log:      config.LogConfig{Level: "info", Format: "text"},
			SRS:      config.SRSConfig{DesiredRetention: retention},
		}
		c, cleanup, err := app.InitializeWithConfig(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if err := database.Migrate(ctx, c.DB); err != nil {
			return err
		}

		logger := c.Logger
		logger.WithFields(logrus.Fields{
			"learners": learners,
			"days":     days,
			"cards":    cardCount,
			"accuracy": accuracy,
		}).Info("simulation starting")

		now := time.Now().UTC()
		for i := 0; i < cardCount; i++ {
			card := entity.Card{
				DeckID: int64(i%4 + 1),
				Front:  fmt.Sprintf("word-%04d", i+1),
				Back:   fmt.Sprintf("meaning-%04d", i+1),
			}
			card.Normalize(now)
			if _, err := c.Cards.Create(ctx, &card); err != nil {
				return fmt.Errorf("seed card: %w", err)
			}
		}

		// The virtual clock hands every repository read and schedule
		// computation the same simulated instant: 09:00 of the current day.
		start := now.Truncate(24 * time.Hour)
		var day atomic.Int64
		clock := func() time.Time {
			return start.Add(time.Duration(day.Load())*24*time.Hour + 9*time.Hour)
		}

		engine, err := srs.NewEngine(cfg.EngineConfig())
		if err != nil {
			return err
		}
		review := usecase.NewReviewUsecaseWithClock(
			repository.NewUserRepository(c.DB),
			repository.NewCardRepository(c.DB),
			repository.NewCardProgressRepository(c.DB),
			repository.NewStudySessionRepository(c.DB),
			repository.NewWrongAnswerRepository(c.DB),
			repository.NewReviewSettingsRepository(c.DB),
			engine,
			usecase.SessionDefaults{},
			clock,
		)

		reports := make([]learnerSim, learners)
		for i := range reports {
			user := &entity.User{Username: fmt.Sprintf("learner-%02d", i+1), Timezone: "UTC"}
			user.Normalize(now)
			created, err := c.Users.Create(ctx, user)
			if err != nil {
				return fmt.Errorf("seed learner: %w", err)
			}
			reports[i] = learnerSim{
				userID: created.ID,
				name:   created.Username,
				rng:    rand.New(rand.NewSource(randSeed + int64(i))),
			}
		}

		for d := 0; d < days; d++ {
			day.Store(int64(d))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(4)
			for i := range reports {
				r := &reports[i]
				g.Go(func() error { return r.runDay(gctx, review, accuracy) })
			}
			if err := g.Wait(); err != nil {
				return fmt.Errorf("simulated day %d: %w", d+1, err)
			}
		}

		var totalAnswered, totalCorrect int
		for i := range reports {
			r := &reports[i]
			pending, err := review.PendingCounts(ctx, r.userID)
			if err != nil {
				return err
			}
			observed := 0.0
			if r.answered > 0 {
				observed = float64(r.correct) / float64(r.answered)
			}
			logger.WithFields(logrus.Fields{
				"learner":     r.name,
				"sessions":    r.sessions,
				"answered":    r.answered,
				"retention":   fmt.Sprintf("%.3f", observed),
				"due_backlog": pending.DueCount,
				"unseen":      pending.NewCount,
			}).Info("learner finished")
			totalAnswered += r.answered
			totalCorrect += r.correct
		}
		logger.WithFields(logrus.Fields{
			"answers":  totalAnswered,
			"accuracy": fmt.Sprintf("%.3f", float64(totalCorrect)/float64(max(totalAnswered, 1))),
			"elapsed":  time.Since(wallStart).Round(time.Millisecond).String(),
		}).Info("simulation finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Int("learners", 5, "number of virtual learners")
	simulateCmd.Flags().Int("days", 30, "number of simulated days")
	simulateCmd.Flags().Float64("accuracy", 0.9, "probability a virtual learner answers correctly")
	simulateCmd.Flags().Int("cards", 100, "cards seeded into the shared decks")
	simulateCmd.Flags().Float64("retention", 0.9, "scheduler desired retention")
	simulateCmd.Flags().Int64("rand-seed", 1, "base seed for the per-learner RNGs")

	bindFlagToViper(simLearnersKey, simulateCmd.Flags().Lookup("learners"))
	bindFlagToViper(simDaysKey, simulateCmd.Flags().Lookup("days"))
	bindFlagToViper(simAccuracyKey, simulateCmd.Flags().Lookup("accuracy"))
	bindFlagToViper(simCardsKey, simulateCmd.Flags().Lookup("cards"))
	bindFlagToViper(simRetentionKey, simulateCmd.Flags().Lookup("retention"))
	bindFlagToViper(simSeedKey, simulateCmd.Flags().Lookup("rand-seed"))
}

// learnerSim tracks one virtual learner across the simulated days.
type learnerSim struct {
	userID   int64
	name     string
	rng      *rand.Rand
	sessions int
	answered int
	correct  int
}

// runDay starts one session and answers every card in it. Answers are
// Bernoulli draws from the learner's own RNG so runs stay reproducible
// for a fixed seed.
func (r *learnerSim) runDay(ctx context.Context, review usecase.ReviewUsecase, accuracy float64) error {
	session, err := review.StartSession(ctx, r.userID, usecase.StartSessionParams{})
	if err != nil {
		return err
	}
	for int(session.CurrentIndex) < len(session.Cards) {
		slot := session.Cards[session.CurrentIndex]
		correct := r.rng.Float64() < accuracy
		result, err := review.SubmitAnswer(ctx, r.userID, usecase.SubmitAnswerParams{
			SessionID: session.ID,
			CardID:    slot.CardID,
			Correct:   correct,
			QuizType:  entity.QuizTypeChoice,
		})
		if err != nil {
			return err
		}
		session = result.Session
		r.answered++
		if correct {
			r.correct++
		}
	}
	if _, err := review.CompleteSession(ctx, r.userID, session.ID); err != nil {
		return err
	}
	r.sessions++
	return nil
}
