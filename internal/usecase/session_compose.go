package usecase

import (
	"math"

	"github.com/eslsoft/revise/internal/entity"
)

// composeSession draws cards from the new and due pools into one ordered
// session under the user's ratio policy.
//
// The per-type limits cap how many cards each pool contributes and the
// daily goal caps the session total. When one pool is empty the whole
// session comes from the other pool, bounded only by the pool size and
// the daily goal. Cards of both kinds are interleaved proportionally so
// neither kind clusters at the end.
func composeSession(newPool, duePool []entity.SessionCard, settings *entity.ReviewSettings, newLimit, reviewLimit int32) []entity.SessionCard {
	goal := int(settings.DailyGoal)
	r0 := capLen(len(duePool), reviewLimit)
	n0 := capLen(len(newPool), newLimit)

	switch {
	case r0 == 0 && n0 == 0:
		return nil
	case r0 == 0:
		// Only new cards available: ignore the per-type limit, honor
		// the daily goal.
		return interleave(nil, newPool[:capGoal(len(newPool), goal)])
	case n0 == 0:
		return interleave(duePool[:capGoal(len(duePool), goal)], nil)
	}

	total := capGoal(r0+n0, goal)

	var reviewTarget, newTarget int
	if settings.RatioMode == entity.RatioModeCustom {
		reviewTarget = int(math.Round(settings.CustomReviewRatio * float64(total)))
		if reviewTarget > r0 {
			reviewTarget = r0
		}
		newTarget = total - reviewTarget
		if newTarget > n0 {
			newTarget = n0
		}
		// Top up leftover capacity from the review pool.
		if spare := total - reviewTarget - newTarget; spare > 0 {
			reviewTarget += spare
		}
	} else {
		// Normal mode: reviews first, but keep the new-card share at or
		// above the configured floor while the new pool lasts.
		required := int(math.Ceil(settings.MinNewRatio * float64(total)))
		newTarget = total - r0
		if required > newTarget {
			newTarget = required
		}
		if newTarget > n0 {
			newTarget = n0
		}
		reviewTarget = total - newTarget
		if reviewTarget > r0 {
			reviewTarget = r0
		}
	}

	return interleave(duePool[:reviewTarget], newPool[:newTarget])
}

// interleave merges the two card lists proportionally, keeping each
// list's internal order. With 15 reviews and 5 new cards a new card
// lands on every fourth slot rather than at the tail.
func interleave(review, fresh []entity.SessionCard) []entity.SessionCard {
	total := len(review) + len(fresh)
	if total == 0 {
		return nil
	}
	out := make([]entity.SessionCard, 0, total)
	var ri, fi, rErr, fErr int
	for ri < len(review) || fi < len(fresh) {
		rErr += len(review)
		fErr += len(fresh)
		if ri < len(review) && (fi >= len(fresh) || rErr >= fErr) {
			out = append(out, review[ri])
			ri++
			rErr -= total
		} else {
			out = append(out, fresh[fi])
			fi++
			fErr -= total
		}
	}
	return out
}

func capLen(size int, limit int32) int {
	if int(limit) < size {
		return int(limit)
	}
	return size
}

func capGoal(n, goal int) int {
	if goal > 0 && n > goal {
		return goal
	}
	return n
}
