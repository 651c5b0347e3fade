package srs

import "math"

// The formulas below are FSRS v6. Grades enter them as their numeric
// values (Again=1 .. Easy=4).

// retrievability computes R(t, S) = (1 + factor * t / S) ^ decay.
func (e *Engine) retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+e.factor*elapsedDays/stability, e.decay)
}

// initialStability returns S₀(G) = w[G-1].
func (e *Engine) initialStability(g Grade) float64 {
	return e.cfg.Weights[g-1]
}

// initialDifficulty returns D₀(G) = w[4] - e^(w[5]*(G-1)) + 1, clamped.
func (e *Engine) initialDifficulty(g Grade) float64 {
	return clampDifficulty(e.rawInitialDifficulty(g))
}

func (e *Engine) rawInitialDifficulty(g Grade) float64 {
	w := e.cfg.Weights
	return w[4] - math.Exp(w[5]*float64(g-1)) + 1
}

// nextDifficulty applies the difficulty delta with linear damping and
// mean reversion toward D₀(Easy):
//
//	ΔD  = -w[6] * (G - 3)
//	D'  = D + (10 - D) * ΔD / 9
//	D'' = w[7]*D₀(Easy) + (1-w[7])*D'
func (e *Engine) nextDifficulty(difficulty float64, g Grade) float64 {
	w := e.cfg.Weights
	deltaD := -w[6] * (float64(g) - 3)
	dPrime := difficulty + (10-difficulty)*deltaD/9
	return clampDifficulty(w[7]*e.rawInitialDifficulty(GradeEasy) + (1-w[7])*dPrime)
}

// recallStability computes stability after a successful cross-day recall:
//
//	S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) * (e^((1-R)*w[10]) - 1) * hardPenalty * easyBonus)
func (e *Engine) recallStability(d, s, r float64, g Grade) float64 {
	w := e.cfg.Weights
	hardPenalty := 1.0
	if g == GradeHard {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if g == GradeEasy {
		easyBonus = w[16]
	}
	return s * (1 + math.Exp(w[8])*
		(11-d)*
		math.Pow(s, -w[9])*
		(math.Exp((1-r)*w[10])-1)*
		hardPenalty*easyBonus)
}

// forgetStability computes stability after forgetting, bounded by the
// pre-lapse stability so a lapse never strengthens the memory:
//
//	long  = w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^((1-R)*w[14])
//	short = S / e^(w[17] * w[18])
//	S'    = min(long, short, S)
func (e *Engine) forgetStability(d, s, r float64) float64 {
	w := e.cfg.Weights
	long := w[11] *
		math.Pow(d, -w[12]) *
		(math.Pow(s+1, w[13]) - 1) *
		math.Exp((1-r)*w[14])
	short := s / math.Exp(w[17]*w[18])
	return math.Min(math.Min(long, short), s)
}

// shortTermStability handles same-day reviews:
//
//	SInc = e^(w[17] * (G - 3 + w[18])) * S^(-w[19])
//	SInc = max(SInc, 1) for Good and Easy
//	S'   = S * SInc
func (e *Engine) shortTermStability(s float64, g Grade) float64 {
	w := e.cfg.Weights
	sInc := math.Exp(w[17]*(float64(g)-3+w[18])) * math.Pow(s, -w[19])
	if g == GradeGood || g == GradeEasy {
		sInc = math.Max(sInc, 1.0)
	}
	return e.clampStability(s * sInc)
}

// nextIntervalDays computes I(r, S) = (S / factor) * (r^(1/decay) - 1),
// rounded and clamped to [1, MaxIntervalDays].
func (e *Engine) nextIntervalDays(stability float64) int {
	ivl := stability / e.factor * (math.Pow(e.cfg.DesiredRetention, 1.0/e.decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > e.cfg.MaxIntervalDays {
		days = e.cfg.MaxIntervalDays
	}
	return days
}

// clampStability keeps stability within [MinStability, maxStability].
func (e *Engine) clampStability(s float64) float64 {
	return math.Min(math.Max(s, e.cfg.MinStability), maxStability)
}

// clampDifficulty keeps difficulty within [1, 10].
func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
