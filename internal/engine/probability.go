package engine

import (
	"fmt"
	"math"
)

// OverUnderLines are the goal lines published with every prediction.
var OverUnderLines = []float64{0.5, 1.5, 2.5, 3.5, 4.5}

// BTTSProbability is the both-teams-to-score probability for a fused
// expected-goals pair, assuming independent Poisson goal counts: one minus
// the probability that at least one side fails to score.
func BTTSProbability(homeXG, awayXG float64) (float64, error) {
	if homeXG < 0 || awayXG < 0 {
		return 0, fmt.Errorf("btts: %w", ErrInvalidExpectancy)
	}

	pHomeNoGoal := math.Exp(-homeXG)
	pAwayNoGoal := math.Exp(-awayXG)

	return 1 - (pHomeNoGoal + pAwayNoGoal - pHomeNoGoal*pAwayNoGoal), nil
}

// OverUnderProbabilities returns over/under probabilities for each line,
// keyed "over_2.5" / "under_2.5", from the total expected goals.
func OverUnderProbabilities(totalXG float64, lines []float64) (map[string]float64, error) {
	if totalXG < 0 {
		return nil, fmt.Errorf("over/under: %w", ErrInvalidExpectancy)
	}
	if len(lines) == 0 {
		lines = OverUnderLines
	}

	out := make(map[string]float64, 2*len(lines))
	for _, line := range lines {
		pUnder := poissonCDF(totalXG, int(line))
		out[fmt.Sprintf("over_%g", line)] = 1 - pUnder
		out[fmt.Sprintf("under_%g", line)] = pUnder
	}
	return out, nil
}

// poissonCDF is P(X <= k) for X ~ Poisson(lambda).
func poissonCDF(lambda float64, k int) float64 {
	sum := 0.0
	term := math.Exp(-lambda)
	for i := 0; i <= k; i++ {
		if i > 0 {
			term *= lambda / float64(i)
		}
		sum += term
	}
	return sum
}
