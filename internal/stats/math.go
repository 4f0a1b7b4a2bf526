package stats

import "gonum.org/v1/gonum/floats"

// Percentiles are message-count thresholds of a discrete distribution.
type Percentiles struct {
	P50 int `json:"coin_toss"` // P50
	P85 int `json:"likely"`    // P85
	P95 int `json:"safe_bet"`  // P95
}

// TotalProbability sums the probability mass of a distribution.
func TotalProbability(outcomes []Outcome) float64 {
	probs := make([]float64, len(outcomes))
	for i, o := range outcomes {
		probs[i] = o.Probability
	}
	return floats.Sum(probs)
}

// Quantile returns the smallest message count whose cumulative probability
// reaches q. Outcomes must be ordered by Messages.
func Quantile(outcomes []Outcome, q float64) int {
	if len(outcomes) == 0 {
		return 0
	}

	cum := 0.0
	for _, o := range outcomes {
		cum += o.Probability
		// Tolerate rounding in the accumulated mass.
		if cum >= q-1e-12 {
			return o.Messages
		}
	}
	return outcomes[len(outcomes)-1].Messages
}

// CalculatePercentiles extracts the P50/P85/P95 thresholds.
func CalculatePercentiles(outcomes []Outcome) Percentiles {
	return Percentiles{
		P50: Quantile(outcomes, 0.50),
		P85: Quantile(outcomes, 0.85),
		P95: Quantile(outcomes, 0.95),
	}
}

// Mode returns the most likely message count (lowest on ties).
func Mode(outcomes []Outcome) int {
	best := 0
	bestP := -1.0
	for _, o := range outcomes {
		if o.Probability > bestP {
			best, bestP = o.Messages, o.Probability
		}
	}
	return best
}
