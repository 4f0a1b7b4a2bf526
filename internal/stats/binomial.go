package stats

import (
	"math"

	"unprompted-mcp/internal/model"

	"gonum.org/v1/gonum/stat/distuv"
)

// Outcome is one point of a discrete distribution over message counts.
type Outcome struct {
	Messages    int     `json:"messages"`
	Probability float64 `json:"probability"`
}

// Summary holds the closed-form moments of a Binomial(n, p).
type Summary struct {
	Expected     float64 `json:"expected_messages"`
	StdDev       float64 `json:"std_dev"`
	RelVariation float64 `json:"rel_variation"` // StdDev as % of Expected
}

// Binomial returns P(X=k) for k = 0..n where X ~ Binomial(n, p).
// Probabilities are evaluated in log-space so large n does not overflow the
// binomial coefficient.
func Binomial(n int, p float64) ([]Outcome, error) {
	if err := checkParams(n, p); err != nil {
		return nil, err
	}

	out := make([]Outcome, n+1)
	for k := range out {
		out[k].Messages = k
	}

	// Degenerate supports: log(0) would poison the PMF with NaN.
	switch {
	case n == 0 || p == 0:
		out[0].Probability = 1
		return out, nil
	case p == 1:
		out[n].Probability = 1
		return out, nil
	}

	dist := distuv.Binomial{N: float64(n), P: p}
	for k := range out {
		out[k].Probability = dist.Prob(float64(k))
	}
	return out, nil
}

// Summarize computes expectation, standard deviation and relative variation.
// RelVariation is 0 when the expectation is 0.
func Summarize(n int, p float64) (Summary, error) {
	if err := checkParams(n, p); err != nil {
		return Summary{}, err
	}

	nf := float64(n)
	s := Summary{
		Expected: nf * p,
		StdDev:   math.Sqrt(nf * p * (1 - p)),
	}
	if s.Expected > 0 {
		s.RelVariation = 100 * s.StdDev / s.Expected
	}
	return s, nil
}

func checkParams(n int, p float64) error {
	if n < 0 {
		return model.Errorf(model.InvalidInput, "", "trial count must be non-negative, got %d", n)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return model.Errorf(model.InvalidInput, "", "success probability must lie in [0, 1], got %v", p)
	}
	return nil
}
