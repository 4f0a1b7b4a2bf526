package model

import "math"

// trialTolerance absorbs representation error in duration/interval quotients
// so that e.g. 21600/0.3 counts 72000 trials rather than 71999.
const trialTolerance = 1e-12

// TrialProbability is the success probability of a single roll under the
// given period multiplier: the build-up accrued over one roll interval,
// scaled by the multiplier and clamped to [0, 1].
func (c Configuration) TrialProbability(multiplier float64) (float64, error) {
	if c.buildIntervalSeconds <= 0 {
		return 0, Errorf(InvalidConfiguration, FieldBuildInterval, "must be positive")
	}
	if c.rollIntervalSeconds <= 0 {
		return 0, Errorf(InvalidConfiguration, FieldRollInterval, "must be positive")
	}
	if math.IsNaN(multiplier) || multiplier < 0 {
		return 0, Errorf(InvalidConfiguration, FieldMultipliers, "multiplier must be non-negative, got %v", multiplier)
	}

	p := c.buildAmount * multiplier * (c.rollIntervalSeconds / c.buildIntervalSeconds)
	return clamp01(p), nil
}

// PeriodProbability is TrialProbability for p's configured multiplier.
func (c Configuration) PeriodProbability(p Period) (float64, error) {
	return c.TrialProbability(c.Multiplier(p))
}

// TrialsInDuration counts the whole rolls that fit in seconds. Partial rolls
// at the boundary do not count.
func (c Configuration) TrialsInDuration(seconds float64) (int, error) {
	if c.rollIntervalSeconds <= 0 {
		return 0, Errorf(InvalidConfiguration, FieldRollInterval, "must be positive")
	}
	if math.IsNaN(seconds) || seconds < 0 {
		return 0, Errorf(InvalidInput, "", "duration must be non-negative, got %v", seconds)
	}

	q := seconds / c.rollIntervalSeconds
	n := math.Floor(q + q*trialTolerance)
	if n > math.MaxInt32 {
		return 0, Errorf(InvalidConfiguration, FieldRollInterval, "yields %.0f trials, too many to enumerate", n)
	}
	return int(n), nil
}

func clamp01(p float64) float64 {
	switch {
	case math.IsNaN(p), p <= 0:
		return 0
	case p >= 1:
		return 1
	default:
		return p
	}
}
