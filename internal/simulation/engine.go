// Package simulation holds the two analytical engines: per-period exact
// distributions and horizon-wide time-bin statistics. Both are pure functions
// of their inputs; nothing is sampled and nothing is retained between calls.
package simulation

import (
	"unprompted-mcp/internal/model"
	"unprompted-mcp/internal/stats"
)

// trialModel is the per-trial view of a configuration for one stretch of
// time: n independent rolls with success probability p.
type trialModel struct {
	Period     model.Period
	Multiplier float64
	N          int
	P          float64
}

// resolveTrials derives (n, p) for a stretch of duration seconds governed by
// period's multiplier.
func resolveTrials(cfg model.Configuration, period model.Period, duration float64) (trialModel, error) {
	mult := cfg.Multiplier(period)

	p, err := cfg.TrialProbability(mult)
	if err != nil {
		return trialModel{}, err
	}
	n, err := cfg.TrialsInDuration(duration)
	if err != nil {
		return trialModel{}, err
	}

	return trialModel{Period: period, Multiplier: mult, N: n, P: p}, nil
}

func (t trialModel) summary() (stats.Summary, error) {
	return stats.Summarize(t.N, t.P)
}
