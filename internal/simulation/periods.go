package simulation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"unprompted-mcp/internal/model"
	"unprompted-mcp/internal/stats"
)

// PeriodDistribution is the exact single-day message-count distribution of
// one period.
type PeriodDistribution struct {
	Distribution     []stats.Outcome   `json:"distribution"`
	ExpectedMessages float64           `json:"expected_messages"`
	StdDev           float64           `json:"std_dev"`
	RelVariation     float64           `json:"rel_variation"`
	NTrials          int               `json:"n_trials"`
	PSuccess         float64           `json:"p_success"`
	MostLikely       int               `json:"most_likely_messages"`
	Percentiles      stats.Percentiles `json:"percentiles"`
}

// PeriodDistributions holds one result per period, indexed by model.Period.
// It encodes as a JSON object keyed by period name in calendar order.
type PeriodDistributions [model.NumPeriods]PeriodDistribution

// Get returns the distribution of p.
func (d PeriodDistributions) Get(p model.Period) PeriodDistribution {
	return d[p]
}

func (d PeriodDistributions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range model.Periods {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(p.String())
		val, err := json.Marshal(d[p])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *PeriodDistributions) UnmarshalJSON(b []byte) error {
	var raw map[string]PeriodDistribution
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, p := range model.Periods {
		v, ok := raw[p.String()]
		if !ok {
			return fmt.Errorf("missing period %s", p)
		}
		d[p] = v
	}
	return nil
}

// ComputePeriodDistributions derives, for every period, the binomial
// distribution of messages produced over that period's 6 hours. Any failure
// aborts the whole computation.
func ComputePeriodDistributions(cfg model.Configuration) (PeriodDistributions, error) {
	var out PeriodDistributions

	for _, period := range model.Periods {
		tm, err := resolveTrials(cfg, period, period.Duration())
		if err != nil {
			return PeriodDistributions{}, fmt.Errorf("period %s: %w", period, err)
		}

		dist, err := stats.Binomial(tm.N, tm.P)
		if err != nil {
			return PeriodDistributions{}, fmt.Errorf("period %s: %w", period, err)
		}
		sum, err := tm.summary()
		if err != nil {
			return PeriodDistributions{}, fmt.Errorf("period %s: %w", period, err)
		}

		out[period] = PeriodDistribution{
			Distribution:     dist,
			ExpectedMessages: sum.Expected,
			StdDev:           sum.StdDev,
			RelVariation:     sum.RelVariation,
			NTrials:          tm.N,
			PSuccess:         tm.P,
			MostLikely:       stats.Mode(dist),
			Percentiles:      stats.CalculatePercentiles(dist),
		}
	}

	return out, nil
}
