package model

import (
	"encoding/json"
	"math"
)

// Wire field names of the configuration payload. The presentation layer
// depends on them verbatim.
const (
	FieldBuildAmount   = "UNPROMPTED_CHANCE_BUILD_AMOUNT"
	FieldRollInterval  = "UNPROMPTED_ROLL_INTERVAL_SECONDS"
	FieldBuildInterval = "UNPROMPTED_CHANCE_BUILD_INTERVAL_SECONDS"
	FieldMultipliers   = "unpromptedTimePeriods_multipliers"
)

// Configuration is a validated, immutable set of generator parameters.
// The zero value is not valid; use NewConfiguration.
type Configuration struct {
	buildAmount          float64
	rollIntervalSeconds  float64
	buildIntervalSeconds float64
	multipliers          [NumPeriods]float64
}

// NewConfiguration validates the parameters and returns a Configuration.
func NewConfiguration(buildAmount, rollIntervalSeconds, buildIntervalSeconds float64, multipliers [NumPeriods]float64) (Configuration, error) {
	if !finite(buildAmount) || buildAmount <= 0 {
		return Configuration{}, Errorf(InvalidConfiguration, FieldBuildAmount, "must be a positive number, got %v", buildAmount)
	}
	if !finite(rollIntervalSeconds) || rollIntervalSeconds <= 0 {
		return Configuration{}, Errorf(InvalidConfiguration, FieldRollInterval, "must be a positive number, got %v", rollIntervalSeconds)
	}
	if !finite(buildIntervalSeconds) || buildIntervalSeconds <= 0 {
		return Configuration{}, Errorf(InvalidConfiguration, FieldBuildInterval, "must be a positive number, got %v", buildIntervalSeconds)
	}
	for _, p := range Periods {
		m := multipliers[p]
		if !finite(m) || m < 0 {
			return Configuration{}, Errorf(InvalidConfiguration, FieldMultipliers+"."+p.String(), "must be a non-negative number, got %v", m)
		}
	}

	return Configuration{
		buildAmount:          buildAmount,
		rollIntervalSeconds:  rollIntervalSeconds,
		buildIntervalSeconds: buildIntervalSeconds,
		multipliers:          multipliers,
	}, nil
}

// DefaultConfiguration returns the stock parameters the generator ships with.
func DefaultConfiguration() Configuration {
	return Configuration{
		buildAmount:          0.2,
		rollIntervalSeconds:  300,
		buildIntervalSeconds: 300,
		multipliers:          [NumPeriods]float64{1.0, 6.0, 8.4, 10.5},
	}
}

func (c Configuration) BuildAmount() float64          { return c.buildAmount }
func (c Configuration) RollIntervalSeconds() float64  { return c.rollIntervalSeconds }
func (c Configuration) BuildIntervalSeconds() float64 { return c.buildIntervalSeconds }

// Multiplier returns the configured activity multiplier for p.
func (c Configuration) Multiplier(p Period) float64 {
	if !p.Valid() {
		return 0
	}
	return c.multipliers[p]
}

// WithMultiplier returns a copy of c with p's multiplier replaced.
func (c Configuration) WithMultiplier(p Period, m float64) (Configuration, error) {
	mults := c.multipliers
	if p.Valid() {
		mults[p] = m
	}
	return NewConfiguration(c.buildAmount, c.rollIntervalSeconds, c.buildIntervalSeconds, mults)
}

// MarshalJSON encodes the configuration with its wire field names.
func (c Configuration) MarshalJSON() ([]byte, error) {
	mults := make(map[string]float64, NumPeriods)
	for _, p := range Periods {
		mults[p.String()] = c.multipliers[p]
	}
	return json.Marshal(map[string]any{
		FieldBuildAmount:   c.buildAmount,
		FieldRollInterval:  c.rollIntervalSeconds,
		FieldBuildInterval: c.buildIntervalSeconds,
		FieldMultipliers:   mults,
	})
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
