package simulation

import (
	"fmt"
	"math"

	"unprompted-mcp/internal/model"

	"gonum.org/v1/gonum/floats"
)

// maxTotalBins bounds the horizon so the bin slice stays allocatable.
const maxTotalBins = math.MaxInt32

// TimeBin holds the expected activity of one fixed-width slice of the horizon.
type TimeBin struct {
	Label            string       `json:"time_bin"`
	Day              int          `json:"day"` // 1-based
	MeanMessages     float64      `json:"mean_messages"`
	StdDevMessages   float64      `json:"std_dev_messages"`
	TotalMessages    float64      `json:"total_messages_in_bin"`
	PercentOfTotal   float64      `json:"percentage_of_total"`
	ActivePeriod     model.Period `json:"active_multiplier_period"`
	ActiveMultiplier float64      `json:"active_multiplier_value"`

	// Trial model behind the bin; not part of the wire format.
	NTrials  int     `json:"-"`
	PSuccess float64 `json:"-"`
}

// ComputeTimeBins splits numDays days into binsPer24h equal bins per day and
// reports each bin's expected message count with its share of the horizon
// total. Each bin takes the multiplier of the period containing its start.
func ComputeTimeBins(cfg model.Configuration, numDays, binsPer24h int) ([]TimeBin, error) {
	if numDays <= 0 {
		return nil, model.Errorf(model.InvalidRequestShape, "num_days", "must be a positive integer, got %d", numDays)
	}
	if binsPer24h <= 0 {
		return nil, model.Errorf(model.InvalidRequestShape, "bins", "must be a positive integer, got %d", binsPer24h)
	}

	if numDays > maxTotalBins/binsPer24h {
		return nil, model.Errorf(model.LimitExceeded, "bins", "%d days of %d bins exceed %d total bins", numDays, binsPer24h, maxTotalBins)
	}

	// 1. Geometry. Bin width may be fractional; offsets are derived from
	// whole seconds so that quartile boundaries land exactly.
	width := float64(model.SecondsPerDay) / float64(binsPer24h)
	total := numDays * binsPer24h

	// 2. Per-bin statistics. The per-period model only varies with the
	// period, so resolve it once per period.
	var perPeriod [model.NumPeriods]*trialModel
	bins := make([]TimeBin, total)
	means := make([]float64, total)

	for i := range bins {
		slot := i % binsPer24h
		start := binOffset(slot, binsPer24h)

		period, err := model.PeriodAt(start)
		if err != nil {
			return nil, fmt.Errorf("bin %d: %w", i, err)
		}

		tm := perPeriod[period]
		if tm == nil {
			resolved, err := resolveTrials(cfg, period, width)
			if err != nil {
				return nil, fmt.Errorf("bin %d: %w", i, err)
			}
			tm = &resolved
			perPeriod[period] = tm
		}

		sum, err := tm.summary()
		if err != nil {
			return nil, fmt.Errorf("bin %d: %w", i, err)
		}

		day := i/binsPer24h + 1
		bins[i] = TimeBin{
			Label:            binLabel(day, numDays, start, binOffset(slot+1, binsPer24h)),
			Day:              day,
			MeanMessages:     sum.Expected,
			StdDevMessages:   sum.StdDev,
			ActivePeriod:     period,
			ActiveMultiplier: tm.Multiplier,
			NTrials:          tm.N,
			PSuccess:         tm.P,
		}
		means[i] = sum.Expected
	}

	// 3. Horizon totals and shares.
	horizon := floats.Sum(means)
	for i := range bins {
		bins[i].TotalMessages = bins[i].MeanMessages
		if horizon > 0 {
			bins[i].PercentOfTotal = 100 * bins[i].MeanMessages / horizon
		}
	}

	return bins, nil
}

// HorizonTotal is the expected number of messages across all bins.
func HorizonTotal(bins []TimeBin) float64 {
	totals := make([]float64, len(bins))
	for i, b := range bins {
		totals[i] = b.TotalMessages
	}
	return floats.Sum(totals)
}

// binOffset is the start of slot in seconds since midnight. The product is
// exact in integers and the division is correctly rounded, so a slot that
// starts on a period boundary maps to exactly that boundary.
func binOffset(slot, binsPer24h int) float64 {
	return float64(slot*model.SecondsPerDay) / float64(binsPer24h)
}

// binLabel renders "HH:MM-HH:MM" with an inclusive end minute, prefixed with
// the day number when the horizon spans more than one day.
func binLabel(day, numDays int, start, end float64) string {
	from := int(math.Floor(start))
	to := int(math.Floor(end)) - 1
	if to < from {
		to = from
	}

	label := fmt.Sprintf("%02d:%02d-%02d:%02d", from/3600, (from%3600)/60, to/3600, (to%3600)/60)
	if numDays > 1 {
		return fmt.Sprintf("Day %d %s", day, label)
	}
	return label
}
