package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"unprompted-mcp/internal/model"
	"unprompted-mcp/internal/simulation"

	"github.com/rs/zerolog/log"
)

// Limits bound the work a single request may ask for.
type Limits struct {
	MaxNumDays    int
	MaxBinsPer24h int
	MaxTotalBins  int
	MaxTrials     int // per period or per bin
}

// DefaultLimits keeps bins at least one minute wide and horizons at ten years.
func DefaultLimits() Limits {
	return Limits{
		MaxNumDays:    3650,
		MaxBinsPer24h: 1440,
		MaxTotalBins:  525600,
		MaxTrials:     1_000_000,
	}
}

// RunRecord describes one completed computation.
type RunRecord struct {
	Kind     string
	Request  Request
	Elapsed  time.Duration
	Headline float64 // horizon or per-day expected message total
}

// Recorder receives a record of every successful run.
type Recorder interface {
	Record(ctx context.Context, rec RunRecord) error
}

// ErrorBody is the wire shape of a failed request.
type ErrorBody struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// NewErrorBody converts err into the wire error shape.
func NewErrorBody(err error) ErrorBody {
	return ErrorBody{Error: err.Error(), Type: string(model.KindOf(err))}
}

// Service validates requests, enforces limits and runs the matching engine
// under a timeout.
type Service struct {
	limits   Limits
	timeout  time.Duration
	recorder Recorder
}

// NewService creates a Service. A zero timeout disables the deadline; a nil
// recorder disables history.
func NewService(limits Limits, timeout time.Duration, recorder Recorder) *Service {
	return &Service{limits: limits, timeout: timeout, recorder: recorder}
}

// Handle parses req and runs it. The result is []simulation.TimeBin for
// main_simulation and simulation.PeriodDistributions for period_distribution.
func (s *Service) Handle(ctx context.Context, req Request) (any, error) {
	variant, err := req.Parse()
	if err != nil {
		return nil, err
	}
	if err := s.checkLimits(variant); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.run(ctx, variant)
	elapsed := time.Since(start)
	if err != nil {
		log.Warn().Err(err).Str("kind", variant.Kind()).Dur("elapsed", elapsed).Msg("Calculation failed")
		return nil, err
	}

	log.Debug().Str("kind", variant.Kind()).Dur("elapsed", elapsed).Msg("Calculation complete")

	if s.recorder != nil {
		rec := RunRecord{Kind: variant.Kind(), Request: req, Elapsed: elapsed, Headline: headline(res)}
		if err := s.recorder.Record(ctx, rec); err != nil {
			// History is best effort; the result stands.
			log.Warn().Err(err).Msg("Failed to record run")
		}
	}

	return res, nil
}

// HandleJSON decodes payload, runs it and returns the encoded response. On
// failure the returned bytes hold the {error, type} body alongside err.
func (s *Service) HandleJSON(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := DecodeBytes(payload)
	if err == nil {
		var res any
		res, err = s.Handle(ctx, req)
		if err == nil {
			out, mErr := json.Marshal(res)
			if mErr != nil {
				return nil, fmt.Errorf("encode result: %w", mErr)
			}
			return out, nil
		}
	}

	out, _ := json.Marshal(NewErrorBody(err))
	return out, err
}

func (s *Service) run(ctx context.Context, v Variant) (any, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type outcome struct {
		res any
		err error
	}
	done := make(chan outcome, 1)

	// The engines do not check for cancellation; on timeout the goroutine
	// runs to completion and its result is dropped.
	go func() {
		res, err := Dispatch(v)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, model.Errorf(model.Timeout, "", "calculation exceeded %s", s.timeout)
		}
		return nil, model.Errorf(model.Timeout, "", "calculation cancelled: %v", ctx.Err())
	}
}

// Dispatch runs the engine matching v.
func Dispatch(v Variant) (any, error) {
	switch r := v.(type) {
	case MainSimulationRequest:
		return simulation.ComputeTimeBins(r.Configuration, r.NumDays, r.BinsPer24h)
	case PeriodDistributionRequest:
		return simulation.ComputePeriodDistributions(r.Configuration)
	default:
		return nil, model.Errorf(model.InvalidRequestShape, "calculation_type", "unsupported request %T", v)
	}
}

func (s *Service) checkLimits(v Variant) error {
	cfg := v.Config()
	lim := s.limits

	switch r := v.(type) {
	case MainSimulationRequest:
		if lim.MaxNumDays > 0 && r.NumDays > lim.MaxNumDays {
			return model.Errorf(model.LimitExceeded, "num_days", "%d exceeds the limit of %d", r.NumDays, lim.MaxNumDays)
		}
		if lim.MaxBinsPer24h > 0 && r.BinsPer24h > lim.MaxBinsPer24h {
			return model.Errorf(model.LimitExceeded, "bins", "%d exceeds the limit of %d", r.BinsPer24h, lim.MaxBinsPer24h)
		}
		if r.NumDays > math.MaxInt32/r.BinsPer24h {
			return model.Errorf(model.LimitExceeded, "bins", "%d days of %d bins overflow the horizon", r.NumDays, r.BinsPer24h)
		}
		if lim.MaxTotalBins > 0 && r.NumDays*r.BinsPer24h > lim.MaxTotalBins {
			return model.Errorf(model.LimitExceeded, "bins", "%d total bins exceed the limit of %d", r.NumDays*r.BinsPer24h, lim.MaxTotalBins)
		}
		return s.checkTrials(cfg, float64(model.SecondsPerDay)/float64(r.BinsPer24h))
	case PeriodDistributionRequest:
		return s.checkTrials(cfg, model.SecondsPerPeriod)
	}
	return nil
}

func (s *Service) checkTrials(cfg model.Configuration, duration float64) error {
	if s.limits.MaxTrials <= 0 {
		return nil
	}
	n, err := cfg.TrialsInDuration(duration)
	if err != nil {
		return err
	}
	if n > s.limits.MaxTrials {
		return model.Errorf(model.LimitExceeded, model.FieldRollInterval, "%d trials per %.0fs exceed the limit of %d", n, duration, s.limits.MaxTrials)
	}
	return nil
}

func headline(res any) float64 {
	switch r := res.(type) {
	case []simulation.TimeBin:
		return simulation.HorizonTotal(r)
	case simulation.PeriodDistributions:
		total := 0.0
		for _, d := range r {
			total += d.ExpectedMessages
		}
		return total
	}
	return 0
}
