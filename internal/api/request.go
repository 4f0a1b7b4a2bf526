// Package api is the validating boundary in front of the engines. It turns a
// loosely-typed request payload into exactly one typed request variant and
// dispatches it.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"unprompted-mcp/internal/model"
)

const (
	CalcMainSimulation     = "main_simulation"
	CalcPeriodDistribution = "period_distribution"
)

// RawConfig is the configuration payload as it arrives on the wire. Pointer
// fields distinguish a missing value from zero.
type RawConfig struct {
	BuildAmount          *float64            `json:"UNPROMPTED_CHANCE_BUILD_AMOUNT,omitempty"`
	RollIntervalSeconds  *float64            `json:"UNPROMPTED_ROLL_INTERVAL_SECONDS,omitempty"`
	BuildIntervalSeconds *float64            `json:"UNPROMPTED_CHANCE_BUILD_INTERVAL_SECONDS,omitempty"`
	Multipliers          map[string]*float64 `json:"unpromptedTimePeriods_multipliers,omitempty"`
}

// Request is the core request envelope shared by both calculation kinds.
type Request struct {
	UserConfig      *RawConfig `json:"user_config"`
	NumDays         *int       `json:"num_days,omitempty"`
	Bins            *int       `json:"bins,omitempty"`
	CalculationType string     `json:"calculation_type,omitempty"`
}

// Variant is one validated request. It is either MainSimulationRequest or
// PeriodDistributionRequest.
type Variant interface {
	Kind() string
	Config() model.Configuration
}

// MainSimulationRequest asks for time-bin statistics over a horizon.
type MainSimulationRequest struct {
	Configuration model.Configuration
	NumDays       int
	BinsPer24h    int
}

func (MainSimulationRequest) Kind() string                  { return CalcMainSimulation }
func (r MainSimulationRequest) Config() model.Configuration { return r.Configuration }

// PeriodDistributionRequest asks for the per-period exact distributions.
type PeriodDistributionRequest struct {
	Configuration model.Configuration
}

func (PeriodDistributionRequest) Kind() string                  { return CalcPeriodDistribution }
func (r PeriodDistributionRequest) Config() model.Configuration { return r.Configuration }

// Decode reads a JSON request envelope. Malformed JSON is reported as
// InvalidRequestShape; a wrongly typed value inside user_config as
// InvalidConfiguration.
func Decode(r io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return Request{}, DecodeError(err, "user_config")
	}
	return req, nil
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(b []byte) (Request, error) {
	return Decode(bytes.NewReader(b))
}

// DecodeError classifies a JSON decoding failure. Type errors below
// configField are configuration errors; everything else is a request shape
// error.
func DecodeError(err error, configField string) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == configField || strings.HasPrefix(field, configField+".") {
			return model.Errorf(model.InvalidConfiguration, strings.TrimPrefix(field, configField+"."), "expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		return model.Errorf(model.InvalidRequestShape, field, "expected %s, got %s", typeErr.Type, typeErr.Value)
	}
	if errors.Is(err, io.EOF) {
		return model.Errorf(model.InvalidRequestShape, "", "empty request body")
	}
	return model.Errorf(model.InvalidRequestShape, "", "malformed JSON: %v", err)
}

// Parse validates the envelope into a typed Variant. Missing calculation_type
// means main_simulation.
func (r Request) Parse() (Variant, error) {
	kind := r.CalculationType
	if kind == "" {
		kind = CalcMainSimulation
	}
	if kind != CalcMainSimulation && kind != CalcPeriodDistribution {
		return nil, model.Errorf(model.InvalidRequestShape, "calculation_type", "unknown calculation_type %q", r.CalculationType)
	}

	if r.UserConfig == nil {
		return nil, model.Errorf(model.InvalidConfiguration, "user_config", "not provided")
	}
	cfg, err := r.UserConfig.Parse()
	if err != nil {
		return nil, err
	}

	if kind == CalcPeriodDistribution {
		return PeriodDistributionRequest{Configuration: cfg}, nil
	}

	if r.NumDays == nil {
		return nil, model.Errorf(model.InvalidRequestShape, "num_days", "required for %s", CalcMainSimulation)
	}
	if *r.NumDays <= 0 {
		return nil, model.Errorf(model.InvalidRequestShape, "num_days", "must be a positive integer, got %d", *r.NumDays)
	}
	if r.Bins == nil {
		return nil, model.Errorf(model.InvalidRequestShape, "bins", "required for %s", CalcMainSimulation)
	}
	if *r.Bins <= 0 {
		return nil, model.Errorf(model.InvalidRequestShape, "bins", "must be a positive integer, got %d", *r.Bins)
	}

	return MainSimulationRequest{Configuration: cfg, NumDays: *r.NumDays, BinsPer24h: *r.Bins}, nil
}

// Parse checks field presence and builds a validated model.Configuration.
func (c RawConfig) Parse() (model.Configuration, error) {
	build, err := required(c.BuildAmount, model.FieldBuildAmount)
	if err != nil {
		return model.Configuration{}, err
	}
	roll, err := required(c.RollIntervalSeconds, model.FieldRollInterval)
	if err != nil {
		return model.Configuration{}, err
	}
	interval, err := required(c.BuildIntervalSeconds, model.FieldBuildInterval)
	if err != nil {
		return model.Configuration{}, err
	}

	if c.Multipliers == nil {
		return model.Configuration{}, model.Errorf(model.InvalidConfiguration, model.FieldMultipliers, "not provided")
	}
	var mults [model.NumPeriods]float64
	for _, p := range model.Periods {
		v, err := required(c.Multipliers[p.String()], model.FieldMultipliers+"."+p.String())
		if err != nil {
			return model.Configuration{}, err
		}
		mults[p] = v
	}

	return model.NewConfiguration(build, roll, interval, mults)
}

func required(v *float64, field string) (float64, error) {
	if v == nil {
		return 0, model.Errorf(model.InvalidConfiguration, field, "missing or not a number")
	}
	return *v, nil
}

// RawFromConfiguration renders a validated configuration back into its wire
// form.
func RawFromConfiguration(cfg model.Configuration) *RawConfig {
	f := func(v float64) *float64 { return &v }
	mults := make(map[string]*float64, model.NumPeriods)
	for _, p := range model.Periods {
		mults[p.String()] = f(cfg.Multiplier(p))
	}
	return &RawConfig{
		BuildAmount:          f(cfg.BuildAmount()),
		RollIntervalSeconds:  f(cfg.RollIntervalSeconds()),
		BuildIntervalSeconds: f(cfg.BuildIntervalSeconds()),
		Multipliers:          mults,
	}
}
