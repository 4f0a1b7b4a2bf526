package mcp

import (
	"context"
	"fmt"

	"unprompted-mcp/internal/api"
	"unprompted-mcp/internal/model"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// TimeBinsInput is the argument object of simulate_time_bins.
type TimeBinsInput struct {
	UserConfig api.RawConfig `json:"user_config"`
	NumDays    *int          `json:"num_days"`
	Bins       *int          `json:"bins"`
}

// PeriodDistributionInput is the argument object of analyze_period_distribution.
type PeriodDistributionInput struct {
	UserConfig api.RawConfig `json:"user_config"`
}

// RecentRunsInput is the argument object of list_recent_runs.
type RecentRunsInput struct {
	Limit int `json:"limit,omitempty"`
}

const configDescription = "Generator configuration. " +
	model.FieldBuildAmount + ": probability added per build tick. " +
	model.FieldRollInterval + ": seconds between independent rolls. " +
	model.FieldBuildInterval + ": seconds between build ticks. " +
	model.FieldMultipliers + ": activity multiplier (>= 0) for each of Night (00-06), Morning (06-12), Afternoon (12-18), Evening (18-24)."

func (s *Server) registerTools() error {
	timeBinsSchema, err := inputSchema[TimeBinsInput](map[string]string{
		"user_config": configDescription,
		"num_days":    "Number of days in the horizon (positive integer).",
		"bins":        "Number of equal-width bins per 24 hours (positive integer, e.g. 24 for hourly).",
	})
	if err != nil {
		return err
	}
	periodSchema, err := inputSchema[PeriodDistributionInput](map[string]string{
		"user_config": configDescription,
	})
	if err != nil {
		return err
	}
	runsSchema, err := inputSchema[RecentRunsInput](map[string]string{
		"limit": "Maximum number of runs to return (default 20).",
	})
	if err != nil {
		return err
	}

	sdk.AddTool(s.sdk, &sdk.Tool{
		Name: "simulate_time_bins",
		Description: "Compute the expected number of unprompted messages, its standard deviation, and its share of the total for every time bin of a multi-day horizon. \n\n" +
			"Each bin takes the multiplier of the daily period containing its start. Results are exact expectations, not random samples; identical inputs always give identical output.",
		InputSchema: timeBinsSchema,
	}, s.handleTimeBins)

	sdk.AddTool(s.sdk, &sdk.Tool{
		Name: "analyze_period_distribution",
		Description: "Compute the exact binomial distribution of the number of unprompted messages produced in each daily period (Night, Morning, Afternoon, Evening) on a single day, " +
			"with expected count, standard deviation, relative variation (%), trial count and per-trial success probability.",
		InputSchema: periodSchema,
	}, s.handlePeriodDistribution)

	sdk.AddTool(s.sdk, &sdk.Tool{
		Name:        "list_recent_runs",
		Description: "List recently completed calculations, newest first, with their request payloads and headline expected totals.",
		InputSchema: runsSchema,
	}, s.handleRecentRuns)

	return nil
}

func (s *Server) handleTimeBins(ctx context.Context, _ *sdk.CallToolRequest, in TimeBinsInput) (*sdk.CallToolResult, any, error) {
	cfg := in.UserConfig
	return s.respond(ctx, "simulate_time_bins", api.Request{
		UserConfig:      &cfg,
		NumDays:         in.NumDays,
		Bins:            in.Bins,
		CalculationType: api.CalcMainSimulation,
	})
}

func (s *Server) handlePeriodDistribution(ctx context.Context, _ *sdk.CallToolRequest, in PeriodDistributionInput) (*sdk.CallToolResult, any, error) {
	cfg := in.UserConfig
	return s.respond(ctx, "analyze_period_distribution", api.Request{
		UserConfig:      &cfg,
		CalculationType: api.CalcPeriodDistribution,
	})
}

func (s *Server) handleRecentRuns(ctx context.Context, _ *sdk.CallToolRequest, in RecentRunsInput) (*sdk.CallToolResult, any, error) {
	if s.runs == nil {
		return errorResult(model.Errorf(model.InvalidRequestShape, "", "run history is disabled (HISTORY_ENABLED=false)")), nil, nil
	}
	runs, err := s.runs.Recent(ctx, in.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("list runs: %w", err)
	}
	return textResult(map[string]any{"runs": runs, "count": len(runs)}), nil, nil
}

// inputSchema infers T's JSON schema and attaches property descriptions.
func inputSchema[T any](descriptions map[string]string) (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("infer schema for %T: %w", *new(T), err)
	}
	for name, desc := range descriptions {
		if prop, ok := schema.Properties[name]; ok {
			prop.Description = desc
		}
	}
	return schema, nil
}
