package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"unprompted-mcp/internal/api"
	"unprompted-mcp/internal/history"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// RunLister lists recorded calculations.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]history.Run, error)
}

// Server exposes the calculation service as MCP tools.
type Server struct {
	service *api.Service
	runs    RunLister
	sdk     *sdk.Server
}

// NewServer creates a new MCP server. runs may be nil when history is
// disabled.
func NewServer(service *api.Service, runs RunLister, version string) (*Server, error) {
	s := &Server{
		service: service,
		runs:    runs,
		sdk: sdk.NewServer(&sdk.Implementation{
			Name:    "unprompted-mcp",
			Version: version,
		}, nil),
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the MCP loop over Stdio until the client disconnects or ctx ends.
func (s *Server) Start(ctx context.Context) error {
	log.Info().Msg("MCP Server starting Stdio loop")
	if err := s.sdk.Run(ctx, &sdk.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

// respond runs req through the service and wraps the outcome as tool content.
// Failures become error results carrying the {error, type} body.
func (s *Server) respond(ctx context.Context, tool string, req api.Request) (*sdk.CallToolResult, any, error) {
	res, err := s.service.Handle(ctx, req)
	if err != nil {
		log.Debug().Err(err).Str("tool", tool).Msg("Tool call rejected")
		return errorResult(err), nil, nil
	}
	return textResult(res), nil, nil
}

func textResult(data any) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: formatResult(data)}},
	}
}

func errorResult(err error) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{&sdk.TextContent{Text: formatResult(api.NewErrorBody(err))}},
	}
}

func formatResult(data any) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q, "type": "InternalError"}`, err.Error())
	}
	return string(out)
}
