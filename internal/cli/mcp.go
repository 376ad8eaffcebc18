package cli

import (
	"time"

	"github.com/brendan.keane/adminrest/internal/logger"
	"github.com/brendan.keane/adminrest/internal/mcp"
	"github.com/brendan.keane/adminrest/pkg/rest"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// MCPHandler handles MCP server commands
type MCPHandler struct {
	logger zerolog.Logger
	serve  func(*mcp.Server) error
}

// NewMCPHandler creates a new MCP command handler
func NewMCPHandler(logger zerolog.Logger) *MCPHandler {
	return &MCPHandler{
		logger: logger.With().Str("handler", "mcp").Logger(),
		serve:  (*mcp.Server).Start,
	}
}

// Execute builds the admin client and serves MCP over stdio
func (h *MCPHandler) Execute(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	if err := cfg.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	defaultVersion(h.logger, cfg, time.Now())

	client, err := rest.NewClient(cfg.ClientConfig(logger.Bridge(h.logger)))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create admin API client")
		return err
	}

	h.logger.Debug().
		Str("store", cfg.Store).
		Str("api_version", cfg.APIVersion).
		Strs("allowed_methods", cfg.MCP.AllowedMethods).
		Msg("starting MCP server")

	return h.serve(mcp.NewServer(h.logger, client, cfg.MCP))
}
