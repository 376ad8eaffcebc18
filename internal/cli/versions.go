package cli

import (
	"fmt"
	"time"

	"github.com/brendan.keane/adminrest/internal/validation"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// VersionsHandler prints the API versions the client accepts
type VersionsHandler struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewVersionsHandler creates a new versions command handler
func NewVersionsHandler(logger zerolog.Logger) *VersionsHandler {
	return &VersionsHandler{
		logger: logger.With().Str("handler", "versions").Logger(),
		now:    time.Now,
	}
}

// Execute prints one version per line, oldest first, marking the current one
func (h *VersionsHandler) Execute(cmd *cobra.Command, _ []string) error {
	now := h.now()
	current := validation.CurrentAPIVersion(now)

	out := cmd.OutOrStdout()
	for _, version := range validation.SupportedAPIVersions(now) {
		if version == current {
			fmt.Fprintf(out, "%s %s\n", version, successStyle.Render("(current)"))
			continue
		}
		fmt.Fprintln(out, version)
	}

	h.logger.Debug().Str("current", current).Msg("listed supported API versions")
	return nil
}
