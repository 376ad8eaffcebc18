package cli

import (
	"context"
	"time"

	"github.com/brendan.keane/adminrest/internal/config"
	"github.com/brendan.keane/adminrest/internal/errors"
	"github.com/brendan.keane/adminrest/internal/logger"
	"github.com/brendan.keane/adminrest/internal/validation"
	"github.com/brendan.keane/adminrest/pkg/fetch"
	"github.com/brendan.keane/adminrest/pkg/rest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

// RequestHandler handles the admin API request command
type RequestHandler struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewRequestHandler creates a new request command handler
func NewRequestHandler(logger zerolog.Logger) *RequestHandler {
	return &RequestHandler{
		logger: logger.With().Str("handler", "request").Logger(),
		now:    time.Now,
	}
}

// Execute handles the request command
func (h *RequestHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	if len(args) > 0 {
		cfg.Path = args[0]
	}
	if cfg.Path == "" {
		h.logger.Warn().Msg("no path provided for request")
		return errors.New(errors.ErrorTypeValidation, "path is required").
			WithContext("suggestion", "provide a resource path such as products or orders/123")
	}

	if err := cfg.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("configuration validation failed")
		return err
	}
	defaultVersion(h.logger, cfg, h.now())

	log := logger.ForRequest(h.logger, cfg.Method, cfg.Path)

	clientConfig := cfg.ClientConfig(logger.Bridge(h.logger))
	var registry *prometheus.Registry
	if cfg.Verbose {
		registry = prometheus.NewRegistry()
		clientConfig.Metrics = fetch.NewMetrics(registry)
	}

	client, err := rest.NewClient(clientConfig)
	if err != nil {
		log.Error().Err(err).Msg("failed to create admin API client")
		return err
	}

	opts, err := cfg.RequestOptions()
	if err != nil {
		return err
	}

	presenter := newPresenter(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)

	req, err := client.BuildRequest(cfg.Method, cfg.Path, opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to build request")
		return err
	}

	if cfg.DryRun {
		log.Debug().Str("url", req.URL).Msg("dry run, request not sent")
		presenter.showDryRun(req)
		return nil
	}
	if cfg.Verbose {
		presenter.showRequest(req)
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), requestTimeout)
	defer cancel()

	log.Debug().Str("url", req.URL).Int("retries", cfg.Retries).Msg("sending request")
	resp, err := client.Request(ctx, cfg.Method, cfg.Path, opts)
	if err != nil {
		log.Error().Err(err).Msg("request failed")
		return err
	}
	defer resp.Body.Close()

	if err := presenter.showResponse(resp); err != nil {
		return err
	}
	if registry != nil {
		presenter.showAttempts(registry)
	}
	return nil
}

// defaultVersion fills in the release current at now when no version was given
func defaultVersion(log zerolog.Logger, cfg *config.Config, now time.Time) {
	if cfg.APIVersion != "" {
		return
	}
	cfg.APIVersion = validation.CurrentAPIVersion(now)
	log.Debug().Str("api_version", cfg.APIVersion).Msg("using current API version")
}

// loadConfig prefers a config stored on the command context over the flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg, ok := config.FromContext(commandContext(cmd)); ok {
		return cfg, nil
	}
	return config.LoadFromFlags(cmd.Flags())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
