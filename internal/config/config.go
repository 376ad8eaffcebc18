package config

import (
	"context"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/brendan.keane/adminrest/internal/errors"
	"github.com/brendan.keane/adminrest/pkg/fetch"
	"github.com/brendan.keane/adminrest/pkg/rest"
	"github.com/spf13/pflag"
)

// Environment variables read when the matching flag is not set.
const (
	EnvStore           = "ADMINREST_STORE"
	EnvAccessToken     = "ADMINREST_ACCESS_TOKEN"
	EnvAPIVersion      = "ADMINREST_API_VERSION"
	EnvUserAgentPrefix = "ADMINREST_USER_AGENT_PREFIX"
	EnvMCPDescription  = "ADMINREST_MCP_DESCRIPTION"
)

// ValidMethods are the methods the admin API client can send.
var ValidMethods = []string{"GET", "PUT", "POST", "DELETE"}

// Config holds all application configuration
type Config struct {
	// Store connection
	Store           string
	AccessToken     string
	APIVersion      string
	UserAgentPrefix string
	Scheme          string
	NoFormatPaths   bool

	// Request
	Method      string
	Path        string
	Headers     []string
	QueryParams []string
	Data        string

	// Retry and throttling
	Retries   int
	RetryWait time.Duration
	RateLimit float64
	RateBurst int

	// Output
	Verbose        bool
	IncludeHeaders bool
	DryRun         bool

	MCP MCPConfig
}

// MCPConfig holds MCP-specific configuration
type MCPConfig struct {
	Description    string   // Server description for LLM context
	AllowedMethods []string // Methods the request tool may send
}

// contextKey is a custom type for context keys
type contextKey string

// configKey is the context key for storing config
const configKey contextKey = "config"

// WithConfig adds config to context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok
}

// NewConfig creates a Config with default values
func NewConfig() *Config {
	return &Config{
		Method:    "GET",
		Scheme:    rest.DefaultScheme,
		RetryWait: fetch.DefaultRetryWait,
	}
}

// LoadFromFlags creates a Config from command line flags, falling back to
// ADMINREST_* environment variables for the store connection.
func LoadFromFlags(flags *pflag.FlagSet) (*Config, error) {
	config := NewConfig()

	var err error

	if config.Store, err = flags.GetString("store"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get store flag")
	}
	if config.AccessToken, err = flags.GetString("access-token"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get access-token flag")
	}
	if config.APIVersion, err = flags.GetString("api-version"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get api-version flag")
	}
	if config.UserAgentPrefix, err = flags.GetString("user-agent-prefix"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get user-agent-prefix flag")
	}
	if config.Scheme, err = flags.GetString("scheme"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get scheme flag")
	}
	if config.NoFormatPaths, err = flags.GetBool("no-format-paths"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get no-format-paths flag")
	}

	if config.Method, err = flags.GetString("request"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get request flag")
	}
	config.Method = strings.ToUpper(strings.TrimSpace(config.Method))
	if config.Method == "" {
		config.Method = "GET"
	}

	if config.Headers, err = flags.GetStringArray("header"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get header flag")
	}
	if config.QueryParams, err = flags.GetStringArray("param"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get param flag")
	}
	if config.Data, err = flags.GetString("data"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get data flag")
	}

	if config.Retries, err = flags.GetInt("retries"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get retries flag")
	}
	if config.RetryWait, err = flags.GetDuration("retry-wait"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get retry-wait flag")
	}
	if config.RateLimit, err = flags.GetFloat64("rate"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get rate flag")
	}
	if config.RateBurst, err = flags.GetInt("burst"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get burst flag")
	}

	if config.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get verbose flag")
	}
	if config.IncludeHeaders, err = flags.GetBool("include"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get include flag")
	}
	if config.DryRun, err = flags.GetBool("dry-run"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get dry-run flag")
	}

	if config.MCP.Description, err = flags.GetString("mcp-desc"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get mcp-desc flag")
	}
	if config.MCP.AllowedMethods, err = flags.GetStringSlice("allow-methods"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get allow-methods flag")
	}
	for i, method := range config.MCP.AllowedMethods {
		config.MCP.AllowedMethods[i] = strings.ToUpper(strings.TrimSpace(method))
	}

	config.applyEnv()

	return config, nil
}

// applyEnv fills unset connection settings from the environment
func (c *Config) applyEnv() {
	fallback := func(target *string, key string) {
		if *target == "" {
			*target = os.Getenv(key)
		}
	}
	fallback(&c.Store, EnvStore)
	fallback(&c.AccessToken, EnvAccessToken)
	fallback(&c.APIVersion, EnvAPIVersion)
	fallback(&c.UserAgentPrefix, EnvUserAgentPrefix)
	fallback(&c.MCP.Description, EnvMCPDescription)
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if c.Store == "" {
		return errors.New(errors.ErrorTypeConfig, "store domain is required").
			WithContext("field", "store").
			WithContext("suggestion", "use --store or set "+EnvStore)
	}
	if c.AccessToken == "" {
		return errors.New(errors.ErrorTypeConfig, "access token is required").
			WithContext("field", "access-token").
			WithContext("suggestion", "use --access-token or set "+EnvAccessToken)
	}

	if !slices.Contains(ValidMethods, c.Method) {
		return errors.New(errors.ErrorTypeValidation, "invalid HTTP method").
			WithContext("method", c.Method).
			WithContext("valid_methods", ValidMethods)
	}

	for _, method := range c.MCP.AllowedMethods {
		if !slices.Contains(ValidMethods, method) {
			return errors.New(errors.ErrorTypeValidation, "invalid HTTP method in allow-methods").
				WithContext("method", method).
				WithContext("valid_methods", ValidMethods)
		}
	}

	return nil
}

// ClientConfig builds the REST client configuration
func (c *Config) ClientConfig(logger fetch.Logger) rest.ClientConfig {
	return rest.ClientConfig{
		StoreDomain:           c.Store,
		APIVersion:            c.APIVersion,
		AccessToken:           c.AccessToken,
		UserAgentPrefix:       c.UserAgentPrefix,
		Logger:                logger,
		Retries:               c.Retries,
		Scheme:                c.Scheme,
		DefaultRetryTime:      c.RetryWait,
		DisablePathFormatting: c.NoFormatPaths,
		RateLimit:             c.RateLimit,
		RateBurst:             c.RateBurst,
	}
}

// RequestOptions builds the per-call options from the request flags
func (c *Config) RequestOptions() (*rest.RequestOptions, error) {
	headers, err := ParseHeaders(c.Headers)
	if err != nil {
		return nil, err
	}

	opts := &rest.RequestOptions{
		SearchParams: ParseSearchParams(c.QueryParams),
		Headers:      headers,
	}
	if c.Data != "" {
		opts.Data = c.Data
	}
	return opts, nil
}

// ParseHeaders converts "Name: value" strings into headers. Repeated names
// collect into a list.
func ParseHeaders(raw []string) (rest.Headers, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make(rest.Headers, len(raw))
	for _, header := range raw {
		name, value, _ := strings.Cut(header, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.New(errors.ErrorTypeValidation, "header name is empty").
				WithContext("header", header)
		}
		value = strings.TrimSpace(value)

		switch existing := headers[name].(type) {
		case nil:
			headers[name] = value
		case string:
			headers[name] = []string{existing, value}
		case []string:
			headers[name] = append(existing, value)
		}
	}
	return headers, nil
}

// ParseSearchParams converts key=value strings into ordered search params.
// Repeated keys and keys ending in [] become lists; dotted keys nest, so
// "filter.status=open" serializes as filter[status]=open.
func ParseSearchParams(raw []string) *rest.SearchParams {
	if len(raw) == 0 {
		return nil
	}

	params := rest.NewSearchParams()
	for _, param := range raw {
		key, value, _ := strings.Cut(param, "=")
		if key == "" {
			continue
		}
		setParam(params, key, value)
	}
	return params
}

func setParam(params *rest.SearchParams, key, value string) {
	if head, tail, ok := strings.Cut(key, "."); ok && head != "" && tail != "" {
		child, _ := params.Get(head)
		nested, isNested := child.(*rest.SearchParams)
		if !isNested {
			nested = rest.NewSearchParams()
			params.Set(head, nested)
		}
		setParam(nested, tail, value)
		return
	}

	list := strings.HasSuffix(key, "[]")
	key = strings.TrimSuffix(key, "[]")

	existing, ok := params.Get(key)
	switch {
	case !ok && list:
		params.Set(key, []string{value})
	case !ok:
		params.Set(key, value)
	default:
		switch v := existing.(type) {
		case []string:
			params.Set(key, append(v, value))
		case string:
			params.Set(key, []string{v, value})
		default:
			params.Set(key, value)
		}
	}
}
