package testutil

import (
	"time"

	"github.com/brendan.keane/adminrest/internal/config"
	"github.com/brendan.keane/adminrest/internal/validation"
)

// Test credentials used by NewConfigBuilder
const (
	TestStore       = "test-store.myshopify.com"
	TestAccessToken = "shpat_test_token"
)

// ConfigBuilder provides a fluent interface for building test configurations
type ConfigBuilder struct {
	config *config.Config
}

// NewConfigBuilder starts from config.NewConfig with a test store, token and
// the API version that is current today.
func NewConfigBuilder() *ConfigBuilder {
	cfg := config.NewConfig()
	cfg.Store = TestStore
	cfg.AccessToken = TestAccessToken
	cfg.APIVersion = validation.CurrentAPIVersion(time.Now())
	cfg.RetryWait = time.Millisecond
	return &ConfigBuilder{config: cfg}
}

// WithStore sets the store domain
func (b *ConfigBuilder) WithStore(store string) *ConfigBuilder {
	b.config.Store = store
	return b
}

// WithAccessToken sets the access token
func (b *ConfigBuilder) WithAccessToken(token string) *ConfigBuilder {
	b.config.AccessToken = token
	return b
}

// WithAPIVersion sets the API version
func (b *ConfigBuilder) WithAPIVersion(version string) *ConfigBuilder {
	b.config.APIVersion = version
	return b
}

// WithScheme sets the URL scheme
func (b *ConfigBuilder) WithScheme(scheme string) *ConfigBuilder {
	b.config.Scheme = scheme
	return b
}

// WithMethod sets the HTTP method
func (b *ConfigBuilder) WithMethod(method string) *ConfigBuilder {
	b.config.Method = method
	return b
}

// WithHeaders adds "Name: value" headers
func (b *ConfigBuilder) WithHeaders(headers ...string) *ConfigBuilder {
	b.config.Headers = append(b.config.Headers, headers...)
	return b
}

// WithQueryParams adds key=value query parameters
func (b *ConfigBuilder) WithQueryParams(params ...string) *ConfigBuilder {
	b.config.QueryParams = append(b.config.QueryParams, params...)
	return b
}

// WithData sets the request body
func (b *ConfigBuilder) WithData(data string) *ConfigBuilder {
	b.config.Data = data
	return b
}

// WithRetries sets the retry budget
func (b *ConfigBuilder) WithRetries(retries int) *ConfigBuilder {
	b.config.Retries = retries
	return b
}

// WithVerbose enables verbose output
func (b *ConfigBuilder) WithVerbose() *ConfigBuilder {
	b.config.Verbose = true
	return b
}

// WithIncludeHeaders enables response header output
func (b *ConfigBuilder) WithIncludeHeaders() *ConfigBuilder {
	b.config.IncludeHeaders = true
	return b
}

// WithDryRun prints the request instead of sending it
func (b *ConfigBuilder) WithDryRun() *ConfigBuilder {
	b.config.DryRun = true
	return b
}

// WithAllowedMethods restricts the MCP request tool
func (b *ConfigBuilder) WithAllowedMethods(methods ...string) *ConfigBuilder {
	b.config.MCP.AllowedMethods = methods
	return b
}

// Build returns the configuration
func (b *ConfigBuilder) Build() *config.Config {
	return b.config
}
