package config

import (
	"testing"
	"time"

	"github.com/brendan.keane/adminrest/pkg/rest"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "GET", cfg.Method)
	assert.Equal(t, "https", cfg.Scheme)
	assert.Equal(t, time.Second, cfg.RetryWait)
	assert.False(t, cfg.DryRun)
}

func TestLoadFromFlags(t *testing.T) {
	flags := newFlags(t,
		"-s", "my-shop.myshopify.com",
		"-t", "tok",
		"--api-version", "2024-04",
		"-X", "post",
		"-H", "X-One: 1",
		"-p", "limit=5",
		"-d", `{"a":1}`,
		"--retries", "2",
		"--retry-wait", "250ms",
		"--rate", "2",
		"--burst", "4",
		"--no-format-paths",
		"--allow-methods", "get,post",
	)

	cfg, err := LoadFromFlags(flags)
	require.NoError(t, err)

	assert.Equal(t, "my-shop.myshopify.com", cfg.Store)
	assert.Equal(t, "tok", cfg.AccessToken)
	assert.Equal(t, "2024-04", cfg.APIVersion)
	assert.Equal(t, "POST", cfg.Method)
	assert.Equal(t, []string{"X-One: 1"}, cfg.Headers)
	assert.Equal(t, []string{"limit=5"}, cfg.QueryParams)
	assert.Equal(t, `{"a":1}`, cfg.Data)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryWait)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 4, cfg.RateBurst)
	assert.True(t, cfg.NoFormatPaths)
	assert.Equal(t, []string{"GET", "POST"}, cfg.MCP.AllowedMethods)
}

func TestLoadFromFlags_EnvFallback(t *testing.T) {
	t.Setenv(EnvStore, "env-shop.myshopify.com")
	t.Setenv(EnvAccessToken, "env-token")
	t.Setenv(EnvAPIVersion, "2024-01")
	t.Setenv(EnvUserAgentPrefix, "env-prefix")

	cfg, err := LoadFromFlags(newFlags(t, "--store", "flag-shop.myshopify.com"))
	require.NoError(t, err)

	assert.Equal(t, "flag-shop.myshopify.com", cfg.Store)
	assert.Equal(t, "env-token", cfg.AccessToken)
	assert.Equal(t, "2024-01", cfg.APIVersion)
	assert.Equal(t, "env-prefix", cfg.UserAgentPrefix)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := NewConfig()
		cfg.Store = "my-shop.myshopify.com"
		cfg.AccessToken = "tok"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing store", mutate: func(c *Config) { c.Store = "" }, wantErr: "store domain is required"},
		{name: "missing token", mutate: func(c *Config) { c.AccessToken = "" }, wantErr: "access token is required"},
		{name: "unsupported method", mutate: func(c *Config) { c.Method = "PATCH" }, wantErr: "invalid HTTP method"},
		{name: "bad allowed method", mutate: func(c *Config) { c.MCP.AllowedMethods = []string{"HEAD"} }, wantErr: "allow-methods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseHeaders(t *testing.T) {
	headers, err := ParseHeaders([]string{"X-One: 1", "X-Multi: a", "X-Multi: b", "X-Multi:c", "X-Empty"})
	require.NoError(t, err)

	assert.Equal(t, "1", headers["X-One"])
	assert.Equal(t, []string{"a", "b", "c"}, headers["X-Multi"])
	assert.Equal(t, "", headers["X-Empty"])

	_, err = ParseHeaders([]string{": value"})
	assert.Error(t, err)

	none, err := ParseHeaders(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestParseSearchParams(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want string
	}{
		{name: "none", raw: nil, want: ""},
		{name: "scalars keep order", raw: []string{"limit=5", "fields=id"}, want: "?limit=5&fields=id"},
		{name: "repeated keys become lists", raw: []string{"ids=1", "ids=2"}, want: "?ids%5B%5D=1&ids%5B%5D=2"},
		{name: "explicit list", raw: []string{"ids[]=1"}, want: "?ids%5B%5D=1"},
		{name: "dotted keys nest", raw: []string{"filter.status=open", "filter.vendor=acme"}, want: "?filter%5Bstatus%5D=open&filter%5Bvendor%5D=acme"},
		{name: "key without value", raw: []string{"flag"}, want: "?flag="},
		{name: "empty key skipped", raw: []string{"=x"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rest.SerializeParams(ParseSearchParams(tt.raw)))
		})
	}
}

func TestConfig_RequestOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Headers = []string{"X-Custom: v"}
	cfg.QueryParams = []string{"limit=1"}
	cfg.Data = `{"a":1}`

	opts, err := cfg.RequestOptions()
	require.NoError(t, err)
	assert.Equal(t, rest.Headers{"X-Custom": "v"}, opts.Headers)
	assert.Equal(t, 1, opts.SearchParams.Len())
	assert.Equal(t, `{"a":1}`, opts.Data)

	cfg.Data = ""
	opts, err = cfg.RequestOptions()
	require.NoError(t, err)
	assert.Nil(t, opts.Data)
}

func TestConfig_ClientConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Store = "my-shop.myshopify.com"
	cfg.AccessToken = "tok"
	cfg.NoFormatPaths = true
	cfg.Retries = 3

	clientCfg := cfg.ClientConfig(nil)
	assert.Equal(t, "my-shop.myshopify.com", clientCfg.StoreDomain)
	assert.True(t, clientCfg.DisablePathFormatting)
	assert.Equal(t, 3, clientCfg.Retries)
	assert.Equal(t, time.Second, clientCfg.DefaultRetryTime)
}
