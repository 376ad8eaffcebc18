package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/brendan.keane/adminrest/internal/config"
	"github.com/brendan.keane/adminrest/internal/testutil"
	"github.com/brendan.keane/adminrest/internal/validation"
	"github.com/brendan.keane/adminrest/pkg/rest"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCommand returns a command with every flag registered and parsed from args
func newCommand(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	for _, key := range []string{config.EnvStore, config.EnvAccessToken, config.EnvAPIVersion, config.EnvUserAgentPrefix} {
		t.Setenv(key, "")
	}

	cmd := &cobra.Command{Use: "adminrest"}
	config.RegisterFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}

func serverFlags(server *testutil.AdminServer) []string {
	return []string{"-s", server.URL, "--scheme", "http", "-t", testutil.TestAccessToken, "--retry-wait", "1ms"}
}

func TestRequestHandler_Execute(t *testing.T) {
	handler := NewRequestHandler(zerolog.New(io.Discard))
	current := validation.CurrentAPIVersion(time.Now())

	t.Run("sends the request and prints the body", func(t *testing.T) {
		server := testutil.NewAdminServer(t)
		cmd, stdout, _ := newCommand(t, append(serverFlags(server), "-p", "limit=5", "-p", "ids[]=1", "-p", "ids[]=2")...)

		require.NoError(t, handler.Execute(cmd, []string{"products"}))
		assert.Equal(t, testutil.ProductsJSON, stdout.String())

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodGet, requests[0].Method)
		assert.Equal(t, "/admin/api/"+current+"/products.json?limit=5&ids%5B%5D=1&ids%5B%5D=2", requests[0].URL)
		assert.Equal(t, testutil.TestAccessToken, requests[0].Header.Get(rest.AccessTokenHeader))
		assert.Equal(t, rest.UserAgentSuffix(), requests[0].Header.Get("User-Agent"))
	})

	t.Run("posts data with custom headers", func(t *testing.T) {
		server := testutil.NewAdminServer(t, testutil.MockResponse{StatusCode: http.StatusCreated, Body: `{"product":{"id":1}}`})
		cmd, stdout, _ := newCommand(t, append(serverFlags(server),
			"-X", "post",
			"-d", `{"product":{"title":"Hat"}}`,
			"-H", "X-Trace: abc",
			"--user-agent-prefix", "inventory-sync",
		)...)

		require.NoError(t, handler.Execute(cmd, []string{"products"}))
		assert.Equal(t, `{"product":{"id":1}}`, stdout.String())

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodPost, requests[0].Method)
		assert.Equal(t, `{"product":{"title":"Hat"}}`, requests[0].Body)
		assert.Equal(t, "abc", requests[0].Header.Get("X-Trace"))
		assert.Equal(t, "inventory-sync | "+rest.UserAgentSuffix(), requests[0].Header.Get("User-Agent"))
	})

	t.Run("include headers", func(t *testing.T) {
		server := testutil.NewAdminServer(t, testutil.MockResponse{
			Body:    `{"shop":{}}`,
			Headers: map[string]string{"X-Request-Id": "req-1"},
		})
		cmd, stdout, _ := newCommand(t, append(serverFlags(server), "-i")...)

		require.NoError(t, handler.Execute(cmd, []string{"shop"}))
		out := stdout.String()
		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\n"), out)
		assert.Contains(t, out, "X-Request-Id: req-1\n")
		assert.True(t, strings.HasSuffix(out, "\n\n{\"shop\":{}}"), out)
	})

	t.Run("verbose redacts the token and counts attempts", func(t *testing.T) {
		server := testutil.NewAdminServer(t,
			testutil.MockResponse{StatusCode: http.StatusTooManyRequests, Headers: map[string]string{"Retry-After": "0"}},
			testutil.MockResponse{Body: testutil.ProductsJSON},
		)
		cmd, stdout, stderr := newCommand(t, append(serverFlags(server), "-v", "--retries", "1")...)

		require.NoError(t, handler.Execute(cmd, []string{"products"}))
		assert.Equal(t, testutil.ProductsJSON, stdout.String())

		details := stderr.String()
		assert.Contains(t, details, "[REDACTED]")
		assert.NotContains(t, details, testutil.TestAccessToken)
		assert.Contains(t, details, "200 OK")
		assert.Contains(t, details, "2 response(s), 1 retry(ies)")
		assert.Len(t, server.Requests(), 2)
	})

	t.Run("dry run sends nothing", func(t *testing.T) {
		server := testutil.NewAdminServer(t)
		cmd, stdout, _ := newCommand(t, append(serverFlags(server), "--dry-run", "-X", "PUT", "-d", `{"a":1}`, "--api-version", "unstable")...)

		require.NoError(t, handler.Execute(cmd, []string{"products/7"}))
		assert.Empty(t, server.Requests())

		out := stdout.String()
		assert.True(t, strings.HasPrefix(out, "PUT "+server.URL+"/admin/api/unstable/products/7.json\n"), out)
		assert.Contains(t, out, rest.AccessTokenHeader+": [REDACTED]\n")
		assert.True(t, strings.HasSuffix(out, "\n{\"a\":1}\n"), out)
	})

	t.Run("no format paths", func(t *testing.T) {
		server := testutil.NewAdminServer(t)
		cmd, _, _ := newCommand(t, append(serverFlags(server), "--no-format-paths")...)

		require.NoError(t, handler.Execute(cmd, []string{"custom/endpoint"}))
		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, "/custom/endpoint", requests[0].URL)
	})

	t.Run("missing path", func(t *testing.T) {
		cmd, _, _ := newCommand(t, "-s", testutil.TestStore, "-t", "tok")

		err := handler.Execute(cmd, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, rest.ErrValidation)
	})

	t.Run("missing store", func(t *testing.T) {
		cmd, _, _ := newCommand(t, "-t", "tok")

		err := handler.Execute(cmd, []string{"products"})
		require.Error(t, err)
		assert.ErrorIs(t, err, rest.ErrConfiguration)
	})

	t.Run("retries out of range", func(t *testing.T) {
		cmd, _, _ := newCommand(t, "-s", testutil.TestStore, "-t", "tok", "--retries", "5")

		err := handler.Execute(cmd, []string{"products"})
		require.Error(t, err)
		assert.ErrorIs(t, err, rest.ErrConfiguration)
		assert.Contains(t, err.Error(), "retries")
	})

	t.Run("unsupported api version", func(t *testing.T) {
		cmd, _, _ := newCommand(t, "-s", testutil.TestStore, "-t", "tok", "--api-version", "2019-01")

		err := handler.Execute(cmd, []string{"products"})
		require.Error(t, err)
		assert.ErrorIs(t, err, rest.ErrConfiguration)
	})

	t.Run("config from context", func(t *testing.T) {
		server := testutil.NewAdminServer(t)
		cfg := testutil.NewConfigBuilder().
			WithStore(server.URL).
			WithScheme("http").
			WithQueryParams("status=active").
			Build()

		cmd, stdout, _ := newCommand(t)
		cmd.SetContext(config.WithConfig(context.Background(), cfg))

		require.NoError(t, handler.Execute(cmd, []string{"products"}))
		assert.Equal(t, testutil.ProductsJSON, stdout.String())

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, "/admin/api/"+current+"/products.json?status=active", requests[0].URL)
	})
}

func TestDefaultVersion(t *testing.T) {
	now := time.Date(2024, time.November, 2, 0, 0, 0, 0, time.UTC)

	cfg := testutil.NewConfigBuilder().WithAPIVersion("").Build()
	defaultVersion(zerolog.New(io.Discard), cfg, now)
	assert.Equal(t, "2024-10", cfg.APIVersion)

	cfg = testutil.NewConfigBuilder().WithAPIVersion("2024-07").Build()
	defaultVersion(zerolog.New(io.Discard), cfg, now)
	assert.Equal(t, "2024-07", cfg.APIVersion)
}
