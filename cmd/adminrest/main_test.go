package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/brendan.keane/adminrest/internal/config"
	"github.com/brendan.keane/adminrest/internal/testutil"
	"github.com/brendan.keane/adminrest/internal/validation"
	"github.com/brendan.keane/adminrest/pkg/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{config.EnvStore, config.EnvAccessToken, config.EnvAPIVersion, config.EnvUserAgentPrefix} {
		t.Setenv(key, "")
	}

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), err
}

func TestRootCommand_Request(t *testing.T) {
	server := testutil.NewAdminServer(t)

	out, err := run(t, "-s", server.URL, "--scheme", "http", "-t", "tok", "-p", "fields=id,title", "products")
	require.NoError(t, err)
	assert.Equal(t, testutil.ProductsJSON, out)

	requests := server.Requests()
	require.Len(t, requests, 1)
	version := validation.CurrentAPIVersion(time.Now())
	assert.Equal(t, "/admin/api/"+version+"/products.json?fields=id%2Ctitle", requests[0].URL)
}

func TestRootCommand_EnvironmentFallback(t *testing.T) {
	server := testutil.NewAdminServer(t)

	root := newRootCmd()
	t.Setenv(config.EnvStore, server.URL)
	t.Setenv(config.EnvAccessToken, "env-token")
	t.Setenv(config.EnvAPIVersion, "unstable")
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{"--scheme", "http", "shop"})

	require.NoError(t, root.Execute())
	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/admin/api/unstable/shop.json", requests[0].URL)
	assert.Equal(t, "env-token", requests[0].Header.Get(rest.AccessTokenHeader))
}

func TestRootCommand_MissingStore(t *testing.T) {
	_, err := run(t, "-t", "tok", "products")
	require.Error(t, err)
	assert.ErrorIs(t, err, rest.ErrConfiguration)
}

func TestVersionsCommand(t *testing.T) {
	out, err := run(t, "versions")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, validation.UnstableVersion, lines[5])
	assert.Contains(t, out, validation.CurrentAPIVersion(time.Now())+" (current)")
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "adminrest")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestCompletionFunctions(t *testing.T) {
	methods, _ := methodCompletion(nil, nil, "")
	assert.Equal(t, config.ValidMethods, methods)

	versions, _ := versionCompletion(nil, nil, "")
	assert.Contains(t, versions, validation.UnstableVersion)

	schemes, _ := schemeCompletion(nil, nil, "")
	assert.Equal(t, []string{"https", "http", "lambda"}, schemes)
}
