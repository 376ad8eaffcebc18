// Package mcp exposes the admin REST client as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/brendan.keane/adminrest/internal/config"
	"github.com/brendan.keane/adminrest/internal/errors"
	"github.com/brendan.keane/adminrest/internal/logger"
	"github.com/brendan.keane/adminrest/internal/validation"
	"github.com/brendan.keane/adminrest/pkg/rest"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

const (
	serverName    = "adminrest"
	serverVersion = rest.ClientVersion

	requestTimeout = 30 * time.Second
)

// Requester sends one admin API request. *rest.Client implements it.
type Requester interface {
	Request(ctx context.Context, method, path string, opts *rest.RequestOptions) (*http.Response, error)
}

// Server wraps an MCP server whose tools call the admin API
type Server struct {
	logger    zerolog.Logger
	client    Requester
	config    config.MCPConfig
	now       func() time.Time
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server backed by client
func NewServer(log zerolog.Logger, client Requester, cfg config.MCPConfig) *Server {
	opts := []server.ServerOption{server.WithToolCapabilities(false)}
	if cfg.Description != "" {
		opts = append(opts, server.WithInstructions(cfg.Description))
	}

	s := &Server{
		logger:    logger.ForComponent(log, "mcp_server"),
		client:    client,
		config:    cfg,
		now:       time.Now,
		mcpServer: server.NewMCPServer(serverName, serverVersion, opts...),
	}
	s.registerTools()
	return s
}

// Start serves MCP over stdin/stdout until stdin closes
func (s *Server) Start() error {
	s.logger.Debug().Strs("allowed_methods", s.allowedMethods()).Msg("MCP server started, reading from stdin")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return errors.Wrap(err, errors.ErrorTypeMCP, "MCP server error")
	}
	return nil
}

func (s *Server) allowedMethods() []string {
	if len(s.config.AllowedMethods) == 0 {
		return config.ValidMethods
	}
	return s.config.AllowedMethods
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("admin_rest_request",
		mcp.WithDescription("Send a request to the store's admin REST API. Paths like 'products' or 'orders/123' "+
			"are expanded to admin/api/<version>/<path>.json. Supports optional response filtering via 'regex' "+
			"(text search with context) or 'jmespath' (JSON filtering) to reduce token usage for large responses."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Resource path, e.g. products or orders/123")),
		mcp.WithString("method", mcp.Description("HTTP method"), mcp.Enum(s.allowedMethods()...)),
		mcp.WithObject("query", mcp.Description("Query parameters. Arrays serialize as key[]=v, objects as key[sub]=v")),
		mcp.WithObject("headers", mcp.Description("Extra request headers")),
		mcp.WithString("body", mcp.Description("Request body, usually JSON")),
		mcp.WithString("api_version", mcp.Description("API version override, e.g. 2024-04")),
		mcp.WithNumber("retries", mcp.Description("Retries for throttled or unavailable responses (0-3)")),
		mcp.WithBoolean("include_headers", mcp.Description("Prefix the result with the status line and response headers")),
		mcp.WithString("regex", mcp.Description("Regex to search the response body (returns matches with context). Cannot be used with jmespath.")),
		mcp.WithString("jmespath", mcp.Description("JMESPath expression to filter a JSON response. Cannot be used with regex.")),
		mcp.WithNumber("context_lines", mcp.Description("Context around regex matches, ~80 characters per line (default 5)")),
	), s.handleRequest)

	s.mcpServer.AddTool(mcp.NewTool("supported_api_versions",
		mcp.WithDescription("List the API versions currently accepted by the admin API, oldest first."),
	), s.handleVersions)
}

func (s *Server) handleVersions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := s.now()
	payload, err := json.Marshal(map[string]any{
		"current":   validation.CurrentAPIVersion(now),
		"supported": validation.SupportedAPIVersions(now),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode versions: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := logger.ForMCP(s.logger, request.Params.Name)

	path, err := request.RequireString("path")
	if err != nil || strings.TrimSpace(path) == "" {
		return mcp.NewToolResultError("Missing required parameter: path"), nil
	}

	method := strings.ToUpper(request.GetString("method", http.MethodGet))
	if !slices.Contains(s.allowedMethods(), method) {
		log.Warn().Str("method", method).Strs("allowed", s.allowedMethods()).Msg("method not in allowed list")
		return mcp.NewToolResultError(fmt.Sprintf("Method %s not allowed. Allowed methods: %v", method, s.allowedMethods())), nil
	}

	regexPattern := strings.TrimSpace(request.GetString("regex", ""))
	jmespathExpr := strings.TrimSpace(request.GetString("jmespath", ""))
	if regexPattern != "" && jmespathExpr != "" {
		return mcp.NewToolResultError("Cannot use both regex and jmespath filters simultaneously"), nil
	}

	opts, err := requestOptions(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	log.Debug().Str("method", method).Str("path", path).Msg("executing admin API request via MCP")

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := s.client.Request(ctx, method, path, opts)
	if err != nil {
		log.Error().Fields(errors.DebugInfo(err)).Msg("admin API request failed")
		return mcp.NewToolResultError(fmt.Sprintf("Request failed: %s", errors.UserMessage(err))), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read response body: %v", err)), nil
	}
	body := string(raw)

	var filtered *FilterResult
	switch {
	case regexPattern != "":
		contextLines := 5
		if v, ok := request.GetArguments()["context_lines"]; ok {
			contextLines = cast.ToInt(v)
		}
		filtered, err = filterRegex(body, regexPattern, contextLines)
	case jmespathExpr != "":
		filtered, err = filterJMESPath(body, jmespathExpr)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Filter failed: %v", err)), nil
	}
	if filtered != nil {
		log.Debug().Interface("filter", filtered.Meta).Msg("response filtered")
		body = filtered.Content
	}

	text := body
	if request.GetBool("include_headers", false) {
		text = formatHeaders(resp) + body
	}

	result := mcp.NewToolResultText(text)
	if resp.StatusCode >= http.StatusBadRequest {
		result.IsError = true
	}
	return result, nil
}

// requestOptions maps tool arguments onto per-call client options
func requestOptions(args map[string]any) (*rest.RequestOptions, error) {
	opts := &rest.RequestOptions{}

	if query, ok := args["query"].(map[string]any); ok && len(query) > 0 {
		opts.SearchParams = rest.NewSearchParams()
		keys := make([]string, 0, len(query))
		for key := range query {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			opts.SearchParams.Set(key, query[key])
		}
	}

	if headers, ok := args["headers"].(map[string]any); ok && len(headers) > 0 {
		opts.Headers = rest.Headers(headers)
	}

	if body, ok := args["body"].(string); ok && body != "" {
		opts.Data = body
	}

	if version, ok := args["api_version"].(string); ok {
		opts.APIVersion = strings.TrimSpace(version)
	}

	if v, ok := args["retries"]; ok && v != nil {
		retries, err := cast.ToIntE(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "retries must be a number").
				WithContext("field", "retries")
		}
		opts.Retries = rest.Retries(retries)
	}

	return opts, nil
}

func formatHeaders(resp *http.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP Status: %d\n\nHeaders:\n", resp.StatusCode)

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range resp.Header[name] {
			fmt.Fprintf(&b, "%s: %s\n", name, value)
		}
	}
	b.WriteString("\n")
	return b.String()
}
