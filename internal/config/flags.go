package config

import (
	"github.com/brendan.keane/adminrest/pkg/fetch"
	"github.com/brendan.keane/adminrest/pkg/rest"
	"github.com/spf13/pflag"
)

// RegisterFlags defines every flag LoadFromFlags reads
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("store", "s", "", "Store domain, e.g. my-shop.myshopify.com (env "+EnvStore+")")
	flags.StringP("access-token", "t", "", "Admin API access token (env "+EnvAccessToken+")")
	flags.String("api-version", "", "API version, e.g. 2024-04 (env "+EnvAPIVersion+", default: current release)")
	flags.String("user-agent-prefix", "", "Prefix added to the User-Agent (env "+EnvUserAgentPrefix+")")
	flags.String("scheme", rest.DefaultScheme, "URL scheme (https, http, or lambda)")
	flags.Bool("no-format-paths", false, "Send the path verbatim instead of admin/api/<version>/<path>.json")

	flags.StringP("request", "X", "GET", "HTTP method (GET, PUT, POST, DELETE)")
	flags.StringArrayP("header", "H", []string{}, "Custom header 'Name: value' (can be used multiple times)")
	flags.StringArrayP("param", "p", []string{}, "Query parameter key=value; repeat for lists, a.b=c for nesting")
	flags.StringP("data", "d", "", "Request body")

	flags.Int("retries", 0, "Retries for 429 and 503 responses and network errors (0-3)")
	flags.Duration("retry-wait", fetch.DefaultRetryWait, "Wait between retries when the server sends no Retry-After")
	flags.Float64("rate", 0, "Client-side request rate limit per second (0 disables)")
	flags.Int("burst", 1, "Burst size for --rate")

	flags.BoolP("verbose", "v", false, "Verbose output (show request and response details)")
	flags.BoolP("include", "i", false, "Include response headers in output")
	flags.Bool("dry-run", false, "Print the request that would be sent without sending it")

	flags.String("mcp-desc", "", "MCP server description (env "+EnvMCPDescription+")")
	flags.StringSlice("allow-methods", []string{}, "Methods the MCP request tool may send (default: all)")
}
