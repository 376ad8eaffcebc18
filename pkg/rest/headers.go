package rest

import (
	"net/http"
	"sort"
	"strings"
)

const (
	// ClientName identifies this client in errors and the User-Agent.
	ClientName = "Admin API Client"
	// ClientVersion is reported in the User-Agent suffix.
	ClientVersion = "1.0.0"

	AccessTokenHeader  = "X-Shopify-Access-Token"
	DefaultContentType = "application/json"
)

// Headers maps header names (any case) to a scalar or a slice of scalars.
type Headers map[string]any

// UserAgentSuffix is always the last User-Agent segment.
func UserAgentSuffix() string {
	return ClientName + " v" + ClientVersion
}

// normalizeHeaders lowercases names, joins list values with ", " and
// stringifies everything else. Names differing only in case resolve to the
// one sorting last.
func normalizeHeaders(headers Headers) map[string]string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	normalized := make(map[string]string, len(headers))
	for _, name := range names {
		value := headers[name]
		if list, ok := listValue(value); ok {
			parts := make([]string, 0, list.Len())
			for i := 0; i < list.Len(); i++ {
				parts = append(parts, stringify(list.Index(i).Interface()))
			}
			normalized[strings.ToLower(name)] = strings.Join(parts, ", ")
			continue
		}
		normalized[strings.ToLower(name)] = stringify(value)
	}
	return normalized
}

// ComposeHeaders layers the default headers and the caller's overrides. The
// User-Agent is built from the caller's User-Agent, the prefix and the client
// suffix, joined with " | ". Any other override replaces the default.
func ComposeHeaders(overrides Headers, accessToken, userAgentPrefix string) http.Header {
	normalized := normalizeHeaders(overrides)

	var segments []string
	if ua := normalized["user-agent"]; ua != "" {
		segments = append(segments, ua)
	}
	if userAgentPrefix != "" {
		segments = append(segments, userAgentPrefix)
	}
	segments = append(segments, UserAgentSuffix())
	delete(normalized, "user-agent")

	header := http.Header{}
	header.Set("Content-Type", DefaultContentType)
	header.Set("Accept", DefaultContentType)
	header.Set(AccessTokenHeader, accessToken)
	header.Set("User-Agent", strings.Join(segments, " | "))

	for name, value := range normalized {
		header.Set(name, value)
	}
	return header
}
