// Package validation holds the checks a client runs on its configuration
// and on per-call overrides.
package validation

import (
	"fmt"
	"net/url"
	"runtime"
	"slices"
	"strings"

	"github.com/brendan.keane/adminrest/internal/errors"
	"github.com/brendan.keane/adminrest/pkg/fetch"
)

const (
	MinRetries = 0
	MaxRetries = 3
)

// ValidateServerSideUsage rejects builds that would run the client in a browser,
// where the access token would be exposed.
func ValidateServerSideUsage(client string) error {
	return validateServerSide(client, runtime.GOOS)
}

func validateServerSide(client, goos string) error {
	if goos == "js" {
		return errors.Newf(errors.ErrorTypeValidation, "%s: this client should not be used in the browser", client)
	}
	return nil
}

// ValidateRetries checks a retry budget is within MinRetries..MaxRetries.
func ValidateRetries(client string, retries int) error {
	if retries < MinRetries || retries > MaxRetries {
		return errors.Newf(errors.ErrorTypeValidation,
			`%s: the provided "retries" value (%d) is invalid - it cannot be less than %d or greater than %d`,
			client, retries, MinRetries, MaxRetries).
			WithContext("field", "retries")
	}
	return nil
}

// ValidateDomain normalizes a store domain to its host, adding https:// when
// no http(s) scheme is present.
func ValidateDomain(client, domain string) (string, error) {
	invalid := func(cause error) error {
		return errors.Wrapf(cause, errors.ErrorTypeValidation, "%s: a valid store domain (%q) must be provided", client, domain).
			WithContext("field", "storeDomain")
	}

	trimmed := strings.TrimSpace(domain)
	if trimmed == "" {
		return "", invalid(nil)
	}

	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http:") && !strings.HasPrefix(lower, "https:") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", invalid(err)
	}
	if u.Host == "" || u.Hostname() == "" {
		return "", invalid(nil)
	}

	return strings.ToLower(u.Host), nil
}

// ValidateAPIVersion checks version is one of supported. An unsupported
// version is reported to logger before the error is returned.
func ValidateAPIVersion(client, version string, supported []string, logger fetch.Logger) error {
	trimmed := strings.TrimSpace(version)
	if trimmed == "" {
		return errors.Newf(errors.ErrorTypeValidation, "%s: the provided apiVersion is invalid", client).
			WithContext("field", "apiVersion")
	}

	if slices.Contains(supported, trimmed) {
		return nil
	}

	logger.Log(fetch.LogContent{
		Type:                 fetch.LogTypeUnsupportedAPIVersion,
		APIVersion:           trimmed,
		SupportedAPIVersions: slices.Clone(supported),
	})

	return errors.New(errors.ErrorTypeValidation, fmt.Sprintf(
		"%s: the provided apiVersion (%q) is likely deprecated or not supported. Currently supported API versions: %s",
		client, trimmed, strings.Join(supported, ", "))).
		WithContext("field", "apiVersion").
		WithContext("apiVersion", trimmed)
}
