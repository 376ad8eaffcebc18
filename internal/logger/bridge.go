package logger

import (
	"github.com/brendan.keane/adminrest/pkg/fetch"
	"github.com/rs/zerolog"
)

// Bridge forwards client log events to a zerolog logger. Responses are logged
// at debug level; retries, deprecation notices and unsupported API versions
// at warn level.
func Bridge(logger zerolog.Logger) fetch.Logger {
	logger = ForComponent(logger, "admin_client")

	return func(content fetch.LogContent) {
		var event *zerolog.Event
		switch content.Type {
		case fetch.LogTypeResponse:
			event = logger.Debug()
		case fetch.LogTypeRetry, fetch.LogTypeDeprecationNotice, fetch.LogTypeUnsupportedAPIVersion:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.Str("type", string(content.Type))
		if content.RequestID != "" {
			event = event.Str("request_id", content.RequestID)
		}
		if content.Request != nil {
			event = event.Str("method", content.Request.Method).Str("url", content.Request.URL)
		}

		switch content.Type {
		case fetch.LogTypeResponse:
			if content.Response != nil {
				event = event.Int("status", content.Response.StatusCode)
			}
		case fetch.LogTypeRetry:
			event = event.Int("retry_attempt", content.RetryAttempt).Int("max_retries", content.MaxRetries)
			if content.Response != nil {
				event = event.Int("status", content.Response.StatusCode)
			}
		case fetch.LogTypeDeprecationNotice:
			event = event.Str("deprecation_notice", content.DeprecationNotice)
		case fetch.LogTypeUnsupportedAPIVersion:
			event = event.Str("api_version", content.APIVersion).Strs("supported_api_versions", content.SupportedAPIVersions)
		}

		event.Msg(message(content.Type))
	}
}

func message(t fetch.LogType) string {
	switch t {
	case fetch.LogTypeResponse:
		return "response received"
	case fetch.LogTypeRetry:
		return "retrying request"
	case fetch.LogTypeDeprecationNotice:
		return "API deprecation notice"
	case fetch.LogTypeUnsupportedAPIVersion:
		return "unsupported API version"
	default:
		return string(t)
	}
}
