package errors

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// UserMessage returns a user-friendly error message
func UserMessage(err error) string {
	if e, ok := err.(*Error); ok {
		return formatUserError(e)
	}
	return err.Error()
}

// formatUserError creates user-friendly error messages based on error type
func formatUserError(e *Error) string {
	switch e.Type {
	case ErrorTypeValidation:
		return formatValidationError(e)
	case ErrorTypeNetwork:
		return formatNetworkError(e)
	case ErrorTypeConfig:
		return formatConfigError(e)
	default:
		return e.Error()
	}
}

func formatValidationError(e *Error) string {
	msg := e.Message
	if field, ok := e.Context["field"]; ok {
		msg = fmt.Sprintf("Invalid %s: %s", field, msg)
	}
	return msg
}

func formatNetworkError(e *Error) string {
	msg := e.Error()
	if url, ok := e.Context["url"]; ok {
		msg = fmt.Sprintf("Network error accessing %s: %s", url, msg)
	}
	return msg
}

func formatConfigError(e *Error) string {
	msg := e.Message
	if field, ok := e.Context["field"]; ok {
		msg = fmt.Sprintf("Configuration error (%s): %s", field, msg)
	}
	return msg
}

// PresentError displays an error to the user through the global zerolog logger.
// It logs at error level; the caller decides the exit code.
func PresentError(err error) {
	if err == nil {
		return
	}

	if e, ok := err.(*Error); ok {
		event := log.Error().Str("type", string(e.Type))
		for key, value := range e.Context {
			event = event.Interface(key, value)
		}
		if e.Cause != nil {
			event = event.AnErr("cause", e.Cause)
		}
		event.Msg(UserMessage(e))
		return
	}
	log.Error().Err(err).Msg("request failed")
}

// DebugInfo returns detailed error information for debugging
func DebugInfo(err error) map[string]interface{} {
	info := map[string]interface{}{
		"error":   err.Error(),
		"type":    "unknown",
		"context": map[string]interface{}{},
	}

	if e, ok := err.(*Error); ok {
		info["type"] = string(e.Type)
		info["message"] = e.Message
		info["context"] = e.Context

		if e.Cause != nil {
			info["cause"] = e.Cause.Error()
		}
	}

	return info
}
