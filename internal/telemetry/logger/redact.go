// Package logger provides structured logging for CartVault.
package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		// Token-shaped values get a partial mask regardless of key name.
		if LooksLikeRecoveryToken(strVal) {
			return slog.String(a.Key, maskToken(strVal))
		}

		// If the key name suggests sensitive data, fully redact.
		if IsSensitiveKey(a.Key) && strVal != "" {
			return slog.String(a.Key, redactedValue)
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// LooksLikeRecoveryToken reports whether a value has the shape of a
// signed recovery token: two base64url segments joined by a dot, with
// the signature segment the length of an HMAC-SHA256 digest.
func LooksLikeRecoveryToken(value string) bool {
	dot := strings.IndexByte(value, '.')
	if dot < 2 || dot == len(value)-1 {
		return false
	}
	payload, sig := value[:dot], value[dot+1:]

	// Base64 RawURL of a 32-byte MAC is always 43 characters.
	if len(sig) != 43 {
		return false
	}
	return isBase64URL(payload) && isBase64URL(sig)
}

func isBase64URL(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return len(s) > 0
}

// maskToken partially masks a token value, keeping enough of the
// payload to correlate log lines without exposing the signature.
func maskToken(value string) string {
	if len(value) <= 12 {
		return redactedValue
	}
	return value[:8] + "..." + value[len(value)-4:]
}

// RedactString manually redacts a string value.
// Use this when you need to redact a value before logging.
func RedactString(value string) string {
	if LooksLikeRecoveryToken(value) {
		return maskToken(value)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
