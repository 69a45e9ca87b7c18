package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces sensitive values in log output.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns match credentials that may end up inside error strings
// returned by the model SDKs.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{20,}`),          // Anthropic keys
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),              // OpenAI keys (sk-, sk-proj-)
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{35}`),              // Google / Gemini keys
	regexp.MustCompile(`(?i)[?&]key=[^\s&]{8,}`),              // Key in a request URL
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),   // Authorization headers
	regexp.MustCompile(`(?i)(api[_-]?key|x-goog-api-key)\s*[:=]\s*[^\s,;&]{8,}`),
	regexp.MustCompile(`(?i)(password|secret|token)\s*[:=]\s*[^\s,;&]{8,}`),
}

// sensitiveFieldNames are substrings of field keys whose values are always redacted.
var sensitiveFieldNames = []string{
	"API_KEY",
	"APIKEY",
	"AUTHORIZATION",
	"PASSWORD",
	"SECRET",
	"TOKEN",
}

// RedactSensitiveData replaces every credential-looking substring of value
// with RedactedPlaceholder.
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range sensitivePatterns {
		value = pattern.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// IsSensitiveField reports whether a field key names a credential,
// e.g. "OPENAI_API_KEY" or "authorization".
func IsSensitiveField(fieldName string) bool {
	upper := strings.ToUpper(fieldName)
	for _, name := range sensitiveFieldNames {
		if strings.Contains(upper, name) {
			return true
		}
	}
	return false
}

// ContainsSensitiveData reports whether value holds anything RedactSensitiveData would replace.
func ContainsSensitiveData(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
