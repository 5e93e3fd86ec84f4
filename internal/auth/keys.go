// Package auth handles Aetherfy API key validation and masking.
package auth

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

// Environment variables consulted for the API key, in precedence order.
const (
	EnvAPIKey    = "AETHERFY_API_KEY"
	EnvAPIKeyAlt = "AETHERFY_VECTORS_API_KEY"
)

const (
	livePrefix = "afy_live_"
	testPrefix = "afy_test_"
)

// keyPattern is the published API key format: afy_live_ or afy_test_
// followed by at least 16 alphanumeric characters.
var keyPattern = regexp.MustCompile(`^afy_(live|test)_[a-zA-Z0-9]{16,}$`)

// ValidateKey checks the API key format. Failures are configuration errors;
// they are terminal for client construction and never retried.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: API key cannot be empty", apierrors.ErrConfiguration)
	}
	if !keyPattern.MatchString(key) {
		return fmt.Errorf(
			"%w: invalid API key format, expected %q or %q followed by at least 16 alphanumeric characters",
			apierrors.ErrConfiguration, livePrefix, testPrefix,
		)
	}
	return nil
}

// IsTestKey reports whether key is a test-mode key.
func IsTestKey(key string) bool {
	return strings.HasPrefix(key, testPrefix)
}

// IsLiveKey reports whether key is a live-mode key.
func IsLiveKey(key string) bool {
	return strings.HasPrefix(key, livePrefix)
}

// Mask returns a redacted form of the key safe for logs and String output.
// The full key must never appear in diagnostics.
func Mask(key string) string {
	return "***"
}

// Headers returns the authentication headers for a request carrying key.
func Headers(key string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + key,
		"X-API-Key":     key,
	}
}
