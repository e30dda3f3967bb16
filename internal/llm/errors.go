package llm

import (
	"errors"
	"strings"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

// LLM error codes follow the codreamer error code pattern.
const (
	ErrProviderInitFailed   types.ErrorCode = "LLM_PROVIDER_INIT_FAILED"
	ErrProviderUnauthorized types.ErrorCode = "LLM_PROVIDER_UNAUTHORIZED"
	ErrProviderRateLimited  types.ErrorCode = "LLM_PROVIDER_RATE_LIMITED"
	ErrCompletionFailed     types.ErrorCode = "LLM_COMPLETION_FAILED"
	ErrInvalidRequest       types.ErrorCode = "LLM_INVALID_REQUEST"
	ErrNetworkFailed        types.ErrorCode = "LLM_NETWORK_FAILED"
)

// NewAuthError creates an authorization error for the given provider.
func NewAuthError(provider string, cause error) error {
	return types.WrapError(ErrProviderUnauthorized, "missing or invalid API key for provider "+provider, cause)
}

// TranslateError maps a raw provider error to a structured error with a
// retryability hint. Rate limits and transport failures are retryable;
// everything else is surfaced as a completion failure.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return types.WrapError(ErrProviderRateLimited, provider+" rate limited", err).WithRetryable(true)
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") || strings.Contains(msg, "invalid api key"):
		return types.WrapError(ErrProviderUnauthorized, provider+" rejected credentials", err)
	case strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") || strings.Contains(msg, "temporarily"):
		return types.WrapError(ErrNetworkFailed, provider+" transport failure", err).WithRetryable(true)
	default:
		return types.WrapError(ErrCompletionFailed, provider+" completion failed", err)
	}
}

// IsRetryable determines if an error is transient and may succeed on retry.
func IsRetryable(err error) bool {
	var de *types.DreamerError
	if !errors.As(err, &de) {
		return false
	}
	return de.Retryable
}
