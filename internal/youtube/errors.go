package youtube

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

var (
	// ErrChannelNotFound is returned when the API knows nothing about the
	// requested channel id.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrQuotaExceeded is returned when the API rejects a call because the
	// daily quota is spent. Terminal for the whole batch, unlike other
	// per-channel errors.
	ErrQuotaExceeded = errors.New("api quota exceeded")
)

// IsNotFound returns true if the error is an ErrChannelNotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChannelNotFound)
}

// IsQuotaExceeded returns true if the error is an ErrQuotaExceeded error.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// wrapAPIError maps googleapi errors onto the package sentinels so callers
// can branch on quota exhaustion without inspecting response bodies.
func wrapAPIError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		for _, item := range apiErr.Errors {
			if item.Reason == "quotaExceeded" || item.Reason == "dailyLimitExceeded" {
				return fmt.Errorf("%s: %w", operation, ErrQuotaExceeded)
			}
		}
		if apiErr.Code == 429 {
			return fmt.Errorf("%s: %w", operation, ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: api error [%d]: %w", operation, apiErr.Code, err)
	}

	return fmt.Errorf("%s: %w", operation, err)
}
