package discord

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var ErrRateLimit = errors.New("rate limit")

// RateLimitError is returned while a rate limit bucket is exhausted.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v until %s", ErrRateLimit, e.ResetAt.Format(time.RFC3339))
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimit
}

// IsRateLimit reports whether err is caused by a rate limit and when that
// limit is reset.
func IsRateLimit(err error) (time.Time, bool) {
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		return time.Time{}, false
	}

	return rlErr.ResetAt, true
}

func wrapRateLimit(resetAt time.Time) error {
	return &RateLimitError{ResetAt: resetAt}
}

// APIError is a non-2xx answer of the Discord API.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api error %d (code %d): %s", e.Status, e.Code, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func parseSeconds(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return time.Duration(f * float64(time.Second)), true
}

func parsePermissions(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	return strconv.ParseInt(s, 10, 64)
}

func formatPermissions(bits int64) string {
	return strconv.FormatInt(bits, 10)
}
