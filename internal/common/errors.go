package common

import (
	"errors"
	"fmt"
)

// A channel or message handle that does not resolve anymore
var ErrNotFound = errors.New("not found")

// The upstream API answered with something that is not usable data:
// a non-success status, a transport failure, a rejected request or a body
// that cannot be decoded. An empty result is never reported this way
type UpstreamAPIError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamAPIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream request to %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream request to %s failed: %v", e.URL, e.Err)
}

func (e *UpstreamAPIError) Unwrap() error {
	return e.Err
}

// Input provided by a user that cannot be accepted
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("input `%s` is not valid: %s", e.Input, e.Reason)
}
