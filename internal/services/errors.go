package services

import (
	"errors"
)

// Remote call error taxonomy. ErrConfigurationMissing is only returned
// while selecting implementations at startup, never mid-call.
var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrRequestFailed        = errors.New("request failed")
	ErrInvalidResponse      = errors.New("invalid response")
)
