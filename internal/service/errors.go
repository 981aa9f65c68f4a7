package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("setting not found")
	ErrUnknownPlatform    = errors.New("unknown platform")
	ErrUnknownContentType = errors.New("unknown content type")
	ErrPublishingDisabled = errors.New("publishing is disabled")
)

// ValidationError reports missing mandatory credential fields. It is raised
// synchronously on save-with-validation, test and publish; nothing is
// persisted or sent when it fires.
type ValidationError struct {
	Platform      string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) == 0 {
		return fmt.Sprintf("%s: destination is not configured", e.Platform)
	}
	return fmt.Sprintf("%s: missing required credential fields: %s",
		e.Platform, strings.Join(e.MissingFields, ", "))
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
