package models

import "errors"

var (
	// ErrSourceUnavailable covers network failures, timeouts and non-2xx responses
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrDataUnparseable covers malformed or incomplete provider payloads
	ErrDataUnparseable = errors.New("data unparseable")

	// ErrOutOfDomain is returned for coordinates outside the supported region
	ErrOutOfDomain = errors.New("coordinates out of supported domain")

	// ErrInvalidDateRange is returned for a malformed start date or day count
	ErrInvalidDateRange = errors.New("invalid date range")
)
