// Package repository holds the read-only flight dataset and the loaders that
// build it.  The sentinel values below let higher layers such as handlers
// tell failure scenarios apart with errors.Is.
package repository

import "errors"

// ErrFlightNotFound is returned when no flight matches a number and date.
// Handlers should translate this into an HTTP 404 response.
var ErrFlightNotFound = errors.New("flight not found")

// ErrUnknownDataSource is returned when the configured data source is
// neither "file" nor "mysql".
var ErrUnknownDataSource = errors.New("unknown data source")

// ErrInvalidDepartureDate is returned by loaders when a departure date is
// missing or in none of the accepted layouts.
var ErrInvalidDepartureDate = errors.New("invalid departure date")
