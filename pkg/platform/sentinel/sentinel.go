// Package sentinel holds infrastructure facts that stores report and
// services translate into domain errors:
//
//   - ErrNotFound: no session under that ID
//   - ErrExpired: the session outlived its TTL
//   - ErrConflict: a concurrent writer won the update
//   - ErrInvalidState: the session cannot take the requested operation
//
// Bad input is not a sentinel fact; use pkg/domain-errors for that.
package sentinel

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
