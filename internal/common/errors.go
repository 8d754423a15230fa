// Package common defines sentinel errors shared by the Win Vault packages.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrWinNotFound = errors.New("win not found")

	// Session errors.
	ErrNoSession   = errors.New("no active session")
	ErrUnknownUser = errors.New("unknown user")

	// Validation errors.
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidTheme  = errors.New("invalid theme")
	ErrInvalidOKR    = errors.New("invalid okr category")
	ErrInvalidTeam   = errors.New("invalid team pool")
	ErrInvalidStatus = errors.New("invalid win status")
)
