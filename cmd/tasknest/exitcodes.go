package main

import (
	"errors"

	"github.com/yukikurage/tasknest/internal/domain"
)

// Exit codes for the CLI
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidInput = 2
	ExitNotFound     = 3
)

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case domain.IsValidation(err):
		return ExitInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}
