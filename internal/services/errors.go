package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yukikurage/tasknest/internal/domain"
	"github.com/yukikurage/tasknest/internal/validation"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAITooManyTasks         = errors.New("AI generated too many tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

const reasonNameTaken = "has already been taken"

// lookupError translates a repository error for the entity addressed by id.
func lookupError(err error, notFound *domain.NotFoundError, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return domain.NewPersistenceError(op, err)
}

// tagWriteError translates a failed tag insert or update. A unique index
// violation that slipped past the name check is still a validation failure.
func tagWriteError(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewValidationError(validation.FieldName, reasonNameTaken)
	}
	return domain.NewPersistenceError(op, err)
}
