// Package validation holds the field rules applied before any task or tag
// mutation. Every function is pure: it only inspects its input.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/tasknest/internal/constants"
	"github.com/yukikurage/tasknest/internal/domain"
	"github.com/yukikurage/tasknest/internal/models"
)

// Field names reported in validation errors.
const (
	FieldTitle    = "title"
	FieldPriority = "priority"
	FieldTagIDs   = "tag_ids"
	FieldName     = "name"
	FieldColor    = "color"
	FieldText     = "text"
)

const (
	titleRule    = "required,min=3,max=255"
	priorityRule = "required,oneof=low medium high"
	tagNameRule  = "required,min=2,max=50"
	colorRule    = "required,hexrgb"
)

var draftTextRule = fmt.Sprintf("required,max=%d", constants.MaxAIInputLength)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("hexrgb", func(fl validator.FieldLevel) bool {
		return hexColorPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validation: register hexrgb: %v", err))
	}
	return v
}

// TaskTitle checks a task title: required, 3 to 255 characters.
func TaskTitle(title string) error {
	return check(FieldTitle, title, titleRule)
}

// TaskPriority checks that p is low, medium or high.
func TaskPriority(p models.Priority) error {
	return check(FieldPriority, string(p), priorityRule)
}

// TagName checks a tag name: required, 2 to 50 characters. Uniqueness needs
// the store and is checked by the tag service.
func TagName(name string) error {
	return check(FieldName, name, tagNameRule)
}

// TagColor checks for a #RRGGBB hex color, case-insensitive.
func TagColor(color string) error {
	return check(FieldColor, color, colorRule)
}

// DraftText checks free text submitted for AI task drafting.
func DraftText(text string) error {
	return check(FieldText, text, draftTextRule)
}

// IsHexColor reports whether color matches #RRGGBB.
func IsHexColor(color string) bool {
	return hexColorPattern.MatchString(color)
}

// NormalizeText trims surrounding whitespace from user input.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}

// UniqueIDs drops repeated ids while keeping first-seen order.
func UniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	result := make([]uint64, 0, len(ids))

	for _, id := range ids {
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result
}

func check(field string, value string, rule string) error {
	err := validate.Var(value, rule)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError(field, err.Error())
	}

	return domain.NewValidationError(field, reason(fieldErrs[0]))
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hexrgb":
		return "must be a hex color like #RRGGBB"
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
