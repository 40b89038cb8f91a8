// Package validate checks request structs with go-playground/validator and
// turns the first failure into a client-facing validation error.
package validate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"blogcore/internal/apperr"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// Messages maps "Field.tag" (for example "Title.max") to the message
// returned when that rule fails.
type Messages map[string]string

// Struct validates v. The first failing rule is reported as an
// apperr.Validation carrying the matching message, or a generic one when
// the rule has none.
func Struct(v any, msgs Messages) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}

	fe := fieldErrs[0]
	if msg, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return apperr.Validation("%s", msg)
	}
	return apperr.Validation("%s is invalid", fe.Field())
}
