package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/volunteer/domain"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		_ = instance.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseCategory(fl.Field().String())
			return ok
		})
	})
	return instance
}

// Struct validates the tags on v and converts failures into a VALIDATION_FAILED domain error.
func Struct(v interface{}) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.WrapError(domain.ErrCodeValidationFailed, "validation failed", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return domain.NewError(domain.ErrCodeValidationFailed, "invalid fields: "+strings.Join(fields, ", "))
}
