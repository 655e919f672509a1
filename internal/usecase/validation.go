package usecase

import (
	"skillgap/internal/domain/skill"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("skill_source", func(fl validator.FieldLevel) bool {
		return skill.Source(fl.Field().String()).Valid()
	})
	return v
}

// validationError turns the first failed rule into a usecase sentinel, keeping
// the field name in the message. Level fields map to their own sentinels.
func validationError(err error, levelErrs map[string]error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrInvalidInput
	}
	fe := verrs[0]
	if sentinel, ok := levelErrs[fe.Field()]; ok {
		return errors.Wrapf(sentinel, "%s must be between %d and %d", fe.Field(), skill.MinLevel, skill.MaxLevel)
	}
	return errors.Wrapf(ErrInvalidInput, "%s failed %q", fe.Field(), fe.Tag())
}
