package ledger

import (
	"errors"
	"reflect"
	"strings"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that names fields by their json tag
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks request fields and then the date range
func validateRequest(v *validator.Validate, req SummaryRequest) error {
	if err := v.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fe.Field()+": "+validationMessage(fe))
			}
			return shared.ErrInvalidInput.WithMessage(strings.Join(msgs, "; "))
		}
		return shared.ErrInvalidInput.Wrap(err)
	}
	return req.Filter().Validate()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "gt":
		return "Must be greater than " + e.Param()
	default:
		return "Invalid value"
	}
}
