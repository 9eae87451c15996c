// Package validation checks user input before it is sent to the server.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"instaapp/pkg/instaapi"
)

var (
	ErrInvalid = errors.New("invalid input")
)

// Errors maps a form field to the first message reported for it.
type Errors map[string]string

func (e Errors) Error() string {
	parts := lo.Map(instaapi.SortedFields(e), func(field string, _ int) string {
		return fmt.Sprintf("%s: %s", field, e[field])
	})
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

func (e Errors) Is(target error) bool {
	return target == ErrInvalid
}

// Fields extracts the field errors carried by err, nil when there are none.
// Both local validation failures and server-side 422 field maps are recognized.
func Fields(err error) Errors {
	var local Errors
	if errors.As(err, &local) {
		return local
	}
	if fields := instaapi.FieldErrors(err); len(fields) > 0 {
		return Errors(fields)
	}
	return nil
}

type form interface {
	messages() map[string]string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	lo.Must0(v.RegisterValidation("nospace", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
	}))
	lo.Must0(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))

	return v
}

func check(f form) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := f.messages()
	errs := Errors{}
	for _, fe := range fieldErrs {
		if _, ok := errs[fe.Field()]; ok {
			continue
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		errs[fe.Field()] = msg
	}
	return errs
}
