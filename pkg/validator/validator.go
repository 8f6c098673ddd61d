package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

// Validator validates request structs and reports Portuguese field errors.
type Validator interface {
	Validate(interface{}) error
	Engine() *validator.Validate
}

type structValidator struct {
	v *validator.Validate
}

// New builds a validator with the console's custom tags registered.
func New() Validator {
	v := validator.New()
	if err := Register(v); err != nil {
		panic(err)
	}
	return &structValidator{v: v}
}

// Register adds the cpf, strongpassword and personname tags and makes field
// names follow their json tags.
func Register(v *validator.Validate) error {
	custom := map[string]validator.Func{
		"cpf": func(fl validator.FieldLevel) bool {
			return IsValidCPF(fl.Field().String())
		},
		"strongpassword": func(fl validator.FieldLevel) bool {
			return len(PasswordErrors(fl.Field().String())) == 0
		},
		"personname": func(fl validator.FieldLevel) bool {
			return ValidateName(fl.Field().String()) == ""
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}

func (s *structValidator) Engine() *validator.Validate {
	return s.v
}

// Validate returns an *apperrors.AppError carrying every field error, or nil.
func (s *structValidator) Validate(obj interface{}) error {
	err := s.v.Struct(obj)
	if err == nil {
		return nil
	}
	if fields := FieldErrors(err); len(fields) > 0 {
		return apperrors.NewValidation("", fields...)
	}
	return apperrors.BadRequest("dados inválidos", err)
}

// FieldErrors translates validator errors. Other errors yield nil.
func FieldErrors(err error) []apperrors.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    fe.Tag(),
		})
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório"
	case "email":
		return "E-mail inválido"
	case "cpf":
		return "CPF inválido"
	case "strongpassword":
		if errs := PasswordErrors(fmt.Sprint(fe.Value())); len(errs) > 0 {
			return errs[0]
		}
		return "Senha fraca"
	case "personname":
		return MsgNameLetters
	case "eqfield":
		return "Os valores não conferem"
	case "oneof":
		return fmt.Sprintf("Valor inválido, use um de: %s", fe.Param())
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Deve ter no mínimo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Valor não pode ser menor que %s", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Deve ter no máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Valor não pode ser maior que %s", fe.Param())
	default:
		return "Valor inválido"
	}
}
