package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

func TestIsValidCPF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid digits", "11144477735", true},
		{"valid formatted", "111.444.777-35", true},
		{"repeated digits", "11111111111", false},
		{"ten digits", "1114447773", false},
		{"ten zeros", "0000000000", false},
		{"wrong first check digit", "11144477725", false},
		{"wrong second check digit", "11144477736", false},
		{"empty", "", false},
		{"twelve digits", "111444777351", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCPF(tt.input))
		})
	}
}

func TestIsValidCPF_AnyTenDigitString(t *testing.T) {
	for _, s := range []string{"1234567890", "9876543210", "1114447773", "5555555555"} {
		assert.False(t, IsValidCPF(s), s)
	}
}

func TestPasswordErrors(t *testing.T) {
	errs := PasswordErrors("abc")
	assert.GreaterOrEqual(t, len(errs), 3)
	assert.Contains(t, errs, MsgPasswordLength)
	assert.Contains(t, errs, MsgPasswordUppercase)
	assert.Contains(t, errs, MsgPasswordDigit)
	assert.NotContains(t, errs, MsgPasswordLowercase)

	distinct := map[string]bool{}
	for _, e := range errs {
		distinct[e] = true
	}
	assert.Len(t, distinct, len(errs))

	assert.Empty(t, PasswordErrors("Abcdefg1"))
	assert.Equal(t, []string{MsgPasswordLowercase}, PasswordErrors("ABCDEFG1"))
}

func TestValidateName(t *testing.T) {
	assert.Equal(t, "", ValidateName("Maria José da Silva"))
	assert.Equal(t, MsgNameRequired, ValidateName("   "))
	assert.Equal(t, MsgNameLetters, ValidateName("R2D2"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("gestor@ubs.gov.br"))
	assert.False(t, IsValidEmail("gestor@ubs"))
	assert.False(t, IsValidEmail("gestor ubs@x.com"))
	assert.False(t, IsValidEmail(""))
}

type registerRequest struct {
	Nome  string `json:"nome" validate:"required,personname"`
	Email string `json:"email" validate:"required,email"`
	CPF   string `json:"cpf" validate:"required,cpf"`
	Senha string `json:"senha" validate:"required,strongpassword"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(registerRequest{
		Nome:  "Ana Souza",
		Email: "ana@ubs.gov.br",
		CPF:   "111.444.777-35",
		Senha: "Abcdefg1",
	}))

	err := v.Validate(registerRequest{
		Nome:  "Ana",
		Email: "ana@ubs.gov.br",
		CPF:   "11111111111",
		Senha: "abc",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	require.Len(t, appErr.Fields, 2)
	assert.Equal(t, "cpf", appErr.Fields[0].Field)
	assert.Equal(t, "CPF inválido", appErr.Fields[0].Message)
	assert.Equal(t, "senha", appErr.Fields[1].Field)
	assert.Equal(t, MsgPasswordLength, appErr.Fields[1].Message)
}
