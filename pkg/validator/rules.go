package validator

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	MsgPasswordLength    = "Senha deve ter no mínimo 8 caracteres."
	MsgPasswordUppercase = "Senha deve conter pelo menos uma letra maiúscula."
	MsgPasswordLowercase = "Senha deve conter pelo menos uma letra minúscula."
	MsgPasswordDigit     = "Senha deve conter pelo menos um número."

	MsgNameRequired = "Informe o nome."
	MsgNameLetters  = "Nome deve conter apenas letras e espaços."
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[\p{L}\s]+$`)
)

// OnlyDigits strips everything but ASCII digits.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidCPF checks length, repeated digits and both check digits.
func IsValidCPF(value string) bool {
	digits := OnlyDigits(value)
	if len(digits) != 11 {
		return false
	}
	if strings.Count(digits, digits[:1]) == len(digits) {
		return false
	}

	return cpfCheckDigit(digits[:9], 10) == int(digits[9]-'0') &&
		cpfCheckDigit(digits[:10], 11) == int(digits[10]-'0')
}

func cpfCheckDigit(base string, factor int) int {
	total := 0
	for i := 0; i < len(base); i++ {
		total += int(base[i]-'0') * (factor - i)
	}
	rest := total % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// PasswordErrors returns one message per failed rule, in a stable order.
func PasswordErrors(password string) []string {
	var (
		upper, lower, digit bool
		errs                []string
	)
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if len([]rune(password)) < MinPasswordLength {
		errs = append(errs, MsgPasswordLength)
	}
	if !upper {
		errs = append(errs, MsgPasswordUppercase)
	}
	if !lower {
		errs = append(errs, MsgPasswordLowercase)
	}
	if !digit {
		errs = append(errs, MsgPasswordDigit)
	}
	return errs
}

// ValidateName returns an error message or "" when the name is acceptable.
func ValidateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return MsgNameRequired
	}
	if !namePattern.MatchString(name) {
		return MsgNameLetters
	}
	return ""
}

func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && emailPattern.MatchString(email)
}
