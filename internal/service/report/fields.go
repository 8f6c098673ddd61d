package report

import (
	"strconv"
	"strings"

	"github.com/jwalitptl/ubs-console/internal/model"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

type fieldKind int

const (
	textField fieldKind = iota
	intField
	dateField
)

var headerFields = map[string]fieldKind{
	"nome_relatorio":              textField,
	"nome_ubs":                    textField,
	"cnes":                        textField,
	"area_atuacao":                textField,
	"descritivos_gerais":          textField,
	"observacoes_gerais":          textField,
	"outros_servicos":             textField,
	"periodo_referencia":          textField,
	"identificacao_equipe":        textField,
	"responsavel_nome":            textField,
	"responsavel_cargo":           textField,
	"responsavel_contato":         textField,
	"fluxo_agenda_acesso":         textField,
	"numero_habitantes_ativos":    intField,
	"numero_microareas":           intField,
	"numero_familias_cadastradas": intField,
	"numero_domicilios":           intField,
	"domicilios_rurais":           intField,
	"data_inauguracao":            dateField,
	"data_ultima_reforma":         dateField,
}

// IsHeaderField reports whether name is an autosaved header field.
func IsHeaderField(name string) bool {
	_, ok := headerFields[name]
	return ok
}

// parseField converts raw form input to the value sent to the API.
// Empty input becomes nil.
func parseField(name, raw string) (interface{}, error) {
	kind, ok := headerFields[name]
	if !ok {
		return nil, apperrors.NewValidation("", apperrors.FieldError{
			Field: name, Message: "campo desconhecido", Code: "unknown",
		})
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	switch kind {
	case intField:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidation("", apperrors.FieldError{
				Field: name, Message: "deve ser um número inteiro", Code: "integer",
			})
		}
		if n < 0 {
			return nil, apperrors.NewValidation("", apperrors.FieldError{
				Field: name, Message: "não pode ser negativo", Code: "gte",
			})
		}
		return n, nil
	case dateField:
		d, err := model.ParseDate(raw)
		if err != nil {
			return nil, apperrors.NewValidation("", apperrors.FieldError{
				Field: name, Message: err.Error(), Code: "date",
			})
		}
		return d, nil
	default:
		return raw, nil
	}
}

// dateValue returns the effective value of a date field, preferring a
// pending edit over the loaded report.
func dateValue(field string, pending map[string]interface{}, r *model.Report) *model.Date {
	if v, ok := pending[field]; ok {
		d, _ := v.(*model.Date)
		return d
	}
	switch field {
	case "data_inauguracao":
		return r.DataInauguracao
	case "data_ultima_reforma":
		return r.DataUltimaReforma
	}
	return nil
}

func checkDateOrder(pending map[string]interface{}, r *model.Report) error {
	opened := dateValue("data_inauguracao", pending, r)
	renovated := dateValue("data_ultima_reforma", pending, r)
	if opened == nil || renovated == nil || opened.IsZero() || renovated.IsZero() {
		return nil
	}
	if renovated.Before(opened.Time) {
		return apperrors.NewValidation("", apperrors.FieldError{
			Field:   "data_ultima_reforma",
			Message: "a data da última reforma não pode ser anterior à inauguração",
			Code:    "date_order",
		})
	}
	return nil
}
