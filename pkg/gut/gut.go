// Package gut computes GUT (gravidade, urgência, tendência) priority scores.
package gut

import (
	"fmt"
)

const (
	MinFactor = 1
	MaxFactor = 5
	MinScore  = MinFactor * MinFactor * MinFactor
	MaxScore  = MaxFactor * MaxFactor * MaxFactor
)

type Level string

const (
	LevelAlta  Level = "alta"
	LevelMedia Level = "media"
	LevelBaixa Level = "baixa"
)

// FactorError reports a factor outside 1..5.
type FactorError struct {
	Field string
	Value int
}

func (e *FactorError) Error() string {
	return fmt.Sprintf("%s deve estar entre %d e %d", e.Field, MinFactor, MaxFactor)
}

// Score returns g×u×t after checking each factor.
func Score(g, u, t int) (int, error) {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"gut_gravidade", g},
		{"gut_urgencia", u},
		{"gut_tendencia", t},
	} {
		if f.value < MinFactor || f.value > MaxFactor {
			return 0, &FactorError{Field: f.name, Value: f.value}
		}
	}
	return g * u * t, nil
}

// Classify maps a score to its priority level.
func Classify(score int) Level {
	switch {
	case score >= 80:
		return LevelAlta
	case score >= 40:
		return LevelMedia
	default:
		return LevelBaixa
	}
}

// Tone is the overlay tone used to display a level.
func (l Level) Tone() string {
	switch l {
	case LevelAlta:
		return "danger"
	case LevelMedia:
		return "warning"
	default:
		return "info"
	}
}
