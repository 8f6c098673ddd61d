package schedule

import (
	"time"

	"github.com/jwalitptl/ubs-console/internal/model"
)

// maxOccurrences caps the instances returned for a single event.
const maxOccurrences = 1000

// NormalizeAllDay stretches an all-day event from 00:00:00 of its first day
// to 23:59:59 of its last day.
func NormalizeAllDay(inicio time.Time, fim *time.Time) (time.Time, time.Time) {
	start := time.Date(inicio.Year(), inicio.Month(), inicio.Day(), 0, 0, 0, 0, inicio.Location())
	last := start
	if fim != nil && !fim.IsZero() {
		last = *fim
	}
	end := time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, last.Location())
	return start, end
}

// step returns the start of the k-th repetition. Each repetition is computed
// from the first start so month lengths do not accumulate drift. A monthly
// event on a day the target month lacks falls on that month's last day.
func step(first time.Time, recurrence string, interval, k int) time.Time {
	switch recurrence {
	case model.RecurrenceDaily:
		return first.AddDate(0, 0, k*interval)
	case model.RecurrenceWeekly:
		return first.AddDate(0, 0, 7*k*interval)
	case model.RecurrenceMonthly:
		month := first.Month() + time.Month(k*interval)
		day := first.Day()
		if last := time.Date(first.Year(), month+1, 0, 0, 0, 0, 0, first.Location()).Day(); day > last {
			day = last
		}
		return time.Date(first.Year(), month, day, first.Hour(), first.Minute(), first.Second(), first.Nanosecond(), first.Location())
	}
	return first
}

// firstStep returns a repetition index no later than the first one that can
// overlap a window starting at lower.
func firstStep(first time.Time, recurrence string, interval int, lower time.Time) int {
	if !lower.After(first) {
		return 0
	}
	var elapsed int
	switch recurrence {
	case model.RecurrenceDaily:
		elapsed = calendarDays(first, lower) / interval
	case model.RecurrenceWeekly:
		elapsed = calendarDays(first, lower) / (7 * interval)
	case model.RecurrenceMonthly:
		months := (lower.Year()-first.Year())*12 + int(lower.Month()-first.Month())
		elapsed = months / interval
	default:
		return 0
	}
	// one step back absorbs DST shifts and clamped month ends
	if elapsed > 0 {
		elapsed--
	}
	return elapsed
}

func calendarDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// Occurrences expands ev into the instances overlapping [from, to].
func Occurrences(ev model.Event, from, to time.Time) []model.Occurrence {
	first := ev.Inicio.Time
	if first.IsZero() || to.Before(from) {
		return nil
	}

	var duration time.Duration
	if ev.Fim != nil && !ev.Fim.IsZero() && ev.Fim.After(first) {
		duration = ev.Fim.Sub(first)
	}

	interval := ev.RecorrenciaIntervalo
	if interval < 1 {
		interval = 1
	}
	recurring := ev.Recorrencia == model.RecurrenceDaily ||
		ev.Recorrencia == model.RecurrenceWeekly ||
		ev.Recorrencia == model.RecurrenceMonthly

	var until time.Time
	if ev.RecorrenciaFim != nil && !ev.RecorrenciaFim.IsZero() {
		d := ev.RecorrenciaFim.Time
		until = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, first.Location())
	}

	k := 0
	if recurring {
		lower := from.Add(-duration).In(first.Location())
		k = firstStep(first, ev.Recorrencia, interval, lower)
	}

	var out []model.Occurrence
	for ; len(out) < maxOccurrences; k++ {
		start := step(first, ev.Recorrencia, interval, k)
		if start.After(to) || (!until.IsZero() && start.After(until)) {
			break
		}
		end := start.Add(duration)
		if !end.Before(from) {
			out = append(out, model.Occurrence{
				EventID:    ev.ID,
				Titulo:     ev.Titulo,
				Tipo:       ev.Tipo,
				Inicio:     model.Timestamp{Time: start},
				Fim:        model.Timestamp{Time: end},
				DiaInteiro: ev.DiaInteiro,
			})
		}
		if !recurring {
			break
		}
	}
	return out
}
