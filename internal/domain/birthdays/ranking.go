package birthdays

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SentinelDaysUntil se asigna a registros con bdate inválido para que queden al final.
const SentinelDaysUntil = 999999

// InvalidDateError indica que bdate no es una fecha de calendario válida.
type InvalidDateError struct {
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid birth date %q: %v", e.Value, e.Err)
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

// ParseBirthDate parsea YYYY-MM-DD. time.Parse ya rechaza fechas imposibles (2023-02-30).
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: s, Err: err}
	}
	return t, nil
}

// NextOccurrence calcula cuántos días faltan para el próximo cumpleaños y
// la edad que cumple ese día. Hoy cuenta como "no pasado" (daysUntil = 0).
//
// 29 de febrero: en años no bisiestos se celebra el 1 de marzo
// (time.Date normaliza 29/02 a 01/03).
func NextOccurrence(bdate string, ref time.Time) (daysUntil int, age int, err error) {
	birth, err := ParseBirthDate(bdate)
	if err != nil {
		return SentinelDaysUntil, 0, err
	}

	today := civilDate(ref)
	next := occurrenceIn(birth, today.Year())
	if next.Before(today) {
		next = occurrenceIn(birth, today.Year()+1)
	}

	return daysBetween(today, next), next.Year() - birth.Year(), nil
}

// RankUpcoming anota cada registro y los ordena por días restantes.
// El orden es estable: empates mantienen el orden de entrada.
// Registros inválidos van al final con SentinelDaysUntil y Age nil.
func RankUpcoming(items []Birthday, ref time.Time) []Upcoming {
	out := make([]Upcoming, 0, len(items))
	for _, b := range items {
		u := Upcoming{Birthday: b, DaysUntil: SentinelDaysUntil}

		days, age, err := NextOccurrence(b.BirthDate, ref)
		if err == nil {
			u.DaysUntil = days
			u.Age = &age
		}
		out = append(out, u)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntil < out[j].DaysUntil
	})
	return out
}

// FilterToday devuelve los registros que cumplen años en la fecha de ref.
// Los inválidos se excluyen sin error.
func FilterToday(items []Birthday, ref time.Time) []Upcoming {
	today := civilDate(ref)

	out := make([]Upcoming, 0)
	for _, b := range items {
		birth, err := ParseBirthDate(b.BirthDate)
		if err != nil {
			continue
		}
		if !occurrenceIn(birth, today.Year()).Equal(today) {
			continue
		}

		age := today.Year() - birth.Year()
		out = append(out, Upcoming{Birthday: b, DaysUntil: 0, Age: &age})
	}
	return out
}

// civilDate normaliza a medianoche UTC conservando el día civil de t en su zona.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func occurrenceIn(birth time.Time, year int) time.Time {
	return time.Date(year, birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween asume fechas a medianoche UTC (sin DST).
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
