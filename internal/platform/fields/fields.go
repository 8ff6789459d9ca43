// Package fields tiene los tipos y parsers de campos de payload compartidos
// por pets, appointments y medical: numéricos coercibles y fechas.
package fields

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrNotANumber  = errors.New("not a number")
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time")
)

// Number guarda el valor crudo del JSON. Acepta 3, 3.5 o "3.5";
// la coerción se hace en el service para poder devolver un error con el nombre del campo.
type Number struct {
	raw json.RawMessage
	set bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	n.raw = append(n.raw[:0], b...)
	n.set = true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Present() {
		return []byte("null"), nil
	}
	return n.raw, nil
}

// NumberOf arma un Number a partir de un float (tests y clientes internos).
func NumberOf(v float64) Number {
	return Number{raw: json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64)), set: true}
}

// Present es false si el campo no vino, vino null o vino como string vacío.
func (n Number) Present() bool {
	if !n.set {
		return false
	}
	s := bytes.TrimSpace(n.raw)
	return len(s) > 0 && !bytes.Equal(s, []byte("null")) && !bytes.Equal(s, []byte(`""`))
}

func (n Number) Float64() (float64, error) {
	if !n.Present() {
		return 0, ErrNotANumber
	}
	s := bytes.TrimSpace(n.raw)
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			return 0, ErrNotANumber
		}
		s = []byte(strings.TrimSpace(str))
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return 0, ErrNotANumber
	}
	return v, nil
}

// OptionalFloat devuelve nil si el campo no vino.
func (n Number) OptionalFloat() (*float64, error) {
	if !n.Present() {
		return nil, nil
	}
	v, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime acepta YYYY-MM-DD o ISO-8601 (con o sin segundos, con Z u offset).
// Sin zona se asume UTC. El resultado siempre está en UTC.
func ParseDateTime(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, ErrInvalidDate
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d.UTC(), true, nil
	}
	for _, layout := range dateTimeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v.UTC(), false, nil
		}
	}
	return time.Time{}, false, ErrInvalidDate
}

// ParseClock valida HH:MM y devuelve hora y minuto.
func ParseClock(s string) (hour, minute int, err error) {
	v, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, ErrInvalidTime
	}
	return v.Hour(), v.Minute(), nil
}

// AtClock pone la hora HH:MM sobre el día de d (en UTC).
func AtClock(d time.Time, hour, minute int) time.Time {
	d = d.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

// Blank indica si un string requerido vino vacío.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
