package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CalendarDate - календарная дата без часового пояса: явные целые
// год/месяц/день. Бэкенды-источники отдают дату то строкой YYYY-MM-DD,
// то полной ISO-меткой; весь этот разнобой нормализуется здесь, на границе
// API, и дальше по коду ходит только это значение. Сборка в time.Time
// всегда идет через локальные компоненты, никогда через UTC, иначе для
// пользователей не из UTC дата уезжает на сутки.
type CalendarDate struct {
	Year  int
	Month int
	Day   int
}

var ErrInvalidDate = errors.New("неверный формат даты")

func NewCalendarDate(year, month, day int) (CalendarDate, error) {
	d := CalendarDate{Year: year, Month: month, Day: day}
	if !d.valid() {
		return CalendarDate{}, ErrInvalidDate
	}
	return d, nil
}

// DateOf берет локальные календарные компоненты момента времени.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// ParseCalendarDate принимает YYYY-MM-DD, DD-MM-YYYY и полную метку
// RFC3339. Календарь и ручное поле ввода дат на клиенте дают разные
// форматы одного и того же логического дня - оба обязаны сходиться в одно
// значение.
func ParseCalendarDate(s string) (CalendarDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarDate{}, ErrInvalidDate
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateOf(t), nil
	}

	if t, err := time.Parse("02-01-2006", s); err == nil {
		return DateOf(t), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t.Local()), nil
	}

	return CalendarDate{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
}

func (d CalendarDate) valid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
	return t.Year() == d.Year && int(t.Month()) == d.Month && t.Day() == d.Day
}

func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// At собирает локальный момент времени из даты и времени слота HH:mm.
func (d CalendarDate) At(clock string) (time.Time, error) {
	minutes, err := MinutesOfDay(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, minutes/60, minutes%60, 0, 0, time.Local), nil
}

// StartOfDay - полночь локального дня, для сравнений «только по дате».
func (d CalendarDate) StartOfDay() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
}

// Compare: -1 если d раньше other, 0 если тот же день, 1 если позже.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(d.Month - other.Month)
	default:
		return sign(d.Day - other.Day)
	}
}

// SameMonthDay сравнивает месяц и день без учета года (дни рождения).
func (d CalendarDate) SameMonthDay(other CalendarDate) bool {
	return d.Month == other.Month && d.Day == other.Day
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = CalendarDate{}
		return nil
	}

	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MinutesOfDay переводит HH:mm в минуты с полуночи.
func MinutesOfDay(clock string) (int, error) {
	var hours, minutes int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("неверный формат времени: %s", clock)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("неверный формат времени: %s", clock)
	}
	return hours*60 + minutes, nil
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
