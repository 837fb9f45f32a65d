// Package calendar работает с календарными датами: подписки и журнал
// скачиваний оперируют днями, а не моментами времени.
//
// Дата представлена как time.Time на полночь UTC. Все бизнес-функции
// принимают "сегодня" явным параметром, а Clock выдаёт его в обработчиках.
package calendar

import (
	"fmt"
	"time"
)

// Layout формат даты в API и конфигурации.
const Layout = "2006-01-02"

// Date обрезает момент времени до календарной даты в часовом поясе loc
// и возвращает её как полночь UTC. Если loc == nil, используется UTC.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse разбирает дату в формате Layout.
func Parse(s string) (time.Time, error) {
	const op = "calendar.Parse"
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// Format форматирует дату в Layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Within сообщает, попадает ли day в отрезок [from, to] включительно.
func Within(day, from, to time.Time) bool {
	day, from, to = Date(day, nil), Date(from, nil), Date(to, nil)
	return !day.Before(from) && !day.After(to)
}

// SameMonth сообщает, совпадают ли год и месяц у двух дат.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// AddDays сдвигает дату на n дней.
func AddDays(t time.Time, n int) time.Time {
	return Date(t, nil).AddDate(0, 0, n)
}

// Clock выдаёт текущую дату.
type Clock interface {
	Today() time.Time
}

// SystemClock читает системное время в заданном часовом поясе.
type SystemClock struct {
	Location *time.Location
}

// Today возвращает текущую календарную дату.
func (c SystemClock) Today() time.Time {
	return Date(time.Now(), c.Location)
}

// Fixed всегда возвращает одну и ту же дату. Используется в тестах и при сидировании.
type Fixed time.Time

// Today возвращает зафиксированную дату.
func (f Fixed) Today() time.Time {
	return Date(time.Time(f), nil)
}
