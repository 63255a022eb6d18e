package core

import "time"

// Month identifies a calendar month. All month-window arithmetic in the
// ledger runs on the integer index year*12+month, never on date-object
// month addition, so varying month lengths cannot cause drift.
type Month struct {
	Year int
	M    time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), M: t.Month()}
}

// NewMonth builds a Month from a year and a 1-12 month number.
func NewMonth(year, month int) Month {
	return Month{Year: year, M: time.Month(month)}
}

// Index returns the zero-based absolute month index.
func (m Month) Index() int {
	return m.Year*12 + int(m.M) - 1
}

// Contains reports whether t falls inside the calendar month, comparing
// year and month only.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.M
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.M+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay limits day to the valid range for the month, so a rule set to
// the 31st still fires in February.
func (m Month) ClampDay(day int) int {
	if day < 1 {
		return 1
	}
	if last := m.Days(); day > last {
		return last
	}
	return day
}

// DateAt returns the given day of the month at 12:00 UTC. Noon keeps the
// calendar day stable across timezone conversions.
func (m Month) DateAt(day int) time.Time {
	return time.Date(m.Year, m.M, m.ClampDay(day), 12, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return time.Date(m.Year, m.M, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
