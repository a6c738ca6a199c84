package domain

import (
	"strings"
	"time"
)

type ValidityType string

const (
	ValidityDay   ValidityType = "day"
	ValidityMonth ValidityType = "month"
	ValidityYear  ValidityType = "year"
)

// ParseValidityType is case-insensitive.
func ParseValidityType(s string) (ValidityType, bool) {
	switch v := ValidityType(strings.ToLower(strings.TrimSpace(s))); v {
	case ValidityDay, ValidityMonth, ValidityYear:
		return v, true
	}
	return "", false
}

type VIPPlan struct {
	ID           int64        `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Validity     int          `db:"validity" json:"validity"`
	ValidityType ValidityType `db:"validity_type" json:"validity_type"`
	PriceCoin    int64        `db:"price_coin" json:"price_coin"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// Expired reports whether a plan started at start is over at now.
//
// Day plans stay valid through day `validity` inclusive and expire once the elapsed
// day count is strictly greater. Month and year plans expire as soon as the elapsed
// count reaches `validity`.
func (p *VIPPlan) Expired(start, now time.Time) bool {
	switch p.ValidityType {
	case ValidityDay:
		return ElapsedDays(start, now) > p.Validity
	case ValidityMonth:
		return ElapsedMonths(start, now) >= p.Validity
	case ValidityYear:
		return ElapsedMonths(start, now)/12 >= p.Validity
	}
	return false
}

// ElapsedDays counts whole calendar days between start and now on start's wall clock,
// so a day that gains or loses an hour to a zone change still counts as one.
func ElapsedDays(start, now time.Time) int {
	if now.Before(start) {
		return -ElapsedDays(now, start)
	}
	now = now.In(start.Location())
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(to.Sub(from) / (24 * time.Hour))
	if days > 0 && clock(now) < clock(start) {
		days--
	}
	return days
}

func clock(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second + time.Duration(t.Nanosecond())
}

// ElapsedMonths counts whole calendar months between start and now. A month boundary
// falling on a day the target month lacks is clamped to that month's last day, so
// Jan 31 + 1 month is Feb 28/29.
func ElapsedMonths(start, now time.Time) int {
	if now.Before(start) {
		return -ElapsedMonths(now, start)
	}
	now = now.In(start.Location())
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	for months > 0 && AddMonths(start, months).After(now) {
		months--
	}
	return months
}

// AddMonths adds n calendar months, clamping the day to the end of the target month.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
