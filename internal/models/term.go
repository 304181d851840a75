package models

import "time"

// Term models a registration term in the institution calendar. Semester is the term's own
// semester index; its parity selects which repeat modules are on offer.
type Term struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Semester  int       `db:"semester" json:"semester"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// IsEven reports whether the term falls on an even semester.
func (t *Term) IsEven() bool {
	return t != nil && t.Semester%2 == 0
}
