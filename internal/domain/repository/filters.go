package repository

import (
	"errors"
	"time"
)

// ErrDuplicateKey is returned when a unique column (sale code, username) is already taken
var ErrDuplicateKey = errors.New("duplicate key")

// DateRange is an inclusive [From, To] instant range
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range; a nil range matches everything
func (r *DateRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	return !t.Before(r.From) && !t.After(r.To)
}
