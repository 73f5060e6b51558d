// Package user defines the Users record.
package user

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the stored form of created_at. It sorts lexicographically in time order,
// so string comparisons in the store agree with time comparisons.
const TimeLayout = "2006-01-02T15:04:05Z"

// User is one row of the Users entity. Text attributes are nullable in the store;
// empty strings here stand for NULL.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Gender    string
	JobTitle  string
	Device    string
	Car       string
	Language  string
	Country   string
	CreatedAt time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
}

// ParseCreatedAt accepts the timestamp shapes found in seed datasets.
func ParseCreatedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized created_at %q", s)
}
