package users

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/askdb/internal/db/sqlite"
	"github.com/kailas-cloud/askdb/internal/domain/user"
)

var day0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// fixtureUsers returns 12 users in India plus a handful elsewhere.
func fixtureUsers() []user.User {
	devices := []string{"Android 14", "iPhone 15", "Android 13", "iPad Air", "Windows 11", "Feature phone"}
	cars := []string{"Toyota Corolla", "Toyota Camry", "Ford Focus", "Honda Civic"}

	var out []user.User
	for i := range 12 {
		out = append(out, user.User{
			ID:        int64(i + 1),
			FirstName: fmt.Sprintf("In%d", i),
			Email:     fmt.Sprintf("in%d@example.com", i),
			Gender:    []string{"Female", "Male"}[i%2],
			JobTitle:  "Software Engineer",
			Device:    devices[i%len(devices)],
			Car:       cars[i%len(cars)],
			Language:  "Hindi",
			Country:   "India",
			CreatedAt: day0.AddDate(0, 0, i),
		})
	}
	out = append(out,
		user.User{ID: 13, FirstName: "Ana", JobTitle: "Nurse", Device: "Android 12", Car: "Fiat Uno", Country: "Brazil", Gender: "Female", CreatedAt: day0.AddDate(0, 1, 0)},
		user.User{ID: 14, FirstName: "Bob", JobTitle: "Pilot", Device: "iPhone 13", Car: "Ford Mustang", Country: "United States", Gender: "Male", CreatedAt: day0.AddDate(0, 2, 0)},
		user.User{ID: 15, FirstName: "Cy", JobTitle: "100% Remote Lead", Country: "Indonesia", Gender: "Male", CreatedAt: day0.AddDate(0, 3, 0)},
	)
	return out
}

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	s, err := sqlite.Open(sqlite.Config{Path: filepath.Join(t.TempDir(), "askdb.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	r := New(s.DB())
	n, err := r.InsertUsers(context.Background(), fixtureUsers())
	require.NoError(t, err)
	require.Equal(t, 15, n)
	return r
}
