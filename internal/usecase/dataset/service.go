// Package dataset loads a JSON users dump into the tabular store.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/user"
)

// record is the on-disk shape of one user.
type record struct {
	ID        int64   `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Gender    *string `json:"gender"`
	JobTitle  *string `json:"job_title"`
	Device    *string `json:"device"`
	Car       *string `json:"car"`
	Language  *string `json:"language"`
	Country   *string `json:"country"`
	CreatedAt *string `json:"created_at"`
}

// Service seeds the users table.
type Service struct {
	writer UserWriter
	now    func() time.Time
	logger *zap.Logger
}

// New creates a seeder.
func New(writer UserWriter, logger *zap.Logger) *Service {
	return &Service{writer: writer, now: time.Now, logger: logger}
}

// Decode reads a JSON array of users. Records without created_at are stamped
// with the current time.
func (s *Service) Decode(r io.Reader) ([]user.User, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode users: %w: %w", domain.ErrValidation, err)
	}

	users := make([]user.User, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for i, rec := range records {
		if rec.ID <= 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("[%d].id", i), "must be a positive integer")
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, domain.NewValidationError(fmt.Sprintf("[%d].id", i), fmt.Sprintf("duplicate id %d", rec.ID))
		}
		seen[rec.ID] = struct{}{}

		createdAt := s.now().UTC()
		if rec.CreatedAt != nil && *rec.CreatedAt != "" {
			t, err := user.ParseCreatedAt(*rec.CreatedAt)
			if err != nil {
				return nil, domain.NewValidationError(fmt.Sprintf("[%d].created_at", i), err.Error())
			}
			createdAt = t
		}

		users = append(users, user.User{
			ID:        rec.ID,
			FirstName: deref(rec.FirstName),
			LastName:  deref(rec.LastName),
			Email:     deref(rec.Email),
			Gender:    deref(rec.Gender),
			JobTitle:  deref(rec.JobTitle),
			Device:    deref(rec.Device),
			Car:       deref(rec.Car),
			Language:  deref(rec.Language),
			Country:   deref(rec.Country),
			CreatedAt: createdAt,
		})
	}
	return users, nil
}

// Seed decodes r and inserts every user. It returns the number of rows written.
func (s *Service) Seed(ctx context.Context, r io.Reader) (int, error) {
	users, err := s.Decode(r)
	if err != nil {
		return 0, err
	}
	n, err := s.writer.InsertUsers(ctx, users)
	if err != nil {
		return 0, fmt.Errorf("insert users: %w", err)
	}
	s.logger.Info("Dataset seeded", zap.Int("users", n))
	return n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
