package users

import (
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/askdb/internal/domain/user"
)

// userColumns is the column order used by scanUser and insert.
const userColumns = `"id", "first_name", "last_name", "email", "gender", "job_title", "device", "car", "language", "country", "created_at"`

// upsertClause updates an existing row in place; embeddings referencing it are kept.
const upsertClause = ` ON CONFLICT("id") DO UPDATE SET "first_name" = excluded."first_name", "last_name" = excluded."last_name", ` +
	`"email" = excluded."email", "gender" = excluded."gender", "job_title" = excluded."job_title", "device" = excluded."device", ` +
	`"car" = excluded."car", "language" = excluded."language", "country" = excluded."country", "created_at" = excluded."created_at"`

func scanUser(rows *sql.Rows) (user.User, error) {
	var u user.User
	var first, last, email, gender, job, device, car, language, country sql.NullString
	var createdAt string
	if err := rows.Scan(&u.ID, &first, &last, &email, &gender, &job, &device, &car, &language, &country, &createdAt); err != nil {
		return user.User{}, err
	}
	t, err := user.ParseCreatedAt(createdAt)
	if err != nil {
		return user.User{}, fmt.Errorf("user %d: %w", u.ID, err)
	}
	u.FirstName, u.LastName, u.Email, u.Gender = first.String, last.String, email.String, gender.String
	u.JobTitle, u.Device, u.Car, u.Language, u.Country = job.String, device.String, car.String, language.String, country.String
	u.CreatedAt = t
	return u, nil
}

func userArgs(u user.User) []any {
	return []any{
		u.ID, nullable(u.FirstName), nullable(u.LastName), nullable(u.Email), nullable(u.Gender),
		nullable(u.JobTitle), nullable(u.Device), nullable(u.Car), nullable(u.Language), nullable(u.Country),
		u.CreatedAt.UTC().Format(user.TimeLayout),
	}
}

// nullable stores empty strings as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalize converts driver values into JSON-friendly scalars.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
