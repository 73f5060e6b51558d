package dataset

import (
	"context"

	"github.com/kailas-cloud/askdb/internal/domain/user"
)

// UserWriter inserts users, replacing rows with the same id.
type UserWriter interface {
	InsertUsers(ctx context.Context, users []user.User) (int, error)
}
