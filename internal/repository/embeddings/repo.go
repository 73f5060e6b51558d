// Package embeddings stores per-user document vectors in SQLite.
package embeddings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/askdb/internal/db"
	"github.com/kailas-cloud/askdb/internal/domain/user"
	"github.com/kailas-cloud/askdb/internal/domain/vector"
)

// store is the consumer interface for SQL access (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repo implements similarity.RecordLister and knowledge.EmbeddingWriter.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates an embeddings repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

const upsertEmbedding = `INSERT INTO user_embeddings (user_id, content, embedding, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET content = excluded.content, embedding = excluded.embedding, updated_at = excluded.updated_at`

// UpsertEmbedding stores rec, replacing the user's previous vector.
func (r *Repo) UpsertEmbedding(ctx context.Context, rec vector.Record) error {
	if len(rec.Vector) == 0 {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("user %d: empty vector", rec.SubjectID)}
	}
	payload, err := json.Marshal(rec.Vector)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	_, err = r.store.ExecContext(ctx, upsertEmbedding,
		rec.SubjectID, rec.Content, string(payload), r.now().UTC().Format(user.TimeLayout))
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("user %d: %w", rec.SubjectID, err)}
	}
	return nil
}

// ListEmbeddings returns every stored record ordered by user id.
func (r *Repo) ListEmbeddings(ctx context.Context) ([]vector.Record, error) {
	rows, err := r.store.QueryContext(ctx, `SELECT user_id, content, embedding FROM user_embeddings ORDER BY user_id`)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	var out []vector.Record
	for rows.Next() {
		var rec vector.Record
		var payload string
		if err := rows.Scan(&rec.SubjectID, &rec.Content, &payload); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		if err := json.Unmarshal([]byte(payload), &rec.Vector); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("decode embedding for user %d: %w", rec.SubjectID, err)}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

// Count returns the number of stored vectors.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	rows, err := r.store.QueryContext(ctx, `SELECT COUNT(*) FROM user_embeddings`)
	if err != nil {
		return 0, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, &db.Error{Op: db.OpQuery, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, &db.Error{Op: db.OpQuery, Err: err}
	}
	return n, nil
}
