// Package users implements the tabular store over the SQLite users table.
package users

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kailas-cloud/askdb/internal/db"
	"github.com/kailas-cloud/askdb/internal/domain/plan"
	"github.com/kailas-cloud/askdb/internal/domain/result"
	"github.com/kailas-cloud/askdb/internal/domain/schema"
	"github.com/kailas-cloud/askdb/internal/domain/user"
)

// store is the consumer interface for SQL access (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Repo implements usecase/structured.Store, knowledge.UserLister and dataset.UserWriter.
type Repo struct {
	store  store
	entity schema.Entity
}

// New creates a users repository.
func New(s store) *Repo {
	return &Repo{store: s, entity: schema.Users}
}

// Rows returns the projected rows matching p.
func (r *Repo) Rows(ctx context.Context, p plan.Plan) ([]result.Row, error) {
	b := newQueryBuilder(r.entity)
	cols := p.Projection
	if len(cols) == 0 {
		cols = r.entity.FieldNames()
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		q, err := b.column(c)
		if err != nil {
			return nil, err
		}
		quoted[i] = q
	}

	where, err := b.where(p.Where)
	if err != nil {
		return nil, err
	}
	order, err := b.orderBy(p.OrderBy)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + strings.Join(quoted, ", ") + " FROM " + r.table() + " WHERE " + where + order + b.page(p.Limit, p.Offset)

	rows, err := r.store.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	out := []result.Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		row := make(result.Row, len(cols))
		for i, c := range cols {
			row[c] = normalize(vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

// Count returns the number of rows matching p.Where.
func (r *Repo) Count(ctx context.Context, p plan.Plan) (int64, error) {
	b := newQueryBuilder(r.entity)
	where, err := b.where(p.Where)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.scalar(ctx, "SELECT COUNT(*) FROM "+r.table()+" WHERE "+where, b.args, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Distinct returns the unique values of p.Special.Field sorted by value. A sort on
// any other column is meaningless for a single-column DISTINCT and is ignored.
func (r *Repo) Distinct(ctx context.Context, p plan.Plan) ([]any, error) {
	b := newQueryBuilder(r.entity)
	col, err := b.column(p.Special.Field)
	if err != nil {
		return nil, err
	}
	where, err := b.where(p.Where)
	if err != nil {
		return nil, err
	}
	dir := "ASC"
	if p.OrderBy != nil && p.OrderBy.Field == p.Special.Field && p.OrderBy.Desc {
		dir = "DESC"
	}
	query := "SELECT DISTINCT " + col + " FROM " + r.table() + " WHERE " + where + " ORDER BY " + col + " " + dir
	return r.column(ctx, query, b.args)
}

// GroupCount buckets matching rows by the raw value of p.Special.Field.
func (r *Repo) GroupCount(ctx context.Context, p plan.Plan) ([]result.Bucket, error) {
	b := newQueryBuilder(r.entity)
	col, err := b.column(p.Special.Field)
	if err != nil {
		return nil, err
	}
	where, err := b.where(p.Where)
	if err != nil {
		return nil, err
	}
	dir := "ASC"
	if p.Special.GroupDesc {
		dir = "DESC"
	}
	query := "SELECT " + col + ", COUNT(*) AS n FROM " + r.table() + " WHERE " + where +
		" GROUP BY " + col + " ORDER BY n " + dir + ", " + col + " ASC"
	if p.Special.GroupLimit > 0 {
		query += " LIMIT ?"
		b.args = append(b.args, p.Special.GroupLimit)
	}

	rows, err := r.store.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	out := []result.Bucket{}
	for rows.Next() {
		var v any
		var n int64
		if err := rows.Scan(&v, &n); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		out = append(out, result.Bucket{Value: normalize(v), Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

// Aggregate computes p.Special.AggregateOp over p.Special.Field. count counts
// non-null values and is 0 on no rows; the others are nil on no rows.
func (r *Repo) Aggregate(ctx context.Context, p plan.Plan) (any, error) {
	b := newQueryBuilder(r.entity)
	col, err := b.column(p.Special.Field)
	if err != nil {
		return nil, err
	}
	fn, ok := map[string]string{"count": "COUNT", "avg": "AVG", "sum": "SUM", "min": "MIN", "max": "MAX"}[p.Special.AggregateOp]
	if !ok {
		return nil, fmt.Errorf("unsupported aggregate %q", p.Special.AggregateOp)
	}
	where, err := b.where(p.Where)
	if err != nil {
		return nil, err
	}
	var v any
	if err := r.scalar(ctx, "SELECT "+fn+"("+col+") FROM "+r.table()+" WHERE "+where, b.args, &v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// Values returns p.Special.Field of every matching row in id order.
func (r *Repo) Values(ctx context.Context, p plan.Plan) ([]any, error) {
	b := newQueryBuilder(r.entity)
	col, err := b.column(p.Special.Field)
	if err != nil {
		return nil, err
	}
	where, err := b.where(p.Where)
	if err != nil {
		return nil, err
	}
	return r.column(ctx, "SELECT "+col+" FROM "+r.table()+" WHERE "+where+` ORDER BY "id"`, b.args)
}

// ListUsers returns every user in id order.
func (r *Repo) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := r.store.QueryContext(ctx, "SELECT "+userColumns+" FROM "+r.table()+` ORDER BY "id"`)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

// InsertUsers writes users in one transaction, replacing rows with the same id.
func (r *Repo) InsertUsers(ctx context.Context, users []user.User) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}
	tx, err := r.store.BeginTx(ctx, nil)
	if err != nil {
		return 0, &db.Error{Op: db.OpExec, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+r.table()+" ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"+upsertClause)
	if err != nil {
		return 0, &db.Error{Op: db.OpExec, Err: err}
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx, userArgs(u)...); err != nil {
			return 0, &db.Error{Op: db.OpExec, Err: fmt.Errorf("user %d: %w", u.ID, err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, &db.Error{Op: db.OpExec, Err: err}
	}
	return len(users), nil
}

func (r *Repo) table() string {
	return `"` + r.entity.Table() + `"`
}

func (r *Repo) scalar(ctx context.Context, query string, args []any, dest any) error {
	rows, err := r.store.QueryContext(ctx, query, args...)
	if err != nil {
		return &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return &db.Error{Op: db.OpQuery, Err: err}
		}
		return &db.Error{Op: db.OpQuery, Err: sql.ErrNoRows}
	}
	if err := rows.Scan(dest); err != nil {
		return &db.Error{Op: db.OpQuery, Err: err}
	}
	return nil
}

func (r *Repo) column(ctx context.Context, query string, args []any) ([]any, error) {
	rows, err := r.store.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	out := []any{}
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		out = append(out, normalize(v))
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}
