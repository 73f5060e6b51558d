package users

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/plan"
	"github.com/kailas-cloud/askdb/internal/domain/schema"
	"github.com/kailas-cloud/askdb/internal/domain/user"
)

// likeEscaper escapes LIKE wildcards so user values match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// queryBuilder renders plan predicates as parameterized SQL for one entity.
type queryBuilder struct {
	entity schema.Entity
	args   []any
}

func newQueryBuilder(entity schema.Entity) *queryBuilder {
	return &queryBuilder{entity: entity}
}

// column returns the quoted column for a schema field.
func (b *queryBuilder) column(name string) (string, error) {
	if _, ok := b.entity.Field(name); !ok {
		return "", fmt.Errorf("unknown column %q: %w", name, domain.ErrCompilation)
	}
	return `"` + name + `"`, nil
}

// where renders the WHERE clause body, "1" for a nil predicate.
func (b *queryBuilder) where(p plan.Predicate) (string, error) {
	if p == nil {
		return "1", nil
	}
	switch n := p.(type) {
	case plan.And:
		return b.join(n.Terms, " AND ", "1")
	case plan.Or:
		return b.join(n.Terms, " OR ", "0")
	case plan.Compare:
		return b.compare(n)
	default:
		return "", fmt.Errorf("unsupported predicate %T: %w", p, domain.ErrCompilation)
	}
}

func (b *queryBuilder) join(terms []plan.Predicate, sep, empty string) (string, error) {
	if len(terms) == 0 {
		return empty, nil
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		sql, err := b.where(t)
		if err != nil {
			return "", err
		}
		parts[i] = sql
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *queryBuilder) compare(c plan.Compare) (string, error) {
	col, err := b.column(c.Field)
	if err != nil {
		return "", err
	}

	switch c.Op {
	case plan.IsNull:
		return col + " IS NULL", nil
	case plan.IsNotNull:
		return col + " IS NOT NULL", nil
	case plan.Contains:
		return b.like(col, "%"+likeEscaper.Replace(fmt.Sprint(c.Value))+"%"), nil
	case plan.StartsWith:
		return b.like(col, likeEscaper.Replace(fmt.Sprint(c.Value))+"%"), nil
	case plan.EndsWith:
		return b.like(col, "%"+likeEscaper.Replace(fmt.Sprint(c.Value))), nil
	case plan.In, plan.NotIn:
		return b.list(col, c)
	}

	sqlOp, ok := map[plan.Op]string{
		plan.Eq: "=", plan.Neq: "<>", plan.Gt: ">", plan.Gte: ">=", plan.Lt: "<", plan.Lte: "<=",
	}[c.Op]
	if !ok {
		return "", fmt.Errorf("unsupported operator %q: %w", c.Op, domain.ErrCompilation)
	}
	return col + " " + sqlOp + " " + b.bind(c.Field, c.Value), nil
}

func (b *queryBuilder) like(col, pattern string) string {
	b.args = append(b.args, pattern)
	return col + ` LIKE ? ESCAPE '\'`
}

func (b *queryBuilder) list(col string, c plan.Compare) (string, error) {
	items, ok := c.Value.([]any)
	if !ok {
		return "", fmt.Errorf("%s on %s needs a list: %w", c.Op, c.Field, domain.ErrCompilation)
	}
	if len(items) == 0 {
		if c.Op == plan.In {
			return "0", nil
		}
		return "1", nil
	}
	marks := make([]string, len(items))
	for i, v := range items {
		marks[i] = b.bind(c.Field, v)
	}
	op := " IN "
	if c.Op == plan.NotIn {
		op = " NOT IN "
	}
	return col + op + "(" + strings.Join(marks, ", ") + ")", nil
}

// bind appends a parameter and returns its placeholder. Date values are
// normalized to the stored layout so string comparison orders by time.
func (b *queryBuilder) bind(field string, v any) string {
	if f, ok := b.entity.Field(field); ok && f.Kind == schema.KindDate {
		if s, isStr := v.(string); isStr {
			if t, err := user.ParseCreatedAt(s); err == nil {
				v = t.Format(user.TimeLayout)
			}
		}
	}
	b.args = append(b.args, v)
	return "?"
}

// orderBy renders an ORDER BY clause, falling back to id for a stable order.
func (b *queryBuilder) orderBy(o *plan.Order) (string, error) {
	if o == nil {
		return ` ORDER BY "id" ASC`, nil
	}
	col, err := b.column(o.Field)
	if err != nil {
		return "", err
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + `, "id" ASC`, nil
}

// page renders LIMIT/OFFSET. SQLite needs a LIMIT before OFFSET; -1 means no limit.
func (b *queryBuilder) page(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	if limit <= 0 {
		limit = -1
	}
	b.args = append(b.args, limit, offset)
	return " LIMIT ? OFFSET ?"
}
