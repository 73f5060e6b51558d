package translate

import (
	"strings"

	"github.com/kailas-cloud/askdb/internal/domain/schema"
)

const plannerSystem = "You are a query planner. Convert user questions into STRICT JSON query intents."

const plannerTemplate = `Schema: {{schema}}

JSON Format:
{
  "entity": "{{entity}}",
  "action": "list" | "single" | "count" | "distinct" | "group" | "aggregate",
  "filters": [{ "field": "country", "op": "eq", "value": "India" }],
  "orFilters": [{ "field": "country", "op": "eq", "value": "USA" }],
  "select": ["id", "first_name", "email"],
  "distinctField": "device",
  "groupByField": "car",
  "groupByGeneric": true,
  "aggregateField": "id",
  "aggregateOp": "count",
  "sortBy": "created_at",
  "sortOrder": "desc",
  "limit": 10,
  "skip": 0
}

Filter operations:
- "eq": equals
- "neq": not equals
- "contains": partial text match (case-insensitive)
- "startsWith": text starts with
- "endsWith": text ends with
- "gt", "gte", "lt", "lte": comparisons for numbers and dates
- "in": value in list, e.g. {"field": "country", "op": "in", "value": ["USA", "India"]}
- "notIn": value not in list
- "isNull": field is null (value should be true)
- "isNotNull": field is not null (value should be true)

Actions:
- "list": get multiple records (default)
- "single": get one record
- "count": count records matching filters
- "distinct": unique values of distinctField
- "group": group by groupByField and count (rankings, most or least popular)
- "aggregate": count, avg, sum, min or max of aggregateField

Rules:
- Output ONLY valid JSON, no comments
- Use "count" for "how many", "total", "number of"
- Use "distinct" for "unique", "different types", "all values of"
- Use "group" for "most popular", "least used", "ranking", "top N by count"
- For group on device or car set "groupByGeneric": true for general questions ("most common device", "popular car brand"); false only for specific versions or models
- Use "aggregate" for "average", "sum", "minimum", "maximum"
- Use "single" for "first", "latest", "oldest"
- Use "orFilters" when ANY condition may match and "filters" when ALL must match
- Dates use ISO format "2025-01-01T00:00:00Z"
- Sort with sortBy and sortOrder ("asc" or "desc"); paginate with limit and skip

User question: "{{question}}"`

// plannerPrompt renders the translation prompt for entity and question.
func plannerPrompt(entity schema.Entity, question string) string {
	return strings.NewReplacer(
		"{{schema}}", entity.Describe(),
		"{{entity}}", entity.Name(),
		"{{question}}", question,
	).Replace(plannerTemplate)
}
