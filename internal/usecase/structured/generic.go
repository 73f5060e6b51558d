package structured

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/askdb/internal/domain/result"
	"github.com/kailas-cloud/askdb/internal/domain/schema"
)

// platformRule maps any value containing one of the substrings to a category.
type platformRule struct {
	substrings []string
	category   string
}

// platformRules are checked in order against the lower-cased value; first match wins.
var platformRules = []platformRule{
	{substrings: []string{"android"}, category: "Android"},
	{substrings: []string{"ios", "iphone", "ipad"}, category: "iOS"},
	{substrings: []string{"windows"}, category: "Windows"},
	{substrings: []string{"feature phone"}, category: "Feature phone"},
	{substrings: []string{"proprietary"}, category: "Proprietary OS"},
}

func canonicalPlatform(value string) string {
	lower := strings.ToLower(value)
	for _, r := range platformRules {
		for _, sub := range r.substrings {
			if strings.Contains(lower, sub) {
				return r.category
			}
		}
	}
	return value
}

// canonicalBrand keeps the first space-delimited token ("Toyota Corolla" -> "Toyota").
func canonicalBrand(value string) string {
	brand, _, _ := strings.Cut(value, " ")
	return brand
}

func canonicalize(g schema.Grouping, value string) string {
	switch g {
	case schema.GroupingPlatform:
		return canonicalPlatform(value)
	case schema.GroupingBrand:
		return canonicalBrand(value)
	default:
		return value
	}
}

// genericBuckets canonicalizes raw values, counts them and returns the buckets
// ordered by count (desc or asc) with ties by value ascending, truncated to limit.
// NULL values share one bucket.
func genericBuckets(g schema.Grouping, values []any, desc bool, limit int) []result.Bucket {
	counts := make(map[string]int64)
	var nulls int64
	for _, v := range values {
		if v == nil {
			nulls++
			continue
		}
		counts[canonicalize(g, stringify(v))]++
	}

	buckets := make([]result.Bucket, 0, len(counts)+1)
	for value, n := range counts {
		buckets = append(buckets, result.Bucket{Value: value, Count: n})
	}
	if nulls > 0 {
		buckets = append(buckets, result.Bucket{Value: nil, Count: nulls})
	}

	sort.Slice(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if a.Count != b.Count {
			if desc {
				return a.Count > b.Count
			}
			return a.Count < b.Count
		}
		return bucketKey(a) < bucketKey(b)
	})

	if limit > 0 && len(buckets) > limit {
		buckets = buckets[:limit]
	}
	return buckets
}

// bucketKey sorts the null bucket first among equal counts.
func bucketKey(b result.Bucket) string {
	if b.Value == nil {
		return ""
	}
	return "\x00" + b.Value.(string)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
