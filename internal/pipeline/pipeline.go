// Package pipeline turns a raw record collection into the rows a view shows:
// free-text search, then relational scope, then column sort.
package pipeline

import (
	"sort"
	"strings"

	"github.com/ukydev/vessel-ops/internal/models"
)

// DefaultScopeField is the seafarer field holding the assigned vessel id.
const DefaultScopeField = "vessel"

// Scope restricts a collection to records whose Field equals Value exactly.
type Scope struct {
	Field string
	Value string
}

// VesselScope scopes seafarers to one vessel.
func VesselScope(vesselID string) *Scope {
	return &Scope{Field: DefaultScopeField, Value: vesselID}
}

// Query carries the parameters of one pipeline run.
type Query struct {
	Search string
	Scope  *Scope
	Sort   SortSpec
}

// Process applies q to records. The input slice and its records are never
// modified; with an empty query the input is returned as is.
func Process(records []models.Record, q Query) []models.Record {
	out := records

	if q.Search != "" {
		out = filter(out, func(r models.Record) bool { return Matches(r, q.Search) })
	}

	if q.Scope != nil {
		field := q.Scope.Field
		if field == "" {
			field = DefaultScopeField
		}
		out = filter(out, func(r models.Record) bool {
			v := r.Get(field)
			return !v.IsAbsent() && v.String() == q.Scope.Value
		})
	}

	if !q.Sort.IsZero() {
		sorted := make([]models.Record, len(out))
		copy(sorted, out)
		key, desc := q.Sort.Key, q.Sort.Direction == Descending
		// Stable: records comparing equal keep their relative input order.
		sort.SliceStable(sorted, func(i, j int) bool {
			c := Compare(sorted[i].Get(key), sorted[j].Get(key))
			if desc {
				return c > 0
			}
			return c < 0
		})
		out = sorted
	}

	return out
}

// Matches reports whether any truthy field of r contains term, ignoring case.
func Matches(r models.Record, term string) bool {
	needle := strings.ToLower(term)
	for _, v := range r {
		if !v.Truthy() {
			continue
		}
		if strings.Contains(strings.ToLower(v.String()), needle) {
			return true
		}
	}
	return false
}

// Compare orders two raw field values. When both are numeric they compare
// numerically, otherwise as lower-cased text with falsy values read as "".
func Compare(a, b models.Value) int {
	if fa, ok := a.Float(); ok {
		if fb, ok := b.Float(); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(sortText(a), sortText(b))
}

func sortText(v models.Value) string {
	if !v.Truthy() {
		return ""
	}
	return strings.ToLower(v.String())
}

func filter(records []models.Record, keep func(models.Record) bool) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
