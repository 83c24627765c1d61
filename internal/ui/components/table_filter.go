package components

import (
	"strings"

	"github.com/rebeliceyang/lazydb/internal/db"
)

// SearchQuery represents a parsed navigator query
type SearchQuery struct {
	Pattern string // The search pattern (after removing prefix)
	Negate  bool   // True if query starts with !
	Field   string // "table", "schema" or "" for the qualified name
}

// Field prefix mappings
var fieldPrefixes = []struct {
	prefix string
	field  string
}{
	{"table:", "table"},
	{"schema:", "schema"},
	{"t:", "table"},
	{"s:", "schema"},
}

// ParseSearchQuery parses a navigator query string into structured form
// Examples:
//   - "plan" → {Pattern: "plan"}
//   - "!test" → {Pattern: "test", Negate: true}
//   - "t:plan" → {Pattern: "plan", Field: "table"}
//   - "!s:audit" → {Pattern: "audit", Negate: true, Field: "schema"}
func ParseSearchQuery(query string) SearchQuery {
	q := SearchQuery{}

	if strings.HasPrefix(query, "!") {
		q.Negate = true
		query = query[1:]
	}

	queryLower := strings.ToLower(query)
	for _, p := range fieldPrefixes {
		if strings.HasPrefix(queryLower, p.prefix) {
			q.Field = p.field
			query = query[len(p.prefix):]
			break
		}
	}

	q.Pattern = query
	return q
}

// FuzzyMatch performs fuzzy subsequence matching
// Returns whether the pattern matches and the positions of matched characters
// Matching is case-insensitive
func FuzzyMatch(pattern, target string) (bool, []int) {
	if pattern == "" {
		return true, []int{}
	}

	patternLower := strings.ToLower(pattern)
	targetLower := strings.ToLower(target)

	positions := make([]int, 0, len(pattern))
	patternIdx := 0

	for i := 0; i < len(targetLower) && patternIdx < len(patternLower); i++ {
		if targetLower[i] == patternLower[patternIdx] {
			positions = append(positions, i)
			patternIdx++
		}
	}

	if patternIdx == len(patternLower) {
		return true, positions
	}
	return false, nil
}

// TableMatch is a table that passed the navigator filter. Positions index
// into the qualified name for highlighting.
type TableMatch struct {
	Ref       db.TableRef
	Positions []int
}

// matchTarget returns the text a query is matched against and its offset
// within the qualified name.
func matchTarget(ref db.TableRef, field string) (string, int) {
	switch field {
	case "table":
		if ref.Schema == "" {
			return ref.Name, 0
		}
		return ref.Name, len(ref.Schema) + 1
	case "schema":
		return ref.Schema, 0
	default:
		return ref.String(), 0
	}
}

// FilterTables returns the tables matching query, in input order.
func FilterTables(tables []db.TableRef, query SearchQuery) []TableMatch {
	matches := make([]TableMatch, 0, len(tables))
	for _, ref := range tables {
		target, offset := matchTarget(ref, query.Field)
		ok, positions := FuzzyMatch(query.Pattern, target)
		if query.Negate {
			if query.Pattern != "" && ok {
				continue
			}
			positions = nil
		} else if !ok {
			continue
		}

		for i := range positions {
			positions[i] += offset
		}
		matches = append(matches, TableMatch{Ref: ref, Positions: positions})
	}
	return matches
}
