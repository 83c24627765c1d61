package components

import (
	"strings"
	"testing"

	"github.com/rebeliceyang/lazydb/internal/db"
)

func TestParseSearchQuery_Simple(t *testing.T) {
	q := ParseSearchQuery("plan")

	if q.Pattern != "plan" {
		t.Errorf("expected pattern 'plan', got '%s'", q.Pattern)
	}
	if q.Negate {
		t.Error("expected Negate=false")
	}
	if q.Field != "" {
		t.Errorf("expected empty Field, got '%s'", q.Field)
	}
}

func TestParseSearchQuery_Negate(t *testing.T) {
	q := ParseSearchQuery("!test")

	if q.Pattern != "test" {
		t.Errorf("expected pattern 'test', got '%s'", q.Pattern)
	}
	if !q.Negate {
		t.Error("expected Negate=true")
	}
}

func TestParseSearchQuery_Prefixes(t *testing.T) {
	tests := []struct {
		query   string
		field   string
		pattern string
	}{
		{"t:plan", "table", "plan"},
		{"table:plan", "table", "plan"},
		{"S:audit", "schema", "audit"},
		{"schema:audit", "schema", "audit"},
	}

	for _, tt := range tests {
		q := ParseSearchQuery(tt.query)
		if q.Field != tt.field || q.Pattern != tt.pattern {
			t.Errorf("%q: expected %s/%s, got %s/%s", tt.query, tt.field, tt.pattern, q.Field, q.Pattern)
		}
	}
}

func TestParseSearchQuery_NegateWithField(t *testing.T) {
	q := ParseSearchQuery("!s:pg_")

	if q.Pattern != "pg_" {
		t.Errorf("expected pattern 'pg_', got '%s'", q.Pattern)
	}
	if !q.Negate {
		t.Error("expected Negate=true")
	}
	if q.Field != "schema" {
		t.Errorf("expected Field 'schema', got '%s'", q.Field)
	}
}

func TestFuzzyMatch_ExactPrefix(t *testing.T) {
	match, positions := FuzzyMatch("plan", "plan_check_run")

	if !match {
		t.Error("expected match")
	}
	if len(positions) != 4 || positions[0] != 0 || positions[3] != 3 {
		t.Errorf("expected positions [0,1,2,3], got %v", positions)
	}
}

func TestFuzzyMatch_Subsequence(t *testing.T) {
	match, positions := FuzzyMatch("pcr", "plan_check_run")

	if !match {
		t.Error("expected match")
	}
	// p=0, c=5, r=11
	if len(positions) != 3 || positions[1] != 5 || positions[2] != 11 {
		t.Errorf("expected positions [0,5,11], got %v", positions)
	}
}

func TestFuzzyMatch_NoMatch(t *testing.T) {
	if match, _ := FuzzyMatch("xyz", "plan_check_run"); match {
		t.Error("expected no match")
	}
}

func TestFuzzyMatch_CaseInsensitive(t *testing.T) {
	if match, _ := FuzzyMatch("PLAN", "plan_check_run"); !match {
		t.Error("expected case-insensitive match")
	}
}

func TestFuzzyMatch_EmptyPattern(t *testing.T) {
	match, positions := FuzzyMatch("", "anything")

	if !match {
		t.Error("empty pattern should match everything")
	}
	if len(positions) != 0 {
		t.Error("empty pattern should have no positions")
	}
}

func testTables() []db.TableRef {
	return []db.TableRef{
		{Schema: "public", Name: "plan"},
		{Schema: "public", Name: "plan_check_run"},
		{Schema: "public", Name: "users"},
		{Schema: "audit", Name: "events"},
		{Name: "settings"},
	}
}

func TestFilterTables_SimpleMatch(t *testing.T) {
	matches := FilterTables(testTables(), ParseSearchQuery("plan"))

	if len(matches) != 2 {
		t.Errorf("expected 2 matches (plan, plan_check_run), got %d", len(matches))
	}
}

func TestFilterTables_TableField(t *testing.T) {
	// "pub" matches the qualified names but no bare table name.
	matches := FilterTables(testTables(), ParseSearchQuery("t:pub"))
	if len(matches) != 0 {
		t.Errorf("expected no table-name matches, got %d", len(matches))
	}

	matches = FilterTables(testTables(), ParseSearchQuery("t:us"))
	if len(matches) != 1 || matches[0].Ref.Name != "users" {
		t.Fatalf("expected users, got %v", matches)
	}
	// Positions are offsets into "public.users".
	if matches[0].Positions[0] != len("public.") {
		t.Errorf("expected highlight to start after the schema, got %v", matches[0].Positions)
	}
}

func TestFilterTables_SchemaField(t *testing.T) {
	matches := FilterTables(testTables(), ParseSearchQuery("s:audit"))

	if len(matches) != 1 || matches[0].Ref.Name != "events" {
		t.Errorf("expected audit.events only, got %v", matches)
	}
}

func TestFilterTables_Negate(t *testing.T) {
	matches := FilterTables(testTables(), ParseSearchQuery("!plan"))

	if len(matches) != 3 {
		t.Errorf("expected 3 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if strings.Contains(m.Ref.Name, "plan") {
			t.Errorf("negated query should not match '%s'", m.Ref)
		}
	}
}

func TestFilterTables_EmptyQuery(t *testing.T) {
	matches := FilterTables(testTables(), ParseSearchQuery(""))

	if len(matches) != len(testTables()) {
		t.Errorf("empty query should return every table, got %d", len(matches))
	}
	if got := FilterTables(testTables(), ParseSearchQuery("!")); len(got) != len(testTables()) {
		t.Errorf("bare negation should return every table, got %d", len(got))
	}
}
