package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/vessel-ops/internal/models"
)

func crew() []models.Record {
	return []models.Record{
		{"id": models.Number(1), "name": models.Text("Kim A."), "rank": models.Text("CAPTAIN"), "vessel": models.Number(7), "vessel_name": models.Text("Atlantic Star")},
		{"id": models.Number(2), "name": models.Text("smith B."), "rank": models.Text("ABLE_SEAMAN"), "vessel": models.Number(9), "vessel_name": models.Text("HMM Oslo")},
		{"id": models.Number(3), "name": models.Text("Lee C."), "rank": models.Text("CHIEF_MATE"), "vessel": models.Number(7), "vessel_name": models.Text("Atlantic Star")},
		{"id": models.Number(4), "name": models.Text("Park D."), "rank": models.Text("ABLE_SEAMAN"), "vessel": models.Absent(), "vessel_name": models.Absent()},
		{"id": models.Number(5), "name": models.Text("Jones E."), "rank": models.Text("CHIEF_ENGINEER"), "vessel": models.Text("77"), "vessel_name": models.Text("Ever Given")},
	}
}

func ids(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

func TestProcess_EmptyQueryIsIdentity(t *testing.T) {
	in := crew()
	out := Process(in, Query{})
	assert.Equal(t, ids(in), ids(out))
}

func TestProcess_SearchKeepsOnlyMatchingRecords(t *testing.T) {
	in := crew()
	for _, term := range []string{"atlantic", "ABLE", "chief", "e.", "zzz", "7"} {
		t.Run(term, func(t *testing.T) {
			out := Process(in, Query{Search: term})
			assert.LessOrEqual(t, len(out), len(in))
			for _, r := range out {
				assert.True(t, Matches(r, term), "record %s does not contain %q", r.ID(), term)
			}
			for _, r := range in {
				if Matches(r, term) {
					assert.Contains(t, ids(out), r.ID())
				}
			}
		})
	}
}

func TestProcess_SearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	out := Process(crew(), Query{Search: "SMITH"})
	assert.Equal(t, []string{"2"}, ids(out))

	out = Process(crew(), Query{Search: "hmm oslo"})
	assert.Equal(t, []string{"2"}, ids(out))
}

func TestProcess_SearchIgnoresFalsyValues(t *testing.T) {
	records := []models.Record{
		{"id": models.Text("a"), "count": models.Number(0), "flag": models.Bool(false)},
		{"id": models.Text("b"), "count": models.Number(10), "flag": models.Bool(true)},
	}

	assert.Equal(t, []string{"b"}, ids(Process(records, Query{Search: "0"})))
	assert.Empty(t, Process(records, Query{Search: "false"}))
}

func TestProcess_ScopeUsesExactIDEquality(t *testing.T) {
	out := Process(crew(), Query{Scope: VesselScope("7")})
	assert.Equal(t, []string{"1", "3"}, ids(out))
}

func TestProcess_ScopeExcludesUnassigned(t *testing.T) {
	out := Process(crew(), Query{Scope: VesselScope("9")})
	assert.Equal(t, []string{"2"}, ids(out))
}

func TestProcess_SearchThenScope(t *testing.T) {
	out := Process(crew(), Query{Search: "chief", Scope: VesselScope("7")})
	assert.Equal(t, []string{"3"}, ids(out))
}

func TestProcess_NumericColumnsSortNumerically(t *testing.T) {
	certs := []models.Record{
		{"id": models.Number(1), "days_left": models.Number(5)},
		{"id": models.Number(2), "days_left": models.Number(30)},
		{"id": models.Number(3), "days_left": models.Number(2)},
	}

	out := Process(certs, Query{Sort: SortSpec{Key: "days_left", Direction: Ascending}})
	var days []string
	for _, r := range out {
		days = append(days, r.Get("days_left").String())
	}
	assert.Equal(t, []string{"2", "5", "30"}, days)
}

func TestProcess_NumericTextSortsNumerically(t *testing.T) {
	vessels := []models.Record{
		{"id": models.Number(1), "built_year": models.Text("2019")},
		{"id": models.Number(2), "built_year": models.Number(2010)},
		{"id": models.Number(3), "built_year": models.Text("2025")},
	}

	out := Process(vessels, Query{Sort: SortSpec{Key: "built_year", Direction: Descending}})
	assert.Equal(t, []string{"3", "1", "2"}, ids(out))
}

func TestProcess_TextSortIsCaseInsensitive(t *testing.T) {
	out := Process(crew(), Query{Sort: SortSpec{Key: "name", Direction: Ascending}})
	assert.Equal(t, []string{"5", "1", "3", "4", "2"}, ids(out))
}

func TestProcess_AbsentValuesSortAsEmptyText(t *testing.T) {
	out := Process(crew(), Query{Sort: SortSpec{Key: "vessel_name", Direction: Ascending}})
	assert.Equal(t, "4", out[0].ID())
}

func TestProcess_SortIsPermutationAndReversible(t *testing.T) {
	in := crew()
	asc := Process(in, Query{Sort: SortSpec{Key: "name", Direction: Ascending}})
	desc := Process(in, Query{Sort: SortSpec{Key: "name", Direction: Descending}})

	require.Len(t, asc, len(in))
	assert.ElementsMatch(t, ids(in), ids(asc))

	reversed := make([]string, len(desc))
	for i, id := range ids(desc) {
		reversed[len(desc)-1-i] = id
	}
	assert.Equal(t, ids(asc), reversed)
}

func TestProcess_SortTiesKeepInputOrder(t *testing.T) {
	out := Process(crew(), Query{Sort: SortSpec{Key: "rank", Direction: Ascending}})
	// ABLE_SEAMAN ties: 2 precedes 4 in the input.
	assert.Equal(t, []string{"2", "4"}, ids(out[:2]))
}

func TestProcess_DoesNotMutateInput(t *testing.T) {
	in := crew()
	before := ids(in)
	_ = Process(in, Query{Search: "a", Scope: VesselScope("7"), Sort: SortSpec{Key: "name", Direction: Descending}})
	assert.Equal(t, before, ids(in))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.Value
		expected int
	}{
		{"numbers", models.Number(2), models.Number(30), -1},
		{"number and numeric text", models.Text("30"), models.Number(5), 1},
		{"mixed falls back to text", models.Number(2), models.Text("abc"), -1},
		{"case-insensitive equal", models.Text("Oslo"), models.Text("OSLO"), 0},
		{"absent before text", models.Absent(), models.Text("a"), -1},
		{"iso dates", models.Text("2026-01-05"), models.Text("2025-12-31"), 1},
		{"bools as text", models.Bool(false), models.Bool(true), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compare(tt.a, tt.b))
		})
	}
}

func TestMatches_LargeRecord(t *testing.T) {
	r := models.Record{"notes": models.Text(strings.Repeat("x", 1000) + "Needle")}
	assert.True(t, Matches(r, "needle"))
}
