package formatter

import (
	"testing"

	"github.com/gridkit-dev/pb-gridkit/core/parser"
)

func TestCacheKeyDeterministic(t *testing.T) {
	build := func() *parser.ParsedRequest {
		return &parser.ParsedRequest{
			Pagination: parser.Pagination{Page: 2, PageSize: 10, Offset: 10, Limit: 10},
			Filters: []parser.Filter{
				{Field: "status", Operator: parser.OpEquals, Value: "active"},
			},
			Sorting: []parser.SortField{{Field: "name", Direction: "asc"}},
			Search:  parser.Search{Term: "widget", Fields: []string{"name"}},
		}
	}

	a, b := CacheKey(build()), CacheKey(build())
	if a != b {
		t.Errorf("identical requests hashed differently: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("key length = %d", len(a))
	}
}

func TestCacheKeyIgnoresMeta(t *testing.T) {
	base := &parser.ParsedRequest{
		Pagination: parser.Pagination{Page: 1, PageSize: 20, Limit: 20},
		Meta:       parser.Meta{DetectedFormat: "ag-grid", ParamCount: 9},
	}
	other := &parser.ParsedRequest{
		Pagination: parser.Pagination{Page: 1, PageSize: 20, Limit: 20},
		Meta:       parser.Meta{DetectedFormat: "simple", ParamCount: 2},
	}

	if CacheKey(base) != CacheKey(other) {
		t.Error("inbound dialect must not change the cache key")
	}
}

func TestCacheKeyChangesWithQuery(t *testing.T) {
	base := &parser.ParsedRequest{Pagination: parser.Pagination{Page: 1, PageSize: 20, Limit: 20}}
	filtered := &parser.ParsedRequest{
		Pagination: parser.Pagination{Page: 1, PageSize: 20, Limit: 20},
		Filters:    []parser.Filter{{Field: "age", Operator: parser.OpGreaterThan, Value: 30.0}},
	}

	if CacheKey(base) == CacheKey(filtered) {
		t.Error("different filters must hash differently")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	for _, offset := range []int{0, 1, 19, 1000} {
		cursor := encodeCursor(offset)
		if got := DecodeCursor(cursor); got != offset {
			t.Errorf("DecodeCursor(encodeCursor(%d)) = %d", offset, got)
		}
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	tests := []string{
		"",
		"not base64 !!",
		"cm93Og",     // "row:" with no offset
		"YWJjOjEy",   // wrong prefix
		"cm93Oi0x",   // "row:-1"
		"cm93OmFiYw", // "row:abc"
	}

	for _, cursor := range tests {
		if got := DecodeCursor(cursor); got != 0 {
			t.Errorf("DecodeCursor(%q) = %d, want 0", cursor, got)
		}
	}
}
