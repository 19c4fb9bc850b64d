package parser

import (
	"testing"
)

func TestSanitizeFieldName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "name", "name"},
		{"underscore and dot", "user_profile.email", "user_profile.email"},
		{"strips injection", "name; DROP TABLE users--", "nameDROPTABLEusers"},
		{"strips brackets and quotes", `col"]['`, "col"},
		{"digits survive", "field123", "field123"},
		{"empty", "", ""},
		{"only junk", "!@#$%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFieldName(tt.input); got != tt.want {
				t.Errorf("SanitizeFieldName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDirection(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"asc", "asc"},
		{"ASC", "asc"},
		{"desc", "desc"},
		{"DESC", "desc"},
		{" Desc ", "desc"},
		{"descending", "asc"},
		{"", "asc"},
	}

	for _, tt := range tests {
		if got := NormalizeDirection(tt.input); got != tt.want {
			t.Errorf("NormalizeDirection(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHasSearch(t *testing.T) {
	tests := []struct {
		name   string
		search Search
		want   bool
	}{
		{"term and fields", Search{Term: "widget", Fields: []string{"name"}}, true},
		{"no term", Search{Fields: []string{"name"}}, false},
		{"whitespace term", Search{Term: "   ", Fields: []string{"name"}}, false},
		{"no fields", Search{Term: "widget"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ParsedRequest{Search: tt.search}
			if got := p.HasSearch(); got != tt.want {
				t.Errorf("HasSearch(%+v) = %v, want %v", tt.search, got, tt.want)
			}
		})
	}
}

func TestClampPagination(t *testing.T) {
	tests := []struct {
		name       string
		in         Pagination
		overridden bool
		want       Pagination
	}{
		{
			name: "defaults applied",
			in:   Pagination{Page: 0, PageSize: 0},
			want: Pagination{Page: 1, PageSize: DefaultPageSize, Offset: 0, Limit: DefaultPageSize},
		},
		{
			name: "oversized page clamped",
			in:   Pagination{Page: 2, PageSize: 5000},
			want: Pagination{Page: 2, PageSize: MaxPageSize, Offset: MaxPageSize, Limit: MaxPageSize},
		},
		{
			name: "offset derived from page",
			in:   Pagination{Page: 3, PageSize: 10},
			want: Pagination{Page: 3, PageSize: 10, Offset: 20, Limit: 10},
		},
		{
			name:       "explicit offset preserved",
			in:         Pagination{Page: 2, PageSize: 20, Offset: 25},
			overridden: true,
			want:       Pagination{Page: 2, PageSize: 20, Offset: 25, Limit: 20},
		},
		{
			name: "negative page normalized",
			in:   Pagination{Page: -4, PageSize: 10},
			want: Pagination{Page: 1, PageSize: 10, Offset: 0, Limit: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			clampPagination(&p, tt.overridden, nil)
			if p != tt.want {
				t.Errorf("clampPagination(%+v) = %+v, want %+v", tt.in, p, tt.want)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, b ,,c ")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitCSV returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
