package parser

import (
	"testing"
)

func TestMUICanHandle(t *testing.T) {
	p := NewMUIParser(nil)

	if !p.CanHandle(RawParams{"filterModel": "{}"}) {
		t.Error("filterModel must match")
	}
	if !p.CanHandle(RawParams{"sortModel": "[]"}) {
		t.Error("sortModel must match")
	}
	if p.CanHandle(RawParams{"page": "1"}) {
		t.Error("plain params must not match")
	}
}

func TestMUIZeroBasedPage(t *testing.T) {
	p := NewMUIParser(nil)

	parsed := p.Parse(RawParams{
		"filterModel": `{"items":[]}`,
		"page":        "1",
		"pageSize":    "25",
	})

	if parsed.Pagination.Page != 2 {
		t.Errorf("page = %d, want 2 (MUI pages are 0-based)", parsed.Pagination.Page)
	}
	if parsed.Pagination.PageSize != 25 {
		t.Errorf("pageSize = %d, want 25", parsed.Pagination.PageSize)
	}
	if parsed.Pagination.Offset != 25 {
		t.Errorf("offset = %d, want 25", parsed.Pagination.Offset)
	}
}

func TestMUISortModel(t *testing.T) {
	p := NewMUIParser(nil)

	parsed := p.Parse(RawParams{
		"sortModel": `[{"field":"name","sort":"desc"},{"field":"","sort":"asc"},{"field":"created"}]`,
	})

	if len(parsed.Sorting) != 1 {
		t.Fatalf("got %d sorts, want 1 (missing field/direction dropped)", len(parsed.Sorting))
	}
	if parsed.Sorting[0].Field != "name" || parsed.Sorting[0].Direction != "desc" {
		t.Errorf("sort = %+v", parsed.Sorting[0])
	}
}

func TestMUIFilterModelItems(t *testing.T) {
	p := NewMUIParser(nil)

	tests := []struct {
		name     string
		model    string
		wantOp   string
		wantVal  any
		wantNone bool
	}{
		{
			name:    "is maps to equals",
			model:   `{"items":[{"field":"status","operator":"is","value":"active"}]}`,
			wantOp:  OpEquals,
			wantVal: "active",
		},
		{
			name:    "after maps to greaterThan",
			model:   `{"items":[{"field":"created","operator":"after","value":"2024-01-01"}]}`,
			wantOp:  OpGreaterThan,
			wantVal: "2024-01-01",
		},
		{
			name:   "isEmpty needs no value",
			model:  `{"items":[{"field":"note","operator":"isEmpty"}]}`,
			wantOp: OpIsNull,
		},
		{
			name:     "nil value dropped",
			model:    `{"items":[{"field":"name","operator":"contains"}]}`,
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := p.Parse(RawParams{"filterModel": tt.model})
			if tt.wantNone {
				if len(parsed.Filters) != 0 {
					t.Fatalf("got %d filters, want 0", len(parsed.Filters))
				}
				return
			}
			if len(parsed.Filters) != 1 {
				t.Fatalf("got %d filters, want 1", len(parsed.Filters))
			}
			got := parsed.Filters[0]
			if got.Operator != tt.wantOp {
				t.Errorf("operator = %q, want %q", got.Operator, tt.wantOp)
			}
			if tt.wantVal != nil && got.Value != tt.wantVal {
				t.Errorf("value = %v, want %v", got.Value, tt.wantVal)
			}
		})
	}
}

func TestMUIIsAnyOfBecomesIn(t *testing.T) {
	p := NewMUIParser(nil)

	parsed := p.Parse(RawParams{
		"filterModel": `{"items":[{"field":"status","operator":"isAnyOf","value":["a","b"]}]}`,
	})

	if len(parsed.Filters) != 1 {
		t.Fatalf("got %d filters, want 1", len(parsed.Filters))
	}
	values, ok := parsed.Filters[0].Value.([]string)
	if !ok || len(values) != 2 || values[0] != "a" || values[1] != "b" {
		t.Errorf("in value = %v", parsed.Filters[0].Value)
	}
}

func TestMUIFlatFilterModel(t *testing.T) {
	p := NewMUIParser(nil)

	parsed := p.Parse(RawParams{
		"filterModel": `{"status":"active","age":30}`,
	})

	if len(parsed.Filters) != 2 {
		t.Fatalf("got %d filters, want 2", len(parsed.Filters))
	}
	for _, f := range parsed.Filters {
		if f.Operator != OpEquals {
			t.Errorf("flat filter %q operator = %q, want equals", f.Field, f.Operator)
		}
	}
}

func TestMUIMalformedJSONIgnored(t *testing.T) {
	p := NewMUIParser(nil)

	parsed := p.Parse(RawParams{
		"filterModel": `{"items":`,
		"sortModel":   `[{`,
	})

	if len(parsed.Filters) != 0 || len(parsed.Sorting) != 0 {
		t.Errorf("malformed JSON produced filters=%v sorts=%v", parsed.Filters, parsed.Sorting)
	}
	if parsed.Pagination.Page != 1 || parsed.Pagination.PageSize != DefaultPageSize {
		t.Errorf("defaults not applied: %+v", parsed.Pagination)
	}
}
