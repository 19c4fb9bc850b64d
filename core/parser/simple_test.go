package parser

import (
	"testing"
)

func TestSimpleUnknownKeyBecomesFilter(t *testing.T) {
	p := NewSimpleParser(nil)

	parsed := p.Parse(RawParams{
		"page":         "1",
		"name":         "john",
		"empty_string": "",
	})

	if len(parsed.Filters) != 1 {
		t.Fatalf("got %d filters, want 1: %+v", len(parsed.Filters), parsed.Filters)
	}
	f := parsed.Filters[0]
	if f.Field != "name" || f.Operator != OpEquals || f.Value != "john" {
		t.Errorf("filter = %+v", f)
	}
}

func TestSimpleZeroValuePreserved(t *testing.T) {
	p := NewSimpleParser(nil)

	parsed := p.Parse(RawParams{"count": "0"})

	if len(parsed.Filters) != 1 || parsed.Filters[0].Value != "0" {
		t.Errorf("zero-valued filter lost: %+v", parsed.Filters)
	}
}

func TestSimpleReservedParamsExcluded(t *testing.T) {
	p := NewSimpleParser(nil)

	parsed := p.Parse(RawParams{
		"page":           "2",
		"pageSize":       "10",
		"sort":           "name:desc",
		"search":         "x",
		"responseFormat": "swr",
		"include_total":  "1",
	})

	if len(parsed.Filters) != 0 {
		t.Errorf("reserved params leaked into filters: %+v", parsed.Filters)
	}
	if parsed.Pagination.Page != 2 || parsed.Pagination.PageSize != 10 {
		t.Errorf("pagination = %+v", parsed.Pagination)
	}
}

func TestSimpleBracketedKeysExcluded(t *testing.T) {
	p := NewSimpleParser(nil)

	parsed := p.Parse(RawParams{"filters[name][type]": "contains"})

	if len(parsed.Filters) != 0 {
		t.Errorf("bracketed key leaked into filters: %+v", parsed.Filters)
	}
}

func TestSimpleSortVariants(t *testing.T) {
	p := NewSimpleParser(nil)

	t.Run("sortBy with sortOrder", func(t *testing.T) {
		parsed := p.Parse(RawParams{"sortBy": "created", "sortOrder": "desc"})
		if len(parsed.Sorting) != 1 {
			t.Fatalf("got %d sorts", len(parsed.Sorting))
		}
		if parsed.Sorting[0].Field != "created" || parsed.Sorting[0].Direction != "desc" {
			t.Errorf("sort = %+v", parsed.Sorting[0])
		}
	})

	t.Run("comma list with directions", func(t *testing.T) {
		parsed := p.Parse(RawParams{"sort": "name:desc,created"})
		if len(parsed.Sorting) != 2 {
			t.Fatalf("got %d sorts", len(parsed.Sorting))
		}
		if parsed.Sorting[0].Field != "name" || parsed.Sorting[0].Direction != "desc" {
			t.Errorf("first sort = %+v", parsed.Sorting[0])
		}
		if parsed.Sorting[1].Field != "created" || parsed.Sorting[1].Direction != "asc" {
			t.Errorf("second sort = %+v", parsed.Sorting[1])
		}
	})
}

func TestSimpleSearch(t *testing.T) {
	p := NewSimpleParser(nil)

	parsed := p.Parse(RawParams{"q": " widget ", "search_fields": "name,sku"})

	if parsed.Search.Term != "widget" {
		t.Errorf("term = %q, want trimmed", parsed.Search.Term)
	}
	if len(parsed.Search.Fields) != 2 {
		t.Errorf("fields = %v", parsed.Search.Fields)
	}
}
