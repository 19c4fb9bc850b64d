package parser

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cast"
)

// Requests rebuilt from a normalized ParsedRequest must re-parse to the
// same ParsedRequest: parse(encode(parse(raw))) == parse(raw) for every
// dialect, Meta.ParamCount aside.
func TestDialectRoundTrip(t *testing.T) {
	d := NewDispatcher(nil)

	tests := []struct {
		name   string
		raw    RawParams
		format string
		encode func(*ParsedRequest) RawParams
	}{
		{
			name: "ag-grid",
			raw: RawParams{
				"startRow":                "40",
				"endRow":                  "60",
				"sort[0][colId]":          "name",
				"sort[0][sort]":           "desc",
				"filters[status][type]":   "equals",
				"filters[status][filter]": "active",
				"filters[price][type]":    "inRange",
				"filters[price][filter]":  "10,20",
				"filters[deleted][type]":  "blank",
				"globalFilter":            "widget",
			},
			format: "ag-grid",
			encode: encodeAGGrid,
		},
		{
			name: "mui-datagrid",
			raw: RawParams{
				"page":        "2",
				"pageSize":    "25",
				"sortModel":   `[{"field":"created","sort":"desc"},{"field":"name","sort":"asc"}]`,
				"filterModel": `{"items":[{"field":"status","operator":"isAnyOf","value":["active","pending"]},{"field":"price","operator":">","value":10}]}`,
				"q":           "widget",
			},
			format: "mui-datagrid",
			encode: encodeMUI,
		},
		{
			name: "structured",
			raw: RawParams{
				"page":                    "3",
				"pageSize":                "50",
				"filter[name][contains]":  "john",
				"filter[status][in]":      "active,pending",
				"filter[deleted][isNull]": "",
				"sort[0][field]":          "created",
				"sort[0][direction]":      "desc",
				"q":                       "widget",
				"search_fields":           "name,sku",
			},
			format: "structured",
			encode: encodeStructured,
		},
		{
			name: "simple",
			raw: RawParams{
				"page":     "2",
				"pageSize": "10",
				"sort":     "name:asc,created:desc",
				"status":   "active",
				"q":        "widget",
			},
			format: "simple",
			encode: encodeSimple,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := d.Parse(tt.raw)
			if first.Meta.DetectedFormat != tt.format {
				t.Fatalf("first parse detected %q, want %q", first.Meta.DetectedFormat, tt.format)
			}

			second := d.Parse(tt.encode(first))
			if second.Meta.DetectedFormat != tt.format {
				t.Fatalf("re-encoded request detected as %q, want %q", second.Meta.DetectedFormat, tt.format)
			}
			if first.Pagination != second.Pagination {
				t.Errorf("pagination drifted: %+v != %+v", first.Pagination, second.Pagination)
			}
			if !reflect.DeepEqual(first.Sorting, second.Sorting) {
				t.Errorf("sorting drifted: %+v != %+v", first.Sorting, second.Sorting)
			}
			if !reflect.DeepEqual(first.Filters, second.Filters) {
				t.Errorf("filters drifted: %+v != %+v", first.Filters, second.Filters)
			}
			if !reflect.DeepEqual(first.Search, second.Search) {
				t.Errorf("search drifted: %+v != %+v", first.Search, second.Search)
			}
		})
	}
}

// agGridTypeFor inverts agGridOperators for re-encoding.
var agGridTypeFor = map[string]string{
	OpEquals:             "equals",
	OpNotEquals:          "notEqual",
	OpContains:           "contains",
	OpNotContains:        "notContains",
	OpStartsWith:         "startsWith",
	OpEndsWith:           "endsWith",
	OpLessThan:           "lessThan",
	OpLessThanOrEqual:    "lessThanOrEqual",
	OpGreaterThan:        "greaterThan",
	OpGreaterThanOrEqual: "greaterThanOrEqual",
	OpBetween:            "inRange",
	OpIsNull:             "blank",
	OpIsNotNull:          "notBlank",
}

// muiOperatorFor inverts muiOperators for re-encoding.
var muiOperatorFor = map[string]string{
	OpEquals:             "equals",
	OpNotEquals:          "!=",
	OpContains:           "contains",
	OpStartsWith:         "startsWith",
	OpEndsWith:           "endsWith",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpIsNull:             "isEmpty",
	OpIsNotNull:          "isNotEmpty",
	OpIn:                 "isAnyOf",
}

func scalarValue(value any) string {
	if list, ok := value.([]string); ok {
		return strings.Join(list, ",")
	}
	return cast.ToString(value)
}

func encodeAGGrid(p *ParsedRequest) RawParams {
	raw := RawParams{
		"startRow": strconv.Itoa(p.Pagination.Offset),
		"endRow":   strconv.Itoa(p.Pagination.Offset + p.Pagination.PageSize),
	}
	for _, s := range p.Sorting {
		raw[fmt.Sprintf("sort[%d][colId]", s.Priority)] = s.Field
		raw[fmt.Sprintf("sort[%d][sort]", s.Priority)] = s.Direction
	}
	for _, f := range p.Filters {
		raw[fmt.Sprintf("filters[%s][type]", f.Field)] = agGridTypeFor[f.Operator]
		if f.Operator == OpIsNull || f.Operator == OpIsNotNull {
			continue
		}
		raw[fmt.Sprintf("filters[%s][filter]", f.Field)] = scalarValue(f.Value)
	}
	if p.Search.Term != "" {
		raw["globalFilter"] = p.Search.Term
	}
	return raw
}

func encodeMUI(p *ParsedRequest) RawParams {
	sortItems := make([]map[string]any, 0, len(p.Sorting))
	for _, s := range p.Sorting {
		sortItems = append(sortItems, map[string]any{"field": s.Field, "sort": s.Direction})
	}
	filterItems := make([]map[string]any, 0, len(p.Filters))
	for _, f := range p.Filters {
		item := map[string]any{"field": f.Field, "operator": muiOperatorFor[f.Operator]}
		if f.Operator != OpIsNull && f.Operator != OpIsNotNull {
			item["value"] = f.Value
		}
		filterItems = append(filterItems, item)
	}
	sortJSON, _ := json.Marshal(sortItems)
	filterJSON, _ := json.Marshal(map[string]any{"items": filterItems})

	raw := RawParams{
		"page":        strconv.Itoa(p.Pagination.Page - 1),
		"pageSize":    strconv.Itoa(p.Pagination.PageSize),
		"sortModel":   string(sortJSON),
		"filterModel": string(filterJSON),
	}
	if p.Search.Term != "" {
		raw["q"] = p.Search.Term
	}
	return raw
}

// encodeStructured emits page/pageSize rather than a row window so the
// rebuilt request is not claimed by the ag-grid parser.
func encodeStructured(p *ParsedRequest) RawParams {
	raw := RawParams{
		"page":     strconv.Itoa(p.Pagination.Page),
		"pageSize": strconv.Itoa(p.Pagination.PageSize),
	}
	for _, s := range p.Sorting {
		raw[fmt.Sprintf("sort[%d][field]", s.Priority)] = s.Field
		raw[fmt.Sprintf("sort[%d][direction]", s.Priority)] = s.Direction
	}
	for _, f := range p.Filters {
		raw[fmt.Sprintf("filter[%s][%s]", f.Field, f.Operator)] = scalarValue(f.Value)
	}
	if p.Search.Term != "" {
		raw["q"] = p.Search.Term
		raw["search_fields"] = strings.Join(p.Search.Fields, ",")
	}
	return raw
}

func encodeSimple(p *ParsedRequest) RawParams {
	raw := RawParams{
		"page":     strconv.Itoa(p.Pagination.Page),
		"pageSize": strconv.Itoa(p.Pagination.PageSize),
	}
	if len(p.Sorting) > 0 {
		entries := make([]string, len(p.Sorting))
		for i, s := range p.Sorting {
			entries[i] = s.Field + ":" + s.Direction
		}
		raw["sort"] = strings.Join(entries, ",")
	}
	for _, f := range p.Filters {
		raw[f.Field] = cast.ToString(f.Value)
	}
	if p.Search.Term != "" {
		raw["q"] = p.Search.Term
	}
	return raw
}
