package parser

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// agGridOperators maps AG-Grid filter types onto the canonical operator set.
// Unknown types fall back to equals.
var agGridOperators = map[string]string{
	"equals":             OpEquals,
	"notEqual":           OpNotEquals,
	"contains":           OpContains,
	"notContains":        OpNotContains,
	"startsWith":         OpStartsWith,
	"endsWith":           OpEndsWith,
	"lessThan":           OpLessThan,
	"lessThanOrEqual":    OpLessThanOrEqual,
	"greaterThan":        OpGreaterThan,
	"greaterThanOrEqual": OpGreaterThanOrEqual,
	"inRange":            OpBetween,
	"blank":              OpIsNull,
	"notBlank":           OpIsNotNull,
}

// AGGridParser understands the AG-Grid server-side row model dialect:
// startRow/endRow windows, indexed sort[i][colId] keys and
// filters[field][type] criteria.
type AGGridParser struct {
	log *slog.Logger
}

func NewAGGridParser(log *slog.Logger) *AGGridParser {
	return &AGGridParser{log: log}
}

func (p *AGGridParser) FormatName() string { return "ag-grid" }

// CanHandle matches when both row window bounds are present.
func (p *AGGridParser) CanHandle(raw RawParams) bool {
	_, hasStart := raw["startRow"]
	_, hasEnd := raw["endRow"]
	return hasStart && hasEnd
}

func (p *AGGridParser) Parse(raw RawParams) *ParsedRequest {
	parsed := newParsedRequest()

	startRow := cast.ToInt(raw["startRow"])
	endRow := cast.ToInt(raw["endRow"])
	if startRow < 0 {
		startRow = 0
	}
	pageSize := endRow - startRow
	if pageSize < 1 {
		pageSize = 1
	}
	parsed.Pagination.PageSize = pageSize
	parsed.Pagination.Page = startRow/pageSize + 1
	parsed.Pagination.Offset = startRow
	clampPagination(&parsed.Pagination, true, p.log)

	parsed.Sorting = p.parseSorts(raw)
	parsed.Filters = p.parseFilters(raw)
	parsed.Search = searchFromRaw(raw, "search", "globalFilter")

	return parsed
}

// parseSorts collects sort[i][colId] / sort[i][sort] pairs in ascending
// index order. A missing direction defaults to asc; empty field names are
// discarded.
func (p *AGGridParser) parseSorts(raw RawParams) []SortField {
	indices := make([]int, 0, 4)
	seen := make(map[int]bool)
	for key := range raw {
		var idx int
		if n, _ := fmt.Sscanf(key, "sort[%d][", &idx); n == 1 && !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	sorts := make([]SortField, 0, len(indices))
	for _, idx := range indices {
		field := SanitizeFieldName(raw[fmt.Sprintf("sort[%d][colId]", idx)])
		if field == "" {
			continue
		}
		sorts = append(sorts, SortField{
			Field:     field,
			Direction: NormalizeDirection(raw[fmt.Sprintf("sort[%d][sort]", idx)]),
			Priority:  idx,
		})
	}
	return sorts
}

// parseFilters collects filters[field][type] / filters[field][filter] pairs.
// Entries with empty values are discarded.
func (p *AGGridParser) parseFilters(raw RawParams) []Filter {
	fields := make([]string, 0, 4)
	seen := make(map[string]bool)
	for key := range raw {
		if !strings.HasPrefix(key, "filters[") {
			continue
		}
		rest := key[len("filters["):]
		end := strings.Index(rest, "]")
		if end <= 0 {
			continue
		}
		field := rest[:end]
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	filters := make([]Filter, 0, len(fields))
	for _, field := range fields {
		value := raw[fmt.Sprintf("filters[%s][filter]", field)]
		filterType := raw[fmt.Sprintf("filters[%s][type]", field)]

		operator, known := agGridOperators[filterType]
		if !known {
			operator = OpEquals
		}

		name := SanitizeFieldName(field)
		if name == "" {
			continue
		}
		if operator == OpIsNull || operator == OpIsNotNull {
			filters = append(filters, Filter{Field: name, Operator: operator})
			continue
		}
		if value == "" {
			continue
		}
		f := Filter{Field: name, Operator: operator, Value: value}
		if operator == OpBetween {
			f.Value = splitCSV(value)
		}
		filters = append(filters, f)
	}
	return filters
}
