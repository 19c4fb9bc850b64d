package parser

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// structuredOperators is the set of operator names the structured dialect
// recognizes as the inner key of filter[field][operator]=value. Pairs with
// any other inner key are dropped.
var structuredOperators = map[string]bool{
	OpEquals:             true,
	OpNotEquals:          true,
	OpContains:           true,
	OpNotContains:        true,
	OpStartsWith:         true,
	OpEndsWith:           true,
	OpGreaterThan:        true,
	OpGreaterThanOrEqual: true,
	OpLessThan:           true,
	OpLessThanOrEqual:    true,
	OpIn:                 true,
	OpNotIn:              true,
	OpBetween:            true,
	OpIsNull:             true,
	OpIsNotNull:          true,
}

// StructuredParser understands the explicit bracketed dialect:
// filter[field][operator]=value pairs and sort[i][field]/sort[i][direction]
// sequences with integer priorities.
type StructuredParser struct {
	log *slog.Logger
}

func NewStructuredParser(log *slog.Logger) *StructuredParser {
	return &StructuredParser{log: log}
}

func (p *StructuredParser) FormatName() string { return "structured" }

// CanHandle matches when at least one well-formed filter[field][operator]
// key or sort[i][field] key is present.
func (p *StructuredParser) CanHandle(raw RawParams) bool {
	for key := range raw {
		if field, operator, ok := splitBracketPair(key, "filter"); ok {
			if field != "" && structuredOperators[operator] {
				return true
			}
		}
		if _, ok := sortFieldIndex(key); ok {
			return true
		}
	}
	return false
}

// sortFieldIndex extracts N from an exact sort[N][field] key. Sscanf alone
// ignores trailing input, so the reconstructed key is compared back against
// the original to reject sort[N][colId] and friends.
func sortFieldIndex(key string) (int, bool) {
	var idx int
	if n, _ := fmt.Sscanf(key, "sort[%d][field]", &idx); n != 1 {
		return 0, false
	}
	if key != fmt.Sprintf("sort[%d][field]", idx) {
		return 0, false
	}
	return idx, true
}

func (p *StructuredParser) Parse(raw RawParams) *ParsedRequest {
	parsed := newParsedRequest()

	// startRow/endRow wins over page/pageSize when both are present
	if _, hasStart := raw["startRow"]; hasStart {
		startRow := cast.ToInt(raw["startRow"])
		if startRow < 0 {
			startRow = 0
		}
		pageSize := cast.ToInt(raw["endRow"]) - startRow
		if pageSize < 1 {
			pageSize = 1
		}
		parsed.Pagination.PageSize = pageSize
		parsed.Pagination.Page = startRow/pageSize + 1
		parsed.Pagination.Offset = startRow
		clampPagination(&parsed.Pagination, true, p.log)
	} else {
		if page, ok := raw["page"]; ok {
			parsed.Pagination.Page = cast.ToInt(page)
		}
		if size, ok := raw["pageSize"]; ok {
			parsed.Pagination.PageSize = cast.ToInt(size)
		}
		clampPagination(&parsed.Pagination, false, p.log)
	}

	parsed.Sorting = p.parseSorts(raw)
	parsed.Filters = p.parseFilters(raw)
	parsed.Search = searchFromRaw(raw, "search", "q")
	if fields, ok := raw["search_fields"]; ok && parsed.Search.Term != "" {
		if list := splitCSV(fields); len(list) > 0 {
			sanitized := make([]string, 0, len(list))
			for _, f := range list {
				if s := SanitizeFieldName(f); s != "" {
					sanitized = append(sanitized, s)
				}
			}
			if len(sanitized) > 0 {
				parsed.Search.Fields = sanitized
			}
		}
	}

	return parsed
}

// parseSorts reads sort[i][field] / sort[i][direction] pairs ordered by
// their integer keys, preserving the explicit key as priority.
func (p *StructuredParser) parseSorts(raw RawParams) []SortField {
	indices := make([]int, 0, 4)
	seen := make(map[int]bool)
	for key := range raw {
		if idx, ok := sortFieldIndex(key); ok && !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	sorts := make([]SortField, 0, len(indices))
	for _, idx := range indices {
		field := SanitizeFieldName(raw[fmt.Sprintf("sort[%d][field]", idx)])
		if field == "" {
			continue
		}
		sorts = append(sorts, SortField{
			Field:     field,
			Direction: NormalizeDirection(raw[fmt.Sprintf("sort[%d][direction]", idx)]),
			Priority:  idx,
		})
	}
	return sorts
}

// parseFilters emits one filter per filter[field][operator]=value pair.
// Unrecognized operators are dropped; in/notIn/between split their value on
// commas.
func (p *StructuredParser) parseFilters(raw RawParams) []Filter {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		if _, _, ok := splitBracketPair(key, "filter"); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	filters := make([]Filter, 0, len(keys))
	for _, key := range keys {
		field, operator, _ := splitBracketPair(key, "filter")
		if !structuredOperators[operator] {
			if p.log != nil {
				p.log.Debug("dropping filter with unknown operator",
					"field", field,
					"operator", operator,
				)
			}
			continue
		}
		name := SanitizeFieldName(field)
		if name == "" {
			continue
		}

		if operator == OpIsNull || operator == OpIsNotNull {
			filters = append(filters, Filter{Field: name, Operator: operator})
			continue
		}

		value := raw[key]
		if value == "" {
			continue
		}
		f := Filter{Field: name, Operator: operator, Value: value}
		switch operator {
		case OpIn, OpNotIn, OpBetween:
			f.Value = splitCSV(value)
		}
		filters = append(filters, f)
	}
	return filters
}

// splitBracketPair decomposes prefix[a][b] keys into their two components.
func splitBracketPair(key, prefix string) (string, string, bool) {
	if !strings.HasPrefix(key, prefix+"[") {
		return "", "", false
	}
	rest := key[len(prefix)+1:]
	first := strings.Index(rest, "]")
	if first <= 0 || len(rest) < first+2 || rest[first+1] != '[' {
		return "", "", false
	}
	inner := rest[first+2:]
	second := strings.Index(inner, "]")
	if second <= 0 {
		return "", "", false
	}
	return rest[:first], inner[:second], true
}
