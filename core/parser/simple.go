package parser

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// reservedParams are parameter names that never become equality filters in
// the simple dialect: the union of every other dialect's keys plus the
// search and response-format controls.
var reservedParams = map[string]bool{
	"page":                      true,
	"pageSize":                  true,
	"per_page":                  true,
	"sort":                      true,
	"sortBy":                    true,
	"sortOrder":                 true,
	"startRow":                  true,
	"endRow":                    true,
	"filterModel":               true,
	"sortModel":                 true,
	"search":                    true,
	"q":                         true,
	"search_fields":             true,
	"include_total":             true,
	"include_available_filters": true,
	"responseFormat":            true,
	"format":                    true,
}

// SimpleParser is the fallback dialect: flat page/pageSize/sort parameters
// and any unreserved parameter interpreted as an equality filter.
type SimpleParser struct {
	log *slog.Logger
}

func NewSimpleParser(log *slog.Logger) *SimpleParser {
	return &SimpleParser{log: log}
}

func (p *SimpleParser) FormatName() string { return "simple" }

// CanHandle always matches; the simple parser terminates the dispatch chain.
func (p *SimpleParser) CanHandle(raw RawParams) bool { return true }

func (p *SimpleParser) Parse(raw RawParams) *ParsedRequest {
	parsed := newParsedRequest()

	if page, ok := raw["page"]; ok {
		parsed.Pagination.Page = cast.ToInt(page)
	}
	if size, ok := raw["pageSize"]; ok {
		parsed.Pagination.PageSize = cast.ToInt(size)
	} else if size, ok := raw["per_page"]; ok {
		parsed.Pagination.PageSize = cast.ToInt(size)
	}
	clampPagination(&parsed.Pagination, false, p.log)

	parsed.Sorting = p.parseSorts(raw)
	parsed.Filters = p.parseFilters(raw)

	parsed.Search = searchFromRaw(raw, "search", "q")
	if fields, ok := raw["search_fields"]; ok && parsed.Search.Term != "" {
		sanitized := make([]string, 0, 4)
		for _, f := range splitCSV(fields) {
			if s := SanitizeFieldName(f); s != "" {
				sanitized = append(sanitized, s)
			}
		}
		if len(sanitized) > 0 {
			parsed.Search.Fields = sanitized
		}
	}

	return parsed
}

// parseSorts understands sortBy+sortOrder and the comma-separated sort
// parameter where each entry is either "field" or "field:direction".
func (p *SimpleParser) parseSorts(raw RawParams) []SortField {
	if by, ok := raw["sortBy"]; ok {
		if field := SanitizeFieldName(by); field != "" {
			return []SortField{{
				Field:     field,
				Direction: NormalizeDirection(raw["sortOrder"]),
			}}
		}
	}

	entries := splitCSV(raw["sort"])
	sorts := make([]SortField, 0, len(entries))
	for i, entry := range entries {
		name, direction := entry, "asc"
		if at := strings.IndexByte(entry, ':'); at >= 0 {
			name, direction = entry[:at], entry[at+1:]
		}
		field := SanitizeFieldName(name)
		if field == "" {
			continue
		}
		sorts = append(sorts, SortField{
			Field:     field,
			Direction: NormalizeDirection(direction),
			Priority:  i,
		})
	}
	return sorts
}

// parseFilters turns every unreserved scalar parameter into an equality
// filter. Empty values are excluded but "0" is a legitimate value and is
// preserved.
func (p *SimpleParser) parseFilters(raw RawParams) []Filter {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		if reservedParams[key] || isBracketed(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	filters := make([]Filter, 0, len(keys))
	for _, key := range keys {
		value := raw[key]
		if value == "" {
			continue
		}
		field := SanitizeFieldName(key)
		if field == "" {
			continue
		}
		filters = append(filters, Filter{Field: field, Operator: OpEquals, Value: value})
	}
	return filters
}

// isBracketed reports whether a key belongs to one of the bracketed dialects
// (sort[0][...], filter[...][...], filters[...][...]).
func isBracketed(key string) bool {
	open := strings.IndexByte(key, '[')
	return open > 0 && strings.HasSuffix(key, "]")
}
