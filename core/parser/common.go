package parser

import (
	"log/slog"
	"strings"
)

// DefaultSearchFields is the placeholder search field set emitted when a
// dialect carries a search term but no field list. The search validator
// replaces it with the target model's searchable fields.
var DefaultSearchFields = []string{"name", "title", "description"}

// clampPagination enforces the common pagination constraints on a parsed
// window: page >= 1, pageSize within (0, MaxPageSize], offset derived from
// page unless the dialect overrode it.
func clampPagination(p *Pagination, offsetOverridden bool, log *slog.Logger) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		if log != nil {
			log.Warn("page size clamped",
				"requested", p.PageSize,
				"max", MaxPageSize,
			)
		}
		p.PageSize = MaxPageSize
	}
	if !offsetOverridden {
		p.Offset = (p.Page - 1) * p.PageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	p.Limit = p.PageSize
}

// searchFromRaw builds the unified search record from the shared search/q
// parameter pair. The term is trimmed; an empty term disables search.
func searchFromRaw(raw RawParams, keys ...string) Search {
	for _, key := range keys {
		if term := strings.TrimSpace(raw[key]); term != "" {
			return Search{
				Term:     term,
				Fields:   append([]string{}, DefaultSearchFields...),
				Operator: OpContains,
			}
		}
	}
	return Search{Operator: OpContains}
}

// splitCSV splits a comma-separated value, trimming whitespace and dropping
// empties.
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
