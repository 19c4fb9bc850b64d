package parser

import (
	"encoding/json"
	"log/slog"

	"github.com/spf13/cast"
)

// muiOperators maps MUI DataGrid filter operators onto the canonical set.
// It is broader than the AG-Grid table and includes symbolic comparators and
// the date operators. Unknown operators fall back to equals.
var muiOperators = map[string]string{
	"contains":   OpContains,
	"equals":     OpEquals,
	"is":         OpEquals,
	"=":          OpEquals,
	"not":        OpNotEquals,
	"!=":         OpNotEquals,
	"startsWith": OpStartsWith,
	"endsWith":   OpEndsWith,
	">":          OpGreaterThan,
	">=":         OpGreaterThanOrEqual,
	"<":          OpLessThan,
	"<=":         OpLessThanOrEqual,
	"after":      OpGreaterThan,
	"onOrAfter":  OpGreaterThanOrEqual,
	"before":     OpLessThan,
	"onOrBefore": OpLessThanOrEqual,
	"isEmpty":    OpIsNull,
	"isNotEmpty": OpIsNotNull,
	"isAnyOf":    OpIn,
}

// MUIParser understands the MUI DataGrid dialect: JSON-encoded filterModel
// and sortModel parameters and 0-based page numbers.
type MUIParser struct {
	log *slog.Logger
}

func NewMUIParser(log *slog.Logger) *MUIParser {
	return &MUIParser{log: log}
}

func (p *MUIParser) FormatName() string { return "mui-datagrid" }

// CanHandle matches when either grid model parameter is present.
func (p *MUIParser) CanHandle(raw RawParams) bool {
	_, hasFilter := raw["filterModel"]
	_, hasSort := raw["sortModel"]
	return hasFilter || hasSort
}

func (p *MUIParser) Parse(raw RawParams) *ParsedRequest {
	parsed := newParsedRequest()

	// MUI pages are 0-based
	if page, ok := raw["page"]; ok {
		parsed.Pagination.Page = cast.ToInt(page) + 1
	}
	if size, ok := raw["pageSize"]; ok {
		parsed.Pagination.PageSize = cast.ToInt(size)
	}
	clampPagination(&parsed.Pagination, false, p.log)

	parsed.Sorting = p.parseSortModel(raw["sortModel"])
	parsed.Filters = p.parseFilterModel(raw["filterModel"])
	parsed.Search = searchFromRaw(raw, "search", "q")

	return parsed
}

type muiSortItem struct {
	Field string `json:"field"`
	Sort  string `json:"sort"`
}

// parseSortModel decodes the sortModel JSON array. Items lacking a field or
// a direction are dropped; decode failures yield an empty list.
func (p *MUIParser) parseSortModel(encoded string) []SortField {
	if encoded == "" {
		return []SortField{}
	}
	var items []muiSortItem
	if err := json.Unmarshal([]byte(encoded), &items); err != nil {
		if p.log != nil {
			p.log.Debug("invalid sortModel JSON, ignoring", "error", err)
		}
		return []SortField{}
	}
	sorts := make([]SortField, 0, len(items))
	for i, item := range items {
		field := SanitizeFieldName(item.Field)
		if field == "" || item.Sort == "" {
			continue
		}
		sorts = append(sorts, SortField{
			Field:     field,
			Direction: NormalizeDirection(item.Sort),
			Priority:  i,
		})
	}
	return sorts
}

type muiFilterItem struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

type muiFilterModel struct {
	Items []muiFilterItem `json:"items"`
}

// parseFilterModel supports both filterModel shapes: the items array and the
// flat field->value object that expands to equality filters.
func (p *MUIParser) parseFilterModel(encoded string) []Filter {
	if encoded == "" {
		return []Filter{}
	}

	var model muiFilterModel
	if err := json.Unmarshal([]byte(encoded), &model); err == nil && model.Items != nil {
		return p.filtersFromItems(model.Items)
	}

	var flat map[string]any
	if err := json.Unmarshal([]byte(encoded), &flat); err != nil {
		if p.log != nil {
			p.log.Debug("invalid filterModel JSON, ignoring", "error", err)
		}
		return []Filter{}
	}
	// a flat object may still carry an "items" key of the wrong shape
	delete(flat, "items")

	filters := make([]Filter, 0, len(flat))
	for field, value := range flat {
		name := SanitizeFieldName(field)
		if name == "" || value == nil {
			continue
		}
		filters = append(filters, Filter{Field: name, Operator: OpEquals, Value: value})
	}
	return filters
}

func (p *MUIParser) filtersFromItems(items []muiFilterItem) []Filter {
	filters := make([]Filter, 0, len(items))
	for _, item := range items {
		name := SanitizeFieldName(item.Field)
		operator, known := muiOperators[item.Operator]
		if !known {
			operator = OpEquals
		}
		if name == "" || item.Operator == "" {
			continue
		}
		if operator == OpIsNull || operator == OpIsNotNull {
			filters = append(filters, Filter{Field: name, Operator: operator})
			continue
		}
		if item.Value == nil {
			continue
		}
		f := Filter{Field: name, Operator: operator, Value: item.Value}
		if operator == OpIn {
			f.Value = cast.ToStringSlice(item.Value)
		}
		filters = append(filters, f)
	}
	return filters
}
