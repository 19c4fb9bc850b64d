package parser

import (
	"strings"
)

// Pagination defaults shared by every dialect parser.
const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

// Canonical filter operators emitted by the parsers. Downstream validation
// and SQL generation only ever see these values.
const (
	OpEquals             = "equals"
	OpNotEquals          = "notEquals"
	OpContains           = "contains"
	OpNotContains        = "notContains"
	OpStartsWith         = "startsWith"
	OpEndsWith           = "endsWith"
	OpGreaterThan        = "greaterThan"
	OpGreaterThanOrEqual = "greaterThanOrEqual"
	OpLessThan           = "lessThan"
	OpLessThanOrEqual    = "lessThanOrEqual"
	OpIn                 = "in"
	OpNotIn              = "notIn"
	OpBetween            = "between"
	OpIsNull             = "isNull"
	OpIsNotNull          = "isNotNull"
)

// RawParams is the flattened request parameter map handed to the parsers:
// query string, extracted path parameters and scalar JSON body values merged
// by the router before dispatch.
type RawParams map[string]string

// Pagination is the unified page window. Offset is derived from page/pageSize
// unless a dialect supplies an explicit row window.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Offset   int `json:"offset"`
	Limit    int `json:"limit"`
}

// SortField is one entry of the unified ordering, highest priority first.
type SortField struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // asc or desc
	Priority  int    `json:"priority,omitempty"`
}

// Filter is one unified filter criterion. Value holds a scalar for simple
// operators, a []string for in/notIn/between and nil for isNull/isNotNull.
// FieldType is filled in by the filter validator once the target model is
// known.
type Filter struct {
	Field     string `json:"field"`
	Operator  string `json:"operator"`
	Value     any    `json:"value,omitempty"`
	FieldType string `json:"fieldType,omitempty"`
}

// Search is the unified full-text request. An empty (trimmed) term means no
// search. Fields may start out as a dialect default and is replaced with the
// model's searchable set during validation.
type Search struct {
	Term     string   `json:"term"`
	Fields   []string `json:"fields"`
	Operator string   `json:"operator"` // contains, startsWith, endsWith or equals
}

// Meta records how the request was interpreted.
type Meta struct {
	DetectedFormat string `json:"detectedFormat"`
	Parser         string `json:"parser"`
	ParamCount     int    `json:"paramCount"`
}

// ParsedRequest is the canonical representation of pagination, sorting,
// filters and search regardless of the inbound dialect. It is mutated only
// during the parse/validate phase and treated as frozen once dispatched.
type ParsedRequest struct {
	Pagination Pagination  `json:"pagination"`
	Sorting    []SortField `json:"sorting"`
	Filters    []Filter    `json:"filters"`
	Search     Search      `json:"search"`
	Meta       Meta        `json:"meta"`
}

// HasSearch reports whether a usable search survived parsing and validation.
func (p *ParsedRequest) HasSearch() bool {
	return strings.TrimSpace(p.Search.Term) != "" && len(p.Search.Fields) > 0
}

// RequestParser is one dialect implementation. CanHandle is a cheap
// applicability predicate; Parse must never fail, falling back to documented
// defaults on malformed input.
type RequestParser interface {
	CanHandle(raw RawParams) bool
	Parse(raw RawParams) *ParsedRequest
	FormatName() string
}

// SanitizeFieldName keeps only [A-Za-z0-9_.] characters. Field names are
// sanitized at the moment of emission into a ParsedRequest, never at
// read-time.
func SanitizeFieldName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeDirection lowercases a sort direction and falls back to asc for
// anything that is not asc/desc.
func NormalizeDirection(dir string) string {
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "desc":
		return "desc"
	default:
		return "asc"
	}
}

// newParsedRequest returns a ParsedRequest with default pagination applied.
func newParsedRequest() *ParsedRequest {
	return &ParsedRequest{
		Pagination: Pagination{
			Page:     1,
			PageSize: DefaultPageSize,
			Offset:   0,
			Limit:    DefaultPageSize,
		},
		Sorting: []SortField{},
		Filters: []Filter{},
	}
}
