// Package validator checks parsed filter and search criteria against the
// target model's field metadata. Invalid entries are dropped, never fatal:
// a request with a bad filter still executes, minus the bad filter.
package validator

import (
	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/parser"
)

// Capability describes what a field type supports in filtering and search.
type Capability struct {
	Filters           []string
	SearchOperators   []string
	DefaultSearchable bool
}

var (
	textOps = []string{
		parser.OpEquals, parser.OpNotEquals,
		parser.OpContains, parser.OpNotContains,
		parser.OpStartsWith, parser.OpEndsWith,
		parser.OpIn, parser.OpNotIn,
		parser.OpIsNull, parser.OpIsNotNull,
	}
	rangeOps = []string{
		parser.OpEquals, parser.OpNotEquals,
		parser.OpGreaterThan, parser.OpGreaterThanOrEqual,
		parser.OpLessThan, parser.OpLessThanOrEqual,
		parser.OpIn, parser.OpNotIn, parser.OpBetween,
		parser.OpIsNull, parser.OpIsNotNull,
	}
	enumOps = []string{
		parser.OpEquals, parser.OpNotEquals,
		parser.OpIn, parser.OpNotIn,
		parser.OpIsNull, parser.OpIsNotNull,
	}
	boolOps = []string{
		parser.OpEquals, parser.OpNotEquals,
		parser.OpIsNull, parser.OpIsNotNull,
	}
	nullOps = []string{parser.OpIsNull, parser.OpIsNotNull}

	textSearchOps = []string{
		parser.OpContains, parser.OpStartsWith, parser.OpEndsWith, parser.OpEquals,
	}
)

// capabilities is the central field-type capability table consumed by the
// filter validator, the search validator and the catalog endpoint.
var capabilities = map[metadata.FieldType]Capability{
	metadata.FieldTypeText:     {Filters: textOps, SearchOperators: textSearchOps, DefaultSearchable: true},
	metadata.FieldTypeEditor:   {Filters: textOps, SearchOperators: textSearchOps, DefaultSearchable: true},
	metadata.FieldTypeEmail:    {Filters: textOps, SearchOperators: textSearchOps, DefaultSearchable: true},
	metadata.FieldTypeURL:      {Filters: textOps, SearchOperators: textSearchOps, DefaultSearchable: true},
	metadata.FieldTypeNumber:   {Filters: rangeOps, SearchOperators: []string{parser.OpEquals}},
	metadata.FieldTypeDate:     {Filters: rangeOps},
	metadata.FieldTypeAutodate: {Filters: rangeOps},
	metadata.FieldTypeBool:     {Filters: boolOps},
	metadata.FieldTypeSelect:   {Filters: enumOps},
	metadata.FieldTypeRelation: {Filters: enumOps},
	metadata.FieldTypeID:       {Filters: enumOps},
	metadata.FieldTypeJSON:     {Filters: []string{parser.OpEquals, parser.OpIsNull, parser.OpIsNotNull}},
	metadata.FieldTypeFile:     {Filters: nullOps},
	metadata.FieldTypePassword: {}, // never filterable, never searchable
}

// operatorDescriptions feeds the available-filters catalog.
var operatorDescriptions = map[string]string{
	parser.OpEquals:             "exact match",
	parser.OpNotEquals:          "not equal to",
	parser.OpContains:           "contains substring",
	parser.OpNotContains:        "does not contain substring",
	parser.OpStartsWith:         "starts with",
	parser.OpEndsWith:           "ends with",
	parser.OpGreaterThan:        "greater than",
	parser.OpGreaterThanOrEqual: "greater than or equal",
	parser.OpLessThan:           "less than",
	parser.OpLessThanOrEqual:    "less than or equal",
	parser.OpIn:                 "matches any of the listed values",
	parser.OpNotIn:              "matches none of the listed values",
	parser.OpBetween:            "between two values inclusive",
	parser.OpIsNull:             "has no value",
	parser.OpIsNotNull:          "has a value",
}

// CapabilityFor returns the capability entry for a field type. Unknown types
// get an empty capability, which rejects everything.
func CapabilityFor(t metadata.FieldType) Capability {
	return capabilities[t]
}

func (c Capability) supportsFilter(op string) bool {
	for _, o := range c.Filters {
		if o == op {
			return true
		}
	}
	return false
}

func (c Capability) supportsSearch(op string) bool {
	for _, o := range c.SearchOperators {
		if o == op {
			return true
		}
	}
	return false
}

// Searchable reports whether a field participates in full-text search:
// default-searchable type, persistent, and not a secret or binary field.
func Searchable(f metadata.Field) bool {
	if !f.Persistent {
		return false
	}
	switch f.Type {
	case metadata.FieldTypePassword, metadata.FieldTypeFile:
		return false
	}
	return capabilities[f.Type].DefaultSearchable
}

// Filterable reports whether a field may appear in filter criteria at all.
func Filterable(f metadata.Field) bool {
	if !f.Persistent || f.Type == metadata.FieldTypePassword {
		return false
	}
	return len(capabilities[f.Type].Filters) > 0
}
