package validator

import (
	"log/slog"

	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/parser"
	"github.com/spf13/cast"
)

// FilterCriteria validates parsed filters against a target model.
type FilterCriteria struct {
	log *slog.Logger
}

func NewFilterCriteria(log *slog.Logger) *FilterCriteria {
	return &FilterCriteria{log: log}
}

// ValidateForModel returns the subset of filters that reference an existing,
// persistent, non-password field of the model with an operator the field
// type supports. Surviving entries are annotated with the field type for
// query generation. Dropped entries are logged, never fatal.
func (v *FilterCriteria) ValidateForModel(filters []parser.Filter, model *metadata.Model) []parser.Filter {
	valid := make([]parser.Filter, 0, len(filters))
	for _, f := range filters {
		field, ok := model.Field(f.Field)
		if !ok {
			v.drop(model, f, "unknown field")
			continue
		}
		if !field.Persistent {
			v.drop(model, f, "field is not persisted")
			continue
		}
		if field.Type == metadata.FieldTypePassword {
			v.drop(model, f, "password fields are never filterable")
			continue
		}
		cap := CapabilityFor(field.Type)
		if !cap.supportsFilter(f.Operator) {
			v.drop(model, f, "operator not supported by field type")
			continue
		}
		if field.Type == metadata.FieldTypeSelect && !enumValueAllowed(f, field.Options) {
			v.drop(model, f, "value not in enum options")
			continue
		}

		f.FieldType = string(field.Type)
		valid = append(valid, f)
	}
	return valid
}

// SupportedFilter is one entry of the available-filters catalog.
type SupportedFilter struct {
	FieldType            string            `json:"fieldType"`
	Operators            []string          `json:"operators"`
	OperatorDescriptions map[string]string `json:"operatorDescriptions"`
	FieldDescription     string            `json:"fieldDescription,omitempty"`
	Options              []string          `json:"options,omitempty"`
}

// SupportedFilters returns the catalog of filterable fields for a model,
// keyed by field name. Callers embed it as available-filters metadata.
func SupportedFilters(model *metadata.Model) map[string]SupportedFilter {
	catalog := make(map[string]SupportedFilter)
	for _, name := range model.FieldOrder {
		field := model.Fields[name]
		if !Filterable(field) {
			continue
		}
		cap := CapabilityFor(field.Type)
		descs := make(map[string]string, len(cap.Filters))
		for _, op := range cap.Filters {
			descs[op] = operatorDescriptions[op]
		}
		catalog[name] = SupportedFilter{
			FieldType:            string(field.Type),
			Operators:            append([]string{}, cap.Filters...),
			OperatorDescriptions: descs,
			FieldDescription:     field.Description,
			Options:              append([]string{}, field.Options...),
		}
	}
	return catalog
}

// enumValueAllowed checks equality-family filter values against the declared
// option set. Null checks and non-equality operators pass through.
func enumValueAllowed(f parser.Filter, options []string) bool {
	var values []string
	switch f.Operator {
	case parser.OpEquals, parser.OpNotEquals:
		values = []string{cast.ToString(f.Value)}
	case parser.OpIn, parser.OpNotIn:
		values = cast.ToStringSlice(f.Value)
	default:
		return true
	}
	for _, v := range values {
		if !containsString(options, v) {
			return false
		}
	}
	return len(values) > 0
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (v *FilterCriteria) drop(model *metadata.Model, f parser.Filter, reason string) {
	if v.log != nil {
		v.log.Debug("dropping filter",
			"model", model.Name,
			"field", f.Field,
			"operator", f.Operator,
			"reason", reason,
		)
	}
}
