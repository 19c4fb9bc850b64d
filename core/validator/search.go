package validator

import (
	"log/slog"
	"strings"

	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/parser"
)

// SearchEngine validates the unified search sub-record against a target
// model's searchable fields.
type SearchEngine struct {
	log *slog.Logger
}

func NewSearchEngine(log *slog.Logger) *SearchEngine {
	return &SearchEngine{log: log}
}

// ValidateForModel intersects the requested search fields with the model's
// searchable set. A field list equal to the parsers' placeholder counts as
// "caller supplied no fields" and is replaced by the model's full searchable
// set. An empty term or an empty intersection disables search. The operator
// is constrained to what every surviving field type supports, falling back
// to contains.
func (v *SearchEngine) ValidateForModel(search parser.Search, model *metadata.Model) parser.Search {
	term := strings.TrimSpace(search.Term)
	if term == "" {
		return parser.Search{Operator: parser.OpContains}
	}

	searchable := SearchableFields(model)

	var fields []string
	if len(search.Fields) == 0 || isPlaceholderFields(search.Fields) {
		fields = searchable
	} else {
		for _, f := range search.Fields {
			if containsString(searchable, f) {
				fields = append(fields, f)
			} else if v.log != nil {
				v.log.Debug("dropping search field",
					"model", model.Name,
					"field", f,
				)
			}
		}
	}
	if len(fields) == 0 {
		return parser.Search{Operator: parser.OpContains}
	}

	operator := search.Operator
	for _, name := range fields {
		cap := CapabilityFor(model.Fields[name].Type)
		if !cap.supportsSearch(operator) {
			operator = parser.OpContains
			break
		}
	}

	return parser.Search{Term: term, Fields: fields, Operator: operator}
}

// SearchableFields lists the model's default searchable field names in
// declaration order.
func SearchableFields(model *metadata.Model) []string {
	fields := make([]string, 0, len(model.FieldOrder))
	for _, name := range model.FieldOrder {
		if Searchable(model.Fields[name]) {
			fields = append(fields, name)
		}
	}
	return fields
}

// isPlaceholderFields reports whether the field list is the untouched
// dialect placeholder rather than a caller-chosen set.
func isPlaceholderFields(fields []string) bool {
	if len(fields) != len(parser.DefaultSearchFields) {
		return false
	}
	for i, f := range fields {
		if f != parser.DefaultSearchFields[i] {
			return false
		}
	}
	return true
}

// SearchTerm is the decomposition of a raw search term into quoted phrases
// and standalone words. The downstream query translator decides how to
// combine them.
type SearchTerm struct {
	Original string   `json:"original"`
	Cleaned  string   `json:"cleaned"`
	Phrases  []string `json:"phrases"`
	Words    []string `json:"words"`
}

// ParseSearchTerm extracts double-quoted phrases and unquoted words longer
// than one character from a raw term.
func ParseSearchTerm(term string) SearchTerm {
	result := SearchTerm{
		Original: term,
		Phrases:  []string{},
		Words:    []string{},
	}

	var unquoted strings.Builder
	rest := term
	for {
		open := strings.IndexByte(rest, '"')
		if open < 0 {
			unquoted.WriteString(rest)
			break
		}
		close := strings.IndexByte(rest[open+1:], '"')
		if close < 0 {
			unquoted.WriteString(rest)
			break
		}
		unquoted.WriteString(rest[:open])
		unquoted.WriteByte(' ')
		if phrase := strings.TrimSpace(rest[open+1 : open+1+close]); phrase != "" {
			result.Phrases = append(result.Phrases, phrase)
		}
		rest = rest[open+close+2:]
	}

	result.Cleaned = strings.Join(strings.Fields(unquoted.String()), " ")
	for _, word := range strings.Fields(result.Cleaned) {
		if len(word) > 1 {
			result.Words = append(result.Words, word)
		}
	}
	return result
}
