package gateway

import (
	"fmt"
	"strings"

	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/parser"
	"github.com/gridkit-dev/pb-gridkit/core/validator"
	"github.com/pocketbase/dbx"
	"github.com/spf13/cast"
)

// filterExpressions translates validated filters into dbx expressions.
// Every filter arriving here already passed model validation, so unknown
// fields and unsupported operators cannot occur; anything unexpected is
// skipped rather than guessed at.
func filterExpressions(filters []parser.Filter) []dbx.Expression {
	exprs := make([]dbx.Expression, 0, len(filters))
	for _, f := range filters {
		if expr := filterExpression(f); expr != nil {
			exprs = append(exprs, expr)
		}
	}
	return exprs
}

func filterExpression(f parser.Filter) dbx.Expression {
	col := f.Field
	value := filterValue(f)

	switch f.Operator {
	case parser.OpEquals:
		return dbx.HashExp{col: value}
	case parser.OpNotEquals:
		return dbx.Not(dbx.HashExp{col: value})
	case parser.OpGreaterThan:
		return compareExpr(col, ">", value)
	case parser.OpGreaterThanOrEqual:
		return compareExpr(col, ">=", value)
	case parser.OpLessThan:
		return compareExpr(col, "<", value)
	case parser.OpLessThanOrEqual:
		return compareExpr(col, "<=", value)
	case parser.OpContains:
		return dbx.Like(col, cast.ToString(value))
	case parser.OpNotContains:
		return dbx.NotLike(col, cast.ToString(value))
	case parser.OpStartsWith:
		return dbx.Like(col, cast.ToString(value)).Match(false, true)
	case parser.OpEndsWith:
		return dbx.Like(col, cast.ToString(value)).Match(true, false)
	case parser.OpIn:
		return dbx.In(col, listValues(f)...)
	case parser.OpNotIn:
		return dbx.NotIn(col, listValues(f)...)
	case parser.OpBetween:
		bounds := listValues(f)
		if len(bounds) != 2 {
			return nil
		}
		return dbx.Between(col, bounds[0], bounds[1])
	case parser.OpIsNull:
		return dbx.NewExp(fmt.Sprintf("([[%s]] IS NULL OR [[%s]] = '')", col, col))
	case parser.OpIsNotNull:
		return dbx.NewExp(fmt.Sprintf("([[%s]] IS NOT NULL AND [[%s]] != '')", col, col))
	}
	return nil
}

func compareExpr(col, op string, value any) dbx.Expression {
	return dbx.NewExp(fmt.Sprintf("[[%s]] %s {:v}", col, op), dbx.Params{"v": value})
}

// filterValue coerces the raw string value for typed columns so numeric
// comparisons do not fall back to lexicographic ordering.
func filterValue(f parser.Filter) any {
	switch f.FieldType {
	case string(metadata.FieldTypeNumber):
		if n, err := cast.ToFloat64E(f.Value); err == nil {
			return n
		}
	case string(metadata.FieldTypeBool):
		if b, err := cast.ToBoolE(f.Value); err == nil {
			return b
		}
	}
	return f.Value
}

func listValues(f parser.Filter) []any {
	switch v := f.Value.(type) {
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []any:
		return v
	default:
		return []any{cast.ToString(f.Value)}
	}
}

// searchExpression builds the full-text condition: words and quoted phrases
// AND-combined, each matched across the validated search fields with OR.
func searchExpression(search parser.Search) dbx.Expression {
	if strings.TrimSpace(search.Term) == "" || len(search.Fields) == 0 {
		return nil
	}

	parsed := validator.ParseSearchTerm(search.Term)
	terms := append([]string{}, parsed.Phrases...)
	terms = append(terms, parsed.Words...)
	if len(terms) == 0 {
		terms = []string{parsed.Cleaned}
	}

	perTerm := make([]dbx.Expression, 0, len(terms))
	for _, term := range terms {
		perField := make([]dbx.Expression, 0, len(search.Fields))
		for _, field := range search.Fields {
			perField = append(perField, fieldSearchExpr(field, search.Operator, term))
		}
		perTerm = append(perTerm, dbx.Or(perField...))
	}
	return dbx.And(perTerm...)
}

func fieldSearchExpr(field, operator, term string) dbx.Expression {
	switch operator {
	case parser.OpEquals:
		return dbx.HashExp{field: term}
	case parser.OpStartsWith:
		return dbx.Like(field, term).Match(false, true)
	case parser.OpEndsWith:
		return dbx.Like(field, term).Match(true, false)
	default:
		return dbx.Like(field, term)
	}
}

// orderByColumns renders validated sorting for dbx's OrderBy.
func orderByColumns(sorting []parser.SortField) []string {
	cols := make([]string, 0, len(sorting))
	for _, s := range sorting {
		direction := "ASC"
		if strings.EqualFold(s.Direction, "desc") {
			direction = "DESC"
		}
		cols = append(cols, fmt.Sprintf("[[%s]] %s", s.Field, direction))
	}
	return cols
}
