// Package formatter serializes handler results into the response dialect
// the caller asked for, or the one implied by the inbound request dialect.
package formatter

import (
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/gridkit-dev/pb-gridkit/core/parser"
)

// Output dialect identifiers.
const (
	DialectStandard = "standard"
	DialectAGGrid   = "ag-grid"
	DialectMUI      = "mui"
	DialectTanstack = "tanstack-query"
	DialectSWR      = "swr"
	DialectInfinite = "infinite"
	DialectCursor   = "cursor"
)

// dialectAliases normalizes the accepted responseFormat/format values.
var dialectAliases = map[string]string{
	"standard":        DialectStandard,
	"ag-grid":         DialectAGGrid,
	"aggrid":          DialectAGGrid,
	"mui":             DialectMUI,
	"mui-datagrid":    DialectMUI,
	"tanstack-query":  DialectTanstack,
	"react-query":     DialectTanstack,
	"swr":             DialectSWR,
	"infinite":        DialectInfinite,
	"infinite-scroll": DialectInfinite,
	"cursor":          DialectCursor,
}

// TotalUnknown marks a result whose backing query did not count rows.
const TotalUnknown = -1

// Result is the structured return value handlers use to carry data plus
// collection metadata to the formatter. Handlers may also return plain
// values, which are wrapped with unknown totals.
type Result struct {
	Data   any
	Total  int64 // TotalUnknown when not counted
	Status int   // 0 means 200
}

// AsResult normalizes any handler return value into a Result.
func AsResult(value any) Result {
	if r, ok := value.(Result); ok {
		return r
	}
	if r, ok := value.(*Result); ok && r != nil {
		return *r
	}
	return Result{Data: value, Total: TotalUnknown}
}

// StatusCode returns the HTTP status the result asks for.
func (r Result) StatusCode() int {
	if r.Status > 0 {
		return r.Status
	}
	return http.StatusOK
}

// DetectDialect picks the output dialect: an explicit responseFormat/format
// parameter wins, otherwise the inbound grid dialect implies its own output
// shape, otherwise standard.
func DetectDialect(raw parser.RawParams, meta parser.Meta) string {
	for _, key := range []string{"responseFormat", "format"} {
		if value, ok := raw[key]; ok {
			if dialect, known := dialectAliases[value]; known {
				return dialect
			}
			return DialectStandard
		}
	}
	switch meta.DetectedFormat {
	case "ag-grid":
		return DialectAGGrid
	case "mui-datagrid":
		return DialectMUI
	}
	return DialectStandard
}

// Format shapes a handler result for the given dialect. Every dialect
// accepts every well-formed ParsedRequest; unknown dialects fall back to
// standard.
func Format(dialect string, res Result, parsed *parser.ParsedRequest, path string) map[string]any {
	count := dataLen(res.Data)
	page := parsed.Pagination

	hasNext := false
	if res.Total >= 0 {
		hasNext = int64(page.Offset+count) < res.Total
	} else {
		hasNext = count == page.PageSize && count > 0
	}
	hasPrev := page.Page > 1

	switch dialect {
	case DialectAGGrid:
		var lastRow any
		if !hasNext {
			lastRow = count + page.Offset
		}
		return map[string]any{
			"success": true,
			"data":    res.Data,
			"lastRow": lastRow,
		}

	case DialectMUI:
		total := res.Total
		if total < 0 {
			total = int64(page.Offset + count)
		}
		return map[string]any{
			"success":  true,
			"data":     res.Data,
			"rowCount": total,
			"meta": map[string]any{
				"page":            page.Page,
				"pageSize":        page.PageSize,
				"total":           total,
				"hasNextPage":     hasNext,
				"hasPreviousPage": hasPrev,
			},
		}

	case DialectTanstack:
		return map[string]any{
			"success":   true,
			"data":      res.Data,
			"meta":      standardMeta(parsed),
			"links":     pageLinks(path, page, res.Total, hasNext),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

	case DialectSWR:
		return map[string]any{
			"success": true,
			"data":    res.Data,
			"meta":    standardMeta(parsed),
			"pagination": map[string]any{
				"current": page.Page,
				"size":    page.PageSize,
				"total":   res.Total,
				"hasMore": hasNext,
			},
			"cache_key": CacheKey(parsed),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

	case DialectInfinite:
		var nextCursor any
		if hasNext {
			nextCursor = encodeCursor(page.Offset + count)
		}
		return map[string]any{
			"success": true,
			"data":    res.Data,
			"pagination": map[string]any{
				"hasNextPage": hasNext,
				"nextCursor":  nextCursor,
				"pageSize":    page.PageSize,
			},
		}

	case DialectCursor:
		var startCursor, endCursor any
		if count > 0 {
			startCursor = encodeCursor(page.Offset)
			endCursor = encodeCursor(page.Offset + count - 1)
		}
		return map[string]any{
			"success": true,
			"data":    res.Data,
			"pageInfo": map[string]any{
				"hasNextPage":     hasNext,
				"hasPreviousPage": hasPrev,
				"startCursor":     startCursor,
				"endCursor":       endCursor,
			},
		}

	default:
		return map[string]any{
			"success": true,
			"data":    res.Data,
			"meta":    standardMeta(parsed),
			"pagination": map[string]any{
				"page":     page.Page,
				"pageSize": page.PageSize,
				"offset":   page.Offset,
				"total":    res.Total,
			},
		}
	}
}

func standardMeta(parsed *parser.ParsedRequest) map[string]any {
	return map[string]any{
		"pagination": parsed.Pagination,
		"filters":    parsed.Filters,
		"sorting":    parsed.Sorting,
		"search":     parsed.Search,
	}
}

// pageLinks builds the tanstack-query navigation links from the request
// path and page window.
func pageLinks(path string, page parser.Pagination, total int64, hasNext bool) map[string]any {
	link := func(p int) string {
		return fmt.Sprintf("%s?page=%d&pageSize=%d", path, p, page.PageSize)
	}

	links := map[string]any{
		"self":  link(page.Page),
		"first": link(1),
		"prev":  nil,
		"next":  nil,
		"last":  nil,
	}
	if page.Page > 1 {
		links["prev"] = link(page.Page - 1)
	}
	if hasNext {
		links["next"] = link(page.Page + 1)
	}
	if total >= 0 && page.PageSize > 0 {
		last := int((total + int64(page.PageSize) - 1) / int64(page.PageSize))
		if last < 1 {
			last = 1
		}
		links["last"] = link(last)
	}
	return links
}

// dataLen measures slice-shaped data; scalars count as one, nil as zero.
func dataLen(data any) int {
	if data == nil {
		return 0
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return v.Len()
	default:
		return 1
	}
}
