package formatter

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/gridkit-dev/pb-gridkit/core/parser"
)

// CacheKey derives a deterministic key for the swr dialect from the unified
// pagination, filters, sorting and search. Identical logical requests hash
// to identical keys regardless of the inbound dialect.
func CacheKey(parsed *parser.ParsedRequest) string {
	payload := struct {
		Pagination parser.Pagination  `json:"pagination"`
		Filters    []parser.Filter    `json:"filters"`
		Sorting    []parser.SortField `json:"sorting"`
		Search     parser.Search      `json:"search"`
	}{
		Pagination: parsed.Pagination,
		Filters:    parsed.Filters,
		Sorting:    parsed.Sorting,
		Search:     parsed.Search,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "invalid"
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])[:16]
}

// encodeCursor produces an opaque cursor for a row offset.
func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte("row:" + strconv.Itoa(offset)))
}

// DecodeCursor recovers the row offset from a cursor, 0 on any defect.
func DecodeCursor(cursor string) int {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	s := string(raw)
	if len(s) < 5 || s[:4] != "row:" {
		return 0
	}
	offset, err := strconv.Atoi(s[4:])
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
