package utils

import (
	"strconv"
	"strings"
)

// BuildEventsListCacheKey derives a cache key from the full filter set so
// distinct queries never collide. Category and status feed exact-match SQL
// filters, so their casing is part of the query identity; search is
// case-insensitive (ILIKE) and folds to one key.
func BuildEventsListCacheKey(category, status, search string, page, limit int) string {
	return "events:list:v1" +
		":category=" + strings.TrimSpace(category) +
		":status=" + strings.TrimSpace(status) +
		":search=" + strings.ToLower(strings.TrimSpace(search)) +
		":page=" + strconv.Itoa(page) +
		":limit=" + strconv.Itoa(limit)
}
