package cache

import "strings"

// Query result caches are keyed by query signature: the query name for
// list style queries, the query name plus an id for point lookups.

func ListKey(query string) string {
	return strings.Join([]string{query, "list"}, ":")
}

func IDKey(query string, id string) string {
	return strings.Join([]string{query, "id", id}, ":")
}
