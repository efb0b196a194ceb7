package postgres

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user-supplied search text so
// a search for "100%" matches the literal string instead of everything.
// Patterns built from it must be matched with ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
