package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup by primary key matches no row.
var ErrNotFound = errors.New("record not found")

// likeEscaper neutralises LIKE wildcards in user input; queries use ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased '%needle%' pattern for a LIKE comparison.
func containsPattern(needle string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(needle)) + "%"
}
