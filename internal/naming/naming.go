// Package naming derives database identifiers from Go names.
package naming

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// aliasSeparator joins a relation name and a column in fetch aliases.
const aliasSeparator = "__"

// CamelToSnake converts a CamelCase string to snake_case.
// Consecutive uppercase letters (acronyms) are kept together:
// "ID" → "id", "UserID" → "user_id", "IsDeleted" → "is_deleted".
func CamelToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				next := rune(0)
				if i+1 < len(runes) {
					next = runes[i+1]
				}
				if unicode.IsLower(prev) || (unicode.IsUpper(prev) && unicode.IsLower(next)) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TableName infers a snake_case plural table name from an entity type name.
// e.g. "User" → "users", "UserAddress" → "user_addresses"
func TableName(typeName string) string {
	if typeName == "" {
		return ""
	}
	return inflection.Plural(CamelToSnake(typeName))
}

// Alias returns the result column alias of column fetched through relation.
// e.g. Alias("Addresses", "Id") → "Addresses__Id"
func Alias(relation, column string) string {
	return relation + aliasSeparator + column
}

// SplitAlias reverses Alias. ok is false when alias has no relation prefix.
func SplitAlias(alias string) (relation, column string, ok bool) {
	return strings.Cut(alias, aliasSeparator)
}
