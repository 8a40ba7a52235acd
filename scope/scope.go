package scope

// Applier is implemented by query builders to receive scope fragments.
// This interface lives in the scope package so that orm can import scope
// without creating circular dependencies.
type Applier interface {
	ApplyWhere(clause string, args []any)
	ApplyColumn(column, op string, args []any)
	ApplyOrderBy(clause string)
}

// Operators accepted by ApplyColumn.
const (
	OpEq = "="
	OpIn = "IN"
)

type scopeKind int

const (
	kindWhere scopeKind = iota
	kindColumn
	kindOrderBy
)

// Scope represents a single query condition fragment.
// Scopes are immutable and safe to reuse across queries.
type Scope struct {
	kind   scopeKind
	clause string
	column string
	args   []any
}

// Apply dispatches this Scope to the given Applier.
func (s Scope) Apply(a Applier) {
	switch s.kind {
	case kindWhere:
		a.ApplyWhere(s.clause, s.args)
	case kindColumn:
		a.ApplyColumn(s.column, s.clause, s.args)
	case kindOrderBy:
		a.ApplyOrderBy(s.clause)
	}
}

// Where returns a Scope that adds a raw WHERE clause fragment.
//
//	scope.Where(`"Id" > ?`, 18)
func Where(clause string, args ...any) Scope {
	return Scope{kind: kindWhere, clause: clause, args: args}
}

// Eq returns a Scope comparing a column of the queried table with value.
// The query builder quotes and qualifies the column.
//
//	scope.Eq("IsDeleted", false)  // → WHERE "User"."User"."IsDeleted" = ?
func Eq(column string, value any) Scope {
	return Scope{kind: kindColumn, clause: OpEq, column: column, args: []any{value}}
}

// In returns a Scope with an IN clause on a column of the queried table,
// expanding the slice into individual placeholders. An empty slice
// matches nothing.
//
//	scope.In("UserId", []int64{1, 2, 3})  // → WHERE "User"."Address"."UserId" IN (?, ?, ?)
func In[T any](column string, values []T) Scope {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return Scope{kind: kindColumn, clause: OpIn, column: column, args: args}
}

// NotDeleted filters out soft-deleted rows flagged in column.
func NotDeleted(column string) Scope {
	return Eq(column, false)
}

// OrderBy returns a Scope that sets the ORDER BY clause.
//
//	scope.OrderBy(`"Id" DESC`)
func OrderBy(clause string) Scope {
	return Scope{kind: kindOrderBy, clause: clause}
}

// Scopes is a named slice of Scope, useful for conditionally building
// up a set of scopes.
type Scopes []Scope

// Append adds scopes and returns a new Scopes. The receiver is not modified.
func (ss Scopes) Append(scopes ...Scope) Scopes {
	return append(append(Scopes(nil), ss...), scopes...)
}

// Combine creates a Scopes from the given scopes.
//
//	scope.Combine(scope.NotDeleted("IsDeleted"), scope.OrderBy(`"Id"`))
func Combine(scopes ...Scope) Scopes {
	return Scopes(scopes)
}
