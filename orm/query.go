package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mickamy/fetchmany-repro/internal/naming"
	"github.com/mickamy/fetchmany-repro/scope"
)

// ScanFunc scans a single row into T.
type ScanFunc[T any] func(rows *sql.Rows) (T, error)

// ColumnValueFunc extracts column names and their values from a *T.
// When includesPK is false the primary key column is excluded (for INSERT
// with a generated identity).
type ColumnValueFunc[T any] func(t *T, includesPK bool) (columns []string, values []any)

// SetPKFunc sets the generated primary key on *T after INSERT.
// May be nil when the primary key is not generated.
type SetPKFunc[T any] func(t *T, id int64)

// PreloaderFunc executes a preload query and assigns results to the parent slice.
type PreloaderFunc[T any] func(ctx context.Context, db Querier, results []T) error

// JoinConfig holds the metadata needed to build a JOIN clause at runtime.
type JoinConfig struct {
	TargetTable  string
	TargetColumn string
	SourceTable  string
	SourceColumn string
}

// FetchConfig describes a collection that FetchMany loads with a single
// outer join. The target columns are selected as "<name>__<column>" and
// ScanFunc is expected to put the child of each row into the parent's
// collection.
type FetchConfig[T any] struct {
	Join    JoinConfig
	Columns []string

	// Key identifies the parent of a row; rows with the same key are merged.
	Key func(t *T) any
	// Merge moves the fetched child of src into dst.
	Merge func(dst, src *T)
	// Prepare arms the collection of a newly seen parent before it is
	// fully hydrated.
	Prepare func(ctx context.Context, db Querier, t *T)
	// Complete marks the collection initialized once the result set is read.
	Complete func(t *T)
}

// Query represents a pending query against a single table.
// All builder methods return a new Query; the receiver is never modified.
type Query[T any] struct {
	db          Querier
	table       string
	columns     []string
	pk          string
	scan        ScanFunc[T]
	colValPairs ColumnValueFunc[T]
	setPK       SetPKFunc[T]

	wheres   []whereClause
	orderBys []string

	preloaders map[string]PreloaderFunc[T]
	preloads   []string
	fetchers   map[string]FetchConfig[T]
	fetches    []string
}

type whereClause struct {
	clause string
	args   []any
}

// NewQuery is called by entity query factories.
func NewQuery[T any](
	db Querier,
	table string,
	columns []string,
	pk string,
	scan ScanFunc[T],
	colValPairs ColumnValueFunc[T],
	setPK SetPKFunc[T],
) *Query[T] {
	return &Query[T]{
		db:          db,
		table:       table,
		columns:     columns,
		pk:          pk,
		scan:        scan,
		colValPairs: colValPairs,
		setPK:       setPK,
	}
}

// RegisterPreloader registers a named preloader for use with Preload.
func (q *Query[T]) RegisterPreloader(name string, fn PreloaderFunc[T]) {
	if q.preloaders == nil {
		q.preloaders = make(map[string]PreloaderFunc[T])
	}
	q.preloaders[name] = fn
}

// RegisterFetch registers a named collection for use with FetchMany.
func (q *Query[T]) RegisterFetch(name string, cfg FetchConfig[T]) {
	if q.fetchers == nil {
		q.fetchers = make(map[string]FetchConfig[T])
	}
	q.fetchers[name] = cfg
}

// clone returns a shallow copy with slices copied to avoid aliasing.
func (q *Query[T]) clone() *Query[T] {
	q2 := *q
	q2.wheres = append([]whereClause(nil), q.wheres...)
	q2.orderBys = append([]string(nil), q.orderBys...)
	q2.preloads = append([]string(nil), q.preloads...)
	q2.fetches = append([]string(nil), q.fetches...)
	return &q2
}

// --- Builder methods ---

func (q *Query[T]) Where(clause string, args ...any) *Query[T] {
	q2 := q.clone()
	q2.wheres = append(q2.wheres, whereClause{clause, args})
	return q2
}

func (q *Query[T]) OrderBy(clause string) *Query[T] {
	q2 := q.clone()
	q2.orderBys = append(q2.orderBys, clause)
	return q2
}

// Preload registers a relation to be loaded by a second query after the
// main result set has been read.
func (q *Query[T]) Preload(name string) *Query[T] {
	q2 := q.clone()
	q2.preloads = append(q2.preloads, name)
	return q2
}

// FetchMany loads the named collection in the same statement as the
// parents, through a LEFT OUTER JOIN. Only one collection can be fetched
// per query.
func (q *Query[T]) FetchMany(name string) *Query[T] {
	q2 := q.clone()
	q2.fetches = append(q2.fetches, name)
	return q2
}

// Scopes applies the given scope.Scope values to the query.
func (q *Query[T]) Scopes(scopes ...scope.Scope) *Query[T] {
	q2 := q.clone()
	for _, s := range scopes {
		s.Apply(q2)
	}
	return q2
}

// --- scope.Applier implementation ---

func (q *Query[T]) ApplyWhere(clause string, args []any) {
	q.wheres = append(q.wheres, whereClause{clause, args})
}

// ApplyColumn adds a comparison on a column of the root table. The column
// is qualified with the table so that it stays unambiguous under joins.
func (q *Query[T]) ApplyColumn(column, op string, args []any) {
	col := q.qt() + "." + q.qi(column)
	switch op {
	case scope.OpIn:
		if len(args) == 0 {
			q.wheres = append(q.wheres, whereClause{"1 = 0", nil})
			return
		}
		ph := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
		q.wheres = append(q.wheres, whereClause{col + " IN (" + ph + ")", args})
	default:
		q.wheres = append(q.wheres, whereClause{col + " " + op + " ?", args})
	}
}

func (q *Query[T]) ApplyOrderBy(clause string) {
	q.orderBys = append(q.orderBys, clause)
}

var _ scope.Applier = (*Query[any])(nil)

// --- Terminal methods ---

// All executes a SELECT and returns all matching rows, followed by any
// requested preloads.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	var (
		result []T
		err    error
	)
	switch len(q.fetches) {
	case 0:
		result, err = q.load(ctx)
	case 1:
		result, err = q.fetch(ctx, q.fetches[0])
	default:
		return nil, fmt.Errorf("%w: cannot fetch %d collections of %s in one query",
			ErrQueryTranslation, len(q.fetches), q.table)
	}
	if err != nil {
		return nil, err
	}

	for _, name := range q.preloads {
		fn, ok := q.preloaders[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown preload %q", ErrQueryTranslation, name)
		}
		if err := fn(ctx, q.db, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// First executes All and returns the first entity, or ErrNotFound when
// the result is empty.
func (q *Query[T]) First(ctx context.Context) (T, error) {
	var zero T
	result, err := q.All(ctx)
	if err != nil {
		return zero, err
	}
	if len(result) == 0 {
		return zero, ErrNotFound
	}
	return result[0], nil
}

func (q *Query[T]) load(ctx context.Context) ([]T, error) {
	query, args := q.buildSelect()
	query = rewritePlaceholders(q.db.dialect(), query)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err //nolint:wrapcheck // pass through
	}
	cur := q.db.track(rows)
	defer func() { _ = cur.Close() }()

	log := logFor("Loader")
	var result []T
	for cur.Next() {
		item, err := q.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
		log.tracef("result row: %v", &result[len(result)-1])
	}
	if err := cur.Err(); err != nil {
		log.errorf(err, "failed to read %s result set", q.table)
		return nil, err
	}
	log.debugf("materialized %d rows from %s", len(result), q.table)
	return result, nil
}

func (q *Query[T]) fetch(ctx context.Context, name string) ([]T, error) {
	f, ok := q.fetchers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown fetch %q", ErrQueryTranslation, name)
	}

	query, args := q.buildFetchSelect(name, f)
	query = rewritePlaceholders(q.db.dialect(), query)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err //nolint:wrapcheck // pass through
	}
	cur := q.db.track(rows)
	defer func() { _ = cur.Close() }()

	log := logFor("Loader")
	var result []T
	index := make(map[any]int)
	for cur.Next() {
		row, err := q.scan(rows)
		if err != nil {
			return nil, err
		}
		key := f.Key(&row)
		i, seen := index[key]
		if seen {
			f.Merge(&result[i], &row)
		} else {
			f.Prepare(ctx, q.db, &row)
			result = append(result, row)
			i = len(result) - 1
			index[key] = i
		}
		log.tracef("result row: %v", &result[i])
	}
	if err := cur.Err(); err != nil {
		log.errorf(err, "failed to read %s result set", q.table)
		return nil, err
	}

	for i := range result {
		f.Complete(&result[i])
	}
	log.debugf("materialized %d entities from %s with %s", len(result), q.table, name)
	return result, nil
}

// Create inserts a new row. If setPK is set, the primary key is populated
// via RETURNING (PostgreSQL) or LastInsertId (MySQL).
func (q *Query[T]) Create(ctx context.Context, t *T) error {
	includesPK := q.setPK == nil
	columns, values := q.colValPairs(t, includesPK)

	query := q.buildInsert(columns, 1)
	query = rewritePlaceholders(q.db.dialect(), query)

	d := q.db.dialect()
	if d.UseReturning() && q.setPK != nil {
		query += d.ReturningClause(q.pk)
		rows, err := q.db.QueryContext(ctx, query, values...)
		if err != nil {
			return err //nolint:wrapcheck // pass through
		}
		defer func() { _ = rows.Close() }()
		if !rows.Next() {
			return errors.New("orm: INSERT RETURNING returned no rows")
		}
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err //nolint:wrapcheck // pass through
		}
		q.setPK(t, id)
		return rows.Err() //nolint:wrapcheck // pass through
	}

	result, err := q.db.ExecContext(ctx, query, values...)
	if err != nil {
		return err //nolint:wrapcheck // pass through
	}

	if q.setPK != nil {
		id, err := result.LastInsertId()
		if err != nil {
			return err //nolint:wrapcheck // pass through
		}
		q.setPK(t, id)
	}
	return nil
}

// CreateAll inserts multiple rows in a single INSERT statement.
// If setPK is set, primary keys are populated for each row.
func (q *Query[T]) CreateAll(ctx context.Context, items []*T) error {
	if len(items) == 0 {
		return nil
	}

	includesPK := q.setPK == nil
	columns, _ := q.colValPairs(items[0], includesPK)

	var allValues []any
	for _, item := range items {
		_, vals := q.colValPairs(item, includesPK)
		allValues = append(allValues, vals...)
	}

	query := q.buildInsert(columns, len(items))
	query = rewritePlaceholders(q.db.dialect(), query)

	d := q.db.dialect()
	if d.UseReturning() && q.setPK != nil {
		query += d.ReturningClause(q.pk)
		rows, err := q.db.QueryContext(ctx, query, allValues...)
		if err != nil {
			return err //nolint:wrapcheck // pass through
		}
		defer func() { _ = rows.Close() }()
		for i := 0; rows.Next(); i++ {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err //nolint:wrapcheck // pass through
			}
			q.setPK(items[i], id)
		}
		return rows.Err() //nolint:wrapcheck // pass through
	}

	result, err := q.db.ExecContext(ctx, query, allValues...)
	if err != nil {
		return err //nolint:wrapcheck // pass through
	}

	if q.setPK != nil {
		firstID, err := result.LastInsertId()
		if err != nil {
			return err //nolint:wrapcheck // pass through
		}
		for i, item := range items {
			q.setPK(item, firstID+int64(i))
		}
	}
	return nil
}

// --- SQL building ---

// qi quotes a single identifier using the dialect.
func (q *Query[T]) qi(name string) string {
	return q.db.dialect().QuoteIdent(name)
}

// qt returns the quoted, schema-qualified root table.
func (q *Query[T]) qt() string {
	return QuoteQualified(q.db.dialect(), q.table)
}

// quoteColumns joins column names with dialect-aware quoting.
func (q *Query[T]) quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = q.qi(c)
	}
	return strings.Join(quoted, ", ")
}

func (q *Query[T]) buildSelect() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.quoteColumns(q.columns))
	b.WriteString(" FROM ")
	b.WriteString(q.qt())

	args := q.appendWhere(&b)
	q.appendOrderBy(&b)

	return b.String(), args
}

func (q *Query[T]) buildFetchSelect(name string, f FetchConfig[T]) (string, []any) {
	d := q.db.dialect()
	target := QuoteQualified(d, f.Join.TargetTable)
	source := QuoteQualified(d, f.Join.SourceTable)

	cols := make([]string, 0, len(q.columns)+len(f.Columns))
	for _, c := range q.columns {
		cols = append(cols, q.qt()+"."+q.qi(c))
	}
	for _, c := range f.Columns {
		cols = append(cols, target+"."+q.qi(c)+" AS "+q.qi(naming.Alias(name, c)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.qt())
	fmt.Fprintf(&b, " LEFT OUTER JOIN %s ON %s.%s = %s.%s",
		target,
		target, q.qi(f.Join.TargetColumn),
		source, q.qi(f.Join.SourceColumn),
	)

	args := q.appendWhere(&b)
	q.appendOrderBy(&b)

	return b.String(), args
}

func (q *Query[T]) buildInsert(columns []string, rowCount int) string {
	ph := make([]string, len(columns))
	for i := range ph {
		ph[i] = "?"
	}
	oneRow := "(" + strings.Join(ph, ", ") + ")"

	rows := make([]string, rowCount)
	for i := range rows {
		rows[i] = oneRow
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		q.qt(),
		q.quoteColumns(columns),
		strings.Join(rows, ", "),
	)
}

func (q *Query[T]) appendWhere(b *strings.Builder) []any {
	if len(q.wheres) == 0 {
		return nil
	}

	var args []any
	b.WriteString(" WHERE ")
	for i, w := range q.wheres {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(w.clause)
		args = append(args, w.args...)
	}
	return args
}

func (q *Query[T]) appendOrderBy(b *strings.Builder) {
	if len(q.orderBys) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBys, ", "))
	}
}
