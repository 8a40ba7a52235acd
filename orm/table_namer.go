package orm

// TableNamer can be implemented by entity types to name their table
// when the ClassMap passed to Map leaves Table empty.
type TableNamer interface {
	TableName() string
}

// ResolveTableName returns the table name for entity type T.
// If T implements TableNamer (value or pointer receiver), that name is used;
// otherwise fallback is returned.
func ResolveTableName[T any](fallback string) string {
	var zero T
	if tn, ok := any(&zero).(TableNamer); ok {
		return tn.TableName()
	}
	return fallback
}
