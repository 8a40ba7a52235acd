package orm

import (
	"fmt"
	"reflect"

	"github.com/mickamy/fetchmany-repro/internal/naming"
)

// ClassMap declares how an entity type is stored.
type ClassMap struct {
	Entity  string // Go type name, filled in by Map
	Schema  string
	Table   string
	ID      string   // identity column, generated by the database
	Columns []string // non-identity columns, in scan order
	HasMany []HasMany
}

// HasMany declares a one-to-many collection whose foreign key lives on
// the child table.
type HasMany struct {
	Name      string // collection field name, e.g. "Addresses"
	Target    string // entity name of the child
	KeyColumn string // foreign key column on the child table
}

// Map completes cm for entity type T. The entity name is taken from T;
// when cm.Table is empty the table name is resolved through TableNamer
// or inferred from the type name ("UserAddress" → "user_addresses").
func Map[T any](cm ClassMap) ClassMap {
	cm.Entity = reflect.TypeFor[T]().Name()
	if cm.Table == "" {
		cm.Table = ResolveTableName[T](naming.TableName(cm.Entity))
	}
	return cm
}

// QualifiedTable returns "schema.table", or just the table when no schema is set.
func (cm ClassMap) QualifiedTable() string {
	if cm.Schema == "" {
		return cm.Table
	}
	return cm.Schema + "." + cm.Table
}

// AllColumns returns the identity column followed by Columns.
func (cm ClassMap) AllColumns() []string {
	return append([]string{cm.ID}, cm.Columns...)
}

// Relation returns the has-many relation called name.
func (cm ClassMap) Relation(name string) (HasMany, bool) {
	for _, r := range cm.HasMany {
		if r.Name == name {
			return r, true
		}
	}
	return HasMany{}, false
}

// Mappings is the set of entity mappings a SessionFactory is built from.
type Mappings struct {
	byEntity map[string]ClassMap
	order    []string
}

// NewMappings registers the given class maps.
func NewMappings(maps ...ClassMap) *Mappings {
	m := &Mappings{byEntity: make(map[string]ClassMap, len(maps))}
	for _, cm := range maps {
		m.Add(cm)
	}
	return m
}

// Add registers cm. A later registration of the same entity replaces the earlier one.
func (m *Mappings) Add(cm ClassMap) *Mappings {
	if _, ok := m.byEntity[cm.Entity]; !ok {
		m.order = append(m.order, cm.Entity)
	}
	m.byEntity[cm.Entity] = cm
	return m
}

// Lookup returns the mapping of the named entity.
func (m *Mappings) Lookup(entity string) (ClassMap, bool) {
	cm, ok := m.byEntity[entity]
	return cm, ok
}

// Len returns the number of mapped entities.
func (m *Mappings) Len() int { return len(m.order) }

// Validate checks every mapping and every relation target.
func (m *Mappings) Validate() error {
	if m == nil || len(m.order) == 0 {
		return fmt.Errorf("%w: no entities mapped", ErrInvalidMapping)
	}
	for _, name := range m.order {
		cm := m.byEntity[name]
		switch {
		case cm.Entity == "":
			return fmt.Errorf("%w: mapping without entity name", ErrInvalidMapping)
		case cm.Table == "":
			return fmt.Errorf("%w: %s has no table", ErrInvalidMapping, cm.Entity)
		case cm.ID == "":
			return fmt.Errorf("%w: %s has no identity column", ErrInvalidMapping, cm.Entity)
		}
		for _, r := range cm.HasMany {
			if r.Name == "" || r.KeyColumn == "" {
				return fmt.Errorf("%w: %s has an incomplete has-many relation", ErrInvalidMapping, cm.Entity)
			}
			if _, ok := m.byEntity[r.Target]; !ok {
				return fmt.Errorf("%w: %s.%s targets unmapped entity %q", ErrInvalidMapping, cm.Entity, r.Name, r.Target)
			}
		}
	}
	return nil
}
