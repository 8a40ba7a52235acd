package orm

import "errors"

var (
	// ErrNotFound is returned when a query expects exactly one row but finds none.
	ErrNotFound = errors.New("orm: not found")

	// ErrNoDataPresent is returned by a reader whose result set was closed
	// underneath it by another command issued on the same session.
	ErrNoDataPresent = errors.New("orm: invalid attempt to read when no data is present")

	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("orm: session is closed")

	// ErrInvalidConfig is returned by BuildSessionFactory for unusable connection settings.
	ErrInvalidConfig = errors.New("orm: invalid configuration")

	// ErrInvalidMapping is returned when the mapping declarations are inconsistent.
	ErrInvalidMapping = errors.New("orm: invalid mapping")

	// ErrQueryTranslation is returned when a query cannot be turned into SQL.
	ErrQueryTranslation = errors.New("orm: query translation failed")
)
