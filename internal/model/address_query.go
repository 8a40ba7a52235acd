package model

import (
	"database/sql"

	"github.com/mickamy/fetchmany-repro/orm"
)

// Addresses returns a query over Address.
func Addresses(db orm.Querier) *orm.Query[Address] {
	return orm.NewQuery[Address](
		db, AddressMap.QualifiedTable(), AddressMap.AllColumns(), AddressMap.ID,
		scanAddress, addressColumnValuePairs, setAddressPK,
	)
}

func scanAddress(rows *sql.Rows) (Address, error) {
	cols, _ := rows.Columns()
	var v Address
	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case "Id":
			dest[i] = &v.ID
		case "IsDeleted":
			dest[i] = &v.IsDeleted
		case "UserId":
			dest[i] = &v.UserID
		default:
			dest[i] = new(any)
		}
	}
	err := rows.Scan(dest...)
	return v, err //nolint:wrapcheck // pass through
}

func addressColumnValuePairs(v *Address, includesPK bool) ([]string, []any) {
	if includesPK {
		return []string{"Id", "IsDeleted", "UserId"}, []any{v.ID, v.IsDeleted, v.UserID}
	}
	return []string{"IsDeleted", "UserId"}, []any{v.IsDeleted, v.UserID}
}

func setAddressPK(v *Address, id int64) {
	v.ID = id
}
