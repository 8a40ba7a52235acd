package model

import (
	"context"
	"database/sql"

	"github.com/mickamy/fetchmany-repro/internal/naming"
	"github.com/mickamy/fetchmany-repro/orm"
	"github.com/mickamy/fetchmany-repro/scope"
)

// Users returns a query over User with the Addresses collection
// available to Preload and FetchMany.
func Users(db orm.Querier) *orm.Query[User] {
	q := orm.NewQuery[User](
		db, UserMap.QualifiedTable(), UserMap.AllColumns(), UserMap.ID,
		scanUser, userColumnValuePairs, setUserPK,
	)
	q.RegisterPreloader("Addresses", preloadUserAddresses)
	q.RegisterFetch("Addresses", userAddressesFetch)
	return q
}

func scanUser(rows *sql.Rows) (User, error) {
	cols, _ := rows.Columns()
	var (
		v         User
		addrID    sql.NullInt64
		addrDel   sql.NullBool
		addrOwner sql.NullInt64
	)
	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case "Id":
			dest[i] = &v.ID
		case "IsDeleted":
			dest[i] = &v.IsDeleted
		case naming.Alias("Addresses", "Id"):
			dest[i] = &addrID
		case naming.Alias("Addresses", "IsDeleted"):
			dest[i] = &addrDel
		case naming.Alias("Addresses", "UserId"):
			dest[i] = &addrOwner
		default:
			dest[i] = new(any)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return User{}, err //nolint:wrapcheck // pass through
	}
	if addrID.Valid {
		v.Addresses.Add(Address{ID: addrID.Int64, IsDeleted: addrDel.Bool, UserID: addrOwner.Int64})
	}
	return v, nil
}

func userColumnValuePairs(v *User, includesPK bool) ([]string, []any) {
	if includesPK {
		return []string{"Id", "IsDeleted"}, []any{v.ID, v.IsDeleted}
	}
	return []string{"IsDeleted"}, []any{v.IsDeleted}
}

func setUserPK(v *User, id int64) {
	v.ID = id
}

var userAddressesFetch = orm.FetchConfig[User]{
	Join: orm.JoinConfig{
		TargetTable:  AddressMap.QualifiedTable(),
		TargetColumn: "UserId",
		SourceTable:  UserMap.QualifiedTable(),
		SourceColumn: UserMap.ID,
	},
	Columns: AddressMap.AllColumns(),
	Key:     func(u *User) any { return u.ID },
	Merge:   func(dst, src *User) { dst.Addresses.Append(&src.Addresses) },
	Prepare: func(ctx context.Context, db orm.Querier, u *User) {
		id := u.ID
		u.Addresses.Lazy(func() ([]Address, error) {
			return Addresses(db).Scopes(scope.Eq("UserId", id)).All(ctx)
		})
	},
	Complete: func(u *User) { u.Addresses.Initialize() },
}

func preloadUserAddresses(ctx context.Context, db orm.Querier, results []User) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int64, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}
	related, err := Addresses(db).Scopes(scope.In("UserId", ids)).All(ctx)
	if err != nil {
		return err
	}
	byFK := make(map[int64][]Address)
	for _, r := range related {
		byFK[r.UserID] = append(byFK[r.UserID], r)
	}
	for i := range results {
		results[i].Addresses.Set(byFK[results[i].ID])
	}
	return nil
}
