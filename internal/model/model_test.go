package model

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickamy/fetchmany-repro/internal/fakedb"
	"github.com/mickamy/fetchmany-repro/orm"
)

func TestMappings(t *testing.T) {
	t.Parallel()

	require.NoError(t, Mappings().Validate())
	assert.Equal(t, "User", UserMap.Entity)
	assert.Equal(t, "User.User", UserMap.QualifiedTable())
	assert.Equal(t, "Address", AddressMap.Entity)
	assert.Equal(t, "User.Address", AddressMap.QualifiedTable())
	assert.Equal(t, []string{"Id", "IsDeleted", "UserId"}, AddressMap.AllColumns())

	r, ok := UserMap.Relation("Addresses")
	require.True(t, ok)
	assert.Equal(t, "UserId", r.KeyColumn)
}

func TestUserString(t *testing.T) {
	t.Parallel()

	u := &User{ID: 4}
	u.Addresses.Add(Address{ID: 40})
	u.Addresses.Initialize()

	assert.Equal(t, "User#4{IsDeleted:false Addresses:[Address#40{IsDeleted:false}]}", u.String())
}

func TestUserStringRunsLazyLoad(t *testing.T) {
	t.Parallel()

	loads := 0
	u := &User{ID: 5, IsDeleted: true}
	u.Addresses.Lazy(func() ([]Address, error) {
		loads++
		return []Address{{ID: 50, UserID: 5}}, nil
	})

	assert.Equal(t, "User#5{IsDeleted:true Addresses:[Address#50{IsDeleted:false}]}", u.String())
	assert.Equal(t, 1, loads)
}

func TestScanUserJoinedRows(t *testing.T) {
	t.Parallel()

	srv, dsn := fakedb.New()
	srv.Rows("FROM", []string{"Id", "IsDeleted", "Addresses__Id", "Addresses__IsDeleted", "Addresses__UserId", "Extra"},
		[]driver.Value{int64(1), false, int64(10), true, int64(1), "x"},
		[]driver.Value{int64(2), false, nil, nil, nil, "y"},
	)
	db, err := sql.Open(fakedb.DriverName, dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(context.Background(), "SELECT * FROM users")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		require.NoError(t, err)
		users = append(users, u)
	}
	require.NoError(t, rows.Err())
	require.Len(t, users, 2)

	assert.Equal(t, 1, users[0].Addresses.Len())
	assert.Equal(t, 0, users[1].Addresses.Len())
	users[0].Addresses.Initialize()
	items, err := users[0].Addresses.Items()
	require.NoError(t, err)
	assert.Equal(t, []Address{{ID: 10, IsDeleted: true, UserID: 1}}, items)
}

func TestColumnValuePairs(t *testing.T) {
	t.Parallel()

	cols, vals := userColumnValuePairs(&User{ID: 1, IsDeleted: true}, false)
	assert.Equal(t, []string{"IsDeleted"}, cols)
	assert.Equal(t, []any{true}, vals)

	cols, vals = addressColumnValuePairs(&Address{ID: 2, UserID: 1}, true)
	assert.Equal(t, []string{"Id", "IsDeleted", "UserId"}, cols)
	assert.Equal(t, []any{int64(2), false, int64(1)}, vals)
}

func TestPreloadUserAddresses(t *testing.T) {
	t.Parallel()

	srv, dsn := fakedb.New()
	srv.Rows(`FROM "User"."Address"`, []string{"Id", "IsDeleted", "UserId"},
		[]driver.Value{int64(10), false, int64(1)},
		[]driver.Value{int64(11), false, int64(1)},
	)
	factory, err := orm.BuildSessionFactory(orm.Config{
		Driver: fakedb.DriverName, DSN: dsn, Dialect: orm.PostgreSQL, Mappings: Mappings(),
	})
	require.NoError(t, err)
	sess, err := factory.OpenSession(context.Background(), orm.OwnFactory())
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	users := []User{{ID: 1}, {ID: 3}}
	require.NoError(t, preloadUserAddresses(context.Background(), sess, users))

	assert.Equal(t, 2, users[0].Addresses.Len())
	assert.True(t, users[1].Addresses.Initialized())
	assert.Equal(t, 0, users[1].Addresses.Len())
	assert.Equal(t, []any{int64(1), int64(3)}, srv.Statements()[0].Args)
	require.NoError(t, preloadUserAddresses(context.Background(), sess, nil))
}
