// Package model declares the two persisted entities of the reproduction
// and the query factories the ORM uses to load them.
package model

import (
	"fmt"

	"github.com/mickamy/fetchmany-repro/orm"
)

// Schema is the database schema both entities live in.
const Schema = "User"

// User owns a collection of addresses.
type User struct {
	ID        int64
	IsDeleted bool
	Addresses orm.Bag[Address]
}

func (u *User) String() string {
	return fmt.Sprintf("User#%d{IsDeleted:%t Addresses:%v}", u.ID, u.IsDeleted, &u.Addresses)
}

// Address belongs to exactly one User.
type Address struct {
	ID        int64
	IsDeleted bool
	UserID    int64
}

func (a Address) String() string {
	return fmt.Sprintf("Address#%d{IsDeleted:%t}", a.ID, a.IsDeleted)
}

// UserMap maps User to "User"."User".
var UserMap = orm.Map[User](orm.ClassMap{
	Schema:  Schema,
	Table:   "User",
	ID:      "Id",
	Columns: []string{"IsDeleted"},
	HasMany: []orm.HasMany{
		{Name: "Addresses", Target: "Address", KeyColumn: "UserId"},
	},
})

// AddressMap maps Address to "User"."Address".
var AddressMap = orm.Map[Address](orm.ClassMap{
	Schema:  Schema,
	Table:   "Address",
	ID:      "Id",
	Columns: []string{"IsDeleted", "UserId"},
})

// Mappings returns the mappings of every entity in this package.
func Mappings() *orm.Mappings {
	return orm.NewMappings(UserMap, AddressMap)
}
