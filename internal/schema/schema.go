// Package schema creates and fills the tables the reproduction queries.
package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/mickamy/fetchmany-repro/internal/model"
	"github.com/mickamy/fetchmany-repro/orm"
)

// Statements returns the DDL creating schema User with its two tables.
// Every statement is idempotent.
func Statements(d orm.Dialect) []string {
	q := func(name string) string { return orm.QuoteQualified(d, name) }
	users := q(model.UserMap.QualifiedTable())
	addresses := q(model.AddressMap.QualifiedTable())

	identity := "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	createSchema := "CREATE SCHEMA IF NOT EXISTS " + q(model.Schema)
	if d.Name() == orm.MySQL.Name() {
		identity = "BIGINT AUTO_INCREMENT PRIMARY KEY"
		createSchema = "CREATE DATABASE IF NOT EXISTS " + q(model.Schema)
	}

	return []string{
		createSchema,
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s %s, %s BOOLEAN NOT NULL DEFAULT FALSE)",
			users, q("Id"), identity, q("IsDeleted")),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s %s, %s BOOLEAN NOT NULL DEFAULT FALSE, %s BIGINT NOT NULL, FOREIGN KEY (%s) REFERENCES %s (%s))",
			addresses, q("Id"), identity, q("IsDeleted"), q("UserId"), q("UserId"), users, q("Id")),
	}
}

// Migrate runs Statements on sess.
func Migrate(ctx context.Context, sess *orm.Session, d orm.Dialect) error {
	for _, stmt := range Statements(d) {
		if _, err := sess.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: migrate: %w", err)
		}
	}
	return nil
}

// Seed inserts the fixture in one transaction: an active user with two
// addresses, a deleted user with one address and an active user without
// addresses. Nothing is inserted when users already exist.
func Seed(ctx context.Context, sess *orm.Session) (seeded bool, err error) {
	err = sess.Transaction(ctx, func(tx *orm.Tx) error {
		switch _, err := model.Users(tx).First(ctx); {
		case err == nil:
			return nil
		case !errors.Is(err, orm.ErrNotFound):
			return err
		}

		users := []*model.User{{}, {IsDeleted: true}, {}}
		if err := model.Users(tx).CreateAll(ctx, users); err != nil {
			return err
		}
		addresses := []*model.Address{
			{UserID: users[0].ID},
			{UserID: users[0].ID},
			{UserID: users[1].ID},
		}
		if err := model.Addresses(tx).CreateAll(ctx, addresses); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("schema: seed: %w", err)
	}
	return seeded, nil
}
