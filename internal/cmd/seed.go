package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/mickamy/fetchmany-repro/internal/app"
	"github.com/mickamy/fetchmany-repro/internal/config"
	"github.com/mickamy/fetchmany-repro/internal/logging"
	"github.com/mickamy/fetchmany-repro/internal/schema"
	"github.com/mickamy/fetchmany-repro/internal/session"
	"github.com/mickamy/fetchmany-repro/orm"
)

const (
	seedCmdShort = "create the User schema and insert the fixture"
	seedCmdLong  = `Create schema "User" with the tables "User" and "Address" when they do not
	exist, then insert one active user with two addresses, one deleted user
	with one address and one active user without addresses.

	Nothing is inserted when the User table already has rows.`
)

// SeedCmd returns the "seed" command preparing the database.
func SeedCmd(opts ...session.Option) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: heredoc.Doc(seedCmdShort),
		Long:  heredoc.Doc(seedCmdLong),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return handleError(cmd, err)
			}
			a := app.New(cfg, cmd.ErrOrStderr(), opts...)
			ctx := logging.WithContext(cmd.Context(), a.Loggers)
			if err := seed(ctx, cmd, a); err != nil {
				return handleError(cmd, err)
			}
			return nil
		},
	}
}

func seed(ctx context.Context, cmd *cobra.Command, a *app.App) (err error) {
	log := logging.FromContext(ctx).CreateLogger("Seed")

	d, err := orm.DialectByName(a.Config.Dialect)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}

	sess, err := a.Sessions.GetNewSession(ctx)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	if err := schema.Migrate(ctx, sess, d); err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	log.Log(logging.Information, nil, "schema %s is up to date", d.Name())

	seeded, err := schema.Seed(ctx, sess)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}

	if seeded {
		fmt.Fprintln(cmd.OutOrStdout(), "Database seeded.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Database already contains users, nothing inserted.")
	}
	return nil
}
