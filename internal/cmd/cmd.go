// Package cmd holds the command line of the reproduction harness.
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/mickamy/fetchmany-repro/internal/app"
	"github.com/mickamy/fetchmany-repro/internal/config"
	"github.com/mickamy/fetchmany-repro/internal/logging"
	"github.com/mickamy/fetchmany-repro/internal/session"
)

const (
	AppName = "fetchmany-repro"

	rootCmdShort = "run the fetch-many logging reproduction once"
	rootCmdLong  = `Load every active user together with its addresses through a single
	outer-join fetch, with the ORM's diagnostics routed to the console logger.

	With LOG_LEVEL=Trace the per-row trace record formats each user while the
	result set is still being read, which triggers a lazy load on the same
	session and fails the query. Any level above Trace, or ORM_LOGGING=false,
	lets the same query succeed.

	Settings are read from the environment:
	  DB_DIALECT, DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD,
	  DB_APPLICATION_NAME, DB_DRIVER_TRACE, LOG_LEVEL, ORM_LOGGING, FETCH_STRATEGY`

	rootCmdExample = `# Reproduce the failure
	fetchmany-repro

	# Run the same query without trace logging
	LOG_LEVEL=Information fetchmany-repro

	# Load the addresses with a second query instead of a join
	FETCH_STRATEGY=batch fetchmany-repro`

	pressEnter = "Press Enter to exit."
)

// RootCmd returns the command running the reproduction. Extra options
// are passed to the session provider.
func RootCmd(opts ...session.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:     AppName,
		Short:   heredoc.Doc(rootCmdShort),
		Long:    heredoc.Doc(rootCmdLong),
		Example: heredoc.Doc(rootCmdExample),

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
			if err := a.Executor.PerformTest(ctx); err != nil {
				return handleError(cmd, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Query completed.")
			fmt.Fprintln(cmd.OutOrStdout(), pressEnter)
			return waitForEnter(cmd.InOrStdin())
		},
	}

	cmd.AddCommand(SeedCmd(opts...))
	return cmd
}

// handleError prints err on the error stream and returns it.
func handleError(cmd *cobra.Command, err error) error {
	cmd.PrintErrln(err)
	return err
}

func waitForEnter(r io.Reader) error {
	_, err := bufio.NewReader(r).ReadString('\n')
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err //nolint:wrapcheck // pass through
}
