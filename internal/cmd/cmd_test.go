package cmd

import (
	"bytes"
	"database/sql/driver"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickamy/fetchmany-repro/internal/config"
	"github.com/mickamy/fetchmany-repro/internal/fakedb"
	"github.com/mickamy/fetchmany-repro/internal/session"
	"github.com/mickamy/fetchmany-repro/orm"
)

func newServer() (*fakedb.Server, string) {
	srv, dsn := fakedb.New()
	srv.Rows("LEFT OUTER JOIN",
		[]string{"Id", "IsDeleted", "Addresses__Id", "Addresses__IsDeleted", "Addresses__UserId"},
		[]driver.Value{int64(1), false, int64(10), false, int64(1)},
		[]driver.Value{int64(1), false, int64(11), false, int64(1)},
	)
	srv.Rows(`FROM "User"."Address"`, []string{"Id", "IsDeleted", "UserId"},
		[]driver.Value{int64(10), false, int64(1)},
		[]driver.Value{int64(11), false, int64(1)},
	)
	return srv, dsn
}

func execute(cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd(t *testing.T) {
	t.Cleanup(func() { orm.SetLoggerFactory(nil) })

	testCases := map[string]struct {
		env            map[string]string
		expectedError  error
		expectedStdout string
		expectedStderr []string
	}{
		"trace logging fails the query": {
			env:            map[string]string{},
			expectedError:  orm.ErrNoDataPresent,
			expectedStderr: []string{"[TRACE]", orm.ErrNoDataPresent.Error()},
		},
		"information logging completes the query": {
			env:            map[string]string{"LOG_LEVEL": "Information"},
			expectedStdout: "Query completed.\n" + pressEnter + "\n",
			expectedStderr: []string{"Executor: loaded 1 users"},
		},
		"disabled orm logging completes the query": {
			env:            map[string]string{"ORM_LOGGING": "false"},
			expectedStdout: "Query completed.\n" + pressEnter + "\n",
		},
		"invalid configuration": {
			env:            map[string]string{"FETCH_STRATEGY": "subselect"},
			expectedError:  config.ErrEnvVariablesNotValid,
			expectedStderr: []string{"FetchStrategy: must be a valid value"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, dsn := newServer()

			stdout, stderr, err := execute(RootCmd(session.WithConnection(fakedb.DriverName, dsn)), "\n")
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.expectedStdout, stdout)
			for _, s := range tc.expectedStderr {
				assert.Contains(t, stderr, s)
			}
		})
	}
}

func TestRootCmdRejectsArguments(t *testing.T) {
	_, _, err := execute(RootCmd(), "", "unexpected")
	require.Error(t, err)
}

func TestSeedCmd(t *testing.T) {
	t.Cleanup(func() { orm.SetLoggerFactory(nil) })
	t.Setenv("LOG_LEVEL", "Error")

	srv, dsn := fakedb.New()
	srv.Handle("CREATE", func(string, []driver.NamedValue) (*fakedb.Result, error) {
		return &fakedb.Result{}, nil
	})
	srv.Rows(`SELECT "Id", "IsDeleted" FROM "User"."User"`, []string{"Id", "IsDeleted"})
	srv.Rows(`INSERT INTO "User"."User"`, []string{"Id"},
		[]driver.Value{int64(1)}, []driver.Value{int64(2)}, []driver.Value{int64(3)},
	)
	srv.Rows(`INSERT INTO "User"."Address"`, []string{"Id"},
		[]driver.Value{int64(10)}, []driver.Value{int64(11)}, []driver.Value{int64(20)},
	)

	stdout, stderr, err := execute(RootCmd(session.WithConnection(fakedb.DriverName, dsn)), "", "seed")
	require.NoError(t, err)
	assert.Equal(t, "Database seeded.\n", stdout)
	assert.Empty(t, stderr)
	assert.Len(t, srv.Statements(), 6)
	assert.Equal(t, 0, srv.OpenConns())
}

func TestWaitForEnter(t *testing.T) {
	t.Parallel()

	assert.NoError(t, waitForEnter(strings.NewReader("\n")))
	assert.NoError(t, waitForEnter(strings.NewReader("")))
}
