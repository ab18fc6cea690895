// Package testdb provides the database used by repository and service tests.
// By default every test gets its own in-memory SQLite database, so the suite
// runs anywhere without Docker. Set TESTDB_DRIVER=postgres to run the same
// tests against a shared postgres:16-alpine testcontainer instead; tests
// sharing the container cannot run in parallel.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var (
	sharedPG   *bun.DB
	sharedOnce sync.Once
	dbCounter  atomic.Int64
)

// Setup returns a migrated database for one test.
func Setup(t *testing.T, models ...interface{}) *bun.DB {
	t.Helper()

	var db *bun.DB
	if os.Getenv("TESTDB_DRIVER") == "postgres" {
		db = setupSharedPostgres(t)
	} else {
		db = setupSQLite(t)
	}

	ctx := context.Background()
	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		require.NoError(t, err, "failed to create table")
	}

	return db
}

func setupSQLite(t *testing.T) *bun.DB {
	t.Helper()

	// A named in-memory database with shared cache gives every connection
	// opened by this test the same store.
	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", dbCounter.Add(1))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)

	// One connection keeps the in-memory database alive for the whole test
	// and sidesteps SQLITE_BUSY.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, db.Ping())

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func setupSharedPostgres(t *testing.T) *bun.DB {
	t.Helper()

	sharedOnce.Do(func() {
		ctx := context.Background()
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			),
		)
		require.NoError(t, err)

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
		db := bun.NewDB(sqldb, pgdialect.New())
		require.NoError(t, db.Ping())

		sharedPG = db
	})

	return sharedPG
}

// CleanupTables empties the listed tables between subtests and resets their
// id sequences.
func CleanupTables(t *testing.T, db *bun.DB, tables ...string) {
	t.Helper()
	ctx := context.Background()

	if db.Dialect().Name() == dialect.PG {
		for _, table := range tables {
			_, err := db.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
			require.NoError(t, err, "failed to truncate table: %s", table)
		}
		return
	}

	for _, table := range tables {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to clear table: %s", table)
		// sqlite_sequence only has a row once an AUTOINCREMENT table has
		// been written to.
		_, _ = db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table)
	}
}
