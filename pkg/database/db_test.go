package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestQuoteLiteral(t *testing.T) {
	require.Equal(t, "'UTC'", quoteLiteral("UTC"))
	require.Equal(t, "'it''s'", quoteLiteral("it's"))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("DATABASE_MAX_CONNS", "12")
	t.Setenv("DATABASE_TIMEZONE", "UTC")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@db:5432/x", cfg.URL)
	require.Equal(t, 12, cfg.MaxConns)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "UTC", cfg.TimeZone)
}

func TestApplySession(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("SET TIME ZONE 'Europe/Riga'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET client_encoding = 'UTF8'").WillReturnError(errors.New("boom"))

	err = applySession(context.Background(), db, Config{TimeZone: "Europe/Riga", ClientEncoding: "UTF8"})
	require.ErrorContains(t, err, "set client_encoding")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_WrapsGooseError(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		gotDir = dir
		return errors.New("no tables for you")
	}

	err := Migrate(context.Background(), nil)
	require.ErrorContains(t, err, "migrate: no tables for you")
	require.Equal(t, ".", gotDir)
}
