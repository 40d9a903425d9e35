package repository

import (
	"database/sql/driver"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newRepoMock wraps sqlmock in sqlx. Queries are matched as regular
// expressions, so tests pass regexp.QuoteMeta of the exact statement.
func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

// anyTime matches any time.Time argument, for columns stamped by the repository.
type anyTime struct{}

func (anyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}

// anyString matches any non-empty string, for generated ids.
type anyString struct{}

func (anyString) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s != ""
}
