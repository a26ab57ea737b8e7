package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

type fakeDB struct {
	pingFailures int
	pings        int
	execs        []string
}

var _ core.DB = (*fakeDB)(nil)

func (db *fakeDB) ExecContext(_ context.Context, query string, _ ...interface{}) (sql.Result, error) {
	db.execs = append(db.execs, query)
	return nil, nil
}

func (db *fakeDB) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *fakeDB) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (db *fakeDB) BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error) {
	return nil, errors.New("not implemented")
}

func (db *fakeDB) PingContext(context.Context) error {
	db.pings++
	if db.pings <= db.pingFailures {
		return errors.New("connection refused")
	}
	return nil
}

func (db *fakeDB) Close() error { return nil }

func TestPing(t *testing.T) {
	db := &fakeDB{pingFailures: 2}
	require.NoError(t, Ping(context.Background(), db))
	assert.Equal(t, 3, db.pings)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := Ping(ctx, &fakeDB{pingFailures: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB ping cancelled")
}

func TestReset(t *testing.T) {
	db := new(fakeDB)
	require.NoError(t, Reset(context.Background(), db))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "TRUNCATE status_history")
}

func TestDSN(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{
		Engine: "postgres", Host: "db", Port: 5432, User: "app", Password: "p@ss",
		AdminUser: "postgres", AdminPassword: "root", DisableTLS: true,
	}}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/admissions?sslmode=disable&timezone=utc", DSN("admissions", false, conf))
	assert.Equal(t, "postgres://postgres:root@db:5432/postgres?sslmode=disable&timezone=utc", DSN("postgres", true, conf))
}
