package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/loanledger/pkg/logger"
)

func newBufferedSQLLogger(threshold time.Duration) (*SQLLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})
	return NewSQLLogger(logg, threshold), buf
}

func statement() (string, int64) {
	return "SELECT * FROM loans WHERE id = 1", 1
}

func TestSQLLoggerReportsFailures(t *testing.T) {
	l, buf := newBufferedSQLLogger(time.Second)
	l.Trace(context.Background(), time.Now(), statement, errors.New("relation does not exist"))

	assert.Contains(t, buf.String(), "db.query.failed")
	assert.Contains(t, buf.String(), "SELECT * FROM loans")
}

func TestSQLLoggerIgnoresExpectedErrors(t *testing.T) {
	l, buf := newBufferedSQLLogger(time.Second)
	l.Trace(context.Background(), time.Now(), statement, gorm.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), statement, &pgconn.PgError{Code: "23505"})
	l.Trace(context.Background(), time.Now(), statement, &pgconn.PgError{Code: "55P03"})

	assert.Empty(t, buf.String())
}

func TestSQLLoggerFlagsSlowQueries(t *testing.T) {
	l, buf := newBufferedSQLLogger(10 * time.Millisecond)
	l.Trace(context.Background(), time.Now().Add(-time.Second), statement, nil)
	assert.Contains(t, buf.String(), "db.query.slow")

	buf.Reset()
	l.Trace(context.Background(), time.Now(), statement, nil)
	assert.Empty(t, buf.String())
}

func TestSQLLoggerSilentMode(t *testing.T) {
	l, buf := newBufferedSQLLogger(time.Millisecond)
	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now().Add(-time.Second), statement, errors.New("boom"))

	assert.Empty(t, buf.String())
	assert.Equal(t, gormlogger.Warn, l.level)
}
