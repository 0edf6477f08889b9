package postgresql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStoreErrMarksTransientFailures(t *testing.T) {
	transient := []error{
		context.DeadlineExceeded,
		&pgconn.PgError{Code: "08006"}, // connection_failure
		&pgconn.PgError{Code: "57P03"}, // cannot_connect_now
		&pgconn.PgError{Code: "53300"}, // too_many_connections
		fmt.Errorf("query failed: %w", &pgconn.PgError{Code: "08000"}),
	}
	for _, err := range transient {
		wrapped := storeErr("failed to list attendance events", err)
		assert.ErrorIs(t, wrapped, attendance.ErrStoreUnavailable, "error %v must classify as a store outage", err)
	}
}

func TestStoreErrLeavesStatementFailuresAlone(t *testing.T) {
	statement := []error{
		&pgconn.PgError{Code: "23505"}, // unique_violation
		&pgconn.PgError{Code: "42703"}, // undefined_column
		errors.New("scan failed"),
	}
	for _, err := range statement {
		wrapped := storeErr("failed to append attendance event", err)
		assert.NotErrorIs(t, wrapped, attendance.ErrStoreUnavailable)
		assert.ErrorIs(t, wrapped, err)
	}
}
