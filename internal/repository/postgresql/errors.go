package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/jackc/pgx/v5/pgconn"
)

// isTransient reports whether err points at the store rather than the
// statement: timeouts, failed connects, class 08 connection exceptions and
// the shutdown / resource-exhaustion states.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "57P01", "57P02", "57P03", "53300", "53400":
			return true
		}
		return strings.HasPrefix(pgErr.Code, "08")
	}
	return false
}

// storeErr wraps a repository failure. Transient outages additionally carry
// attendance.ErrStoreUnavailable so the transport layer answers 503 instead
// of a generic 500.
func storeErr(op string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %v", op, attendance.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
