package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/careconnect-api/internal/repository"
)

const (
	uniqueViolation = pq.ErrorCode("23505")
	// Class 08 is connection_exception.
	connectionExceptionClass = pq.ErrorClass("08")
	adminShutdown            = pq.ErrorCode("57P01")
	crashShutdown            = pq.ErrorCode("57P02")
	cannotConnectNow         = pq.ErrorCode("57P03")
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// translate maps driver errors onto the repository sentinels so services
// never inspect postgres error codes themselves.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrUniqueViolation
	}
	if unreachable(err) {
		return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
	}
	return err
}

// unreachable reports connection-class failures, as opposed to errors the
// server returned for a statement.
func unreachable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == connectionExceptionClass,
			pqErr.Code == adminShutdown,
			pqErr.Code == crashShutdown,
			pqErr.Code == cannotConnectNow:
			return true
		}
	}
	return false
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
