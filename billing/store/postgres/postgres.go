// Package postgres is the pgx-backed store implementation. Guarded
// updates are expressed as conditional UPDATEs so the compare-and-set
// semantics live in the database, not in worker memory.
package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store"
)

// New builds the store bundle over a pgx pool.
func New(db *pgxpool.Pool) *store.Store {
	return &store.Store{
		Batches:      &batches{db: db},
		Invoices:     &invoices{db: db},
		Transactions: &transactions{db: db},
		Volumes:      &volumes{db: db},
		ChargeData:   &chargeData{db: db},
	}
}

// mapError normalizes pgx errors into the coded domain errors business
// code branches on.
func mapError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.NewError(model.ErrNotFound, notFoundMsg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return model.WrapError(model.ErrConflict, "duplicate row", err)
	}
	return model.WrapError(model.ErrInternal, "store query failed", err)
}
