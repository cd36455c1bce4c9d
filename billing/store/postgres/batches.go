package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

type batches struct {
	db *pgxpool.Pool
}

func (b *batches) Create(ctx context.Context, batch *model.Batch) error {
	_, err := b.db.Exec(ctx, `
		INSERT INTO billing_batches
			(id, batch_type, status, region, from_financial_year_ending, to_financial_year_ending, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())`,
		batch.ID, batch.Type, batch.Status, batch.Region,
		batch.FromFinancialYearEnding, batch.ToFinancialYearEnding)
	return mapError(err, "batch insert failed")
}

func (b *batches) Get(ctx context.Context, id uuid.UUID) (*model.Batch, error) {
	var batch model.Batch
	var errorCode, externalID *string
	err := b.db.QueryRow(ctx, `
		SELECT id, batch_type, status, error_code, region,
		       from_financial_year_ending, to_financial_year_ending, external_id,
		       credit_note_count, invoice_count, credit_note_value, invoice_value, net_total,
		       created_at, updated_at
		FROM billing_batches WHERE id = $1`, id).Scan(
		&batch.ID, &batch.Type, &batch.Status, &errorCode, &batch.Region,
		&batch.FromFinancialYearEnding, &batch.ToFinancialYearEnding, &externalID,
		&batch.Totals.CreditNoteCount, &batch.Totals.InvoiceCount,
		&batch.Totals.CreditNoteValue, &batch.Totals.InvoiceValue, &batch.Totals.NetTotal,
		&batch.CreatedAt, &batch.UpdatedAt)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("batch %s not found", id))
	}
	if errorCode != nil {
		batch.ErrorCode = model.BatchErrorCode(*errorCode)
	}
	if externalID != nil {
		batch.ExternalID = *externalID
	}
	return &batch, nil
}

// UpdateStatus only applies when the persisted status still equals
// from. Zero rows affected means another aggregator won the race.
func (b *batches) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BatchStatus) error {
	tag, err := b.db.Exec(ctx, `
		UPDATE billing_batches SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return mapError(err, "batch status update failed")
	}
	if tag.RowsAffected() == 0 {
		return model.NewError(model.ErrConflict,
			fmt.Sprintf("batch %s status changed concurrently, expected %s", id, from))
	}
	return nil
}

func (b *batches) SetError(ctx context.Context, id uuid.UUID, code model.BatchErrorCode) error {
	tag, err := b.db.Exec(ctx, `
		UPDATE billing_batches SET status = $2, error_code = $3, updated_at = now()
		WHERE id = $1 AND status NOT IN ($4, $5)`,
		id, model.BatchStatusError, code, model.BatchStatusSent, model.BatchStatusError)
	if err != nil {
		return mapError(err, "batch error update failed")
	}
	if tag.RowsAffected() == 0 {
		return model.NewError(model.ErrConflict, fmt.Sprintf("batch %s is terminal", id))
	}
	return nil
}

func (b *batches) SetExternalID(ctx context.Context, id uuid.UUID, externalID string) error {
	_, err := b.db.Exec(ctx, `
		UPDATE billing_batches SET external_id = $2, updated_at = now() WHERE id = $1`,
		id, externalID)
	return mapError(err, "batch external id update failed")
}

func (b *batches) UpdateTotals(ctx context.Context, id uuid.UUID, totals model.Totals) error {
	_, err := b.db.Exec(ctx, `
		UPDATE billing_batches
		SET credit_note_count = $2, invoice_count = $3, credit_note_value = $4,
		    invoice_value = $5, net_total = $6, updated_at = now()
		WHERE id = $1`,
		id, totals.CreditNoteCount, totals.InvoiceCount,
		totals.CreditNoteValue, totals.InvoiceValue, totals.NetTotal)
	return mapError(err, "batch totals update failed")
}
