package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

type volumes struct {
	db *pgxpool.Pool
}

func (v *volumes) CreateAll(ctx context.Context, vols []*model.BillingVolume) error {
	rows := make([][]any, 0, len(vols))
	for _, vol := range vols {
		rows = append(rows, []any{
			vol.ID, vol.BatchID, vol.ChargeElementID, vol.FinancialYearEnding,
			vol.CalculatedVolume.String(), vol.IsApproved,
		})
	}
	_, err := v.db.CopyFrom(ctx,
		pgx.Identifier{"billing_volumes"},
		[]string{"id", "batch_id", "charge_element_id", "financial_year_ending", "calculated_volume", "is_approved"},
		pgx.CopyFromRows(rows))
	return mapError(err, "billing volume insert failed")
}

func (v *volumes) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*model.BillingVolume, error) {
	rows, err := v.db.Query(ctx, `
		SELECT id, batch_id, charge_element_id, financial_year_ending, calculated_volume, is_approved
		FROM billing_volumes WHERE batch_id = $1`, batchID)
	if err != nil {
		return nil, mapError(err, "billing volume list failed")
	}
	defer rows.Close()

	var out []*model.BillingVolume
	for rows.Next() {
		var vol model.BillingVolume
		var calculated string
		if err := rows.Scan(&vol.ID, &vol.BatchID, &vol.ChargeElementID,
			&vol.FinancialYearEnding, &calculated, &vol.IsApproved); err != nil {
			return nil, mapError(err, "billing volume scan failed")
		}
		vol.CalculatedVolume, err = decimal.NewFromString(calculated)
		if err != nil {
			return nil, model.WrapError(model.ErrInternal, "decode calculated volume", err)
		}
		out = append(out, &vol)
	}
	return out, mapError(rows.Err(), "billing volume list failed")
}

func (v *volumes) CountUnapproved(ctx context.Context, batchID uuid.UUID) (int, error) {
	var count int
	err := v.db.QueryRow(ctx, `
		SELECT count(*) FROM billing_volumes WHERE batch_id = $1 AND NOT is_approved`,
		batchID).Scan(&count)
	if err != nil {
		return 0, mapError(err, "billing volume count failed")
	}
	return count, nil
}

func (v *volumes) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	_, err := v.db.Exec(ctx, `
		DELETE FROM billing_volumes WHERE batch_id = $1`, batchID)
	return mapError(err, "billing volume delete failed")
}

func (v *volumes) ApproveAll(ctx context.Context, batchID uuid.UUID) error {
	_, err := v.db.Exec(ctx, `
		UPDATE billing_volumes SET is_approved = true WHERE batch_id = $1`, batchID)
	return mapError(err, "billing volume approve failed")
}
