package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

type transactions struct {
	db *pgxpool.Pool
}

const transactionColumns = `
	id, batch_id, invoice_licence_id, charge_element_id,
	charge_period_start, charge_period_end,
	is_credit, is_compensation_charge, is_two_part_tariff_supplementary,
	is_minimum_charge, is_de_minimis,
	authorised_days, billable_days, volume, description, agreements,
	status, external_id, transaction_key, value, season, loss, source`

func (t *transactions) CreateAll(ctx context.Context, txns []*model.Transaction) error {
	rows := make([][]any, 0, len(txns))
	for _, txn := range txns {
		agreements, err := json.Marshal(txn.Agreements)
		if err != nil {
			return model.WrapError(model.ErrInternal, "encode agreements", err)
		}
		rows = append(rows, []any{
			txn.ID, txn.BatchID, txn.InvoiceLicenceID, txn.ChargeElementID,
			txn.ChargePeriod.StartDate, txn.ChargePeriod.EndDate,
			txn.IsCredit, txn.IsCompensationCharge, txn.IsTwoPartTariffSupplementary,
			txn.IsMinimumCharge, txn.IsDeMinimis,
			txn.AuthorisedDays, txn.BillableDays, txn.Volume.String(), txn.Description, agreements,
			txn.Status, nullable(txn.ExternalID), txn.TransactionKey, txn.Value,
			txn.Season, txn.Loss, txn.Source,
		})
	}

	_, err := t.db.CopyFrom(ctx,
		pgx.Identifier{"billing_transactions"},
		[]string{
			"id", "batch_id", "invoice_licence_id", "charge_element_id",
			"charge_period_start", "charge_period_end",
			"is_credit", "is_compensation_charge", "is_two_part_tariff_supplementary",
			"is_minimum_charge", "is_de_minimis",
			"authorised_days", "billable_days", "volume", "description", "agreements",
			"status", "external_id", "transaction_key", "value", "season", "loss", "source",
		},
		pgx.CopyFromRows(rows))
	return mapError(err, "transaction insert failed")
}

func (t *transactions) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	row := t.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM billing_transactions WHERE id = $1`, id)
	txn, err := scanTransaction(row)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("transaction %s not found", id))
	}
	return txn, nil
}

func (t *transactions) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*model.Transaction, error) {
	rows, err := t.db.Query(ctx, `SELECT `+transactionColumns+` FROM billing_transactions WHERE batch_id = $1`, batchID)
	if err != nil {
		return nil, mapError(err, "transaction list failed")
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (t *transactions) ListByInvoiceLicence(ctx context.Context, invoiceLicenceID uuid.UUID) ([]*model.Transaction, error) {
	rows, err := t.db.Query(ctx, `SELECT `+transactionColumns+` FROM billing_transactions WHERE invoice_licence_id = $1`, invoiceLicenceID)
	if err != nil {
		return nil, mapError(err, "transaction list failed")
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (t *transactions) ListCandidateIDs(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := t.db.Query(ctx, `
		SELECT id FROM billing_transactions WHERE batch_id = $1 AND status = $2`,
		batchID, model.TransactionStatusCandidate)
	if err != nil {
		return nil, mapError(err, "candidate list failed")
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err, "candidate scan failed")
		}
		out = append(out, id)
	}
	return out, mapError(rows.Err(), "candidate list failed")
}

func (t *transactions) StatusCounts(ctx context.Context, batchID uuid.UUID) (map[model.TransactionStatus]int, error) {
	rows, err := t.db.Query(ctx, `
		SELECT status, count(*) FROM billing_transactions WHERE batch_id = $1 GROUP BY status`, batchID)
	if err != nil {
		return nil, mapError(err, "status count failed")
	}
	defer rows.Close()

	out := map[model.TransactionStatus]int{}
	for rows.Next() {
		var status model.TransactionStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, mapError(err, "status count scan failed")
		}
		out[status] = count
	}
	return out, mapError(rows.Err(), "status count failed")
}

// MarkChargeCreated settles a candidate with its engine id. The status
// predicate is the duplicate-submission guard.
func (t *transactions) MarkChargeCreated(ctx context.Context, id uuid.UUID, externalID string) error {
	tag, err := t.db.Exec(ctx, `
		UPDATE billing_transactions SET status = $2, external_id = $3
		WHERE id = $1 AND status = $4`,
		id, model.TransactionStatusChargeCreated, externalID, model.TransactionStatusCandidate)
	if err != nil {
		return mapError(err, "transaction update failed")
	}
	if tag.RowsAffected() == 0 {
		return model.NewError(model.ErrConflict, fmt.Sprintf("transaction %s already settled", id))
	}
	return nil
}

func (t *transactions) MarkError(ctx context.Context, id uuid.UUID) error {
	tag, err := t.db.Exec(ctx, `
		UPDATE billing_transactions SET status = $2
		WHERE id = $1 AND status = $3`,
		id, model.TransactionStatusError, model.TransactionStatusCandidate)
	if err != nil {
		return mapError(err, "transaction update failed")
	}
	if tag.RowsAffected() == 0 {
		return model.NewError(model.ErrConflict, fmt.Sprintf("transaction %s already settled", id))
	}
	return nil
}

func (t *transactions) SetEngineValues(ctx context.Context, id uuid.UUID, value int64, isDeMinimis, isMinimumCharge bool) error {
	_, err := t.db.Exec(ctx, `
		UPDATE billing_transactions
		SET value = $2, is_de_minimis = $3, is_minimum_charge = $4
		WHERE id = $1`,
		id, value, isDeMinimis, isMinimumCharge)
	return mapError(err, "transaction value update failed")
}

func (t *transactions) ListBilled(ctx context.Context, region string, licenceID uuid.UUID, financialYearEnding int) ([]*model.Transaction, error) {
	fy := model.FinancialYear(financialYearEnding)
	rows, err := t.db.Query(ctx, `
		SELECT `+prefixedTransactionColumns("t")+`
		FROM billing_transactions t
		JOIN billing_invoice_licences il ON il.id = t.invoice_licence_id
		JOIN billing_batches b ON b.id = t.batch_id
		WHERE b.region = $1 AND b.status = $2 AND il.licence_id = $3
		  AND t.status = $4
		  AND t.charge_period_start <= $5 AND t.charge_period_end >= $6`,
		region, model.BatchStatusSent, licenceID,
		model.TransactionStatusChargeCreated, fy.EndDate, fy.StartDate)
	if err != nil {
		return nil, mapError(err, "billed transaction list failed")
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func prefixedTransactionColumns(alias string) string {
	return alias + ".id, " + alias + ".batch_id, " + alias + ".invoice_licence_id, " + alias + ".charge_element_id, " +
		alias + ".charge_period_start, " + alias + ".charge_period_end, " +
		alias + ".is_credit, " + alias + ".is_compensation_charge, " + alias + ".is_two_part_tariff_supplementary, " +
		alias + ".is_minimum_charge, " + alias + ".is_de_minimis, " +
		alias + ".authorised_days, " + alias + ".billable_days, " + alias + ".volume, " + alias + ".description, " + alias + ".agreements, " +
		alias + ".status, " + alias + ".external_id, " + alias + ".transaction_key, " + alias + ".value, " +
		alias + ".season, " + alias + ".loss, " + alias + ".source"
}

func collectTransactions(rows pgx.Rows) ([]*model.Transaction, error) {
	var out []*model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, mapError(err, "transaction scan failed")
		}
		out = append(out, txn)
	}
	return out, mapError(rows.Err(), "transaction list failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var volume string
	var agreements []byte
	var externalID *string
	err := row.Scan(
		&txn.ID, &txn.BatchID, &txn.InvoiceLicenceID, &txn.ChargeElementID,
		&txn.ChargePeriod.StartDate, &txn.ChargePeriod.EndDate,
		&txn.IsCredit, &txn.IsCompensationCharge, &txn.IsTwoPartTariffSupplementary,
		&txn.IsMinimumCharge, &txn.IsDeMinimis,
		&txn.AuthorisedDays, &txn.BillableDays, &volume, &txn.Description, &agreements,
		&txn.Status, &externalID, &txn.TransactionKey, &txn.Value,
		&txn.Season, &txn.Loss, &txn.Source)
	if err != nil {
		return nil, err
	}

	txn.Volume, err = decimal.NewFromString(volume)
	if err != nil {
		return nil, err
	}
	if len(agreements) > 0 {
		if err := json.Unmarshal(agreements, &txn.Agreements); err != nil {
			return nil, err
		}
	}
	if externalID != nil {
		txn.ExternalID = *externalID
	}
	txn.ChargePeriod.StartDate = model.TruncateDay(txn.ChargePeriod.StartDate)
	txn.ChargePeriod.EndDate = model.TruncateDay(txn.ChargePeriod.EndDate)
	return &txn, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
