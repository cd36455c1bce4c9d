package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

type invoices struct {
	db *pgxpool.Pool
}

// GetOrCreate leans on the (batch_id, invoice_account_id) unique index:
// insert, and on conflict read the winner back.
func (i *invoices) GetOrCreate(ctx context.Context, invoice *model.Invoice) (*model.Invoice, error) {
	address, err := json.Marshal(invoice.Address)
	if err != nil {
		return nil, model.WrapError(model.ErrInternal, "encode address", err)
	}

	_, err = i.db.Exec(ctx, `
		INSERT INTO billing_invoices
			(id, batch_id, invoice_account_id, invoice_account_number, address,
			 financial_year_ending, is_de_minimis, net_total)
		VALUES ($1, $2, $3, $4, $5, $6, false, 0)
		ON CONFLICT (batch_id, invoice_account_id) DO NOTHING`,
		invoice.ID, invoice.BatchID, invoice.InvoiceAccountID,
		invoice.InvoiceAccountNumber, address, invoice.FinancialYearEnding)
	if err != nil {
		return nil, mapError(err, "invoice insert failed")
	}

	return i.getByAccount(ctx, invoice.BatchID, invoice.InvoiceAccountID)
}

func (i *invoices) getByAccount(ctx context.Context, batchID, accountID uuid.UUID) (*model.Invoice, error) {
	row := i.db.QueryRow(ctx, `
		SELECT `+invoiceColumns+` FROM billing_invoices
		WHERE batch_id = $1 AND invoice_account_id = $2`, batchID, accountID)
	return scanInvoice(row)
}

func (i *invoices) GetOrCreateLicence(ctx context.Context, licence *model.InvoiceLicence) (*model.InvoiceLicence, error) {
	_, err := i.db.Exec(ctx, `
		INSERT INTO billing_invoice_licences
			(id, invoice_id, licence_id, licence_number, company_id, contact_id, address_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (invoice_id, licence_number, company_id, address_id, contact_id) DO NOTHING`,
		licence.ID, licence.InvoiceID, licence.LicenceID, licence.LicenceNumber,
		licence.CompanyID, licence.ContactID, licence.AddressID)
	if err != nil {
		return nil, mapError(err, "invoice licence insert failed")
	}

	var out model.InvoiceLicence
	err = i.db.QueryRow(ctx, `
		SELECT id, invoice_id, licence_id, licence_number, company_id, contact_id, address_id
		FROM billing_invoice_licences
		WHERE invoice_id = $1 AND licence_number = $2 AND company_id = $3 AND address_id = $4 AND contact_id = $5`,
		licence.InvoiceID, licence.LicenceNumber, licence.CompanyID, licence.AddressID, licence.ContactID).Scan(
		&out.ID, &out.InvoiceID, &out.LicenceID, &out.LicenceNumber,
		&out.CompanyID, &out.ContactID, &out.AddressID)
	if err != nil {
		return nil, mapError(err, "invoice licence read-back failed")
	}
	return &out, nil
}

func (i *invoices) Create(ctx context.Context, invoice *model.Invoice) error {
	address, err := json.Marshal(invoice.Address)
	if err != nil {
		return model.WrapError(model.ErrInternal, "encode address", err)
	}

	tx, err := i.db.Begin(ctx)
	if err != nil {
		return mapError(err, "begin failed")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO billing_invoices
			(id, batch_id, invoice_account_id, invoice_account_number, address,
			 financial_year_ending, external_id, invoice_number, is_de_minimis,
			 original_invoice_id, net_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		invoice.ID, invoice.BatchID, invoice.InvoiceAccountID, invoice.InvoiceAccountNumber,
		address, invoice.FinancialYearEnding, nullable(invoice.ExternalID),
		nullable(invoice.InvoiceNumber), invoice.IsDeMinimis,
		invoice.OriginalInvoiceID, invoice.Totals.NetTotal)
	if err != nil {
		return mapError(err, "invoice insert failed")
	}

	for _, licence := range invoice.InvoiceLicences {
		_, err = tx.Exec(ctx, `
			INSERT INTO billing_invoice_licences
				(id, invoice_id, licence_id, licence_number, company_id, contact_id, address_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			licence.ID, licence.InvoiceID, licence.LicenceID, licence.LicenceNumber,
			licence.CompanyID, licence.ContactID, licence.AddressID)
		if err != nil {
			return mapError(err, "invoice licence insert failed")
		}
	}
	return mapError(tx.Commit(ctx), "commit failed")
}

func (i *invoices) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	row := i.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM billing_invoices WHERE id = $1`, id)
	invoice, err := scanInvoice(row)
	if err != nil {
		return nil, err
	}

	rows, err := i.db.Query(ctx, `
		SELECT id, invoice_id, licence_id, licence_number, company_id, contact_id, address_id
		FROM billing_invoice_licences WHERE invoice_id = $1`, id)
	if err != nil {
		return nil, mapError(err, "invoice licence list failed")
	}
	defer rows.Close()
	for rows.Next() {
		var licence model.InvoiceLicence
		if err := rows.Scan(&licence.ID, &licence.InvoiceID, &licence.LicenceID,
			&licence.LicenceNumber, &licence.CompanyID, &licence.ContactID, &licence.AddressID); err != nil {
			return nil, mapError(err, "invoice licence scan failed")
		}
		invoice.InvoiceLicences = append(invoice.InvoiceLicences, licence)
	}
	return invoice, mapError(rows.Err(), "invoice licence list failed")
}

func (i *invoices) GetLicence(ctx context.Context, id uuid.UUID) (*model.InvoiceLicence, error) {
	var out model.InvoiceLicence
	err := i.db.QueryRow(ctx, `
		SELECT id, invoice_id, licence_id, licence_number, company_id, contact_id, address_id
		FROM billing_invoice_licences WHERE id = $1`, id).Scan(
		&out.ID, &out.InvoiceID, &out.LicenceID, &out.LicenceNumber,
		&out.CompanyID, &out.ContactID, &out.AddressID)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("invoice licence %s not found", id))
	}
	return &out, nil
}

func (i *invoices) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*model.Invoice, error) {
	rows, err := i.db.Query(ctx, `SELECT `+invoiceColumns+` FROM billing_invoices WHERE batch_id = $1`, batchID)
	if err != nil {
		return nil, mapError(err, "invoice list failed")
	}
	defer rows.Close()

	var out []*model.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, invoice)
	}
	return out, mapError(rows.Err(), "invoice list failed")
}

func (i *invoices) SetEngineFields(ctx context.Context, id uuid.UUID, externalID, invoiceNumber string, isDeMinimis bool, totals model.InvoiceTotals) error {
	_, err := i.db.Exec(ctx, `
		UPDATE billing_invoices
		SET external_id = $2, invoice_number = $3, is_de_minimis = $4, net_total = $5
		WHERE id = $1`,
		id, nullable(externalID), nullable(invoiceNumber), isDeMinimis, totals.NetTotal)
	return mapError(err, "invoice engine fields update failed")
}

// DeleteByBatch removes the batch's invoices and, through the schema's
// cascading foreign keys, their licences and transactions.
func (i *invoices) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	_, err := i.db.Exec(ctx, `DELETE FROM billing_invoices WHERE batch_id = $1`, batchID)
	return mapError(err, "invoice delete failed")
}

const invoiceColumns = `
	id, batch_id, invoice_account_id, invoice_account_number, address,
	financial_year_ending, external_id, invoice_number, is_de_minimis,
	original_invoice_id, net_total`

func scanInvoice(row pgx.Row) (*model.Invoice, error) {
	var invoice model.Invoice
	var address []byte
	var externalID, invoiceNumber *string
	err := row.Scan(
		&invoice.ID, &invoice.BatchID, &invoice.InvoiceAccountID, &invoice.InvoiceAccountNumber,
		&address, &invoice.FinancialYearEnding, &externalID, &invoiceNumber,
		&invoice.IsDeMinimis, &invoice.OriginalInvoiceID, &invoice.Totals.NetTotal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewError(model.ErrNotFound, "invoice not found")
		}
		return nil, mapError(err, "invoice scan failed")
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &invoice.Address); err != nil {
			return nil, model.WrapError(model.ErrInternal, "decode address", err)
		}
	}
	if externalID != nil {
		invoice.ExternalID = *externalID
	}
	if invoiceNumber != nil {
		invoice.InvoiceNumber = *invoiceNumber
	}
	return &invoice, nil
}
