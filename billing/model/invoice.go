package model

import (
	"github.com/google/uuid"
)

// Address is the postal snapshot taken at billing time. Invoices keep
// their own copy so later CRM edits cannot rewrite history.
type Address struct {
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	AddressLine3 string `json:"address_line_3,omitempty"`
	Town         string `json:"town"`
	County       string `json:"county,omitempty"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country,omitempty"`
}

// InvoiceTotals is the engine-reconciled summary for a single invoice,
// in pence.
type InvoiceTotals struct {
	NetTotal int64 `json:"net_total"`
}

// Invoice groups the charges raised against one invoice account within
// a batch. At most one invoice exists per (batch, invoice account).
type Invoice struct {
	ID                   uuid.UUID        `json:"id"`
	BatchID              uuid.UUID        `json:"batch_id"`
	InvoiceAccountID     uuid.UUID        `json:"invoice_account_id"`
	InvoiceAccountNumber string           `json:"invoice_account_number"`
	Address              Address          `json:"address"`
	FinancialYearEnding  int              `json:"financial_year_ending"`
	ExternalID           string           `json:"external_id,omitempty"`
	InvoiceNumber        string           `json:"invoice_number,omitempty"`
	IsDeMinimis          bool             `json:"is_de_minimis"`
	OriginalInvoiceID    *uuid.UUID       `json:"original_invoice_id,omitempty"`
	Totals               InvoiceTotals    `json:"totals"`
	InvoiceLicences      []InvoiceLicence `json:"invoice_licences,omitempty"`
}

// InvoiceParams is the validated input for NewInvoice.
type InvoiceParams struct {
	BatchID              uuid.UUID `validate:"required"`
	InvoiceAccountID     uuid.UUID `validate:"required"`
	InvoiceAccountNumber string    `validate:"required"`
	FinancialYearEnding  int       `validate:"required,min=1900"`
	Address              Address
}

// NewInvoice constructs an invoice for a batch and invoice account.
func NewInvoice(p InvoiceParams) (*Invoice, error) {
	if err := validate.Struct(p); err != nil {
		return nil, WrapError(ErrInvalidArgument, "invalid invoice params", err)
	}
	return &Invoice{
		ID:                   uuid.New(),
		BatchID:              p.BatchID,
		InvoiceAccountID:     p.InvoiceAccountID,
		InvoiceAccountNumber: p.InvoiceAccountNumber,
		FinancialYearEnding:  p.FinancialYearEnding,
		Address:              p.Address,
	}, nil
}

// InvoiceLicence ties an invoice to one licence, snapshotting the
// company/contact/address the licence was billed under.
type InvoiceLicence struct {
	ID            uuid.UUID     `json:"id"`
	InvoiceID     uuid.UUID     `json:"invoice_id"`
	LicenceID     uuid.UUID     `json:"licence_id"`
	LicenceNumber string        `json:"licence_number"`
	CompanyID     uuid.UUID     `json:"company_id"`
	ContactID     uuid.UUID     `json:"contact_id"`
	AddressID     uuid.UUID     `json:"address_id"`
	Transactions  []Transaction `json:"transactions,omitempty"`
}

// UniquenessKey identifies an invoice licence within an invoice. Two
// rows with the same key are the same billing target.
func (il *InvoiceLicence) UniquenessKey() string {
	return il.LicenceNumber + ":" + il.CompanyID.String() + ":" + il.AddressID.String() + ":" + il.ContactID.String()
}
