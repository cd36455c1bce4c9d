package model

import (
	"time"

	"github.com/google/uuid"
)

type BatchType string

const (
	BatchTypeAnnual        BatchType = "annual"
	BatchTypeSupplementary BatchType = "supplementary"
	BatchTypeTwoPartTariff BatchType = "two_part_tariff"
)

type BatchStatus string

const (
	BatchStatusQueued     BatchStatus = "queued"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusReview     BatchStatus = "review"
	BatchStatusReady      BatchStatus = "ready"
	BatchStatusSent       BatchStatus = "sent"
	BatchStatusError      BatchStatus = "error"
)

// BatchErrorCode pins the failed stage so an operator can diagnose a
// batch without reading worker logs.
type BatchErrorCode string

const (
	ErrorFailedToProcessTwoPartTariff  BatchErrorCode = "failed-to-process-two-part-tariff"
	ErrorFailedToProcessChargeVersions BatchErrorCode = "failed-to-process-charge-versions"
	ErrorFailedToCreateCharge          BatchErrorCode = "failed-to-create-charge"
	ErrorFailedToCreateBillRun         BatchErrorCode = "failed-to-create-bill-run"
	ErrorFailedToGetBillRunSummary     BatchErrorCode = "failed-to-get-bill-run-summary"
	ErrorFailedToProcessRebilling      BatchErrorCode = "failed-to-process-rebilling"
	ErrorFailedToDeleteInvoice         BatchErrorCode = "failed-to-delete-invoice"
)

// Totals is the engine-reconciled monetary summary for a batch. Values
// are in pence; credits carry their sign in NetTotal.
type Totals struct {
	CreditNoteCount int   `json:"credit_note_count"`
	InvoiceCount    int   `json:"invoice_count"`
	CreditNoteValue int64 `json:"credit_note_value"`
	InvoiceValue    int64 `json:"invoice_value"`
	NetTotal        int64 `json:"net_total"`
}

// Batch is one unit of billing work for a region, financial-year span
// and batch type. Status only moves along the pipeline's transition
// table; error is terminal for automated processing.
type Batch struct {
	ID                      uuid.UUID      `json:"id"`
	Type                    BatchType      `json:"type"`
	Status                  BatchStatus    `json:"status"`
	ErrorCode               BatchErrorCode `json:"error_code,omitempty"`
	Region                  string         `json:"region"`
	FromFinancialYearEnding int            `json:"from_financial_year_ending"`
	ToFinancialYearEnding   int            `json:"to_financial_year_ending"`
	ExternalID              string         `json:"external_id,omitempty"`
	Totals                  Totals         `json:"totals"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// BatchParams is the validated input for NewBatch.
type BatchParams struct {
	Type                    BatchType `validate:"required,oneof=annual supplementary two_part_tariff"`
	Region                  string    `validate:"required"`
	FromFinancialYearEnding int       `validate:"required,min=1900"`
	ToFinancialYearEnding   int       `validate:"required,min=1900"`
}

// NewBatch constructs a queued batch, failing fast on invalid input.
func NewBatch(p BatchParams) (*Batch, error) {
	if err := validate.Struct(p); err != nil {
		return nil, WrapError(ErrInvalidArgument, "invalid batch params", err)
	}
	if p.ToFinancialYearEnding < p.FromFinancialYearEnding {
		return nil, NewError(ErrInvalidArgument, "financial year range is inverted")
	}
	return &Batch{
		ID:                      uuid.New(),
		Type:                    p.Type,
		Status:                  BatchStatusQueued,
		Region:                  p.Region,
		FromFinancialYearEnding: p.FromFinancialYearEnding,
		ToFinancialYearEnding:   p.ToFinancialYearEnding,
	}, nil
}

// FinancialYears lists every charging year covered by the batch, by
// ending year.
func (b *Batch) FinancialYears() []int {
	years := make([]int, 0, b.ToFinancialYearEnding-b.FromFinancialYearEnding+1)
	for y := b.FromFinancialYearEnding; y <= b.ToFinancialYearEnding; y++ {
		years = append(years, y)
	}
	return years
}

// IsTwoPartTariff reports whether the batch runs the two-part-tariff
// matching stage.
func (b *Batch) IsTwoPartTariff() bool {
	return b.Type == BatchTypeTwoPartTariff
}
