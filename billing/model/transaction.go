package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgreementCode is a statutory agreement affecting charge computation.
type AgreementCode string

const (
	// AgreementS126 is an abatement agreement carrying a reduction factor.
	AgreementS126 AgreementCode = "S126"
	// AgreementS127 is the two-part-tariff agreement.
	AgreementS127 AgreementCode = "S127"
	// AgreementS130 is the canal-and-rivers-trust discount.
	AgreementS130 AgreementCode = "S130"
)

// AppliedAgreement is an agreement active on a transaction, with the
// abatement factor where the code carries one.
type AppliedAgreement struct {
	Code   AgreementCode    `json:"code"`
	Factor *decimal.Decimal `json:"factor,omitempty"`
}

type TransactionStatus string

const (
	TransactionStatusCandidate     TransactionStatus = "candidate"
	TransactionStatusChargeCreated TransactionStatus = "charge_created"
	TransactionStatusError         TransactionStatus = "error"
)

// Transaction is a single line item to be priced by the billing engine.
// ExternalID is written by the submission stage and Value by the
// reconciliation stage; the two never run concurrently on one record.
type Transaction struct {
	ID                           uuid.UUID          `json:"id"`
	BatchID                      uuid.UUID          `json:"batch_id"`
	InvoiceLicenceID             uuid.UUID          `json:"invoice_licence_id"`
	ChargeElementID              uuid.UUID          `json:"charge_element_id"`
	ChargePeriod                 DateRange          `json:"charge_period"`
	IsCredit                     bool               `json:"is_credit"`
	IsCompensationCharge         bool               `json:"is_compensation_charge"`
	IsTwoPartTariffSupplementary bool               `json:"is_two_part_tariff_supplementary"`
	IsMinimumCharge              bool               `json:"is_minimum_charge"`
	IsDeMinimis                  bool               `json:"is_de_minimis"`
	AuthorisedDays               int                `json:"authorised_days"`
	BillableDays                 int                `json:"billable_days"`
	Volume                       decimal.Decimal    `json:"volume"`
	Description                  string             `json:"description"`
	Agreements                   []AppliedAgreement `json:"agreements,omitempty"`
	Status                       TransactionStatus  `json:"status"`
	ExternalID                   string             `json:"external_id,omitempty"`
	TransactionKey               string             `json:"transaction_key"`
	Value                        *int64             `json:"value,omitempty"`

	// Season, loss and source are copied from the charge element because
	// they are part of the transaction key and the engine payload.
	Season string `json:"season"`
	Loss   string `json:"loss"`
	Source string `json:"source"`
}

// HasAgreement reports whether the given statutory code applies.
func (t *Transaction) HasAgreement(code AgreementCode) bool {
	for _, a := range t.Agreements {
		if a.Code == code {
			return true
		}
	}
	return false
}

// IsSettled reports whether the submission stage has finished with this
// transaction, successfully or not.
func (t *Transaction) IsSettled() bool {
	return t.Status != TransactionStatusCandidate
}
