package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AbstractionPeriod is the annual window during which a charge element
// permits abstraction, expressed as day/month bounds. The window may
// cross the calendar year end (e.g. 1 November to 31 March).
type AbstractionPeriod struct {
	StartDay   int `json:"start_day" validate:"min=1,max=31"`
	StartMonth int `json:"start_month" validate:"min=1,max=12"`
	EndDay     int `json:"end_day" validate:"min=1,max=31"`
	EndMonth   int `json:"end_month" validate:"min=1,max=12"`
}

// AllYear is the whole-year abstraction window.
func AllYear() AbstractionPeriod {
	return AbstractionPeriod{StartDay: 1, StartMonth: 1, EndDay: 31, EndMonth: 12}
}

// twoPartTariffPurposes are the spray/trickle irrigation purpose-use
// codes (direct and storage variants) eligible for the two-part-tariff
// supplementary charge.
var twoPartTariffPurposes = map[string]bool{
	"400": true, // spray irrigation - direct
	"420": true, // spray irrigation - storage
	"600": true, // trickle irrigation - direct
	"620": true, // trickle irrigation - storage
}

// ChargeElement is one billable abstraction right under a charge
// version, with its own source/season/loss classification.
type ChargeElement struct {
	ID                       uuid.UUID        `json:"id"`
	Source                   string           `json:"source"`
	Season                   string           `json:"season"`
	Loss                     string           `json:"loss"`
	PurposeUseCode           string           `json:"purpose_use_code"`
	PurposeUseName           string           `json:"purpose_use_name"`
	Description              string           `json:"description,omitempty"`
	AuthorisedAnnualQuantity decimal.Decimal  `json:"authorised_annual_quantity"`
	BillableAnnualQuantity   *decimal.Decimal `json:"billable_annual_quantity,omitempty"`
	AbstractionPeriod        AbstractionPeriod `json:"abstraction_period"`
	// TimeLimited restricts the element to a fixed window, further
	// narrowing the charge period when present.
	TimeLimited *DateRange `json:"time_limited,omitempty"`
}

// IsTwoPartTariffPurpose reports whether the element's purpose use is
// one of the designated spray/trickle irrigation codes.
func (ce *ChargeElement) IsTwoPartTariffPurpose() bool {
	return twoPartTariffPurposes[ce.PurposeUseCode]
}

// LineDescription is the transaction description for this element: its
// own description when present, otherwise the purpose-use name.
func (ce *ChargeElement) LineDescription() string {
	if ce.Description != "" {
		return ce.Description
	}
	return ce.PurposeUseName
}

// Volume is the quantity to bill: the billable annual quantity when
// set, otherwise the authorised annual quantity.
func (ce *ChargeElement) Volume() decimal.Decimal {
	if ce.BillableAnnualQuantity != nil {
		return *ce.BillableAnnualQuantity
	}
	return ce.AuthorisedAnnualQuantity
}

// ChargeVersion is a dated revision of a licence's charging basis.
type ChargeVersion struct {
	ID        uuid.UUID       `json:"id"`
	LicenceID uuid.UUID       `json:"licence_id"`
	StartDate time.Time       `json:"start_date"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
	Elements  []ChargeElement `json:"elements"`
}

// Licence is the abstraction licence being billed, read through the
// charge-data collaborator.
type Licence struct {
	ID                uuid.UUID  `json:"id"`
	LicenceNumber     string     `json:"licence_number"`
	Region            string     `json:"region"`
	StartDate         time.Time  `json:"start_date"`
	ExpiredDate       *time.Time `json:"expired_date,omitempty"`
	IsWaterUndertaker bool       `json:"is_water_undertaker"`

	// Billing snapshot references resolved by the CRM collaborator.
	InvoiceAccountID     uuid.UUID `json:"invoice_account_id"`
	InvoiceAccountNumber string    `json:"invoice_account_number"`
	CompanyID            uuid.UUID `json:"company_id"`
	ContactID            uuid.UUID `json:"contact_id"`
	AddressID            uuid.UUID `json:"address_id"`
	Address              Address   `json:"address"`
}

// ChargeAgreement is a statutory agreement on a licence's timeline.
// EndDate nil means open-ended.
type ChargeAgreement struct {
	ID          uuid.UUID        `json:"id"`
	Code        AgreementCode    `json:"code"`
	Factor      *decimal.Decimal `json:"factor,omitempty"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	DateDeleted *time.Time       `json:"date_deleted,omitempty"`
}

// AgreementPeriod is one slice of a charge period with the agreements
// active throughout it. Derived by the history merger, never persisted.
type AgreementPeriod struct {
	DateRange  DateRange
	Agreements []AppliedAgreement
}

// HasAgreement reports whether the slice carries the given code.
func (ap AgreementPeriod) HasAgreement(code AgreementCode) bool {
	for _, a := range ap.Agreements {
		if a.Code == code {
			return true
		}
	}
	return false
}

// Return is an abstraction return relevant to two-part-tariff matching.
type Return struct {
	ID                  uuid.UUID       `json:"id"`
	LicenceID           uuid.UUID       `json:"licence_id"`
	PurposeUseCode      string          `json:"purpose_use_code"`
	FinancialYearEnding int             `json:"financial_year_ending"`
	Volume              decimal.Decimal `json:"volume"`
	IsComplete          bool            `json:"is_complete"`
}

// BillingVolume is the outcome of two-part-tariff matching for one
// charge element and financial year. Unapproved volumes gate the batch
// in review until a reviewer signs them off.
type BillingVolume struct {
	ID                  uuid.UUID       `json:"id"`
	BatchID             uuid.UUID       `json:"batch_id"`
	ChargeElementID     uuid.UUID       `json:"charge_element_id"`
	FinancialYearEnding int             `json:"financial_year_ending"`
	CalculatedVolume    decimal.Decimal `json:"calculated_volume"`
	IsApproved          bool            `json:"is_approved"`
}
