// Package transaction decides which transaction variants each charge
// element and agreement sub-period require, and computes their billable
// and authorised days and volumes.
package transaction

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/domain/chargeperiod"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// Params describes one charge element within one financial year. The
// Periods slice is the agreement-history partition of the element's
// charge period.
type Params struct {
	BatchType     model.BatchType
	FinancialYear model.DateRange
	Licence       *model.Licence
	Element       model.ChargeElement
	Periods       []model.AgreementPeriod

	// BillingVolume is the approved two-part-tariff volume for the
	// element, when matching has produced one.
	BillingVolume *decimal.Decimal
}

// Generate produces the candidate transactions for every sub-period of
// one charge element.
//
// Inclusion rules per sub-period:
//   - standard charge: annual and supplementary batches;
//   - compensation charge: additionally, unless the licence holder is a
//     water undertaker;
//   - two-part-tariff supplementary charge: two_part_tariff and
//     supplementary batches, when the sub-period carries the S127
//     agreement and the element has a designated spray/trickle
//     irrigation purpose.
func Generate(p Params) []*model.Transaction {
	var out []*model.Transaction

	standardBatch := p.BatchType == model.BatchTypeAnnual || p.BatchType == model.BatchTypeSupplementary
	tptBatch := p.BatchType == model.BatchTypeTwoPartTariff || p.BatchType == model.BatchTypeSupplementary

	for _, period := range p.Periods {
		if standardBatch {
			out = append(out, p.newTransaction(period, variant{}))

			if !p.Licence.IsWaterUndertaker {
				out = append(out, p.newTransaction(period, variant{compensation: true}))
			}
		}

		if tptBatch && period.HasAgreement(model.AgreementS127) && p.Element.IsTwoPartTariffPurpose() {
			out = append(out, p.newTransaction(period, variant{twoPartTariff: true}))
		}
	}
	return out
}

type variant struct {
	compensation  bool
	twoPartTariff bool
}

func (p Params) newTransaction(period model.AgreementPeriod, v variant) *model.Transaction {
	t := &model.Transaction{
		ID:                           uuid.New(),
		ChargeElementID:              p.Element.ID,
		ChargePeriod:                 period.DateRange,
		IsCompensationCharge:         v.compensation,
		IsTwoPartTariffSupplementary: v.twoPartTariff,
		AuthorisedDays:               chargeperiod.AbstractionDays(p.FinancialYear, p.Element.AbstractionPeriod),
		BillableDays:                 chargeperiod.AbstractionDays(period.DateRange, p.Element.AbstractionPeriod),
		Volume:                       p.volume(v),
		Description:                  p.Element.LineDescription(),
		Agreements:                   period.Agreements,
		Status:                       model.TransactionStatusCandidate,
		Season:                       p.Element.Season,
		Loss:                         p.Element.Loss,
		Source:                       p.Element.Source,
	}
	t.TransactionKey = Key(t)
	return t
}

// volume picks the billed quantity: the matched two-part-tariff volume
// for supplementary charges when available, otherwise the element's
// billable or authorised annual quantity.
func (p Params) volume(v variant) decimal.Decimal {
	if v.twoPartTariff && p.BillingVolume != nil {
		return *p.BillingVolume
	}
	return p.Element.Volume()
}
