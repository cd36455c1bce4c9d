package transaction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

var testElementID = uuid.MustParse("b8a30e06-1dfa-43d1-a7ef-7de6bf24e2fc")

// Digests computed from the fixed fixture attributes below; a change in
// key serialization shows up as a mismatch here.
const (
	standardFullYearKey     = "b0ce5b5676bcb0b8d174b60eae216f6f"
	compensationFullYearKey = "4d51ff61f6ecb94fb477fe5edfda54d7"
	creditFullYearKey       = "eb9c1566f319e803ed690fd48eb0aa9f"
)

func testElement() model.ChargeElement {
	return model.ChargeElement{
		ID:                       testElementID,
		Source:                   "unsupported",
		Season:                   "summer",
		Loss:                     "high",
		PurposeUseCode:           "420",
		PurposeUseName:           "Spray Irrigation - Storage",
		AuthorisedAnnualQuantity: decimal.RequireFromString("105.3"),
		AbstractionPeriod:        model.AllYear(),
	}
}

func fullYearPeriods(agreements ...model.AppliedAgreement) []model.AgreementPeriod {
	return []model.AgreementPeriod{
		{DateRange: model.FinancialYear(2020), Agreements: agreements},
	}
}

func TestGenerateAnnual(t *testing.T) {
	params := Params{
		BatchType:     model.BatchTypeAnnual,
		FinancialYear: model.FinancialYear(2020),
		Licence:       &model.Licence{IsWaterUndertaker: false},
		Element:       testElement(),
		Periods:       fullYearPeriods(),
	}

	txns := Generate(params)

	require.Len(t, txns, 2)

	standard := txns[0]
	assert.False(t, standard.IsCompensationCharge)
	assert.False(t, standard.IsTwoPartTariffSupplementary)
	assert.Equal(t, 366, standard.AuthorisedDays)
	assert.Equal(t, 366, standard.BillableDays)
	assert.Equal(t, "Spray Irrigation - Storage", standard.Description)
	assert.Equal(t, model.TransactionStatusCandidate, standard.Status)
	assert.True(t, standard.Volume.Equal(decimal.RequireFromString("105.3")))
	assert.Equal(t, standardFullYearKey, standard.TransactionKey)

	compensation := txns[1]
	assert.True(t, compensation.IsCompensationCharge)
	assert.Equal(t, compensationFullYearKey, compensation.TransactionKey)
}

func TestGenerateWaterUndertakerSkipsCompensation(t *testing.T) {
	params := Params{
		BatchType:     model.BatchTypeAnnual,
		FinancialYear: model.FinancialYear(2020),
		Licence:       &model.Licence{IsWaterUndertaker: true},
		Element:       testElement(),
		Periods:       fullYearPeriods(),
	}

	txns := Generate(params)

	require.Len(t, txns, 1)
	assert.False(t, txns[0].IsCompensationCharge)
}

func TestGenerateTwoPartTariff(t *testing.T) {
	volume := decimal.RequireFromString("42.7")

	t.Run("s127_with_irrigation_purpose", func(t *testing.T) {
		params := Params{
			BatchType:     model.BatchTypeTwoPartTariff,
			FinancialYear: model.FinancialYear(2020),
			Licence:       &model.Licence{},
			Element:       testElement(),
			Periods:       fullYearPeriods(model.AppliedAgreement{Code: model.AgreementS127}),
			BillingVolume: &volume,
		}

		txns := Generate(params)

		require.Len(t, txns, 1)
		assert.True(t, txns[0].IsTwoPartTariffSupplementary)
		assert.True(t, txns[0].Volume.Equal(volume))
	})

	t.Run("no_s127_agreement", func(t *testing.T) {
		params := Params{
			BatchType:     model.BatchTypeTwoPartTariff,
			FinancialYear: model.FinancialYear(2020),
			Licence:       &model.Licence{},
			Element:       testElement(),
			Periods:       fullYearPeriods(),
		}

		assert.Empty(t, Generate(params))
	})

	t.Run("non_irrigation_purpose", func(t *testing.T) {
		element := testElement()
		element.PurposeUseCode = "140"
		params := Params{
			BatchType:     model.BatchTypeTwoPartTariff,
			FinancialYear: model.FinancialYear(2020),
			Licence:       &model.Licence{},
			Element:       element,
			Periods:       fullYearPeriods(model.AppliedAgreement{Code: model.AgreementS127}),
		}

		assert.Empty(t, Generate(params))
	})
}

// A supplementary batch produces all three variants when the sub-period
// qualifies for two-part tariff.
func TestGenerateSupplementaryProducesAllVariants(t *testing.T) {
	params := Params{
		BatchType:     model.BatchTypeSupplementary,
		FinancialYear: model.FinancialYear(2020),
		Licence:       &model.Licence{},
		Element:       testElement(),
		Periods:       fullYearPeriods(model.AppliedAgreement{Code: model.AgreementS127}),
	}

	txns := Generate(params)

	require.Len(t, txns, 3)
	assert.False(t, txns[0].IsCompensationCharge)
	assert.True(t, txns[1].IsCompensationCharge)
	assert.True(t, txns[2].IsTwoPartTariffSupplementary)
}

func TestGenerateSplitYearBillableDays(t *testing.T) {
	periods := []model.AgreementPeriod{
		{DateRange: model.MustDateRange(model.Date(2019, time.April, 1), model.Date(2019, time.September, 30))},
		{DateRange: model.MustDateRange(model.Date(2019, time.October, 1), model.Date(2020, time.March, 31))},
	}
	params := Params{
		BatchType:     model.BatchTypeAnnual,
		FinancialYear: model.FinancialYear(2020),
		Licence:       &model.Licence{IsWaterUndertaker: true},
		Element:       testElement(),
		Periods:       periods,
	}

	txns := Generate(params)

	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, 366, txn.AuthorisedDays)
		assert.Equal(t, 183, txn.BillableDays)
	}
	assert.NotEqual(t, txns[0].TransactionKey, txns[1].TransactionKey)
}

func TestKeyDeterministic(t *testing.T) {
	element := testElement()
	build := func() *model.Transaction {
		return &model.Transaction{
			ID:              uuid.New(),
			ChargeElementID: element.ID,
			ChargePeriod:    model.FinancialYear(2020),
			Season:          element.Season,
			Loss:            element.Loss,
			Source:          element.Source,
		}
	}

	a, b := build(), build()
	assert.Equal(t, Key(a), Key(b))
	assert.Equal(t, standardFullYearKey, Key(a))
	assert.Len(t, Key(a), 32)

	b.IsCredit = true
	assert.Equal(t, creditFullYearKey, Key(b))
	assert.NotEqual(t, Key(a), Key(b))
}
