package batch

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

func TestListChargeVersionYears(t *testing.T) {
	ctx := context.Background()

	t.Run("one_unit_per_overlapping_year", func(t *testing.T) {
		f := newFixture(t)
		batch, err := model.NewBatch(model.BatchParams{
			Type:                    model.BatchTypeAnnual,
			Region:                  "anglian",
			FromFinancialYearEnding: 2020,
			ToFinancialYearEnding:   2021,
		})
		require.NoError(t, err)
		require.NoError(t, f.store.Batches.Create(ctx, batch))

		licence := f.seedLicence(t, false)
		cv := f.seedChargeVersion(t, licence, generalElement())

		years, err := f.business.ListChargeVersionYears(ctx, batch.ID)

		require.NoError(t, err)
		require.Len(t, years, 2)
		assert.Equal(t, cv.ID, years[0].ChargeVersionID)
		assert.ElementsMatch(t, []int{2020, 2021},
			[]int{years[0].FinancialYearEnding, years[1].FinancialYearEnding})
	})

	t.Run("charge_version_outside_years_excluded", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusProcessing)

		licence := f.seedLicence(t, false)
		cv := f.seedChargeVersion(t, licence, generalElement())
		cv.StartDate = model.Date(2021, time.April, 1)

		years, err := f.business.ListChargeVersionYears(ctx, batch.ID)

		require.NoError(t, err)
		assert.Empty(t, years)
	})

	t.Run("other_region_licences_excluded", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusProcessing)

		licence := f.seedLicence(t, false)
		licence.Region = "midlands"
		f.seedChargeVersion(t, licence, generalElement())

		years, err := f.business.ListChargeVersionYears(ctx, batch.ID)

		require.NoError(t, err)
		assert.Empty(t, years)
	})
}

func TestProcessChargeVersionYear(t *testing.T) {
	ctx := context.Background()

	t.Run("annual_batch_generates_standard_and_compensation", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusProcessing)
		licence := f.seedLicence(t, false)
		cv := f.seedChargeVersion(t, licence, generalElement())

		err := f.business.ProcessChargeVersionYear(ctx, batch.ID, ChargeVersionYear{
			ChargeVersionID:     cv.ID,
			FinancialYearEnding: 2020,
		})
		require.NoError(t, err)

		invoices, err := f.store.Invoices.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, licence.InvoiceAccountID, invoices[0].InvoiceAccountID)

		txns, err := f.store.Transactions.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		for _, txn := range txns {
			assert.Equal(t, model.TransactionStatusCandidate, txn.Status)
			assert.Equal(t, batch.ID, txn.BatchID)
			assert.Equal(t, 366, txn.AuthorisedDays)
			assert.Equal(t, 366, txn.BillableDays)
		}
	})

	t.Run("water_undertaker_gets_no_compensation_charge", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusProcessing)
		licence := f.seedLicence(t, true)
		cv := f.seedChargeVersion(t, licence, generalElement())

		err := f.business.ProcessChargeVersionYear(ctx, batch.ID, ChargeVersionYear{
			ChargeVersionID:     cv.ID,
			FinancialYearEnding: 2020,
		})
		require.NoError(t, err)

		txns, err := f.store.Transactions.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.False(t, txns[0].IsCompensationCharge)
	})

	t.Run("mid_year_agreement_splits_charge_period", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusProcessing)
		licence := f.seedLicence(t, true)
		cv := f.seedChargeVersion(t, licence, generalElement())
		f.seed.AddAgreement(licence.ID, &model.ChargeAgreement{
			ID:        uuid.New(),
			Code:      model.AgreementS130,
			StartDate: model.Date(2019, time.October, 1),
		})

		err := f.business.ProcessChargeVersionYear(ctx, batch.ID, ChargeVersionYear{
			ChargeVersionID:     cv.ID,
			FinancialYearEnding: 2020,
		})
		require.NoError(t, err)

		txns, err := f.store.Transactions.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, txns, 2)

		days := []int{txns[0].BillableDays, txns[1].BillableDays}
		assert.ElementsMatch(t, []int{183, 183}, days)
	})

	t.Run("empty_charge_period_produces_nothing", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusProcessing)
		licence := f.seedLicence(t, false)
		cv := f.seedChargeVersion(t, licence, generalElement())
		cv.StartDate = model.Date(2021, time.June, 1)

		err := f.business.ProcessChargeVersionYear(ctx, batch.ID, ChargeVersionYear{
			ChargeVersionID:     cv.ID,
			FinancialYearEnding: 2020,
		})
		require.NoError(t, err)

		txns, err := f.store.Transactions.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})

	t.Run("supplementary_restates_previous_billing", func(t *testing.T) {
		f := newFixture(t)
		licence := f.seedLicence(t, true)
		element := generalElement()
		cv := f.seedChargeVersion(t, licence, element)

		// Previous annual batch, already sent, billed the full year.
		sentBatch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusSent)
		prototype, err := model.NewInvoice(model.InvoiceParams{
			BatchID:              sentBatch.ID,
			InvoiceAccountID:     licence.InvoiceAccountID,
			InvoiceAccountNumber: licence.InvoiceAccountNumber,
			FinancialYearEnding:  2020,
		})
		require.NoError(t, err)
		sentInvoice, err := f.store.Invoices.GetOrCreate(ctx, prototype)
		require.NoError(t, err)
		sentLicence, err := f.store.Invoices.GetOrCreateLicence(ctx, &model.InvoiceLicence{
			ID:            uuid.New(),
			InvoiceID:     sentInvoice.ID,
			LicenceID:     licence.ID,
			LicenceNumber: licence.LicenceNumber,
			CompanyID:     licence.CompanyID,
			ContactID:     licence.ContactID,
			AddressID:     licence.AddressID,
		})
		require.NoError(t, err)

		// The new supplementary run sees an agreement change, so the old
		// full-year key is no longer generated.
		f.seed.AddAgreement(licence.ID, &model.ChargeAgreement{
			ID:        uuid.New(),
			Code:      model.AgreementS130,
			StartDate: model.Date(2019, time.October, 1),
		})

		billedTxns := generateFullYearBilled(t, licence, element, sentBatch.ID, sentLicence.ID)
		for _, txn := range billedTxns {
			f.seed.AddBilledTransaction(txn)
		}

		supplementary := f.createBatch(t, model.BatchTypeSupplementary, model.BatchStatusProcessing)
		err = f.business.ProcessChargeVersionYear(ctx, supplementary.ID, ChargeVersionYear{
			ChargeVersionID:     cv.ID,
			FinancialYearEnding: 2020,
		})
		require.NoError(t, err)

		txns, err := f.store.Transactions.ListByBatch(ctx, supplementary.ID)
		require.NoError(t, err)
		require.Len(t, txns, 3)

		var creditDays, debitDays []int
		for _, txn := range txns {
			if txn.IsCredit {
				creditDays = append(creditDays, txn.BillableDays)
			} else {
				debitDays = append(debitDays, txn.BillableDays)
			}
		}
		assert.Equal(t, []int{366}, creditDays)
		assert.ElementsMatch(t, []int{183, 183}, debitDays)
	})
}
