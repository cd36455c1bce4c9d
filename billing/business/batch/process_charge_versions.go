package batch

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/business/transaction"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/domain/agreement"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/domain/chargeperiod"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// ListChargeVersionYears enumerates the (charge version, financial
// year) pairs the batch fans out over: every charge version in the
// region whose validity overlaps one of the batch's charging years.
func (b *business) ListChargeVersionYears(ctx context.Context, batchID uuid.UUID) ([]ChargeVersionYear, error) {
	batch, err := b.store.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}

	licences, err := b.store.ChargeData.LicencesInRegion(ctx, batch.Region)
	if err != nil {
		return nil, err
	}

	var years []ChargeVersionYear
	for _, licence := range licences {
		chargeVersions, err := b.store.ChargeData.ChargeVersionsForLicence(ctx, licence.ID)
		if err != nil {
			return nil, err
		}
		for _, cv := range chargeVersions {
			for _, year := range batch.FinancialYears() {
				if _, ok := chargeperiod.Calculate(model.FinancialYear(year), licence, cv); ok {
					years = append(years, ChargeVersionYear{
						ChargeVersionID:     cv.ID,
						FinancialYearEnding: year,
					})
				}
			}
		}
	}
	return years, nil
}

// ProcessChargeVersionYear runs the full generation path for one fan-out
// unit: charge period calculation, agreement history merge, transaction
// generation, supplementary restatement, and persistence of the
// candidates under their invoice and invoice licence.
func (b *business) ProcessChargeVersionYear(ctx context.Context, batchID uuid.UUID, year ChargeVersionYear) error {
	batch, err := b.store.Batches.Get(ctx, batchID)
	if err != nil {
		return err
	}
	chargeVersion, err := b.store.ChargeData.ChargeVersion(ctx, year.ChargeVersionID)
	if err != nil {
		return err
	}
	licence, err := b.store.ChargeData.Licence(ctx, chargeVersion.LicenceID)
	if err != nil {
		return err
	}

	financialYear := model.FinancialYear(year.FinancialYearEnding)
	chargePeriod, ok := chargeperiod.Calculate(financialYear, licence, chargeVersion)
	if !ok {
		return nil
	}

	history, err := b.store.ChargeData.AgreementsForLicence(ctx, licence.ID)
	if err != nil {
		return err
	}
	agreements := make([]model.ChargeAgreement, 0, len(history))
	for _, a := range history {
		agreements = append(agreements, *a)
	}

	volumes, err := b.approvedVolumes(ctx, batch, year.FinancialYearEnding)
	if err != nil {
		return err
	}

	var candidates []*model.Transaction
	for i := range chargeVersion.Elements {
		element := chargeVersion.Elements[i]
		elementPeriod, ok := chargeperiod.ForElement(chargePeriod, &element)
		if !ok {
			continue
		}

		candidates = append(candidates, transaction.Generate(transaction.Params{
			BatchType:     batch.Type,
			FinancialYear: financialYear,
			Licence:       licence,
			Element:       element,
			Periods:       agreement.MergeHistory(elementPeriod, agreements),
			BillingVolume: volumes[element.ID],
		})...)
	}

	if batch.Type == model.BatchTypeSupplementary {
		billed, err := b.store.Transactions.ListBilled(ctx, batch.Region, licence.ID, year.FinancialYearEnding)
		if err != nil {
			return err
		}
		candidates = transaction.Restate(candidates, billed)
	}

	if len(candidates) == 0 {
		return nil
	}
	return b.persistCandidates(ctx, batch, licence, year.FinancialYearEnding, candidates)
}

// persistCandidates upserts the invoice and invoice-licence parents and
// stores the candidate transactions beneath them.
func (b *business) persistCandidates(ctx context.Context, batch *model.Batch, licence *model.Licence, financialYearEnding int, candidates []*model.Transaction) error {
	prototype, err := model.NewInvoice(model.InvoiceParams{
		BatchID:              batch.ID,
		InvoiceAccountID:     licence.InvoiceAccountID,
		InvoiceAccountNumber: licence.InvoiceAccountNumber,
		FinancialYearEnding:  financialYearEnding,
		Address:              licence.Address,
	})
	if err != nil {
		return err
	}
	invoice, err := b.store.Invoices.GetOrCreate(ctx, prototype)
	if err != nil {
		return err
	}

	invoiceLicence, err := b.store.Invoices.GetOrCreateLicence(ctx, &model.InvoiceLicence{
		ID:            uuid.New(),
		InvoiceID:     invoice.ID,
		LicenceID:     licence.ID,
		LicenceNumber: licence.LicenceNumber,
		CompanyID:     licence.CompanyID,
		ContactID:     licence.ContactID,
		AddressID:     licence.AddressID,
	})
	if err != nil {
		return err
	}

	for _, candidate := range candidates {
		candidate.BatchID = batch.ID
		candidate.InvoiceLicenceID = invoiceLicence.ID
	}
	return b.store.Transactions.CreateAll(ctx, candidates)
}

// approvedVolumes maps charge element id to its approved two-part-tariff
// volume for the year. Empty for annual batches, which skip matching.
func (b *business) approvedVolumes(ctx context.Context, batch *model.Batch, financialYearEnding int) (map[uuid.UUID]*decimal.Decimal, error) {
	if batch.Type == model.BatchTypeAnnual {
		return nil, nil
	}
	volumes, err := b.store.Volumes.ListByBatch(ctx, batch.ID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*decimal.Decimal, len(volumes))
	for _, v := range volumes {
		if v.IsApproved && v.FinancialYearEnding == financialYearEnding {
			volume := v.CalculatedVolume
			out[v.ChargeElementID] = &volume
		}
	}
	return out, nil
}
