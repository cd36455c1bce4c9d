package batch

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/domain/chargeperiod"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// MatchTwoPartTariff computes candidate billing volumes for every
// two-part-tariff element in the batch's region and years, from the
// licences' abstraction returns. It returns how many volumes need
// reviewer approval; any non-zero count gates the batch in review.
//
// A volume needs approval when the reported abstraction exceeds the
// authorised quantity or when any matching return is incomplete.
func (b *business) MatchTwoPartTariff(ctx context.Context, batchID uuid.UUID) (int, error) {
	batch, err := b.store.Batches.Get(ctx, batchID)
	if err != nil {
		return 0, err
	}

	licences, err := b.store.ChargeData.LicencesInRegion(ctx, batch.Region)
	if err != nil {
		return 0, err
	}

	var volumes []*model.BillingVolume
	for _, licence := range licences {
		hasS127, err := b.licenceHasAgreement(ctx, licence.ID, model.AgreementS127)
		if err != nil {
			return 0, err
		}
		if !hasS127 {
			continue
		}

		chargeVersions, err := b.store.ChargeData.ChargeVersionsForLicence(ctx, licence.ID)
		if err != nil {
			return 0, err
		}

		for _, year := range batch.FinancialYears() {
			returns, err := b.store.ChargeData.ReturnsForLicence(ctx, licence.ID, year)
			if err != nil {
				return 0, err
			}

			for _, cv := range chargeVersions {
				if _, ok := chargeperiod.Calculate(model.FinancialYear(year), licence, cv); !ok {
					continue
				}
				for i := range cv.Elements {
					element := &cv.Elements[i]
					if !element.IsTwoPartTariffPurpose() {
						continue
					}
					volumes = append(volumes, matchElement(batchID, element, year, returns))
				}
			}
		}
	}

	// Redelivery replaces whatever a previous attempt persisted.
	if err := b.store.Volumes.DeleteByBatch(ctx, batchID); err != nil {
		return 0, err
	}
	if len(volumes) > 0 {
		if err := b.store.Volumes.CreateAll(ctx, volumes); err != nil {
			return 0, err
		}
	}
	return b.store.Volumes.CountUnapproved(ctx, batchID)
}

// matchElement folds the element's matching returns into one billing
// volume, capped at the authorised quantity.
func matchElement(batchID uuid.UUID, element *model.ChargeElement, year int, returns []*model.Return) *model.BillingVolume {
	reported := decimal.Zero
	matched := false
	complete := true
	for _, ret := range returns {
		if ret.PurposeUseCode != element.PurposeUseCode {
			continue
		}
		matched = true
		reported = reported.Add(ret.Volume)
		if !ret.IsComplete {
			complete = false
		}
	}

	authorised := element.AuthorisedAnnualQuantity
	calculated := reported
	overAbstracted := reported.GreaterThan(authorised)
	if overAbstracted {
		calculated = authorised
	}

	return &model.BillingVolume{
		ID:                  uuid.New(),
		BatchID:             batchID,
		ChargeElementID:     element.ID,
		FinancialYearEnding: year,
		CalculatedVolume:    calculated,
		IsApproved:          matched && complete && !overAbstracted,
	}
}

func (b *business) licenceHasAgreement(ctx context.Context, licenceID uuid.UUID, code model.AgreementCode) (bool, error) {
	agreements, err := b.store.ChargeData.AgreementsForLicence(ctx, licenceID)
	if err != nil {
		return false, err
	}
	for _, a := range agreements {
		if a.Code == code && a.DateDeleted == nil {
			return true, nil
		}
	}
	return false, nil
}
