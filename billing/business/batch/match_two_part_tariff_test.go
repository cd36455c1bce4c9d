package batch

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

func seedS127Licence(t *testing.T, f *fixture) (*model.Licence, model.ChargeElement) {
	t.Helper()
	licence := f.seedLicence(t, false)
	f.seed.AddAgreement(licence.ID, &model.ChargeAgreement{
		ID:        uuid.New(),
		Code:      model.AgreementS127,
		StartDate: model.Date(2015, 4, 1),
	})
	element := irrigationElement()
	f.seedChargeVersion(t, licence, element)
	return licence, element
}

func TestMatchTwoPartTariff(t *testing.T) {
	ctx := context.Background()

	t.Run("complete_returns_within_authorised_auto_approve", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeTwoPartTariff, model.BatchStatusProcessing)
		licence, element := seedS127Licence(t, f)
		f.seed.AddReturn(licence.ID, &model.Return{
			ID:                  uuid.New(),
			LicenceID:           licence.ID,
			PurposeUseCode:      element.PurposeUseCode,
			FinancialYearEnding: 2020,
			Volume:              decimal.RequireFromString("60"),
			IsComplete:          true,
		})

		reviewCount, err := f.business.MatchTwoPartTariff(ctx, batch.ID)

		require.NoError(t, err)
		assert.Zero(t, reviewCount)

		volumes, err := f.store.Volumes.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, volumes, 1)
		assert.True(t, volumes[0].IsApproved)
		assert.True(t, volumes[0].CalculatedVolume.Equal(decimal.RequireFromString("60")))
	})

	t.Run("over_abstraction_caps_and_flags_for_review", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeTwoPartTariff, model.BatchStatusProcessing)
		licence, element := seedS127Licence(t, f)
		f.seed.AddReturn(licence.ID, &model.Return{
			ID:                  uuid.New(),
			LicenceID:           licence.ID,
			PurposeUseCode:      element.PurposeUseCode,
			FinancialYearEnding: 2020,
			Volume:              decimal.RequireFromString("150"),
			IsComplete:          true,
		})

		reviewCount, err := f.business.MatchTwoPartTariff(ctx, batch.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, reviewCount)

		volumes, err := f.store.Volumes.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, volumes, 1)
		assert.False(t, volumes[0].IsApproved)
		// Capped at the authorised quantity.
		assert.True(t, volumes[0].CalculatedVolume.Equal(decimal.RequireFromString("100")))
	})

	t.Run("incomplete_return_flags_for_review", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeTwoPartTariff, model.BatchStatusProcessing)
		licence, element := seedS127Licence(t, f)
		f.seed.AddReturn(licence.ID, &model.Return{
			ID:                  uuid.New(),
			LicenceID:           licence.ID,
			PurposeUseCode:      element.PurposeUseCode,
			FinancialYearEnding: 2020,
			Volume:              decimal.RequireFromString("30"),
			IsComplete:          false,
		})

		reviewCount, err := f.business.MatchTwoPartTariff(ctx, batch.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, reviewCount)
	})

	t.Run("missing_returns_flag_for_review", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeTwoPartTariff, model.BatchStatusProcessing)
		seedS127Licence(t, f)

		reviewCount, err := f.business.MatchTwoPartTariff(ctx, batch.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, reviewCount)
	})

	t.Run("redelivered_job_replaces_previous_volumes", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeTwoPartTariff, model.BatchStatusProcessing)
		licence, element := seedS127Licence(t, f)
		f.seed.AddReturn(licence.ID, &model.Return{
			ID:                  uuid.New(),
			LicenceID:           licence.ID,
			PurposeUseCode:      element.PurposeUseCode,
			FinancialYearEnding: 2020,
			Volume:              decimal.RequireFromString("30"),
			IsComplete:          false,
		})

		first, err := f.business.MatchTwoPartTariff(ctx, batch.ID)
		require.NoError(t, err)
		second, err := f.business.MatchTwoPartTariff(ctx, batch.ID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, second)

		volumes, err := f.store.Volumes.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		assert.Len(t, volumes, 1)
	})

	t.Run("licence_without_s127_skipped", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeTwoPartTariff, model.BatchStatusProcessing)
		licence := f.seedLicence(t, false)
		f.seedChargeVersion(t, licence, irrigationElement())

		reviewCount, err := f.business.MatchTwoPartTariff(ctx, batch.ID)

		require.NoError(t, err)
		assert.Zero(t, reviewCount)

		volumes, err := f.store.Volumes.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		assert.Empty(t, volumes)
	})

	t.Run("non_irrigation_elements_skipped", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeTwoPartTariff, model.BatchStatusProcessing)
		licence := f.seedLicence(t, false)
		f.seed.AddAgreement(licence.ID, &model.ChargeAgreement{
			ID:        uuid.New(),
			Code:      model.AgreementS127,
			StartDate: model.Date(2015, 4, 1),
		})
		f.seedChargeVersion(t, licence, generalElement())

		reviewCount, err := f.business.MatchTwoPartTariff(ctx, batch.ID)

		require.NoError(t, err)
		assert.Zero(t, reviewCount)

		volumes, err := f.store.Volumes.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		assert.Empty(t, volumes)
	})
}

func TestApproveReview(t *testing.T) {
	ctx := context.Background()

	t.Run("approves_volumes_and_signals_pipeline", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeTwoPartTariff, model.BatchStatusReview)
		require.NoError(t, f.store.Volumes.CreateAll(ctx, []*model.BillingVolume{
			{ID: uuid.New(), BatchID: batch.ID, ChargeElementID: uuid.New(), FinancialYearEnding: 2020},
		}))

		require.NoError(t, f.business.ApproveReview(ctx, batch.ID))

		count, err := f.store.Volumes.CountUnapproved(ctx, batch.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Equal(t, []uuid.UUID{batch.ID}, f.starter.signaled)
	})

	t.Run("batch_not_in_review_conflicts", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeTwoPartTariff, model.BatchStatusProcessing)

		err := f.business.ApproveReview(ctx, batch.ID)

		require.Error(t, err)
		assert.Equal(t, model.ErrConflict, model.CodeOf(err))
		assert.Empty(t, f.starter.signaled)
	})
}
