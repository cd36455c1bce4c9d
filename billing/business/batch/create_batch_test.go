package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

func TestCreateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_queued_batch_and_starts_pipeline", func(t *testing.T) {
		f := newFixture(t)

		batch, err := f.business.CreateBatch(ctx, model.BatchParams{
			Type:                    model.BatchTypeAnnual,
			Region:                  "anglian",
			FromFinancialYearEnding: 2020,
			ToFinancialYearEnding:   2020,
		})

		require.NoError(t, err)
		assert.Equal(t, model.BatchStatusQueued, batch.Status)
		require.Len(t, f.starter.started, 1)
		assert.Equal(t, batch.ID, f.starter.started[0])

		stored, err := f.store.Batches.Get(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, model.BatchStatusQueued, stored.Status)
	})

	t.Run("invalid_params_rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.business.CreateBatch(ctx, model.BatchParams{
			Type:                    "monthly",
			Region:                  "anglian",
			FromFinancialYearEnding: 2020,
			ToFinancialYearEnding:   2020,
		})

		require.Error(t, err)
		assert.Equal(t, model.ErrInvalidArgument, model.CodeOf(err))
		assert.Empty(t, f.starter.started)
	})

	t.Run("inverted_year_range_rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.business.CreateBatch(ctx, model.BatchParams{
			Type:                    model.BatchTypeSupplementary,
			Region:                  "anglian",
			FromFinancialYearEnding: 2021,
			ToFinancialYearEnding:   2020,
		})

		require.Error(t, err)
		assert.Equal(t, model.ErrInvalidArgument, model.CodeOf(err))
	})

	t.Run("pipeline_start_failure_surfaces", func(t *testing.T) {
		f := newFixture(t)
		f.starter.startErr = assert.AnError

		_, err := f.business.CreateBatch(ctx, model.BatchParams{
			Type:                    model.BatchTypeAnnual,
			Region:                  "anglian",
			FromFinancialYearEnding: 2020,
			ToFinancialYearEnding:   2020,
		})

		require.Error(t, err)
		assert.Equal(t, model.ErrUnavailable, model.CodeOf(err))
	})
}

func TestBeginProcessing(t *testing.T) {
	ctx := context.Background()

	t.Run("opens_engine_bill_run", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusQueued)

		require.NoError(t, f.business.BeginProcessing(ctx, batch.ID))

		stored, err := f.store.Batches.Get(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, model.BatchStatusProcessing, stored.Status)
		assert.Equal(t, "br-1", stored.ExternalID)
	})

	t.Run("redelivery_keeps_existing_bill_run", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusQueued)

		require.NoError(t, f.business.BeginProcessing(ctx, batch.ID))
		f.engine.billRunID = "br-2"
		require.NoError(t, f.business.BeginProcessing(ctx, batch.ID))

		stored, err := f.store.Batches.Get(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, "br-1", stored.ExternalID)
	})

	t.Run("engine_failure_is_retryable", func(t *testing.T) {
		f := newFixture(t)
		batch := f.createBatch(t, model.BatchTypeAnnual, model.BatchStatusQueued)
		f.engine.createBillRunErr = assert.AnError

		err := f.business.BeginProcessing(ctx, batch.ID)

		require.Error(t, err)
		assert.Equal(t, model.ErrUnavailable, model.CodeOf(err))
	})
}
