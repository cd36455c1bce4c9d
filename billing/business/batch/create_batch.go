package batch

import (
	"context"

	"github.com/google/uuid"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// CreateBatch persists a queued batch and hands it to the pipeline. The
// workflow owns every later status move.
func (b *business) CreateBatch(ctx context.Context, params model.BatchParams) (*model.Batch, error) {
	batch, err := model.NewBatch(params)
	if err != nil {
		return nil, err
	}
	if err := b.store.Batches.Create(ctx, batch); err != nil {
		return nil, err
	}

	if b.pipeline != nil {
		if err := b.pipeline.StartProcessBatch(ctx, batch); err != nil {
			// The batch row stays queued; an operator retry can relaunch it.
			return nil, model.WrapError(model.ErrUnavailable, "failed to start batch pipeline", err)
		}
	}
	return batch, nil
}

// BeginProcessing moves the batch out of queued and opens the
// engine-side bill run that submissions will target.
func (b *business) BeginProcessing(ctx context.Context, batchID uuid.UUID) error {
	if err := b.state.Transition(ctx, batchID, model.BatchStatusProcessing); err != nil {
		return err
	}

	batch, err := b.store.Batches.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.ExternalID != "" {
		// Redelivered job; the bill run already exists.
		return nil
	}

	externalID, err := b.engine.CreateBillRun(ctx, batch.Region)
	if err != nil {
		return model.WrapError(model.ErrUnavailable, "failed to create engine bill run", err)
	}
	return b.store.Batches.SetExternalID(ctx, batchID, externalID)
}
