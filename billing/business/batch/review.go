package batch

import (
	"context"

	"github.com/google/uuid"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// MarkReview halts automated progression until a reviewer approves the
// outstanding two-part-tariff volumes.
func (b *business) MarkReview(ctx context.Context, batchID uuid.UUID) error {
	return b.state.Transition(ctx, batchID, model.BatchStatusReview)
}

// ApproveReview records the reviewer's sign-off on every outstanding
// volume and wakes the pipeline. Called by the API collaborator.
func (b *business) ApproveReview(ctx context.Context, batchID uuid.UUID) error {
	batch, err := b.store.Batches.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.Status != model.BatchStatusReview {
		return model.NewError(model.ErrConflict, "batch is not awaiting review")
	}

	if err := b.store.Volumes.ApproveAll(ctx, batchID); err != nil {
		return err
	}

	if b.pipeline != nil {
		return b.pipeline.SignalReviewApproved(ctx, batchID)
	}
	return nil
}

// ResumeProcessing is the workflow's half of approval: the status moves
// back to processing once the approval signal lands.
func (b *business) ResumeProcessing(ctx context.Context, batchID uuid.UUID) error {
	return b.state.Transition(ctx, batchID, model.BatchStatusProcessing)
}
