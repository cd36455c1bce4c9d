package batch

import (
	"context"

	"github.com/google/uuid"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// HasTransactions reports whether the batch produced any transactions
// at all. An empty batch is valid and advances straight to ready.
func (b *business) HasTransactions(ctx context.Context, batchID uuid.UUID) (bool, error) {
	counts, err := b.store.Transactions.StatusCounts(ctx, batchID)
	if err != nil {
		return false, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total > 0, nil
}

// GenerateBillRun asks the engine to finalize the bill run once every
// candidate has settled.
func (b *business) GenerateBillRun(ctx context.Context, batchID uuid.UUID) error {
	batch, err := b.store.Batches.Get(ctx, batchID)
	if err != nil {
		return err
	}

	counts, err := b.store.Transactions.StatusCounts(ctx, batchID)
	if err != nil {
		return err
	}
	if counts[model.TransactionStatusCandidate] > 0 {
		return model.NewError(model.ErrConflict, "batch still has unsettled candidate transactions")
	}

	if err := b.engine.Generate(ctx, batch.ExternalID); err != nil {
		return model.WrapError(model.ErrUnavailable, "engine bill run generation failed", err)
	}
	return nil
}

// RefreshTotals pulls the engine's authoritative totals back onto local
// records.
func (b *business) RefreshTotals(ctx context.Context, batchID uuid.UUID) error {
	return b.reconciler.Decorate(ctx, batchID)
}

func (b *business) MarkReady(ctx context.Context, batchID uuid.UUID) error {
	return b.state.Transition(ctx, batchID, model.BatchStatusReady)
}

func (b *business) MarkSent(ctx context.Context, batchID uuid.UUID) error {
	return b.state.Transition(ctx, batchID, model.BatchStatusSent)
}

// SetBatchError records the failed stage and halts automated
// progression for the batch.
func (b *business) SetBatchError(ctx context.Context, batchID uuid.UUID, code model.BatchErrorCode) error {
	return b.state.Fail(ctx, batchID, code)
}

// DeleteBatch tears down a batch locally and in the engine. Used by the
// operator-facing cleanup path, never by the pipeline itself.
func (b *business) DeleteBatch(ctx context.Context, batchID uuid.UUID) error {
	batch, err := b.store.Batches.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.ExternalID != "" {
		if err := b.engine.DeleteBillRun(ctx, batch.ExternalID); err != nil {
			return model.WrapError(model.ErrUnavailable, "failed to delete engine bill run", err)
		}
	}
	return b.store.Invoices.DeleteByBatch(ctx, batchID)
}
