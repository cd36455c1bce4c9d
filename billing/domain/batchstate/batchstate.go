// Package batchstate owns batch status transitions. All writes go
// through a compare-and-set on the current status so two aggregators
// racing to advance the same batch cannot both win.
package batchstate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// StatusStore is the slice of the batch store the state machine needs.
type StatusStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Batch, error)
	// UpdateStatus must only apply the write when the persisted status
	// still equals from, returning a conflict error otherwise.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BatchStatus) error
	SetError(ctx context.Context, id uuid.UUID, code model.BatchErrorCode) error
}

var transitions = map[model.BatchStatus][]model.BatchStatus{
	model.BatchStatusQueued:     {model.BatchStatusProcessing},
	model.BatchStatusProcessing: {model.BatchStatusReview, model.BatchStatusReady},
	model.BatchStatusReview:     {model.BatchStatusProcessing},
	model.BatchStatusReady:      {model.BatchStatusSent},
}

// CanTransition reports whether from → to is a legal move. Error is
// reachable from every state except the terminal ones.
func CanTransition(from, to model.BatchStatus) bool {
	if to == model.BatchStatusError {
		return from != model.BatchStatusSent && from != model.BatchStatusError
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StateMachine applies guarded transitions against the store.
type StateMachine struct {
	batches StatusStore
}

func New(batches StatusStore) *StateMachine {
	return &StateMachine{batches: batches}
}

// Transition re-reads the batch immediately before writing and applies
// the move with a compare-and-set on the observed status.
func (sm *StateMachine) Transition(ctx context.Context, batchID uuid.UUID, to model.BatchStatus) error {
	batch, err := sm.batches.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.Status == to {
		// Another aggregator already applied the same move.
		return nil
	}
	if !CanTransition(batch.Status, to) {
		return model.NewError(model.ErrConflict,
			fmt.Sprintf("batch %s cannot move from %s to %s", batchID, batch.Status, to))
	}
	return sm.batches.UpdateStatus(ctx, batchID, batch.Status, to)
}

// Fail moves the batch to error with the failed stage's code. Error is
// terminal for automated processing; only operator intervention or an
// explicit retry moves the batch again.
func (sm *StateMachine) Fail(ctx context.Context, batchID uuid.UUID, code model.BatchErrorCode) error {
	batch, err := sm.batches.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if !CanTransition(batch.Status, model.BatchStatusError) {
		return model.NewError(model.ErrConflict,
			fmt.Sprintf("batch %s is terminal (%s), cannot record %s", batchID, batch.Status, code))
	}
	return sm.batches.SetError(ctx, batchID, code)
}
