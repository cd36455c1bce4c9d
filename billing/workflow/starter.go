package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// WorkflowID derives the deterministic workflow id for a batch, so
// starting the pipeline twice for one batch is a no-op and signals can
// be addressed without lookups.
func WorkflowID(batchID uuid.UUID) string {
	return fmt.Sprintf("batch-%s", batchID)
}

// Starter launches and signals batch pipelines. It implements
// batch.PipelineStarter.
type Starter struct {
	client    client.Client
	taskQueue string
}

func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// StartProcessBatch launches the pipeline for a freshly created batch.
func (s *Starter) StartProcessBatch(ctx context.Context, batch *model.Batch) error {
	options := client.StartWorkflowOptions{
		ID:        WorkflowID(batch.ID),
		TaskQueue: s.taskQueue,
	}
	_, err := s.client.ExecuteWorkflow(ctx, options, ProcessBatch, ProcessBatchParams{
		BatchID:   batch.ID,
		BatchType: batch.Type,
	})
	return err
}

// StartRebillInvoice launches the out-of-band rebill workflow. The id
// is derived from both sides so repeated requests collapse to one run.
func (s *Starter) StartRebillInvoice(ctx context.Context, batchID, sourceInvoiceID uuid.UUID) error {
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("rebill-%s-%s", batchID, sourceInvoiceID),
		TaskQueue: s.taskQueue,
	}
	_, err := s.client.ExecuteWorkflow(ctx, options, RebillInvoice, RebillInvoiceParams{
		BatchID:         batchID,
		SourceInvoiceID: sourceInvoiceID,
	})
	return err
}

// SignalReviewApproved wakes a batch gated in review.
func (s *Starter) SignalReviewApproved(ctx context.Context, batchID uuid.UUID) error {
	return s.client.SignalWorkflow(ctx, WorkflowID(batchID), "", ReviewApprovedSignalName, ReviewApprovedSignal{})
}
