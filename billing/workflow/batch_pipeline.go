// Package workflow drives the batch billing pipeline on Temporal. Each
// stage fans out over identifier-only payloads and joins before the
// batch status advances; per-transaction failures are isolated by the
// business layer and only infrastructure failure escalates the batch.
package workflow

import (
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/business/batch"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// ProcessBatchParams starts a pipeline run. Only identifiers travel in
// workflow history; everything else is re-read from the store.
type ProcessBatchParams struct {
	BatchID   uuid.UUID       `json:"batch_id"`
	BatchType model.BatchType `json:"batch_type"`
}

// ProcessBatch runs a batch through matching, charge generation,
// submission, engine generation and reconciliation. Stage order is
// strict; work within a stage runs in parallel.
func ProcessBatch(ctx workflow.Context, params ProcessBatchParams) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting batch pipeline", "batchID", params.BatchID, "batchType", params.BatchType)

	if err := execute(ctx, BeginProcessingActivity, params.BatchID); err != nil {
		return failBatch(ctx, params.BatchID, model.ErrorFailedToCreateBillRun, err)
	}

	// Two-part-tariff matching, with the review gate. Annual batches
	// have no matching stage.
	if params.BatchType != model.BatchTypeAnnual {
		var reviewCount int
		if err := executeInto(ctx, MatchTwoPartTariffActivity, &reviewCount, params.BatchID); err != nil {
			return failBatch(ctx, params.BatchID, model.ErrorFailedToProcessTwoPartTariff, err)
		}
		if reviewCount > 0 {
			if err := execute(ctx, MarkReviewActivity, params.BatchID); err != nil {
				return failBatch(ctx, params.BatchID, model.ErrorFailedToProcessTwoPartTariff, err)
			}
			logger.Info("Batch gated in review", "batchID", params.BatchID, "unapprovedVolumes", reviewCount)

			var approval ReviewApprovedSignal
			workflow.GetSignalChannel(ctx, ReviewApprovedSignalName).Receive(ctx, &approval)
			logger.Info("Review approved, resuming", "batchID", params.BatchID, "approvedBy", approval.ApprovedBy)

			if err := execute(ctx, ResumeProcessingActivity, params.BatchID); err != nil {
				return failBatch(ctx, params.BatchID, model.ErrorFailedToProcessTwoPartTariff, err)
			}
		}
	}

	// Charge-version fan-out: one unit of work per (charge version,
	// financial year). The join is the stage aggregator.
	var years []batch.ChargeVersionYear
	if err := executeInto(ctx, ListChargeVersionYearsActivity, &years, params.BatchID); err != nil {
		return failBatch(ctx, params.BatchID, model.ErrorFailedToProcessChargeVersions, err)
	}
	if err := fanOutChargeVersions(ctx, params.BatchID, years); err != nil {
		return failBatch(ctx, params.BatchID, model.ErrorFailedToProcessChargeVersions, err)
	}

	// Submission fan-out: one job per candidate transaction, each with
	// its own bounded retry budget.
	var candidates []uuid.UUID
	if err := executeInto(ctx, ListCandidateTransactionsActivity, &candidates, params.BatchID); err != nil {
		return failBatch(ctx, params.BatchID, model.ErrorFailedToCreateCharge, err)
	}
	if err := fanOutSubmissions(ctx, params.BatchID, candidates); err != nil {
		return failBatch(ctx, params.BatchID, model.ErrorFailedToCreateCharge, err)
	}

	var hasTransactions bool
	if err := executeInto(ctx, HasTransactionsActivity, &hasTransactions, params.BatchID); err != nil {
		return failBatch(ctx, params.BatchID, model.ErrorFailedToCreateBillRun, err)
	}
	if hasTransactions {
		if err := execute(ctx, GenerateBillRunActivity, params.BatchID); err != nil {
			return failBatch(ctx, params.BatchID, model.ErrorFailedToCreateBillRun, err)
		}
		if err := execute(ctx, RefreshTotalsActivity, params.BatchID); err != nil {
			return failBatch(ctx, params.BatchID, model.ErrorFailedToGetBillRunSummary, err)
		}
	} else {
		logger.Info("Batch produced no transactions, skipping engine generation", "batchID", params.BatchID)
	}

	if err := execute(ctx, MarkReadyActivity, params.BatchID); err != nil {
		return failBatch(ctx, params.BatchID, model.ErrorFailedToCreateBillRun, err)
	}

	logger.Info("Batch pipeline complete", "batchID", params.BatchID)
	return nil
}

// fanOutChargeVersions processes every charge-version year in parallel
// and joins before returning. A single failed unit fails the stage.
func fanOutChargeVersions(ctx workflow.Context, batchID uuid.UUID, years []batch.ChargeVersionYear) error {
	actx := workflow.WithActivityOptions(ctx, stageActivityOptions())

	futures := make([]workflow.Future, 0, len(years))
	for _, year := range years {
		futures = append(futures, workflow.ExecuteActivity(actx, ProcessChargeVersionYearActivity, batchID, year))
	}
	for _, f := range futures {
		if err := f.Get(ctx, nil); err != nil {
			return err
		}
	}
	return nil
}

// fanOutSubmissions submits every candidate in parallel. Each activity
// carries the per-transaction retry budget; an error surfacing here
// means the budget is exhausted and the batch must fail.
func fanOutSubmissions(ctx workflow.Context, batchID uuid.UUID, candidates []uuid.UUID) error {
	actx := workflow.WithActivityOptions(ctx, submissionActivityOptions())

	futures := make([]workflow.Future, 0, len(candidates))
	for _, transactionID := range candidates {
		futures = append(futures, workflow.ExecuteActivity(actx, SubmitTransactionActivity, batchID, transactionID))
	}
	for _, f := range futures {
		if err := f.Get(ctx, nil); err != nil {
			return err
		}
	}
	return nil
}

// failBatch records the stage's error code on the batch and returns the
// original stage error. Recording is best effort: the batch row may be
// unreachable for the same reason the stage failed.
func failBatch(ctx workflow.Context, batchID uuid.UUID, code model.BatchErrorCode, cause error) error {
	actx := workflow.WithActivityOptions(ctx, stageActivityOptions())
	if err := workflow.ExecuteActivity(actx, SetBatchErrorActivity, batchID, code).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Error("Failed to record batch error", "batchID", batchID, "code", code, "error", err)
	}
	return cause
}

func execute(ctx workflow.Context, activityFn any, args ...any) error {
	actx := workflow.WithActivityOptions(ctx, stageActivityOptions())
	return workflow.ExecuteActivity(actx, activityFn, args...).Get(ctx, nil)
}

func executeInto(ctx workflow.Context, activityFn any, out any, args ...any) error {
	actx := workflow.WithActivityOptions(ctx, stageActivityOptions())
	return workflow.ExecuteActivity(actx, activityFn, args...).Get(ctx, out)
}

// stageActivityOptions covers stage-level work: store reads/writes and
// single engine calls.
func stageActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{errTypeNonRetryable},
		},
	}
}

// submissionActivityOptions is the per-transaction retry budget:
// exponential backoff, four attempts, then escalation to batch error.
func submissionActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        15 * time.Second,
			MaximumAttempts:        4,
			NonRetryableErrorTypes: []string{errTypeNonRetryable},
		},
	}
}
