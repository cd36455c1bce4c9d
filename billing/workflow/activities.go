package workflow

import (
	"context"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/business/batch"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// Error types surfaced to the workflow's retry policies. Engine 4xx
// conditions settle inside the business layer and never reach here;
// what does reach here is either retryable infrastructure failure or a
// non-retryable local condition.
const (
	errTypeNonRetryable = "NonRetryableBillingError"
)

// RebillCoordinator reissues one previously billed invoice.
type RebillCoordinator interface {
	RebillInvoice(ctx context.Context, batchID, sourceInvoiceID uuid.UUID) error
}

// ActivityDependencies holds what the activities need to do real work.
type ActivityDependencies struct {
	Batch  batch.Business
	Rebill RebillCoordinator
}

var activityDeps *ActivityDependencies

// SetActivityDependencies installs the business layer used by the
// package-level activity functions.
func SetActivityDependencies(b batch.Business, r RebillCoordinator) {
	activityDeps = &ActivityDependencies{Batch: b, Rebill: r}
}

func deps() (*ActivityDependencies, error) {
	if activityDeps == nil || activityDeps.Batch == nil {
		return nil, temporal.NewApplicationError("activity dependencies not initialized", errTypeNonRetryable)
	}
	return activityDeps, nil
}

// classify converts business errors into retryable or non-retryable
// activity failures. Unavailable means infrastructure trouble and stays
// retryable; everything else will not improve on redelivery.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch model.CodeOf(err) {
	case model.ErrUnavailable:
		return err
	default:
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeNonRetryable, err)
	}
}

func BeginProcessingActivity(ctx context.Context, batchID uuid.UUID) error {
	d, err := deps()
	if err != nil {
		return err
	}
	activity.GetLogger(ctx).Info("Beginning batch processing", "batchID", batchID)
	return classify(d.Batch.BeginProcessing(ctx, batchID))
}

func MatchTwoPartTariffActivity(ctx context.Context, batchID uuid.UUID) (int, error) {
	d, err := deps()
	if err != nil {
		return 0, err
	}
	count, err := d.Batch.MatchTwoPartTariff(ctx, batchID)
	if err != nil {
		return 0, classify(err)
	}
	activity.GetLogger(ctx).Info("Two-part tariff matching complete", "batchID", batchID, "reviewCount", count)
	return count, nil
}

func MarkReviewActivity(ctx context.Context, batchID uuid.UUID) error {
	d, err := deps()
	if err != nil {
		return err
	}
	return classify(d.Batch.MarkReview(ctx, batchID))
}

func ResumeProcessingActivity(ctx context.Context, batchID uuid.UUID) error {
	d, err := deps()
	if err != nil {
		return err
	}
	return classify(d.Batch.ResumeProcessing(ctx, batchID))
}

func ListChargeVersionYearsActivity(ctx context.Context, batchID uuid.UUID) ([]batch.ChargeVersionYear, error) {
	d, err := deps()
	if err != nil {
		return nil, err
	}
	years, err := d.Batch.ListChargeVersionYears(ctx, batchID)
	if err != nil {
		return nil, classify(err)
	}
	return years, nil
}

func ProcessChargeVersionYearActivity(ctx context.Context, batchID uuid.UUID, year batch.ChargeVersionYear) error {
	d, err := deps()
	if err != nil {
		return err
	}
	return classify(d.Batch.ProcessChargeVersionYear(ctx, batchID, year))
}

func ListCandidateTransactionsActivity(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error) {
	d, err := deps()
	if err != nil {
		return nil, err
	}
	ids, err := d.Batch.ListCandidateTransactions(ctx, batchID)
	if err != nil {
		return nil, classify(err)
	}
	return ids, nil
}

// SubmitTransactionActivity submits one candidate. Retryable failures
// bubble up so the activity retry policy applies; once the budget is
// exhausted the workflow escalates to batch error.
func SubmitTransactionActivity(ctx context.Context, batchID, transactionID uuid.UUID) error {
	d, err := deps()
	if err != nil {
		return err
	}
	return classify(d.Batch.SubmitTransaction(ctx, batchID, transactionID))
}

func HasTransactionsActivity(ctx context.Context, batchID uuid.UUID) (bool, error) {
	d, err := deps()
	if err != nil {
		return false, err
	}
	has, err := d.Batch.HasTransactions(ctx, batchID)
	if err != nil {
		return false, classify(err)
	}
	return has, nil
}

func GenerateBillRunActivity(ctx context.Context, batchID uuid.UUID) error {
	d, err := deps()
	if err != nil {
		return err
	}
	return classify(d.Batch.GenerateBillRun(ctx, batchID))
}

func RefreshTotalsActivity(ctx context.Context, batchID uuid.UUID) error {
	d, err := deps()
	if err != nil {
		return err
	}
	err = d.Batch.RefreshTotals(ctx, batchID)
	if model.CodeOf(err) == model.ErrReconciliationDrift {
		// Drift needs an operator, not a retry.
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeNonRetryable, err)
	}
	return classify(err)
}

func MarkReadyActivity(ctx context.Context, batchID uuid.UUID) error {
	d, err := deps()
	if err != nil {
		return err
	}
	return classify(d.Batch.MarkReady(ctx, batchID))
}

// RebillInvoiceActivity reissues one billed invoice into the target
// batch. Engine conflicts complete as a no-op inside the coordinator.
func RebillInvoiceActivity(ctx context.Context, batchID, sourceInvoiceID uuid.UUID) error {
	d, err := deps()
	if err != nil {
		return err
	}
	if d.Rebill == nil {
		return temporal.NewApplicationError("rebill coordinator not initialized", errTypeNonRetryable)
	}
	return classify(d.Rebill.RebillInvoice(ctx, batchID, sourceInvoiceID))
}

// SetBatchErrorActivity is the failure continuation for every stage.
func SetBatchErrorActivity(ctx context.Context, batchID uuid.UUID, code model.BatchErrorCode) error {
	d, err := deps()
	if err != nil {
		return err
	}
	activity.GetLogger(ctx).Error("Recording batch failure", "batchID", batchID, "code", code)
	return classify(d.Batch.SetBatchError(ctx, batchID, code))
}
