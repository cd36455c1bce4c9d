package workflow

import (
	"github.com/google/uuid"
	"go.temporal.io/sdk/workflow"
)

// RebillInvoiceParams reissues one billed invoice into a target batch.
type RebillInvoiceParams struct {
	BatchID         uuid.UUID `json:"batch_id"`
	SourceInvoiceID uuid.UUID `json:"source_invoice_id"`
}

// RebillInvoice runs the out-of-band rebill operation. It is started
// separately from the batch pipeline, once per invoice to reissue; a
// failure here never changes the batch status.
func RebillInvoice(ctx workflow.Context, params RebillInvoiceParams) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting invoice rebill", "batchID", params.BatchID, "sourceInvoiceID", params.SourceInvoiceID)

	if err := execute(ctx, RebillInvoiceActivity, params.BatchID, params.SourceInvoiceID); err != nil {
		logger.Error("Invoice rebill failed", "sourceInvoiceID", params.SourceInvoiceID, "error", err)
		return err
	}
	logger.Info("Invoice rebill complete", "sourceInvoiceID", params.SourceInvoiceID)
	return nil
}
