// Package rebill clones a previously billed invoice into a new batch
// through the engine's rebill operation. Rebilling is idempotent by
// design: a conflict from the engine means the work already happened.
package rebill

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/engine"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store"
)

// EngineAPI is the slice of the engine client rebilling needs.
type EngineAPI interface {
	Rebill(ctx context.Context, billRunID, invoiceID string) ([]string, error)
	GetInvoice(ctx context.Context, billRunID, invoiceID string) (*engine.InvoiceSummary, error)
}

// Coordinator drives one rebill operation at a time.
type Coordinator struct {
	engine EngineAPI
	store  *store.Store
	logger *zap.Logger
}

func NewCoordinator(e EngineAPI, s *store.Store, logger *zap.Logger) *Coordinator {
	return &Coordinator{engine: e, store: s, logger: logger}
}

// RebillInvoice reissues a previously billed invoice into the target
// batch. The engine may split the reissue into several new invoices;
// each is fetched and cloned locally with originalInvoiceId pointing at
// the source. A 409 conflict means the invoice is already marked for
// rebilling and completes as a no-op. Other failures are logged and
// re-raised without touching the batch status.
func (c *Coordinator) RebillInvoice(ctx context.Context, batchID, sourceInvoiceID uuid.UUID) error {
	batch, err := c.store.Batches.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.ExternalID == "" {
		return model.NewError(model.ErrConflict, "target batch has no engine bill run")
	}

	source, err := c.store.Invoices.Get(ctx, sourceInvoiceID)
	if err != nil {
		return err
	}
	if source.ExternalID == "" {
		return model.NewError(model.ErrConflict, "source invoice was never billed")
	}

	newIDs, err := c.engine.Rebill(ctx, batch.ExternalID, source.ExternalID)
	if err != nil {
		if errors.Is(err, engine.ErrAlreadyRebilled) {
			c.logger.Info("invoice already marked for rebilling",
				zap.String("batch_id", batchID.String()),
				zap.String("invoice_id", sourceInvoiceID.String()))
			return nil
		}
		c.logger.Error("rebill failed",
			zap.String("batch_id", batchID.String()),
			zap.String("invoice_id", sourceInvoiceID.String()),
			zap.Error(err))
		return model.WrapError(model.ErrUnavailable, "engine rebill failed", err)
	}

	for _, engineInvoiceID := range newIDs {
		if err := c.cloneInvoice(ctx, batch, source, engineInvoiceID); err != nil {
			c.logger.Error("failed to clone rebilled invoice",
				zap.String("engine_invoice_id", engineInvoiceID),
				zap.Error(err))
			return err
		}
	}
	return nil
}

// cloneInvoice copies the local invoice/invoice-licence structure under
// the target batch for one engine-side reissue.
func (c *Coordinator) cloneInvoice(ctx context.Context, batch *model.Batch, source *model.Invoice, engineInvoiceID string) error {
	detail, err := c.engine.GetInvoice(ctx, batch.ExternalID, engineInvoiceID)
	if err != nil {
		return model.WrapError(model.ErrUnavailable, "failed to fetch rebilled engine invoice", err)
	}

	originalID := source.ID
	clone := &model.Invoice{
		ID:                   uuid.New(),
		BatchID:              batch.ID,
		InvoiceAccountID:     source.InvoiceAccountID,
		InvoiceAccountNumber: source.InvoiceAccountNumber,
		Address:              source.Address,
		FinancialYearEnding:  source.FinancialYearEnding,
		ExternalID:           engineInvoiceID,
		InvoiceNumber:        detail.TransactionRef,
		IsDeMinimis:          detail.DeminimisInvoice,
		OriginalInvoiceID:    &originalID,
		Totals:               model.InvoiceTotals{NetTotal: detail.NetTotal},
	}
	for _, sourceLicence := range source.InvoiceLicences {
		clone.InvoiceLicences = append(clone.InvoiceLicences, model.InvoiceLicence{
			ID:            uuid.New(),
			InvoiceID:     clone.ID,
			LicenceID:     sourceLicence.LicenceID,
			LicenceNumber: sourceLicence.LicenceNumber,
			CompanyID:     sourceLicence.CompanyID,
			ContactID:     sourceLicence.ContactID,
			AddressID:     sourceLicence.AddressID,
		})
	}
	return c.store.Invoices.Create(ctx, clone)
}
