// Package reconcile merges the billing engine's authoritative view of a
// settled bill run back onto local state. The engine owns monetary
// values, de-minimis flags and invoice numbers; this package owns
// detecting when the two systems have diverged.
package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/engine"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store"
)

// EngineAPI is the read-side slice of the engine client.
type EngineAPI interface {
	GetBillRun(ctx context.Context, billRunID string) (*engine.BillRunSummary, error)
	GetInvoice(ctx context.Context, billRunID, invoiceID string) (*engine.InvoiceSummary, error)
}

// Decorator reconciles one batch at a time.
type Decorator struct {
	engine EngineAPI
	store  *store.Store
}

func NewDecorator(e EngineAPI, s *store.Store) *Decorator {
	return &Decorator{engine: e, store: s}
}

// Decorate fetches the engine's bill-run summary and per-invoice
// transaction summaries, writes engine-computed values onto local
// records and refreshes batch totals.
//
// Every settled local transaction must be matched by engine id; an
// unmatched one means the two systems disagree about what was billed
// and raises a fatal drift error. Engine-side minimum-charge
// transactions with no local counterpart are legitimate and are
// materialized locally instead.
func (d *Decorator) Decorate(ctx context.Context, batchID uuid.UUID) error {
	batch, err := d.store.Batches.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.ExternalID == "" {
		return model.NewError(model.ErrConflict, "batch has no engine bill run to reconcile")
	}

	summary, err := d.engine.GetBillRun(ctx, batch.ExternalID)
	if err != nil {
		return model.WrapError(model.ErrUnavailable, "failed to fetch engine bill run", err)
	}

	invoices, err := d.store.Invoices.ListByBatch(ctx, batchID)
	if err != nil {
		return err
	}
	for _, invoice := range invoices {
		engineInvoice := findEngineInvoice(summary, invoice)
		if engineInvoice == nil {
			return model.NewError(model.ErrReconciliationDrift,
				fmt.Sprintf("invoice account %s missing from engine bill run", invoice.InvoiceAccountNumber))
		}
		if err := d.decorateInvoice(ctx, batch, invoice, engineInvoice.ID); err != nil {
			return err
		}
	}

	return d.store.Batches.UpdateTotals(ctx, batchID, model.Totals{
		CreditNoteCount: summary.CreditNoteCount,
		InvoiceCount:    summary.InvoiceCount,
		CreditNoteValue: summary.CreditNoteValue,
		InvoiceValue:    summary.InvoiceValue,
		NetTotal:        summary.NetTotal,
	})
}

// findEngineInvoice matches a local invoice to the engine's by customer
// reference and financial year, the pair the engine keys its summaries
// on.
func findEngineInvoice(summary *engine.BillRunSummary, invoice *model.Invoice) *engine.InvoiceSummary {
	for i := range summary.Invoices {
		candidate := &summary.Invoices[i]
		if candidate.CustomerReference == invoice.InvoiceAccountNumber &&
			candidate.FinancialYear == invoice.FinancialYearEnding {
			return candidate
		}
	}
	return nil
}

func (d *Decorator) decorateInvoice(ctx context.Context, batch *model.Batch, invoice *model.Invoice, engineInvoiceID string) error {
	detail, err := d.engine.GetInvoice(ctx, batch.ExternalID, engineInvoiceID)
	if err != nil {
		return model.WrapError(model.ErrUnavailable, "failed to fetch engine invoice", err)
	}

	engineTxns := make(map[string]*engine.TransactionSummary, len(detail.Transactions))
	for i := range detail.Transactions {
		engineTxns[detail.Transactions[i].ID] = &detail.Transactions[i]
	}

	local, err := d.store.Transactions.ListByBatch(ctx, batch.ID)
	if err != nil {
		return err
	}

	for _, txn := range local {
		if txn.Status != model.TransactionStatusChargeCreated {
			continue
		}
		if !d.belongsToInvoice(ctx, txn, invoice) {
			continue
		}

		matched, ok := engineTxns[txn.ExternalID]
		if !ok {
			return model.NewError(model.ErrReconciliationDrift,
				fmt.Sprintf("transaction %s (engine id %s) missing from engine invoice", txn.ID, txn.ExternalID))
		}
		delete(engineTxns, txn.ExternalID)

		value := matched.ChargeValue
		if err := d.store.Transactions.SetEngineValues(ctx, txn.ID, value, matched.Deminimis, matched.MinimumCharge); err != nil {
			return err
		}
	}

	// What remains engine-side has no local counterpart. Minimum-charge
	// adjustments are engine-originated and get materialized; anything
	// else is drift.
	for _, extra := range engineTxns {
		if !extra.MinimumCharge {
			return model.NewError(model.ErrReconciliationDrift,
				fmt.Sprintf("engine transaction %s has no local counterpart", extra.ID))
		}
	}
	if len(engineTxns) > 0 {
		parentID, err := d.minimumChargeParent(ctx, invoice.ID)
		if err != nil {
			return err
		}
		for _, extra := range engineTxns {
			if err := d.materializeMinimumCharge(ctx, batch.ID, parentID, extra); err != nil {
				return err
			}
		}
	}

	return d.store.Invoices.SetEngineFields(ctx, invoice.ID, engineInvoiceID, detail.TransactionRef,
		detail.DeminimisInvoice, model.InvoiceTotals{NetTotal: detail.NetTotal})
}

// minimumChargeParent picks the invoice licence engine-side
// minimum-charge lines attach to. The engine reports them per invoice,
// not per licence; the lowest-id licence gives a stable parent.
func (d *Decorator) minimumChargeParent(ctx context.Context, invoiceID uuid.UUID) (uuid.UUID, error) {
	full, err := d.store.Invoices.Get(ctx, invoiceID)
	if err != nil {
		return uuid.Nil, err
	}
	if len(full.InvoiceLicences) == 0 {
		return uuid.Nil, model.NewError(model.ErrReconciliationDrift,
			fmt.Sprintf("invoice %s carries engine minimum-charge lines but has no invoice licences", invoiceID))
	}
	parent := full.InvoiceLicences[0]
	for _, licence := range full.InvoiceLicences[1:] {
		if licence.ID.String() < parent.ID.String() {
			parent = licence
		}
	}
	return parent.ID, nil
}

// belongsToInvoice resolves whether a transaction hangs off the given
// invoice via its invoice licence.
func (d *Decorator) belongsToInvoice(ctx context.Context, txn *model.Transaction, invoice *model.Invoice) bool {
	licence, err := d.store.Invoices.GetLicence(ctx, txn.InvoiceLicenceID)
	if err != nil {
		return false
	}
	return licence.InvoiceID == invoice.ID
}

// materializeMinimumCharge creates the local record for an engine-side
// minimum-charge transaction. It is born settled; it never had a
// candidate life.
func (d *Decorator) materializeMinimumCharge(ctx context.Context, batchID, invoiceLicenceID uuid.UUID, extra *engine.TransactionSummary) error {
	value := extra.ChargeValue
	minimum := &model.Transaction{
		ID:               uuid.New(),
		BatchID:          batchID,
		InvoiceLicenceID: invoiceLicenceID,
		IsCredit:         extra.Credit,
		IsMinimumCharge:  true,
		IsDeMinimis:      extra.Deminimis,
		Volume:           decimal.Zero,
		Description:      extra.LineDescription,
		Status:           model.TransactionStatusChargeCreated,
		ExternalID:       extra.ID,
		Value:            &value,
	}
	return d.store.Transactions.CreateAll(ctx, []*model.Transaction{minimum})
}
