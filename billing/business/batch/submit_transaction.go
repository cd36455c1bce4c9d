package batch

import (
	"context"

	"github.com/google/uuid"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/engine"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// ListCandidateTransactions returns the ids the submission stage fans
// out over.
func (b *business) ListCandidateTransactions(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error) {
	return b.store.Transactions.ListCandidateIDs(ctx, batchID)
}

// SubmitTransaction sends one candidate to the billing engine.
//
// The candidate-status guard makes redelivery safe: a transaction that
// has already settled is never submitted again. Engine 4xx responses
// settle the transaction as errored without failing the batch; 5xx and
// transport failures return a retryable error so the pipeline's retry
// budget applies.
func (b *business) SubmitTransaction(ctx context.Context, batchID, transactionID uuid.UUID) error {
	txn, err := b.store.Transactions.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	if txn.IsSettled() {
		return nil
	}

	batch, err := b.store.Batches.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.ExternalID == "" {
		return model.NewError(model.ErrConflict, "batch has no engine bill run")
	}

	payload, err := b.buildPayload(ctx, batch, txn)
	if err != nil {
		return err
	}

	externalID, err := b.engine.CreateTransaction(ctx, batch.ExternalID, payload)
	if err != nil {
		if engine.IsClientError(err) {
			// Data problem; retrying cannot fix it. Settle this transaction
			// as errored and keep the batch going.
			return b.store.Transactions.MarkError(ctx, transactionID)
		}
		return model.WrapError(model.ErrUnavailable, "engine transaction submission failed", err)
	}

	err = b.store.Transactions.MarkChargeCreated(ctx, transactionID, externalID)
	if err != nil && model.CodeOf(err) == model.ErrConflict {
		// Lost a redelivery race; the other delivery already settled it.
		return nil
	}
	return err
}

func (b *business) buildPayload(ctx context.Context, batch *model.Batch, txn *model.Transaction) (engine.TransactionRequest, error) {
	invoiceLicence, err := b.store.Invoices.GetLicence(ctx, txn.InvoiceLicenceID)
	if err != nil {
		return engine.TransactionRequest{}, err
	}
	invoice, err := b.store.Invoices.Get(ctx, invoiceLicence.InvoiceID)
	if err != nil {
		return engine.TransactionRequest{}, err
	}

	req := engine.TransactionRequest{
		PeriodStart:         engine.FormatDate(txn.ChargePeriod.StartDate),
		PeriodEnd:           engine.FormatDate(txn.ChargePeriod.EndDate),
		Credit:              txn.IsCredit,
		BillableDays:        txn.BillableDays,
		AuthorisedDays:      txn.AuthorisedDays,
		Volume:              txn.Volume.String(),
		Source:              txn.Source,
		Season:              txn.Season,
		Loss:                txn.Loss,
		Section127Agreement: txn.HasAgreement(model.AgreementS127),
		Section130Agreement: txn.HasAgreement(model.AgreementS130),
		CustomerReference:   invoice.InvoiceAccountNumber,
		LineDescription:     txn.Description,
		LicenceNumber:       invoiceLicence.LicenceNumber,
		Region:              batch.Region,
		CompensationCharge:  txn.IsCompensationCharge,
		TwoPartTariff:       txn.IsTwoPartTariffSupplementary,
	}

	for _, a := range txn.Agreements {
		if a.Code == model.AgreementS126 && a.Factor != nil {
			factor := a.Factor.String()
			req.Section126Factor = &factor
		}
	}
	return req, nil
}
