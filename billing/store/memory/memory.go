// Package memory is the in-memory store used by tests and local runs.
// Guarded updates behave exactly like the postgres implementation:
// compare-and-set on batch status and candidate-only transaction
// settlement.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store"
)

// Store holds everything behind one mutex; contention is irrelevant at
// test scale.
type Store struct {
	mu sync.Mutex

	batches         map[uuid.UUID]*model.Batch
	invoices        map[uuid.UUID]*model.Invoice
	invoiceLicences map[uuid.UUID]*model.InvoiceLicence
	transactions    map[uuid.UUID]*model.Transaction
	volumes         map[uuid.UUID]*model.BillingVolume

	licences       map[uuid.UUID]*model.Licence
	chargeVersions map[uuid.UUID]*model.ChargeVersion
	agreements     map[uuid.UUID][]*model.ChargeAgreement
	returns        map[uuid.UUID][]*model.Return
}

// New builds an empty store and the interface bundle over it.
func New() (*Store, *store.Store) {
	s := &Store{
		batches:         map[uuid.UUID]*model.Batch{},
		invoices:        map[uuid.UUID]*model.Invoice{},
		invoiceLicences: map[uuid.UUID]*model.InvoiceLicence{},
		transactions:    map[uuid.UUID]*model.Transaction{},
		volumes:         map[uuid.UUID]*model.BillingVolume{},
		licences:        map[uuid.UUID]*model.Licence{},
		chargeVersions:  map[uuid.UUID]*model.ChargeVersion{},
		agreements:      map[uuid.UUID][]*model.ChargeAgreement{},
		returns:         map[uuid.UUID][]*model.Return{},
	}
	return s, &store.Store{
		Batches:      (*batches)(s),
		Invoices:     (*invoices)(s),
		Transactions: (*transactions)(s),
		Volumes:      (*volumes)(s),
		ChargeData:   (*chargeData)(s),
	}
}

// Seed helpers for tests and local fixtures.

func (s *Store) AddLicence(l *model.Licence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.licences[l.ID] = l
}

func (s *Store) AddChargeVersion(cv *model.ChargeVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chargeVersions[cv.ID] = cv
}

func (s *Store) AddAgreement(licenceID uuid.UUID, a *model.ChargeAgreement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agreements[licenceID] = append(s.agreements[licenceID], a)
}

func (s *Store) AddReturn(licenceID uuid.UUID, r *model.Return) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.returns[licenceID] = append(s.returns[licenceID], r)
}

// AddBilledTransaction seeds a transaction from a previous sent batch,
// for supplementary restatement scenarios.
func (s *Store) AddBilledTransaction(t *model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
}

type batches Store

func (b *batches) Create(_ context.Context, batch *model.Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.batches[batch.ID]; exists {
		return model.NewError(model.ErrConflict, "batch already exists")
	}
	clone := *batch
	b.batches[batch.ID] = &clone
	return nil
}

func (b *batches) Get(_ context.Context, id uuid.UUID) (*model.Batch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch, ok := b.batches[id]
	if !ok {
		return nil, model.NewError(model.ErrNotFound, fmt.Sprintf("batch %s not found", id))
	}
	clone := *batch
	return &clone, nil
}

func (b *batches) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.BatchStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch, ok := b.batches[id]
	if !ok {
		return model.NewError(model.ErrNotFound, fmt.Sprintf("batch %s not found", id))
	}
	if batch.Status != from {
		return model.NewError(model.ErrConflict,
			fmt.Sprintf("batch %s status is %s, expected %s", id, batch.Status, from))
	}
	batch.Status = to
	return nil
}

func (b *batches) SetError(_ context.Context, id uuid.UUID, code model.BatchErrorCode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch, ok := b.batches[id]
	if !ok {
		return model.NewError(model.ErrNotFound, fmt.Sprintf("batch %s not found", id))
	}
	batch.Status = model.BatchStatusError
	batch.ErrorCode = code
	return nil
}

func (b *batches) SetExternalID(_ context.Context, id uuid.UUID, externalID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch, ok := b.batches[id]
	if !ok {
		return model.NewError(model.ErrNotFound, fmt.Sprintf("batch %s not found", id))
	}
	batch.ExternalID = externalID
	return nil
}

func (b *batches) UpdateTotals(_ context.Context, id uuid.UUID, totals model.Totals) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch, ok := b.batches[id]
	if !ok {
		return model.NewError(model.ErrNotFound, fmt.Sprintf("batch %s not found", id))
	}
	batch.Totals = totals
	return nil
}

type invoices Store

func (i *invoices) GetOrCreate(_ context.Context, invoice *model.Invoice) (*model.Invoice, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, existing := range i.invoices {
		if existing.BatchID == invoice.BatchID && existing.InvoiceAccountID == invoice.InvoiceAccountID {
			clone := *existing
			return &clone, nil
		}
	}
	clone := *invoice
	i.invoices[invoice.ID] = &clone
	out := clone
	return &out, nil
}

func (i *invoices) GetOrCreateLicence(_ context.Context, licence *model.InvoiceLicence) (*model.InvoiceLicence, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, existing := range i.invoiceLicences {
		if existing.InvoiceID == licence.InvoiceID && existing.UniquenessKey() == licence.UniquenessKey() {
			clone := *existing
			return &clone, nil
		}
	}
	clone := *licence
	i.invoiceLicences[licence.ID] = &clone
	out := clone
	return &out, nil
}

func (i *invoices) Create(_ context.Context, invoice *model.Invoice) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, exists := i.invoices[invoice.ID]; exists {
		return model.NewError(model.ErrConflict, "invoice already exists")
	}
	clone := *invoice
	i.invoices[invoice.ID] = &clone
	for idx := range invoice.InvoiceLicences {
		licence := invoice.InvoiceLicences[idx]
		i.invoiceLicences[licence.ID] = &licence
	}
	return nil
}

func (i *invoices) Get(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	invoice, ok := i.invoices[id]
	if !ok {
		return nil, model.NewError(model.ErrNotFound, fmt.Sprintf("invoice %s not found", id))
	}
	clone := *invoice
	clone.InvoiceLicences = nil
	for _, licence := range i.invoiceLicences {
		if licence.InvoiceID == id {
			clone.InvoiceLicences = append(clone.InvoiceLicences, *licence)
		}
	}
	return &clone, nil
}

func (i *invoices) GetLicence(_ context.Context, id uuid.UUID) (*model.InvoiceLicence, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	licence, ok := i.invoiceLicences[id]
	if !ok {
		return nil, model.NewError(model.ErrNotFound, fmt.Sprintf("invoice licence %s not found", id))
	}
	clone := *licence
	return &clone, nil
}

func (i *invoices) ListByBatch(_ context.Context, batchID uuid.UUID) ([]*model.Invoice, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var out []*model.Invoice
	for _, invoice := range i.invoices {
		if invoice.BatchID == batchID {
			clone := *invoice
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (i *invoices) SetEngineFields(_ context.Context, id uuid.UUID, externalID, invoiceNumber string, isDeMinimis bool, totals model.InvoiceTotals) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	invoice, ok := i.invoices[id]
	if !ok {
		return model.NewError(model.ErrNotFound, fmt.Sprintf("invoice %s not found", id))
	}
	invoice.ExternalID = externalID
	invoice.InvoiceNumber = invoiceNumber
	invoice.IsDeMinimis = isDeMinimis
	invoice.Totals = totals
	return nil
}

func (i *invoices) DeleteByBatch(_ context.Context, batchID uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for id, invoice := range i.invoices {
		if invoice.BatchID != batchID {
			continue
		}
		for licenceID, licence := range i.invoiceLicences {
			if licence.InvoiceID != id {
				continue
			}
			for txnID, txn := range i.transactions {
				if txn.InvoiceLicenceID == licenceID {
					delete(i.transactions, txnID)
				}
			}
			delete(i.invoiceLicences, licenceID)
		}
		delete(i.invoices, id)
	}
	return nil
}

type transactions Store

func (t *transactions) CreateAll(_ context.Context, txns []*model.Transaction) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, txn := range txns {
		clone := *txn
		t.transactions[txn.ID] = &clone
	}
	return nil
}

func (t *transactions) Get(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	txn, ok := t.transactions[id]
	if !ok {
		return nil, model.NewError(model.ErrNotFound, fmt.Sprintf("transaction %s not found", id))
	}
	clone := *txn
	return &clone, nil
}

func (t *transactions) ListByBatch(_ context.Context, batchID uuid.UUID) ([]*model.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*model.Transaction
	for _, txn := range t.transactions {
		if txn.BatchID == batchID {
			clone := *txn
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (t *transactions) ListByInvoiceLicence(_ context.Context, invoiceLicenceID uuid.UUID) ([]*model.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*model.Transaction
	for _, txn := range t.transactions {
		if txn.InvoiceLicenceID == invoiceLicenceID {
			clone := *txn
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (t *transactions) ListCandidateIDs(_ context.Context, batchID uuid.UUID) ([]uuid.UUID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []uuid.UUID
	for _, txn := range t.transactions {
		if txn.BatchID == batchID && txn.Status == model.TransactionStatusCandidate {
			out = append(out, txn.ID)
		}
	}
	return out, nil
}

func (t *transactions) StatusCounts(_ context.Context, batchID uuid.UUID) (map[model.TransactionStatus]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := map[model.TransactionStatus]int{}
	for _, txn := range t.transactions {
		if txn.BatchID == batchID {
			out[txn.Status]++
		}
	}
	return out, nil
}

func (t *transactions) MarkChargeCreated(_ context.Context, id uuid.UUID, externalID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	txn, ok := t.transactions[id]
	if !ok {
		return model.NewError(model.ErrNotFound, fmt.Sprintf("transaction %s not found", id))
	}
	if txn.Status != model.TransactionStatusCandidate {
		return model.NewError(model.ErrConflict, "transaction already settled")
	}
	txn.Status = model.TransactionStatusChargeCreated
	txn.ExternalID = externalID
	return nil
}

func (t *transactions) MarkError(_ context.Context, id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	txn, ok := t.transactions[id]
	if !ok {
		return model.NewError(model.ErrNotFound, fmt.Sprintf("transaction %s not found", id))
	}
	if txn.Status != model.TransactionStatusCandidate {
		return model.NewError(model.ErrConflict, "transaction already settled")
	}
	txn.Status = model.TransactionStatusError
	return nil
}

func (t *transactions) SetEngineValues(_ context.Context, id uuid.UUID, value int64, isDeMinimis, isMinimumCharge bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	txn, ok := t.transactions[id]
	if !ok {
		return model.NewError(model.ErrNotFound, fmt.Sprintf("transaction %s not found", id))
	}
	txn.Value = &value
	txn.IsDeMinimis = isDeMinimis
	txn.IsMinimumCharge = isMinimumCharge
	return nil
}

func (t *transactions) ListBilled(_ context.Context, region string, licenceID uuid.UUID, financialYearEnding int) ([]*model.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fy := model.FinancialYear(financialYearEnding)
	var out []*model.Transaction
	for _, txn := range t.transactions {
		if txn.Status != model.TransactionStatusChargeCreated {
			continue
		}
		licence, ok := t.invoiceLicences[txn.InvoiceLicenceID]
		if !ok || licence.LicenceID != licenceID {
			continue
		}
		batch, ok := t.batches[txn.BatchID]
		if !ok || batch.Region != region || batch.Status != model.BatchStatusSent {
			continue
		}
		if _, overlaps := txn.ChargePeriod.Intersect(fy); !overlaps {
			continue
		}
		clone := *txn
		out = append(out, &clone)
	}
	return out, nil
}

type volumes Store

func (v *volumes) CreateAll(_ context.Context, billingVolumes []*model.BillingVolume) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, volume := range billingVolumes {
		clone := *volume
		v.volumes[volume.ID] = &clone
	}
	return nil
}

func (v *volumes) ListByBatch(_ context.Context, batchID uuid.UUID) ([]*model.BillingVolume, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []*model.BillingVolume
	for _, volume := range v.volumes {
		if volume.BatchID == batchID {
			clone := *volume
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (v *volumes) CountUnapproved(_ context.Context, batchID uuid.UUID) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	count := 0
	for _, volume := range v.volumes {
		if volume.BatchID == batchID && !volume.IsApproved {
			count++
		}
	}
	return count, nil
}

func (v *volumes) DeleteByBatch(_ context.Context, batchID uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, volume := range v.volumes {
		if volume.BatchID == batchID {
			delete(v.volumes, id)
		}
	}
	return nil
}

func (v *volumes) ApproveAll(_ context.Context, batchID uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, volume := range v.volumes {
		if volume.BatchID == batchID {
			volume.IsApproved = true
		}
	}
	return nil
}

type chargeData Store

func (c *chargeData) Licence(_ context.Context, id uuid.UUID) (*model.Licence, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	licence, ok := c.licences[id]
	if !ok {
		return nil, model.NewError(model.ErrNotFound, fmt.Sprintf("licence %s not found", id))
	}
	clone := *licence
	return &clone, nil
}

func (c *chargeData) LicencesInRegion(_ context.Context, region string) ([]*model.Licence, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*model.Licence
	for _, licence := range c.licences {
		if licence.Region == region {
			clone := *licence
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (c *chargeData) ChargeVersion(_ context.Context, id uuid.UUID) (*model.ChargeVersion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cv, ok := c.chargeVersions[id]
	if !ok {
		return nil, model.NewError(model.ErrNotFound, fmt.Sprintf("charge version %s not found", id))
	}
	clone := *cv
	return &clone, nil
}

func (c *chargeData) ChargeVersionsForLicence(_ context.Context, licenceID uuid.UUID) ([]*model.ChargeVersion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*model.ChargeVersion
	for _, cv := range c.chargeVersions {
		if cv.LicenceID == licenceID {
			clone := *cv
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (c *chargeData) AgreementsForLicence(_ context.Context, licenceID uuid.UUID) ([]*model.ChargeAgreement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agreements[licenceID], nil
}

func (c *chargeData) ReturnsForLicence(_ context.Context, licenceID uuid.UUID, financialYearEnding int) ([]*model.Return, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*model.Return
	for _, ret := range c.returns[licenceID] {
		if ret.FinancialYearEnding == financialYearEnding {
			out = append(out, ret)
		}
	}
	return out, nil
}
