// Package store defines the persistence boundary for the billing
// pipeline. Implementations live in the postgres and memory
// sub-packages; business code depends only on these interfaces.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// Store bundles the domain repositories.
type Store struct {
	Batches      Batches
	Invoices     Invoices
	Transactions Transactions
	Volumes      Volumes
	ChargeData   ChargeData
}

// Batches persists batch rows and their guarded status field.
type Batches interface {
	Create(ctx context.Context, batch *model.Batch) error
	Get(ctx context.Context, id uuid.UUID) (*model.Batch, error)
	// UpdateStatus applies the write only when the persisted status still
	// equals from; otherwise it returns a conflict error. This is the
	// compare-and-set the stage aggregators rely on.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BatchStatus) error
	SetError(ctx context.Context, id uuid.UUID, code model.BatchErrorCode) error
	SetExternalID(ctx context.Context, id uuid.UUID, externalID string) error
	UpdateTotals(ctx context.Context, id uuid.UUID, totals model.Totals) error
}

// Invoices persists invoices and their licence children.
type Invoices interface {
	// GetOrCreate returns the existing invoice for the batch and invoice
	// account, creating it from the prototype when absent. At most one
	// invoice may exist per (batch, invoice account).
	GetOrCreate(ctx context.Context, invoice *model.Invoice) (*model.Invoice, error)
	// GetOrCreateLicence is the same upsert for the
	// (licence number, company, address, contact) uniqueness key.
	GetOrCreateLicence(ctx context.Context, licence *model.InvoiceLicence) (*model.InvoiceLicence, error)
	Create(ctx context.Context, invoice *model.Invoice) error
	Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	GetLicence(ctx context.Context, id uuid.UUID) (*model.InvoiceLicence, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*model.Invoice, error)
	// SetEngineFields records the engine-assigned identity and flags
	// discovered during reconciliation.
	SetEngineFields(ctx context.Context, id uuid.UUID, externalID, invoiceNumber string, isDeMinimis bool, totals model.InvoiceTotals) error
	DeleteByBatch(ctx context.Context, batchID uuid.UUID) error
}

// Transactions persists transactions. The candidate → settled moves are
// guarded so job redelivery cannot double-submit a record.
type Transactions interface {
	CreateAll(ctx context.Context, transactions []*model.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*model.Transaction, error)
	ListByInvoiceLicence(ctx context.Context, invoiceLicenceID uuid.UUID) ([]*model.Transaction, error)
	ListCandidateIDs(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error)
	StatusCounts(ctx context.Context, batchID uuid.UUID) (map[model.TransactionStatus]int, error)
	// MarkChargeCreated records the engine id; it only applies while the
	// transaction is still a candidate and conflicts otherwise.
	MarkChargeCreated(ctx context.Context, id uuid.UUID, externalID string) error
	// MarkError settles the transaction as failed; same candidate guard.
	MarkError(ctx context.Context, id uuid.UUID) error
	// SetEngineValues writes reconciliation results. Only the
	// reconciliation stage calls this.
	SetEngineValues(ctx context.Context, id uuid.UUID, value int64, isDeMinimis, isMinimumCharge bool) error
	// ListBilled returns the transactions already billed for a licence in
	// earlier sent batches of the region, used by supplementary
	// restatement.
	ListBilled(ctx context.Context, region string, licenceID uuid.UUID, financialYearEnding int) ([]*model.Transaction, error)
}

// Volumes persists two-part-tariff matching outcomes.
type Volumes interface {
	CreateAll(ctx context.Context, volumes []*model.BillingVolume) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*model.BillingVolume, error)
	CountUnapproved(ctx context.Context, batchID uuid.UUID) (int, error)
	ApproveAll(ctx context.Context, batchID uuid.UUID) error
	// DeleteByBatch clears the batch's volumes so a redelivered matching
	// job replaces its previous attempt instead of duplicating rows.
	DeleteByBatch(ctx context.Context, batchID uuid.UUID) error
}

// ChargeData is the read-only collaborator exposing licence and charge
// reference data. The pipeline never stores live links to these
// records, only identifiers.
type ChargeData interface {
	Licence(ctx context.Context, id uuid.UUID) (*model.Licence, error)
	LicencesInRegion(ctx context.Context, region string) ([]*model.Licence, error)
	ChargeVersion(ctx context.Context, id uuid.UUID) (*model.ChargeVersion, error)
	ChargeVersionsForLicence(ctx context.Context, licenceID uuid.UUID) ([]*model.ChargeVersion, error)
	AgreementsForLicence(ctx context.Context, licenceID uuid.UUID) ([]*model.ChargeAgreement, error)
	ReturnsForLicence(ctx context.Context, licenceID uuid.UUID, financialYearEnding int) ([]*model.Return, error)
}
