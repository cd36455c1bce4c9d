// Package batch implements the stage operations of the billing
// pipeline. Each operation re-derives its context from the store by
// identifier, so job messages stay small and re-deliverable.
package batch

import (
	"context"

	"github.com/google/uuid"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/domain/batchstate"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/engine"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store"
)

// ChargeVersionYear identifies one fan-out unit of the charge
// processing stage.
type ChargeVersionYear struct {
	ChargeVersionID     uuid.UUID `json:"charge_version_id"`
	FinancialYearEnding int       `json:"financial_year_ending"`
}

// Business is the batch-stage surface consumed by the workflow
// activities and the API collaborator.
type Business interface {
	CreateBatch(ctx context.Context, params model.BatchParams) (*model.Batch, error)
	BeginProcessing(ctx context.Context, batchID uuid.UUID) error

	MatchTwoPartTariff(ctx context.Context, batchID uuid.UUID) (int, error)
	MarkReview(ctx context.Context, batchID uuid.UUID) error
	ApproveReview(ctx context.Context, batchID uuid.UUID) error
	ResumeProcessing(ctx context.Context, batchID uuid.UUID) error

	ListChargeVersionYears(ctx context.Context, batchID uuid.UUID) ([]ChargeVersionYear, error)
	ProcessChargeVersionYear(ctx context.Context, batchID uuid.UUID, year ChargeVersionYear) error

	ListCandidateTransactions(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error)
	SubmitTransaction(ctx context.Context, batchID, transactionID uuid.UUID) error

	HasTransactions(ctx context.Context, batchID uuid.UUID) (bool, error)
	GenerateBillRun(ctx context.Context, batchID uuid.UUID) error
	RefreshTotals(ctx context.Context, batchID uuid.UUID) error

	MarkReady(ctx context.Context, batchID uuid.UUID) error
	MarkSent(ctx context.Context, batchID uuid.UUID) error
	SetBatchError(ctx context.Context, batchID uuid.UUID, code model.BatchErrorCode) error

	DeleteBatch(ctx context.Context, batchID uuid.UUID) error
}

// EngineAPI is the slice of the billing-engine client the batch stages
// call.
type EngineAPI interface {
	CreateBillRun(ctx context.Context, region string) (string, error)
	CreateTransaction(ctx context.Context, billRunID string, req engine.TransactionRequest) (string, error)
	Generate(ctx context.Context, billRunID string) error
	DeleteBillRun(ctx context.Context, billRunID string) error
}

// Reconciler merges engine-computed values back onto local records
// once submission settles.
type Reconciler interface {
	Decorate(ctx context.Context, batchID uuid.UUID) error
}

// PipelineStarter launches and signals the batch workflow. Implemented
// by the workflow package's Starter; nil-safe for tests that drive
// stages directly.
type PipelineStarter interface {
	StartProcessBatch(ctx context.Context, batch *model.Batch) error
	SignalReviewApproved(ctx context.Context, batchID uuid.UUID) error
}

type business struct {
	store      *store.Store
	engine     EngineAPI
	state      *batchstate.StateMachine
	reconciler Reconciler
	pipeline   PipelineStarter
}

// NewBusiness wires the batch stage operations.
func NewBusiness(s *store.Store, e EngineAPI, reconciler Reconciler, pipeline PipelineStarter) Business {
	return &business{
		store:      s,
		engine:     e,
		state:      batchstate.New(s.Batches),
		reconciler: reconciler,
		pipeline:   pipeline,
	}
}
