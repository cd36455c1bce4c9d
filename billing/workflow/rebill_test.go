package workflow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/mock/gomock"

	batchmock "github.com/DEFRA/water-abstraction-service-sub009/billing/mocks/business/batch_business"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

type fakeRebillCoordinator struct {
	calls [][2]uuid.UUID
	err   error
}

func (f *fakeRebillCoordinator) RebillInvoice(_ context.Context, batchID, sourceInvoiceID uuid.UUID) error {
	f.calls = append(f.calls, [2]uuid.UUID{batchID, sourceInvoiceID})
	return f.err
}

func newRebillEnv(t *testing.T, coordinator *fakeRebillCoordinator) *testsuite.TestWorkflowEnvironment {
	ctrl := gomock.NewController(t)
	SetActivityDependencies(batchmock.NewMockBusiness(ctrl), coordinator)
	t.Cleanup(func() { SetActivityDependencies(nil, nil) })

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterActivity(RebillInvoiceActivity)
	return env
}

func TestRebillInvoiceWorkflow(t *testing.T) {
	t.Run("runs_coordinator_with_both_identifiers", func(t *testing.T) {
		coordinator := &fakeRebillCoordinator{}
		env := newRebillEnv(t, coordinator)
		batchID, sourceID := uuid.New(), uuid.New()

		env.ExecuteWorkflow(RebillInvoice, RebillInvoiceParams{BatchID: batchID, SourceInvoiceID: sourceID})

		require.True(t, env.IsWorkflowCompleted())
		assert.NoError(t, env.GetWorkflowError())
		require.Len(t, coordinator.calls, 1)
		assert.Equal(t, [2]uuid.UUID{batchID, sourceID}, coordinator.calls[0])
	})

	t.Run("coordinator_conflict_fails_workflow_without_retry", func(t *testing.T) {
		coordinator := &fakeRebillCoordinator{
			err: model.NewError(model.ErrConflict, "source invoice was never billed"),
		}
		env := newRebillEnv(t, coordinator)

		env.ExecuteWorkflow(RebillInvoice, RebillInvoiceParams{BatchID: uuid.New(), SourceInvoiceID: uuid.New()})

		require.True(t, env.IsWorkflowCompleted())
		assert.Error(t, env.GetWorkflowError())
		assert.Len(t, coordinator.calls, 1)
	})
}
