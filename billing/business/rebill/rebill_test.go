package rebill

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/engine"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store/memory"
)

type fakeEngine struct {
	rebillIDs   []string
	rebillErr   error
	rebillCalls int
	invoices    map[string]*engine.InvoiceSummary
}

func (f *fakeEngine) Rebill(_ context.Context, _, _ string) ([]string, error) {
	f.rebillCalls++
	if f.rebillErr != nil {
		return nil, f.rebillErr
	}
	return f.rebillIDs, nil
}

func (f *fakeEngine) GetInvoice(_ context.Context, _, invoiceID string) (*engine.InvoiceSummary, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, &engine.Error{StatusCode: 404, Body: "invoice not found"}
	}
	return inv, nil
}

type fixture struct {
	store  *store.Store
	engine *fakeEngine
	batch  *model.Batch
	source *model.Invoice
}

// newFixture seeds a target batch with a bill run plus a previously
// billed source invoice carrying one invoice licence.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	_, st := memory.New()

	batch, err := model.NewBatch(model.BatchParams{
		Type:                    model.BatchTypeSupplementary,
		Region:                  "anglian",
		FromFinancialYearEnding: 2020,
		ToFinancialYearEnding:   2020,
	})
	require.NoError(t, err)
	batch.Status = model.BatchStatusProcessing
	require.NoError(t, st.Batches.Create(ctx, batch))
	require.NoError(t, st.Batches.SetExternalID(ctx, batch.ID, "br-2"))
	batch.ExternalID = "br-2"

	source := &model.Invoice{
		ID:                   uuid.New(),
		BatchID:              uuid.New(),
		InvoiceAccountID:     uuid.New(),
		InvoiceAccountNumber: "A12345678A",
		FinancialYearEnding:  2020,
		ExternalID:           "inv-original",
		InvoiceNumber:        "AAI1000001",
		InvoiceLicences: []model.InvoiceLicence{{
			ID:            uuid.New(),
			LicenceID:     uuid.New(),
			LicenceNumber: "01/123/R01",
			CompanyID:     uuid.New(),
			ContactID:     uuid.New(),
			AddressID:     uuid.New(),
		}},
	}
	source.InvoiceLicences[0].InvoiceID = source.ID
	require.NoError(t, st.Invoices.Create(ctx, source))

	return &fixture{
		store: st,
		engine: &fakeEngine{
			rebillIDs: []string{"inv-rebilled"},
			invoices: map[string]*engine.InvoiceSummary{
				"inv-rebilled": {
					ID:                "inv-rebilled",
					CustomerReference: "A12345678A",
					FinancialYear:     2020,
					TransactionRef:    "AAI1000042",
					NetTotal:          -12345,
				},
			},
		},
		batch:  batch,
		source: source,
	}
}

func (f *fixture) coordinator() *Coordinator {
	return NewCoordinator(f.engine, f.store, zap.NewNop())
}

func TestRebillInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("clones_reissued_invoices_under_target_batch", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.coordinator().RebillInvoice(ctx, f.batch.ID, f.source.ID))

		invoices, err := f.store.Invoices.ListByBatch(ctx, f.batch.ID)
		require.NoError(t, err)
		require.Len(t, invoices, 1)

		clone, err := f.store.Invoices.Get(ctx, invoices[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "inv-rebilled", clone.ExternalID)
		assert.Equal(t, "AAI1000042", clone.InvoiceNumber)
		assert.Equal(t, f.source.InvoiceAccountID, clone.InvoiceAccountID)
		assert.Equal(t, int64(-12345), clone.Totals.NetTotal)
		require.NotNil(t, clone.OriginalInvoiceID)
		assert.Equal(t, f.source.ID, *clone.OriginalInvoiceID)

		require.Len(t, clone.InvoiceLicences, 1)
		assert.Equal(t, f.source.InvoiceLicences[0].LicenceID, clone.InvoiceLicences[0].LicenceID)
		assert.Equal(t, "01/123/R01", clone.InvoiceLicences[0].LicenceNumber)
		assert.NotEqual(t, f.source.InvoiceLicences[0].ID, clone.InvoiceLicences[0].ID)
	})

	t.Run("engine_may_split_into_multiple_invoices", func(t *testing.T) {
		f := newFixture(t)
		f.engine.rebillIDs = []string{"inv-rebilled", "inv-rebilled-2"}
		f.engine.invoices["inv-rebilled-2"] = &engine.InvoiceSummary{
			ID:                "inv-rebilled-2",
			CustomerReference: "A12345678A",
			FinancialYear:     2020,
			TransactionRef:    "AAI1000043",
			NetTotal:          12345,
		}

		require.NoError(t, f.coordinator().RebillInvoice(ctx, f.batch.ID, f.source.ID))

		invoices, err := f.store.Invoices.ListByBatch(ctx, f.batch.ID)
		require.NoError(t, err)
		assert.Len(t, invoices, 2)
	})

	t.Run("already_rebilled_completes_as_noop", func(t *testing.T) {
		f := newFixture(t)
		f.engine.rebillErr = engine.ErrAlreadyRebilled

		require.NoError(t, f.coordinator().RebillInvoice(ctx, f.batch.ID, f.source.ID))

		invoices, err := f.store.Invoices.ListByBatch(ctx, f.batch.ID)
		require.NoError(t, err)
		assert.Empty(t, invoices)
	})

	t.Run("engine_failure_is_unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.engine.rebillErr = &engine.Error{StatusCode: 502, Body: "bad gateway"}

		err := f.coordinator().RebillInvoice(ctx, f.batch.ID, f.source.ID)

		require.Error(t, err)
		assert.Equal(t, model.ErrUnavailable, model.CodeOf(err))
	})

	t.Run("target_batch_without_bill_run_conflicts", func(t *testing.T) {
		f := newFixture(t)
		bare, err := model.NewBatch(model.BatchParams{
			Type:                    model.BatchTypeSupplementary,
			Region:                  "anglian",
			FromFinancialYearEnding: 2020,
			ToFinancialYearEnding:   2020,
		})
		require.NoError(t, err)
		require.NoError(t, f.store.Batches.Create(ctx, bare))

		err = f.coordinator().RebillInvoice(ctx, bare.ID, f.source.ID)

		require.Error(t, err)
		assert.Equal(t, model.ErrConflict, model.CodeOf(err))
		assert.Zero(t, f.engine.rebillCalls)
	})

	t.Run("unbilled_source_invoice_conflicts", func(t *testing.T) {
		f := newFixture(t)
		unbilled := &model.Invoice{
			ID:                   uuid.New(),
			BatchID:              uuid.New(),
			InvoiceAccountID:     uuid.New(),
			InvoiceAccountNumber: "B98765432B",
			FinancialYearEnding:  2020,
		}
		require.NoError(t, f.store.Invoices.Create(ctx, unbilled))

		err := f.coordinator().RebillInvoice(ctx, f.batch.ID, unbilled.ID)

		require.Error(t, err)
		assert.Equal(t, model.ErrConflict, model.CodeOf(err))
		assert.Zero(t, f.engine.rebillCalls)
	})
}
