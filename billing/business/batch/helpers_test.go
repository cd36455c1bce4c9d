package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/business/transaction"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/engine"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store/memory"
)

// fakeEngine records calls and plays back configured responses.
type fakeEngine struct {
	billRunID        string
	createBillRunErr error

	transactionIDs       []string
	createTransactionErr error
	transactionCalls     int
	lastRequest          engine.TransactionRequest

	generateErr   error
	generateCalls int

	deleteCalls int
}

func (f *fakeEngine) CreateBillRun(_ context.Context, _ string) (string, error) {
	if f.createBillRunErr != nil {
		return "", f.createBillRunErr
	}
	return f.billRunID, nil
}

func (f *fakeEngine) CreateTransaction(_ context.Context, _ string, req engine.TransactionRequest) (string, error) {
	f.lastRequest = req
	f.transactionCalls++
	if f.createTransactionErr != nil {
		return "", f.createTransactionErr
	}
	id := "engine-txn"
	if len(f.transactionIDs) > 0 {
		id = f.transactionIDs[0]
		f.transactionIDs = f.transactionIDs[1:]
	}
	return id, nil
}

func (f *fakeEngine) Generate(_ context.Context, _ string) error {
	f.generateCalls++
	return f.generateErr
}

func (f *fakeEngine) DeleteBillRun(_ context.Context, _ string) error {
	f.deleteCalls++
	return nil
}

type fakeStarter struct {
	started  []uuid.UUID
	signaled []uuid.UUID
	startErr error
}

func (f *fakeStarter) StartProcessBatch(_ context.Context, batch *model.Batch) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, batch.ID)
	return nil
}

func (f *fakeStarter) SignalReviewApproved(_ context.Context, batchID uuid.UUID) error {
	f.signaled = append(f.signaled, batchID)
	return nil
}

type fakeReconciler struct {
	decorateErr   error
	decorateCalls int
}

func (f *fakeReconciler) Decorate(_ context.Context, _ uuid.UUID) error {
	f.decorateCalls++
	return f.decorateErr
}

type fixture struct {
	business Business
	seed     *memory.Store
	store    *store.Store
	engine   *fakeEngine
	starter  *fakeStarter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	seed, st := memory.New()
	eng := &fakeEngine{billRunID: "br-1"}
	starter := &fakeStarter{}
	return &fixture{
		business: NewBusiness(st, eng, &fakeReconciler{}, starter),
		seed:     seed,
		store:    st,
		engine:   eng,
		starter:  starter,
	}
}

func (f *fixture) createBatch(t *testing.T, batchType model.BatchType, status model.BatchStatus) *model.Batch {
	t.Helper()
	ctx := context.Background()
	batch, err := model.NewBatch(model.BatchParams{
		Type:                    batchType,
		Region:                  "anglian",
		FromFinancialYearEnding: 2020,
		ToFinancialYearEnding:   2020,
	})
	require.NoError(t, err)
	batch.Status = status
	require.NoError(t, f.store.Batches.Create(ctx, batch))
	return batch
}

func (f *fixture) seedLicence(t *testing.T, waterUndertaker bool) *model.Licence {
	t.Helper()
	licence := &model.Licence{
		ID:                   uuid.New(),
		LicenceNumber:        "01/123/R01",
		Region:               "anglian",
		StartDate:            model.Date(2010, 1, 1),
		IsWaterUndertaker:    waterUndertaker,
		InvoiceAccountID:     uuid.New(),
		InvoiceAccountNumber: "A12345678A",
		CompanyID:            uuid.New(),
		ContactID:            uuid.New(),
		AddressID:            uuid.New(),
	}
	f.seed.AddLicence(licence)
	return licence
}

func (f *fixture) seedChargeVersion(t *testing.T, licence *model.Licence, elements ...model.ChargeElement) *model.ChargeVersion {
	t.Helper()
	cv := &model.ChargeVersion{
		ID:        uuid.New(),
		LicenceID: licence.ID,
		StartDate: model.Date(2015, 4, 1),
		Elements:  elements,
	}
	f.seed.AddChargeVersion(cv)
	return cv
}

func irrigationElement() model.ChargeElement {
	return model.ChargeElement{
		ID:                       uuid.New(),
		Source:                   "unsupported",
		Season:                   "summer",
		Loss:                     "high",
		PurposeUseCode:           "420",
		PurposeUseName:           "Spray Irrigation - Storage",
		AuthorisedAnnualQuantity: decimal.RequireFromString("100"),
		AbstractionPeriod:        model.AllYear(),
	}
}

// generateFullYearBilled produces the settled full-year transactions a
// previous sent batch would have left behind for the licence.
func generateFullYearBilled(t *testing.T, licence *model.Licence, element model.ChargeElement, batchID, invoiceLicenceID uuid.UUID) []*model.Transaction {
	t.Helper()
	txns := transaction.Generate(transaction.Params{
		BatchType:     model.BatchTypeAnnual,
		FinancialYear: model.FinancialYear(2020),
		Licence:       licence,
		Element:       element,
		Periods: []model.AgreementPeriod{
			{DateRange: model.FinancialYear(2020)},
		},
	})
	for i, txn := range txns {
		txn.BatchID = batchID
		txn.InvoiceLicenceID = invoiceLicenceID
		txn.Status = model.TransactionStatusChargeCreated
		txn.ExternalID = fmt.Sprintf("engine-txn-%d", i)
	}
	return txns
}

func generalElement() model.ChargeElement {
	return model.ChargeElement{
		ID:                       uuid.New(),
		Source:                   "supported",
		Season:                   "all year",
		Loss:                     "low",
		PurposeUseCode:           "140",
		PurposeUseName:           "General Farming & Domestic",
		AuthorisedAnnualQuantity: decimal.RequireFromString("25.5"),
		AbstractionPeriod:        model.AllYear(),
	}
}
