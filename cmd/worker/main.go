// The billing worker hosts the batch pipeline: it polls the Temporal
// task queue and runs every pipeline activity against postgres and the
// external charge engine.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/business/batch"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/business/rebill"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/business/reconcile"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/config"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/engine"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/store/postgres"
	"github.com/DEFRA/water-abstraction-service-sub009/billing/workflow"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("postgres ping failed", zap.Error(err))
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHostPort,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		logger.Fatal("failed to connect to temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	st := postgres.New(pool)
	engineClient := engine.NewClient(cfg.ChargeEngineURL, &http.Client{Timeout: 30 * time.Second})
	reconciler := reconcile.NewDecorator(engineClient, st)
	starter := workflow.NewStarter(temporalClient, cfg.TaskQueue)
	business := batch.NewBusiness(st, engineClient, reconciler, starter)
	rebiller := rebill.NewCoordinator(engineClient, st, logger)

	workflow.SetActivityDependencies(business, rebiller)

	w := worker.New(temporalClient, cfg.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflow.ProcessBatch)
	w.RegisterWorkflow(workflow.RebillInvoice)
	w.RegisterActivity(workflow.BeginProcessingActivity)
	w.RegisterActivity(workflow.MatchTwoPartTariffActivity)
	w.RegisterActivity(workflow.MarkReviewActivity)
	w.RegisterActivity(workflow.ResumeProcessingActivity)
	w.RegisterActivity(workflow.ListChargeVersionYearsActivity)
	w.RegisterActivity(workflow.ProcessChargeVersionYearActivity)
	w.RegisterActivity(workflow.ListCandidateTransactionsActivity)
	w.RegisterActivity(workflow.SubmitTransactionActivity)
	w.RegisterActivity(workflow.HasTransactionsActivity)
	w.RegisterActivity(workflow.GenerateBillRunActivity)
	w.RegisterActivity(workflow.RefreshTotalsActivity)
	w.RegisterActivity(workflow.MarkReadyActivity)
	w.RegisterActivity(workflow.RebillInvoiceActivity)
	w.RegisterActivity(workflow.SetBatchErrorActivity)

	logger.Info("billing worker starting",
		zap.String("task_queue", cfg.TaskQueue),
		zap.String("temporal", cfg.TemporalHostPort))

	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
