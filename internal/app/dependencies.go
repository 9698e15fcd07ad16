package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/presu/presu/internal/config"
	"github.com/presu/presu/internal/event_bus"
	"github.com/presu/presu/internal/utils"
	"github.com/presu/presu/pkg/budget"
	"github.com/presu/presu/pkg/cashflow"
	"github.com/presu/presu/pkg/document"
	"github.com/presu/presu/pkg/indexation"
	"github.com/presu/presu/pkg/notification"
	"github.com/presu/presu/pkg/payments"
	"github.com/presu/presu/pkg/sheet"
	"github.com/presu/presu/pkg/tenant"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	TenantRepo    tenant.Repo
	TenantService tenant.Service
	TenantHandler *tenant.Handler

	IndexationRepo    indexation.Repository
	IndexationService *indexation.ServiceImpl
	IndexationHandler *indexation.Handler

	BudgetRepo    budget.Repository
	BudgetService *budget.ServiceImpl
	BudgetHandler *budget.Handler

	CashflowRepo    cashflow.Repository
	CashflowService *cashflow.ServiceImpl
	CashflowHandler *cashflow.Handler

	PaymentsClient  payments.Client
	PaymentsService *payments.ServiceImpl
	PaymentsHandler *payments.Handler

	DocumentRepo    document.Repository
	DocumentStore   document.Store
	DocumentSigner  *document.URLSigner
	DocumentService *document.ServiceImpl
	DocumentHandler *document.Handler

	SheetExporter sheet.Exporter
	SheetService  *sheet.ServiceImpl
	SheetHandler  *sheet.Handler

	NotificationRepo    notification.Repository
	NotificationService *notification.ServiceImpl
	NotificationHandler *notification.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.TenantRepo = tenant.NewRepo(db)
	deps.TenantService = tenant.NewService(deps.TenantRepo)
	deps.TenantHandler = tenant.NewHandler(deps.TenantService)

	deps.IndexationRepo = indexation.NewRepository(db)
	deps.IndexationService = indexation.NewService(deps.IndexationRepo)
	deps.IndexationHandler = indexation.NewHandler(deps.IndexationService)

	deps.BudgetRepo = budget.NewRepository(db)
	deps.BudgetService = budget.NewService(deps.BudgetRepo, deps.IndexationService, deps.EventBus, deps.Clock)
	deps.BudgetHandler = budget.NewHandler(deps.BudgetService)

	deps.CashflowRepo = cashflow.NewRepository(db)
	deps.CashflowService = cashflow.NewService(deps.CashflowRepo)
	deps.CashflowHandler = cashflow.NewHandler(deps.CashflowService)

	deps.PaymentsClient = payments.NewClient(payments.Config{
		AccessToken: cfg.Payments.AccessToken,
		BaseURL:     cfg.Payments.BaseUrl,
		Sandbox:     cfg.Payments.Sandbox,
	})
	deps.PaymentsService = payments.NewService(deps.PaymentsClient, deps.EventBus, cfg.Payments.Sandbox)
	deps.PaymentsHandler = payments.NewHandler(deps.PaymentsService)

	store, err := document.NewFilesystemStore(cfg.Storage.Dir)
	if err != nil {
		return nil, err
	}
	deps.DocumentRepo = document.NewRepository(db)
	deps.DocumentStore = store
	deps.DocumentSigner = document.NewURLSigner(cfg.Storage.SignatureSecret, deps.Clock)
	deps.DocumentService = document.NewService(deps.DocumentRepo, deps.DocumentStore, deps.EventBus, deps.Clock)
	deps.DocumentHandler = document.NewHandler(deps.DocumentService, deps.DocumentSigner)

	deps.SheetExporter = sheet.NewGoogleExporter(sheet.GoogleConfig{
		AccessToken:   cfg.Sheets.AccessToken,
		SpreadsheetId: cfg.Sheets.SpreadsheetId,
	})
	deps.SheetService = sheet.NewService(deps.BudgetService, deps.SheetExporter)
	deps.SheetHandler = sheet.NewHandler(deps.SheetService)

	deps.NotificationRepo = notification.NewRepository(db)
	deps.NotificationService = notification.NewService(deps.NotificationRepo, deps.EventBus, deps.Clock)
	deps.NotificationHandler = notification.NewHandler(deps.NotificationService)

	return deps, nil
}
