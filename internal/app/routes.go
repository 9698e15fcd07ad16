package app

import (
	"github.com/gorilla/mux"
	"github.com/presu/presu/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Tenant management
	r.HandleFunc("/api/tenant/current", deps.TenantHandler.CurrentTenant).Methods("GET")
	r.HandleFunc("/api/tenant/current", deps.TenantHandler.UpdateCurrentTenant).Methods("PUT")
	r.HandleFunc("/api/tenant", deps.TenantHandler.CreateTenant).Methods("POST")
	r.HandleFunc("/api/tenant", deps.TenantHandler.GetAvailableTenants).Methods("GET")

	// Inflation rates
	r.HandleFunc("/api/indexation/rate", deps.IndexationHandler.GetRates).Queries("year", "{year}").Methods("GET")
	r.HandleFunc("/api/indexation/rate", deps.IndexationHandler.SetRate).Methods("PUT")

	// Budget grid
	r.HandleFunc("/api/budget", deps.BudgetHandler.GetGrid).Queries("year", "{year}").Methods("GET")
	r.HandleFunc("/api/budget/cell", deps.BudgetHandler.EditCell).Methods("PUT")
	r.HandleFunc("/api/budget/category", deps.BudgetHandler.CreateCategory).Methods("POST")
	r.HandleFunc("/api/budget/category/{id}", deps.BudgetHandler.UpdateCategory).Methods("PUT")
	r.HandleFunc("/api/budget/category/{id}", deps.BudgetHandler.DeleteCategory).Methods("DELETE")
	r.HandleFunc("/api/budget/concept", deps.BudgetHandler.CreateConcept).Methods("POST")
	r.HandleFunc("/api/budget/concept/{id}", deps.BudgetHandler.UpdateConcept).Methods("PUT")
	r.HandleFunc("/api/budget/concept/{id}", deps.BudgetHandler.DeleteConcept).Methods("DELETE")

	// Cashflow grid
	r.HandleFunc("/api/cashflow", deps.CashflowHandler.GetGrid).Queries("year", "{year}").Methods("GET")
	r.HandleFunc("/api/cashflow/cell", deps.CashflowHandler.EditCell).Methods("PUT")
	r.HandleFunc("/api/cashflow/section", deps.CashflowHandler.CreateSection).Methods("POST")
	r.HandleFunc("/api/cashflow/section/{id}", deps.CashflowHandler.UpdateSection).Methods("PUT")
	r.HandleFunc("/api/cashflow/section/{id}", deps.CashflowHandler.DeleteSection).Methods("DELETE")
	r.HandleFunc("/api/cashflow/item", deps.CashflowHandler.CreateItem).Methods("POST")
	r.HandleFunc("/api/cashflow/item/{id}", deps.CashflowHandler.UpdateItem).Methods("PUT")
	r.HandleFunc("/api/cashflow/item/{id}", deps.CashflowHandler.DeleteItem).Methods("DELETE")

	// Payments
	r.HandleFunc("/api/payments/preference", deps.PaymentsHandler.CreatePreference).Methods("POST")

	// Documents
	r.HandleFunc("/api/document", deps.DocumentHandler.Upload).Methods("PUT")
	r.HandleFunc("/api/document", deps.DocumentHandler.List).Methods("GET")
	r.HandleFunc("/api/document/{id}", deps.DocumentHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/document/{id}/url", deps.DocumentHandler.SignedURL).Methods("GET")
	r.HandleFunc("/api/document/{id}/download", deps.DocumentHandler.Download).Methods("GET")

	// Spreadsheets
	r.HandleFunc("/api/sheet/budget/import", deps.SheetHandler.ImportBudget).Queries("year", "{year}").Methods("POST")
	r.HandleFunc("/api/sheet/budget/export", deps.SheetHandler.ExportBudget).Queries("year", "{year}").Methods("GET")
	r.HandleFunc("/api/sheet/budget/export/google", deps.SheetHandler.ExportBudgetToGoogle).Methods("POST")

	// Notifications
	r.HandleFunc("/api/notification", deps.NotificationHandler.List).Methods("GET")
	r.HandleFunc("/api/notification/count", deps.NotificationHandler.CountUnread).Methods("GET")
	r.HandleFunc("/api/notification/read", deps.NotificationHandler.MarkAllRead).Methods("POST")
}
