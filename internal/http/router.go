package http

import (
	"net/http"

	"jollybaba-backend/internal/handlers"
	"jollybaba-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	technicianHandler *handlers.TechnicianHandler,
	ticketHandler *handlers.TicketHandler,
	inventoryHandler *handlers.InventoryHandler,
	khatabookHandler *handlers.KhatabookHandler,
	uploadHandler *handlers.UploadHandler,
	healthHandler *handlers.HealthHandler,
	monitoringHandler *handlers.MonitoringHandler,
	authMiddleware *middleware.AuthMiddleware,
	uploadsDir string,
) *mux.Router {
	r := mux.NewRouter()

	// Uploaded files are public by URL
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	// Public API routes - Authentication
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/google", authHandler.GoogleLogin).Methods("POST")

	// Protected API routes - current account
	meAPI := r.PathPrefix("/api/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	// Protected API routes - Technicians
	techAPI := r.PathPrefix("/api/technicians").Subrouter()
	techAPI.Use(authMiddleware.Authenticate)
	adminOnly := authMiddleware.RequireRole("admin")
	techAPI.HandleFunc("/public", technicianHandler.ListPublic).Methods("GET")
	techAPI.Handle("", adminOnly(http.HandlerFunc(technicianHandler.List))).Methods("GET")
	techAPI.Handle("", adminOnly(http.HandlerFunc(technicianHandler.Create))).Methods("POST")
	techAPI.Handle("/{id:[0-9]+}", adminOnly(http.HandlerFunc(technicianHandler.Delete))).Methods("DELETE")

	// Protected API routes - Tickets
	ticketsAPI := r.PathPrefix("/api/tickets").Subrouter()
	ticketsAPI.Use(authMiddleware.Authenticate)
	ticketsAPI.HandleFunc("", ticketHandler.List).Methods("GET")
	ticketsAPI.HandleFunc("", ticketHandler.Create).Methods("POST")
	ticketsAPI.HandleFunc("/{id:[0-9]+}", ticketHandler.Update).Methods("PATCH", "PUT")
	ticketsAPI.HandleFunc("/{id:[0-9]+}/update", ticketHandler.UpdateMultipart).Methods("POST")
	ticketsAPI.HandleFunc("/{id:[0-9]+}/repaired-photo", ticketHandler.RepairedPhoto).Methods("POST")

	// Protected API routes - generic uploads
	uploadAPI := r.PathPrefix("/api/upload").Subrouter()
	uploadAPI.Use(authMiddleware.Authenticate)
	uploadAPI.HandleFunc("", uploadHandler.Upload).Methods("POST")

	// Inventory and khatabook run on the shop LAN without tokens; the
	// counter devices share no accounts.
	inventoryAPI := r.PathPrefix("/api/inventory").Subrouter()
	inventoryAPI.HandleFunc("", inventoryHandler.List).Methods("GET")
	inventoryAPI.HandleFunc("", inventoryHandler.Create).Methods("POST")
	inventoryAPI.HandleFunc("/add-multiple", inventoryHandler.CreateBatch).Methods("POST")
	inventoryAPI.HandleFunc("/export.csv", inventoryHandler.ExportCSV).Methods("GET")
	inventoryAPI.HandleFunc("/sell-multiple", inventoryHandler.SellMultiple).Methods("POST")
	inventoryAPI.HandleFunc("/{srNo:[0-9]+}", inventoryHandler.Update).Methods("PATCH", "PUT")
	inventoryAPI.HandleFunc("/{srNo:[0-9]+}/update", inventoryHandler.Update).Methods("POST")
	inventoryAPI.HandleFunc("/{srNo:[0-9]+}/remarks", inventoryHandler.UpdateRemarks).Methods("PATCH")
	inventoryAPI.HandleFunc("/{srNo:[0-9]+}/sell", inventoryHandler.Sell).Methods("POST")
	inventoryAPI.HandleFunc("/{srNo:[0-9]+}/make-available", inventoryHandler.MakeAvailable).Methods("POST")

	r.HandleFunc("/api/customers/search", inventoryHandler.SearchCustomers).Methods("GET")
	r.HandleFunc("/api/vendors/search", inventoryHandler.SearchVendors).Methods("GET")

	khatabookAPI := r.PathPrefix("/api/khatabook").Subrouter()
	khatabookAPI.HandleFunc("", khatabookHandler.List).Methods("GET")
	khatabookAPI.HandleFunc("", khatabookHandler.Create).Methods("POST")
	khatabookAPI.HandleFunc("/export", khatabookHandler.ExportXLSX).Methods("GET")
	khatabookAPI.HandleFunc("/export.pdf", khatabookHandler.ExportPDF).Methods("GET")
	khatabookAPI.HandleFunc("/{id:[0-9]+}", khatabookHandler.Update).Methods("PATCH", "PUT")
	khatabookAPI.HandleFunc("/{id:[0-9]+}", khatabookHandler.Delete).Methods("DELETE")

	// Protected API routes - monitoring dashboard
	monitoringAPI := r.PathPrefix("/api/monitoring").Subrouter()
	monitoringAPI.Use(authMiddleware.Authenticate)
	monitoringAPI.Handle("/system", adminOnly(http.HandlerFunc(monitoringHandler.SystemStats))).Methods("GET")

	// Health and metrics
	r.HandleFunc("/health", healthHandler.Liveness).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.Readiness).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}
