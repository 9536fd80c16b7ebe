package http

import (
	"net/http"

	"cheflow-backend/internal/handlers"
	"cheflow-backend/internal/middleware"
	"cheflow-backend/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	checklistHandler *handlers.ChecklistHandler,
	deliveryHandler *handlers.DeliveryHandler,
	routeHandler *handlers.RouteHandler,
	contractHandler *handlers.ContractHandler,
	quoteHandler *handlers.QuoteHandler,
	catalogHandler *handlers.CatalogHandler,
	vehicleHandler *handlers.VehicleHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	manage := authMiddleware.RequireRole(models.RoleAdmin, models.RoleDeliveryManager, models.RoleSalesManager)
	verify := authMiddleware.RequireRole(models.RoleAdmin, models.RoleChecklistVerifier, models.RoleDeliveryManager)
	admin := authMiddleware.RequireRole(models.RoleAdmin)

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", admin(http.HandlerFunc(authHandler.CreateUser)).ServeHTTP).Methods("POST")

	// Protected API routes - Checklists
	checklistsAPI := r.PathPrefix("/api/checklists").Subrouter()
	checklistsAPI.Use(authMiddleware.Authenticate)
	checklistsAPI.HandleFunc("", checklistHandler.Create).Methods("POST")
	checklistsAPI.HandleFunc("", checklistHandler.ListByDate).Methods("GET")
	checklistsAPI.HandleFunc("/{id}", checklistHandler.Get).Methods("GET")
	checklistsAPI.HandleFunc("/{id}/items", checklistHandler.Items).Methods("GET")
	checklistsAPI.HandleFunc("/{id}/items", checklistHandler.AddItem).Methods("POST")
	checklistsAPI.HandleFunc("/{id}/history", checklistHandler.History).Methods("GET")
	checklistsAPI.HandleFunc("/{id}/progress", checklistHandler.Progress).Methods("GET")
	checklistsAPI.HandleFunc("/{id}/finalize", verify(http.HandlerFunc(checklistHandler.Finalize)).ServeHTTP).Methods("POST")
	checklistsAPI.HandleFunc("/{id}/duplicate", checklistHandler.Duplicate).Methods("POST")
	checklistsAPI.HandleFunc("/{id}/pdf", checklistHandler.PrintSheet).Methods("GET")
	checklistsAPI.HandleFunc("/items/{item_id}/validate", verify(http.HandlerFunc(checklistHandler.ValidateItem)).ServeHTTP).Methods("POST")
	checklistsAPI.HandleFunc("/items/{item_id}", checklistHandler.UpdateItem).Methods("PUT")
	checklistsAPI.HandleFunc("/items/{item_id}", checklistHandler.DeleteItem).Methods("DELETE")

	// Protected API routes - Deliveries
	deliveriesAPI := r.PathPrefix("/api/deliveries").Subrouter()
	deliveriesAPI.Use(authMiddleware.Authenticate)
	deliveriesAPI.HandleFunc("", deliveryHandler.Upsert).Methods("POST")
	deliveriesAPI.HandleFunc("", deliveryHandler.DayBoard).Methods("GET")
	deliveriesAPI.HandleFunc("/merge", manage(http.HandlerFunc(deliveryHandler.Merge)).ServeHTTP).Methods("POST")
	deliveriesAPI.HandleFunc("/{id}", deliveryHandler.Get).Methods("GET")
	deliveriesAPI.HandleFunc("/{id}/status", deliveryHandler.UpdateStatus).Methods("PATCH")
	deliveriesAPI.HandleFunc("/{id}/pickup", deliveryHandler.ConvertToPickup).Methods("POST")
	deliveriesAPI.HandleFunc("/{id}/pickups", deliveryHandler.ListPickups).Methods("GET")

	// Protected API routes - Routes
	routesAPI := r.PathPrefix("/api/routes").Subrouter()
	routesAPI.Use(authMiddleware.Authenticate)
	routesAPI.HandleFunc("", manage(http.HandlerFunc(routeHandler.Create)).ServeHTTP).Methods("POST")
	routesAPI.HandleFunc("", routeHandler.ListByDate).Methods("GET")
	routesAPI.HandleFunc("/{id}", routeHandler.Get).Methods("GET")
	routesAPI.HandleFunc("/{id}", manage(http.HandlerFunc(routeHandler.Delete)).ServeHTTP).Methods("DELETE")
	routesAPI.HandleFunc("/{id}/deliveries", routeHandler.Assignments).Methods("GET")
	routesAPI.HandleFunc("/{id}/deliveries", routeHandler.AddDelivery).Methods("POST")
	routesAPI.HandleFunc("/{id}/deliveries/{delivery_id}", routeHandler.RemoveDelivery).Methods("DELETE")
	routesAPI.HandleFunc("/{id}/reorder", routeHandler.Reorder).Methods("POST")
	routesAPI.HandleFunc("/{id}/start", routeHandler.Start).Methods("POST")
	routesAPI.HandleFunc("/{id}/finish", routeHandler.Finish).Methods("POST")
	routesAPI.HandleFunc("/{id}/pdf", routeHandler.PrintSheet).Methods("GET")

	// Protected API routes - Contracts
	contractsAPI := r.PathPrefix("/api/contracts").Subrouter()
	contractsAPI.Use(authMiddleware.Authenticate)
	contractsAPI.HandleFunc("", contractHandler.Create).Methods("POST")
	contractsAPI.HandleFunc("", contractHandler.ListByDate).Methods("GET")
	contractsAPI.HandleFunc("/repair-links", admin(http.HandlerFunc(contractHandler.RepairLinks)).ServeHTTP).Methods("POST")
	contractsAPI.HandleFunc("/{id}", contractHandler.Get).Methods("GET")
	contractsAPI.HandleFunc("/{id}/history", contractHandler.History).Methods("GET")
	contractsAPI.HandleFunc("/{id}/start", contractHandler.Start).Methods("POST")
	contractsAPI.HandleFunc("/{id}/finish", contractHandler.Finish).Methods("POST")
	contractsAPI.HandleFunc("/{id}/cancel", manage(http.HandlerFunc(contractHandler.Cancel)).ServeHTTP).Methods("POST")
	contractsAPI.HandleFunc("/{id}/verify", contractHandler.VerifyConsistency).Methods("GET")

	// Protected API routes - Quotes
	quotesAPI := r.PathPrefix("/api/quotes").Subrouter()
	quotesAPI.Use(authMiddleware.Authenticate)
	quotesAPI.HandleFunc("", quoteHandler.Create).Methods("POST")
	quotesAPI.HandleFunc("", quoteHandler.List).Methods("GET")
	quotesAPI.HandleFunc("/{id}", quoteHandler.Get).Methods("GET")
	quotesAPI.HandleFunc("/{id}/duplicate", quoteHandler.Duplicate).Methods("POST")
	quotesAPI.HandleFunc("/{id}/send", quoteHandler.Send).Methods("POST")
	quotesAPI.HandleFunc("/{id}/decide", quoteHandler.Decide).Methods("POST")

	// Protected API routes - Catalog
	catalogAPI := r.PathPrefix("/api/catalog").Subrouter()
	catalogAPI.Use(authMiddleware.Authenticate)
	catalogAPI.HandleFunc("/categories", catalogHandler.ListCategories).Methods("GET")
	catalogAPI.HandleFunc("/categories", manage(http.HandlerFunc(catalogHandler.CreateCategory)).ServeHTTP).Methods("POST")
	catalogAPI.HandleFunc("/objects", catalogHandler.ListObjects).Methods("GET")
	catalogAPI.HandleFunc("/objects", manage(http.HandlerFunc(catalogHandler.CreateObject)).ServeHTTP).Methods("POST")

	// Protected API routes - Vehicles
	vehiclesAPI := r.PathPrefix("/api/vehicles").Subrouter()
	vehiclesAPI.Use(authMiddleware.Authenticate)
	vehiclesAPI.HandleFunc("", vehicleHandler.List).Methods("GET")
	vehiclesAPI.HandleFunc("", manage(http.HandlerFunc(vehicleHandler.Create)).ServeHTTP).Methods("POST")
	vehiclesAPI.HandleFunc("/{id}/status", vehicleHandler.UpdateStatus).Methods("PATCH")

	// Health endpoint (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
