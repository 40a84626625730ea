package routes

import (
	"net/http"

	"github.com/campwatch/campwatch-api/internal/authz"
	"github.com/campwatch/campwatch-api/internal/handlers"
	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/gorilla/mux"
)

// NewRouter sets up the API routes
func NewRouter(
	auth *handlers.AuthHandler,
	alertRules *handlers.AlertRuleHandler,
	availability *handlers.AvailabilityHandler,
	scrape *handlers.ScrapeHandler,
	notifications *handlers.NotificationHandler,
	dashboard *handlers.DashboardHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/signup", auth.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/api/login", auth.Login).Methods(http.MethodPost)

	// Public dashboard
	router.HandleFunc("/dashboard", dashboard.Render).Methods(http.MethodGet)

	// Authenticated API
	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware)

	api.HandleFunc("/availability", availability.List).Methods(http.MethodGet)
	api.HandleFunc("/calendar", dashboard.Calendar).Methods(http.MethodGet)

	api.HandleFunc("/alert-rules", alertRules.Create).Methods(http.MethodPost)
	api.HandleFunc("/alert-rules", alertRules.List).Methods(http.MethodGet)
	api.HandleFunc("/alert-rules/{id}", alertRules.Get).Methods(http.MethodGet)
	api.HandleFunc("/alert-rules/{id}", alertRules.Update).Methods(http.MethodPut)
	api.HandleFunc("/alert-rules/{id}", alertRules.Deactivate).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", notifications.List).Methods(http.MethodGet)
	api.HandleFunc("/scrape/results", scrape.Results).Methods(http.MethodGet)

	// Manual scrape trigger requires admin
	api.Handle("/scrape/{park}",
		authz.RequireRoleHandler(models.RoleAdmin, http.HandlerFunc(scrape.Trigger)),
	).Methods(http.MethodPost)

	return router
}
