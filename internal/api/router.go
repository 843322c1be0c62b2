package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fieldops.service/internal/api/handler"
	"fieldops.service/internal/app"
	"fieldops.service/pkg/logger"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
// Everything except health and authentication requires a signed-in session.
func NewRouter(services *app.Services) *mux.Router {
	h := &handler.Handler{Services: services}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	secured := api.NewRoute().Subrouter()
	secured.Use(h.RequireSession)

	secured.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	secured.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)

	secured.HandleFunc("/workers", h.ListWorkers).Methods(http.MethodGet)
	secured.HandleFunc("/workers", h.CreateWorker).Methods(http.MethodPost)
	secured.HandleFunc("/workers/{id}", h.GetWorker).Methods(http.MethodGet)
	secured.HandleFunc("/workers/{id}", h.UpdateWorker).Methods(http.MethodPatch)
	secured.HandleFunc("/workers/{id}", h.DeleteWorker).Methods(http.MethodDelete)
	secured.HandleFunc("/workers/{id}/toggle", h.ToggleWorker).Methods(http.MethodPost)

	secured.HandleFunc("/checkins", h.ListCheckIns).Methods(http.MethodGet)
	secured.HandleFunc("/checkins", h.RecordCheckIn).Methods(http.MethodPost)

	secured.HandleFunc("/customers", h.ListCustomers).Methods(http.MethodGet)
	secured.HandleFunc("/customers", h.CreateCustomer).Methods(http.MethodPost)
	secured.HandleFunc("/customers/{id}", h.GetCustomer).Methods(http.MethodGet)
	secured.HandleFunc("/customers/{id}", h.UpdateCustomer).Methods(http.MethodPatch)
	secured.HandleFunc("/customers/{id}", h.DeleteCustomer).Methods(http.MethodDelete)
	secured.HandleFunc("/customers/{id}/interactions", h.AddInteraction).Methods(http.MethodPost)
	secured.HandleFunc("/customers/{id}/projects", h.AddProject).Methods(http.MethodPost)

	secured.HandleFunc("/surveys", h.ListSurveys).Methods(http.MethodGet)
	secured.HandleFunc("/surveys", h.CreateSurvey).Methods(http.MethodPost)
	secured.HandleFunc("/surveys/{id}", h.GetSurvey).Methods(http.MethodGet)
	secured.HandleFunc("/surveys/{id}/status", h.UpdateSurveyStatus).Methods(http.MethodPut)
	secured.HandleFunc("/surveys/{id}/responses", h.ListResponses).Methods(http.MethodGet)
	secured.HandleFunc("/surveys/{id}/responses", h.SubmitResponse).Methods(http.MethodPost)
	secured.HandleFunc("/surveys/{id}/summary", h.SurveySummary).Methods(http.MethodGet)

	secured.HandleFunc("/reports", h.ListReports).Methods(http.MethodGet)
	secured.HandleFunc("/reports", h.RequestReport).Methods(http.MethodPost)
	secured.HandleFunc("/reports/{id}", h.GetReport).Methods(http.MethodGet)
	secured.HandleFunc("/reports/{id}/download", h.DownloadReport).Methods(http.MethodGet)

	secured.HandleFunc("/captures", h.ListCaptures).Methods(http.MethodGet)
	secured.HandleFunc("/captures", h.CreateCapture).Methods(http.MethodPost)

	return r
}

// NewHandler wraps the router with tracing and a logger that carries the
// trace id of each request.
func NewHandler(services *app.Services) http.Handler {
	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.EnrichContextWithLogger(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	return otelhttp.NewHandler(loggerMiddleware(NewRouter(services)), "api")
}
