package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"timesheet.service/internal/api/handler"
	"timesheet.service/internal/api/middleware"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(service handler.TimesheetService, limiter *middleware.RateLimiter) *mux.Router {

	entryHandler := &handler.EntryHandler{Service: service}
	adminHandler := &handler.AdminHandler{Service: service}

	r := mux.NewRouter()

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	authed := v1.NewRoute().Subrouter()
	authed.Use(middleware.WithIdentity)
	if limiter != nil {
		authed.Use(limiter.Middleware)
	}

	authed.HandleFunc("/entries", entryHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/entries", entryHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/entries/{id:[0-9]+}", entryHandler.Update).Methods(http.MethodPut)
	authed.HandleFunc("/entries/{id:[0-9]+}", entryHandler.Delete).Methods(http.MethodDelete)
	authed.HandleFunc("/days/{date}/submit", entryHandler.SubmitDay).Methods(http.MethodPost)
	authed.HandleFunc("/calendar", entryHandler.Calendar).Methods(http.MethodGet)

	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequirePrivileged)
	admin.HandleFunc("/entries", adminHandler.DayEntries).Methods(http.MethodGet)
	admin.HandleFunc("/entries/{id:[0-9]+}/approve", adminHandler.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/entries/{id:[0-9]+}/reject", adminHandler.Reject).Methods(http.MethodPost)
	admin.HandleFunc("/entries/{id:[0-9]+}/unlock", adminHandler.Unlock).Methods(http.MethodPost)
	admin.HandleFunc("/days/{date}/approve-all", adminHandler.ApproveAll).Methods(http.MethodPost)
	admin.HandleFunc("/calendar-lock", adminHandler.GetCalendarLock).Methods(http.MethodGet)
	admin.HandleFunc("/calendar-lock", adminHandler.SetCalendarLock).Methods(http.MethodPut)

	return r
}
