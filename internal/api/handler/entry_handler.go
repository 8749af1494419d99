package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"timesheet.service/internal/api/middleware"
	"timesheet.service/internal/core"
)

// EntryHandler serves the consultant-facing entry routes.
type EntryHandler struct {
	Service TimesheetService
}

type entryRequest struct {
	core.EntryInput
	// UpdatedOn, when set, must match the stored row for an update to
	// apply.
	UpdatedOn time.Time `json:"updatedOn,omitempty"`
}

// List serves GET /entries?date=YYYY-MM-DD or ?month=YYYY-MM for the acting
// consultant.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	if month := r.URL.Query().Get("month"); month != "" {
		year, m, err := parseMonthParam(month)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		entries, err := h.Service.Month(r.Context(), id.ConsultantID, year, m)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	day, err := h.Service.Day(r.Context(), id.ConsultantID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// Create serves POST /entries.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Create(r.Context(), id.ConsultantID, req.EntryInput)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Update serves PUT /entries/{id}.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid entry id", http.StatusBadRequest)
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Update(r.Context(), id.ConsultantID, entryID, req.EntryInput, req.UpdatedOn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete serves DELETE /entries/{id}. Privileged identities may delete
// entries they do not own, approved ones included.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid entry id", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(r.Context(), id.ConsultantID, entryID, id.Privileged()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitDay serves POST /days/{date}/submit.
func (h *EntryHandler) SubmitDay(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	date, err := parseDateParam(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Service.SubmitDay(r.Context(), id.ConsultantID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Calendar serves GET /calendar?month=YYYY-MM, the per-day per-status hour
// totals rendered by the month view.
func (h *EntryHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	year, month, err := parseMonthParam(r.URL.Query().Get("month"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	agg, err := h.Service.MonthCalendar(r.Context(), id.ConsultantID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": r.URL.Query().Get("month"), "days": agg})
}
