package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"timesheet.service/internal/ports/repository"
)

// AdminHandler serves the privileged review routes.
type AdminHandler struct {
	Service TimesheetService
}

// DayEntries serves GET /admin/entries?date=YYYY-MM-DD across all
// consultants.
func (h *AdminHandler) DayEntries(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.Service.AdminDay(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	totals, err := h.Service.DayCalendar(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "entries": entries, "totals": totals})
}

// Approve serves POST /admin/entries/{id}/approve.
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid entry id", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Approve(r.Context(), entryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type rejectRequest struct {
	Notes string `json:"notes"`
}

// Reject serves POST /admin/entries/{id}/reject.
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid entry id", http.StatusBadRequest)
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Reject(r.Context(), entryID, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Unlock serves POST /admin/entries/{id}/unlock.
func (h *AdminHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid entry id", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Unlock(r.Context(), entryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ApproveAll serves POST /admin/days/{date}/approve-all with optional
// client/consultant query filters.
func (h *AdminHandler) ApproveAll(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := repository.ApprovalFilter{
		ClientID:     r.URL.Query().Get("client"),
		ConsultantID: r.URL.Query().Get("consultant"),
	}

	count, err := h.Service.ApproveAll(r.Context(), date, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "approved": count})
}

type calendarLockRequest struct {
	CalendarLocked bool `json:"calendarLocked"`
}

// GetCalendarLock serves GET /admin/calendar-lock.
func (h *AdminHandler) GetCalendarLock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, calendarLockRequest{CalendarLocked: h.Service.CalendarLocked(r.Context())})
}

// SetCalendarLock serves PUT /admin/calendar-lock.
func (h *AdminHandler) SetCalendarLock(w http.ResponseWriter, r *http.Request) {
	var req calendarLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetCalendarLocked(r.Context(), req.CalendarLocked); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
