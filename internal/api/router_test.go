package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"timesheet.service/internal/api"
	"timesheet.service/internal/core"
	"timesheet.service/internal/core/model"
	"timesheet.service/internal/ports/repository"
)

// fakeService records calls and returns canned values per method.
type fakeService struct {
	createFn     func(consultantID string, in core.EntryInput) (*model.TimeEntry, error)
	updateFn     func(consultantID string, id int64, in core.EntryInput, expected time.Time) (*model.TimeEntry, error)
	deleteCalls  []deleteCall
	deleteErr    error
	submitFn     func(consultantID string, date model.Date) (*core.SubmitResult, error)
	rejectFn     func(id int64, notes string) (*model.TimeEntry, error)
	approveAllFn func(date model.Date, filter repository.ApprovalFilter) (int64, error)
	lockFlag     bool
	setLockCalls []bool
}

type deleteCall struct {
	consultantID string
	id           int64
	privileged   bool
}

func (s *fakeService) Create(_ context.Context, consultantID string, in core.EntryInput) (*model.TimeEntry, error) {
	return s.createFn(consultantID, in)
}

func (s *fakeService) Update(_ context.Context, consultantID string, id int64, in core.EntryInput, expected time.Time) (*model.TimeEntry, error) {
	return s.updateFn(consultantID, id, in, expected)
}

func (s *fakeService) Delete(_ context.Context, consultantID string, id int64, privileged bool) error {
	s.deleteCalls = append(s.deleteCalls, deleteCall{consultantID, id, privileged})
	return s.deleteErr
}

func (s *fakeService) Day(_ context.Context, consultantID string, date model.Date) (*core.DayView, error) {
	return &core.DayView{Date: date, Editable: true}, nil
}

func (s *fakeService) Month(context.Context, string, int, time.Month) ([]model.TimeEntry, error) {
	return nil, nil
}

func (s *fakeService) SubmitDay(_ context.Context, consultantID string, date model.Date) (*core.SubmitResult, error) {
	return s.submitFn(consultantID, date)
}

func (s *fakeService) MonthCalendar(context.Context, string, int, time.Month) (model.MonthAggregate, error) {
	return model.MonthAggregate{}, nil
}

func (s *fakeService) AdminDay(context.Context, model.Date) ([]model.TimeEntry, error) {
	return nil, nil
}

func (s *fakeService) DayCalendar(context.Context, model.Date) (model.DayAggregate, error) {
	return model.DayAggregate{}, nil
}

func (s *fakeService) Approve(_ context.Context, id int64) (*model.TimeEntry, error) {
	return &model.TimeEntry{ID: id, Status: model.StatusApproved, Locked: true}, nil
}

func (s *fakeService) ApproveAll(_ context.Context, date model.Date, filter repository.ApprovalFilter) (int64, error) {
	return s.approveAllFn(date, filter)
}

func (s *fakeService) Reject(_ context.Context, id int64, notes string) (*model.TimeEntry, error) {
	return s.rejectFn(id, notes)
}

func (s *fakeService) Unlock(_ context.Context, id int64) (*model.TimeEntry, error) {
	return &model.TimeEntry{ID: id, Status: model.StatusOpen}, nil
}

func (s *fakeService) CalendarLocked(context.Context) bool { return s.lockFlag }

func (s *fakeService) SetCalendarLocked(_ context.Context, locked bool) error {
	s.setLockCalls = append(s.setLockCalls, locked)
	return nil
}

func serve(t *testing.T, svc *fakeService, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := api.NewRouter(svc, nil)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func consultantHeaders() map[string]string {
	return map[string]string{"X-Consultant-Id": "consultant-1"}
}

func adminHeaders() map[string]string {
	return map[string]string{"X-Consultant-Id": "admin-1", "X-Roles": "admin"}
}

func TestHealthNeedsNoIdentity(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingIdentityRejected(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodGet, "/api/v1/entries?date=2026-08-12", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateEntry(t *testing.T) {
	svc := &fakeService{
		createFn: func(consultantID string, in core.EntryInput) (*model.TimeEntry, error) {
			require.Equal(t, "consultant-1", consultantID)
			require.Equal(t, "acme", in.ClientID)
			return &model.TimeEntry{ID: 7, ConsultantID: consultantID, ClientID: in.ClientID, Status: model.StatusOpen}, nil
		},
	}

	body := `{"clientId":"acme","entryDate":"2026-08-12","clientHours":7.5,"notes":"onsite"}`
	rec := serve(t, svc, http.MethodPost, "/api/v1/entries", body, consultantHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry model.TimeEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	require.EqualValues(t, 7, entry.ID)
}

func TestCreateEntry_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &model.ValidationError{Problems: []string{"client id is required"}}, http.StatusBadRequest},
		{"locked day", core.ErrDayLocked, http.StatusConflict},
		{"transition", &core.TransitionError{Op: "edit", From: model.StatusSubmitted}, http.StatusConflict},
		{"not owner", core.ErrNotOwner, http.StatusForbidden},
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"stale update", repository.ErrConflict, http.StatusPreconditionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				createFn: func(string, core.EntryInput) (*model.TimeEntry, error) {
					return nil, tt.err
				},
			}
			rec := serve(t, svc, http.MethodPost, "/api/v1/entries", `{"clientId":"acme"}`, consultantHeaders())
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestUpdatePassesOptimisticTimestamp(t *testing.T) {
	expected := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	svc := &fakeService{
		updateFn: func(consultantID string, id int64, in core.EntryInput, got time.Time) (*model.TimeEntry, error) {
			require.EqualValues(t, 7, id)
			require.True(t, expected.Equal(got))
			return &model.TimeEntry{ID: id}, nil
		},
	}

	body := `{"clientId":"acme","entryDate":"2026-08-12","clientHours":7.5,"updatedOn":"2026-08-12T10:00:00Z"}`
	rec := serve(t, svc, http.MethodPut, "/api/v1/entries/7", body, consultantHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeletePrivilegeFlag(t *testing.T) {
	svc := &fakeService{}
	rec := serve(t, svc, http.MethodDelete, "/api/v1/entries/7", "", consultantHeaders())
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, svc, http.MethodDelete, "/api/v1/entries/8", "", adminHeaders())
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.Len(t, svc.deleteCalls, 2)
	require.False(t, svc.deleteCalls[0].privileged)
	require.True(t, svc.deleteCalls[1].privileged)
}

func TestSubmitDay(t *testing.T) {
	svc := &fakeService{
		submitFn: func(consultantID string, date model.Date) (*core.SubmitResult, error) {
			require.Equal(t, "2026-08-12", date.String())
			return &core.SubmitResult{Date: date, Count: 3, EntryIDs: []int64{1, 2, 3}}, nil
		},
	}

	rec := serve(t, svc, http.MethodPost, "/api/v1/days/2026-08-12/submit", "", consultantHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, 3, result.Count)
}

func TestSubmitDay_BadDate(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodPost, "/api/v1/days/notadate/submit", "", consultantHeaders())
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesNeedPrivilege(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodPost, "/api/v1/admin/entries/7/approve", "", consultantHeaders())
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, &fakeService{}, http.MethodPost, "/api/v1/admin/entries/7/approve", "", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReject(t *testing.T) {
	svc := &fakeService{
		rejectFn: func(id int64, notes string) (*model.TimeEntry, error) {
			require.EqualValues(t, 7, id)
			require.Equal(t, "Missing client code", notes)
			rejected := notes
			return &model.TimeEntry{ID: id, Status: model.StatusRejected, RejectionNotes: &rejected}, nil
		},
	}

	body := `{"notes":"Missing client code"}`
	rec := serve(t, svc, http.MethodPost, "/api/v1/admin/entries/7/reject", body, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestApproveAllWithFilters(t *testing.T) {
	svc := &fakeService{
		approveAllFn: func(date model.Date, filter repository.ApprovalFilter) (int64, error) {
			require.Equal(t, "2026-08-12", date.String())
			require.Equal(t, "acme", filter.ClientID)
			require.Equal(t, "consultant-1", filter.ConsultantID)
			return 4, nil
		},
	}

	rec := serve(t, svc, http.MethodPost,
		"/api/v1/admin/days/2026-08-12/approve-all?client=acme&consultant=consultant-1", "", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.EqualValues(t, 4, result["approved"])
}

func TestCalendarLockRoundTrip(t *testing.T) {
	svc := &fakeService{lockFlag: true}

	rec := serve(t, svc, http.MethodGet, "/api/v1/admin/calendar-lock", "", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got["calendarLocked"])

	rec = serve(t, svc, http.MethodPut, "/api/v1/admin/calendar-lock", `{"calendarLocked":false}`, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []bool{false}, svc.setLockCalls)
}
