package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewshift/payout/api"
	"github.com/brewshift/payout/payroll"
	"github.com/brewshift/payout/payroll/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// stubEvents serves canned events and records the requested window.
type stubEvents struct {
	events  []payroll.ShiftEvent
	err     error
	timeMin time.Time
	timeMax time.Time
}

func (s *stubEvents) FetchEvents(_ context.Context, timeMin, timeMax time.Time) ([]payroll.ShiftEvent, error) {
	s.timeMin, s.timeMax = timeMin, timeMax
	return s.events, s.err
}

func testConfig() api.Config {
	return api.Config{
		OpenTime:   "08:00",
		SwitchTime: "14:00",
		CloseTime:  "21:00",
	}
}

func newTestServer(t *testing.T, dir payroll.Directory, events api.EventSource) *httptest.Server {
	h, err := api.NewHandler(dir, events, testConfig())
	require.NoError(t, err)
	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func seededDirectory() *store.Memory {
	return store.NewMemory(
		payroll.Employee{
			Name:     "Alice",
			Aliases:  []string{"alice@shop.test"},
			BaseRate: payroll.MustParseDecimal("50"),
		},
		payroll.Employee{
			Name:     "Bob",
			Aliases:  []string{"bob@shop.test"},
			BaseRate: payroll.MustParseDecimal("50"),
		},
	)
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func TestEmployees_ListAndReplace(t *testing.T) {
	srv := newTestServer(t, seededDirectory(), nil)

	var listed []api.EmployeeDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/employees", nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listed, 2)
	assert.Equal(t, "Alice", listed[0].Name)
	assert.Equal(t, 50.0, listed[0].BaseRate)

	replace := api.ReplaceEmployeesRequest{Employees: []api.EmployeeDTO{
		{Name: "Cara", Aliases: []string{"cara@shop.test"}, BaseRate: 55, SwitchOverride: "15:00"},
	}}
	var saved []api.EmployeeDTO
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/employees", replace, &saved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, saved, 1)
	assert.Equal(t, "Cara", saved[0].Name)
	assert.Equal(t, "15:00", saved[0].SwitchOverride)

	// The replace is a full overwrite: Alice and Bob are gone.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/employees", nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listed, 1)
}

func TestReplaceEmployees_Validation(t *testing.T) {
	tests := []struct {
		name      string
		employees []api.EmployeeDTO
	}{
		{"empty name", []api.EmployeeDTO{{Name: "  ", BaseRate: 50}}},
		{"duplicate name ignoring case", []api.EmployeeDTO{
			{Name: "Alice", BaseRate: 50},
			{Name: "ALICE", BaseRate: 50},
		}},
		{"negative rate", []api.EmployeeDTO{{Name: "Alice", BaseRate: -1}}},
		{"bad switch override", []api.EmployeeDTO{{Name: "Alice", BaseRate: 50, SwitchOverride: "late"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, seededDirectory(), nil)

			var errBody api.ErrorResponse
			resp := doJSON(t, http.MethodPut, srv.URL+"/api/employees",
				api.ReplaceEmployeesRequest{Employees: tc.employees}, &errBody)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, errBody.Error)

			// Rejected writes must not touch the stored list.
			var listed []api.EmployeeDTO
			doJSON(t, http.MethodGet, srv.URL+"/api/employees", nil, &listed)
			assert.Len(t, listed, 2)
		})
	}
}

// =============================================================================
// PAYOUT COMPUTATION
// =============================================================================

func TestComputePayouts_ShiftBased_InlineEvents(t *testing.T) {
	// GIVEN: Alice opens and Bob closes on one day, with a $60 opening pool
	//        and a $40 closing pool
	// WHEN: computing shift_based payouts with events supplied inline
	// THEN: each takes their window's full pool plus one flat base payment

	srv := newTestServer(t, seededDirectory(), nil)

	req := api.PayoutRequest{
		Mode: "shift_based",
		Events: []payroll.ShiftEvent{
			{Title: "Alice opening", Start: "2026-02-03T08:00:00", End: "2026-02-03T14:00:00",
				Attendees: []payroll.Attendee{{Email: "alice@shop.test"}}},
			{Title: "Bob closing", Start: "2026-02-03T14:00:00", End: "2026-02-03T21:00:00",
				Attendees: []payroll.Attendee{{Email: "bob@shop.test"}}},
		},
		Pools: map[string]api.WindowPoolsDTO{
			"2026-02-03": {OpeningAmount: 60, ClosingAmount: 40},
		},
	}

	var got api.PayoutResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payouts", req, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got.Rows, 2)

	assert.Equal(t, "Alice", got.Rows[0].Name)
	assert.Equal(t, 50.0, got.Rows[0].BasePay)
	assert.Equal(t, 60.0, got.Rows[0].Tips)
	assert.Equal(t, 110.0, got.Rows[0].Total)

	assert.Equal(t, "Bob", got.Rows[1].Name)
	assert.Equal(t, 40.0, got.Rows[1].Tips)
	assert.Equal(t, 90.0, got.Rows[1].Total)

	assert.Equal(t, 1, got.Summary.Days)
	assert.Equal(t, 100.0, got.Summary.TotalBase)
	assert.Equal(t, 100.0, got.Summary.TotalTips)
	assert.Equal(t, 200.0, got.Summary.GrandTotal)
	assert.Empty(t, got.Warnings)
}

func TestComputePayouts_DailyTotal_WithTipPayload(t *testing.T) {
	// Payload amounts merge into daily tips; out-of-range dates produce
	// warnings that ride along on the payout response.
	srv := newTestServer(t, seededDirectory(), nil)

	req := api.PayoutRequest{
		Start: "2026-02-03",
		End:   "2026-02-04",
		Mode:  "daily_total",
		Events: []payroll.ShiftEvent{
			{Title: "Alice", Start: "2026-02-03T09:00:00", End: "2026-02-03T17:00:00",
				Attendees: []payroll.Attendee{{Email: "alice@shop.test"}}},
		},
		TipPayload: "Tuesday, February 3, 2026\n$40.00\n\nTuesday, February 10, 2026\n$99.00\n",
	}

	var got api.PayoutResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payouts", req, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	alice := got.Rows[0]
	require.Equal(t, "Alice", alice.Name)
	assert.Equal(t, 40.0, alice.Tips)

	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "2026-02-10")
}

func TestComputePayouts_UnknownMode(t *testing.T) {
	srv := newTestServer(t, seededDirectory(), nil)

	req := api.PayoutRequest{
		Mode: "weekly",
		Events: []payroll.ShiftEvent{
			{Title: "Alice", Start: "2026-02-03T08:00:00", End: "2026-02-03T14:00:00"},
		},
	}
	var errBody api.ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payouts", req, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody.Error, "weekly")
}

func TestComputePayouts_BadEventTime_IsClientError(t *testing.T) {
	srv := newTestServer(t, seededDirectory(), nil)

	req := api.PayoutRequest{
		Events: []payroll.ShiftEvent{
			{Title: "Alice", Start: "whenever", End: "2026-02-03T14:00:00",
				Attendees: []payroll.Attendee{{Email: "alice@shop.test"}}},
		},
	}
	var errBody api.ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payouts", req, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComputePayouts_ExplicitEmptyEvents_NoFetch(t *testing.T) {
	// An empty events array is an inline "nobody worked", not a fetch
	// request: no calendar needed, every row zero, one default day.
	srv := newTestServer(t, seededDirectory(), nil)

	body := bytes.NewBufferString(`{"mode": "shift_based", "events": []}`)
	resp, err := http.Post(srv.URL+"/api/payouts", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.PayoutResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Rows, 2)
	assert.Equal(t, 0.0, got.Rows[0].Total)
	assert.Equal(t, 0.0, got.Rows[1].Total)
	assert.Equal(t, 1, got.Summary.Days)
}

func TestComputePayouts_NoCalendarNoInlineEvents(t *testing.T) {
	srv := newTestServer(t, seededDirectory(), nil)

	var errBody api.ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payouts",
		api.PayoutRequest{Start: "2026-02-03", End: "2026-02-04"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody.Error, "No calendar configured")
}

func TestComputePayouts_CalendarFailure_IsBadGateway(t *testing.T) {
	events := &stubEvents{err: errors.New("google: quota exceeded")}
	srv := newTestServer(t, seededDirectory(), events)

	var errBody api.ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payouts",
		api.PayoutRequest{Start: "2026-02-03", End: "2026-02-04"}, &errBody)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

// =============================================================================
// SCHEDULE PREVIEW
// =============================================================================

func TestSchedulePreview(t *testing.T) {
	// GIVEN: a calendar with one shift for Alice and one unrecognized name
	// WHEN: previewing a two-day range
	// THEN: only Alice is recognized, and both days (inclusive) need amounts

	events := &stubEvents{events: []payroll.ShiftEvent{
		{Title: "Alice", Start: "2026-02-03T08:00:00", End: "2026-02-03T14:00:00",
			Attendees: []payroll.Attendee{{Email: "alice@shop.test"}}},
		{Title: "Zed", Start: "2026-02-04T08:00:00", End: "2026-02-04T14:00:00"},
	}}
	srv := newTestServer(t, seededDirectory(), events)

	var got api.SchedulePreviewDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/schedule?start=2026-02-03&end=2026-02-04", nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{"Alice"}, got.Recognized)
	assert.Equal(t, []string{"2026-02-03", "2026-02-04"}, got.Dates)
	assert.Len(t, got.Events, 2)

	// The fetch window covers the end day itself.
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), events.timeMin)
	assert.Equal(t, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), events.timeMax)
}

func TestSchedulePreview_BadRange(t *testing.T) {
	srv := newTestServer(t, seededDirectory(), &stubEvents{})

	var errBody api.ErrorResponse
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/schedule?start=soon&end=later", nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// TIP PARSING AND HEALTH
// =============================================================================

func TestParseTips(t *testing.T) {
	srv := newTestServer(t, seededDirectory(), nil)

	req := api.ParseTipsRequest{
		Payload: "Tuesday, February 3, 2026\n$88.20\n",
		Start:   "2026-02-03",
		End:     "2026-02-07",
	}
	var got api.ParseTipsResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tips/parse", req, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 88.20, got.DailyTips["2026-02-03"])
	assert.Empty(t, got.Warnings)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, seededDirectory(), nil)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
