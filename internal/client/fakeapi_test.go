package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cmlabs-hris/timeclock-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	testToken    = "kiosk-token"
	testEmployee = "0190a1b2-0000-7000-8000-000000000001"
)

// fakeAPI serves the subset of the timeclock API the kiosk uses.
type fakeAPI struct {
	mu      sync.Mutex
	down    bool
	calls   int
	entries map[string]TimeEntry
	order   []string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{entries: make(map[string]TimeEntry)}

	r := chi.NewRouter()
	r.Use(api.gate)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/v1/time-entries/clock-in", api.clockIn)
	r.Patch("/api/v1/time-entries/{id}/clock-out", api.clockOut)
	r.Get("/api/v1/time-entries/open", api.findOpen)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) setDown(down bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.down = down
}

func (a *fakeAPI) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *fakeAPI) entryCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

func (a *fakeAPI) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		down := a.down
		if r.URL.Path != "/ping" {
			a.calls++
		}
		a.mu.Unlock()

		if down {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}
		if r.URL.Path != "/ping" && r.Header.Get("Authorization") != "Bearer "+testToken {
			response.Unauthorized(w, "Invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *fakeAPI) clockIn(w http.ResponseWriter, r *http.Request) {
	var req ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if req.EmployeeID != testEmployee {
		response.NotFound(w, "Employee not found")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	clockIn := req.Time
	entry := TimeEntry{ID: uuid.NewString(), EmployeeID: req.EmployeeID, Date: req.Date, ClockIn: &clockIn}
	a.entries[entry.ID] = entry
	a.order = append(a.order, entry.ID)
	response.Created(w, "Clocked in successfully", entry)
}

func (a *fakeAPI) clockOut(w http.ResponseWriter, r *http.Request) {
	var req ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.entries[chi.URLParam(r, "id")]
	if !ok {
		response.NotFound(w, "Time entry not found")
		return
	}
	clockOut := req.Time
	entry.ClockOut = &clockOut
	a.entries[entry.ID] = entry
	response.SuccessWithMessage(w, "Clocked out successfully", entry)
}

func (a *fakeAPI) findOpen(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	date := r.URL.Query().Get("date")

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.order) - 1; i >= 0; i-- {
		e := a.entries[a.order[i]]
		if e.EmployeeID == employeeID && e.Date == date && e.ClockOut == nil {
			response.Success(w, e)
			return
		}
	}
	response.NotFound(w, "No open time entry")
}
