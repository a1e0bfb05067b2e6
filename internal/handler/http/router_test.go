package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/config"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cache"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/sse"
	employeeService "github.com/cmlabs-hris/timeclock-go/internal/service/employee"
	timeEntryService "github.com/cmlabs-hris/timeclock-go/internal/service/timeentry"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	aliceID           = "0190a1b2-0000-7000-8000-000000000001"
)

type testEnv struct {
	router     *chi.Mux
	jwtService jwt.Service
	hub        *sse.Hub
	vacations  *stubVacationService
	holidays   *stubHolidayService
	reports    *stubReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	employeeRepo := newMemoryEmployeeRepo(employee.Employee{
		ID:         aliceID,
		Name:       "Alice",
		Role:       "Barista",
		HourlyRate: decimal.NewFromInt(20),
		CreatedAt:  time.Now(),
	})
	entryRepo := newMemoryTimeEntryRepo()

	employees := cache.New("employees", employeeRepo.List)
	entries := cache.New("time_entries", entryRepo.List)

	env := &testEnv{
		jwtService: jwt.NewJWTService(handlerTestSecret, time.Hour, time.Minute),
		hub:        sse.NewHub(),
		vacations:  &stubVacationService{},
		holidays:   &stubHolidayService{},
		reports:    &stubReportService{},
	}

	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	env.router = NewRouter(cfg, env.jwtService, Handlers{
		Employee:  NewEmployeeHandler(employeeService.NewEmployeeService(employeeRepo, employees)),
		TimeEntry: NewTimeEntryHandler(timeEntryService.NewTimeEntryService(entryRepo, employeeRepo, entries)),
		Vacation:  NewVacationHandler(env.vacations),
		Holiday:   NewHolidayHandler(env.holidays),
		Report:    NewReportHandler(env.reports),
		Realtime:  NewRealtimeHandler(env.hub, env.jwtService, []string{"employees", "time_entries"}),
	})
	return env
}

func (env *testEnv) token(t *testing.T, isAdmin bool) string {
	t.Helper()
	token, _, err := env.jwtService.GenerateAccessToken("kiosk-1", isAdmin)
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) response.Response {
	t.Helper()

	var raw struct {
		response.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

func TestRouter_Ping(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Authentication(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/employees", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("sse token is not an access token", func(t *testing.T) {
		sseToken, _, err := env.jwtService.GenerateSSEToken("kiosk-1")
		require.NoError(t, err)

		rec := env.do(t, http.MethodGet, "/api/v1/employees", sseToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwt.NewJWTService("another-secret", time.Hour, time.Minute)
		token, _, err := other.GenerateAccessToken("kiosk-1", true)
		require.NoError(t, err)

		rec := env.do(t, http.MethodGet, "/api/v1/employees", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-admin cannot create employees", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/employees", env.token(t, false), map[string]interface{}{
			"name": "Bob", "role": "Cook", "hourly_rate": "15",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-admin cannot read reports", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/reports/monthly?month=0&year=2025", env.token(t, false), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestEmployeeHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, true)

	t.Run("create is visible to the next list", func(t *testing.T) {
		var listed []employee.EmployeeResponse
		rec := env.do(t, http.MethodGet, "/api/v1/employees", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec, &listed)
		require.Len(t, listed, 1)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 1, resp.Meta.Total)

		rec = env.do(t, http.MethodPost, "/api/v1/employees", admin, map[string]interface{}{
			"name": "Bob", "role": "Cook", "hourly_rate": "15.50",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/employees", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decodeResponse(t, rec, &listed)
		require.Len(t, listed, 2)
		assert.Equal(t, "Alice", listed[0].Name)
		assert.Equal(t, "Bob", listed[1].Name)
		assert.True(t, listed[1].HourlyRate.Equal(decimal.RequireFromString("15.5")))
	})

	t.Run("negative rate is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/employees/"+aliceID+"/rate", admin, map[string]interface{}{
			"hourly_rate": "-1",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("update rate", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/employees/"+aliceID+"/rate", admin, map[string]interface{}{
			"hourly_rate": "22",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var got employee.EmployeeResponse
		decodeResponse(t, env.do(t, http.MethodGet, "/api/v1/employees/"+aliceID, admin, nil), &got)
		assert.True(t, got.HourlyRate.Equal(decimal.NewFromInt(22)))
	})

	t.Run("unknown employee", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/employees/0190a1b2-0000-7000-8000-00000000ffff", admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees", strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+admin)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTimeEntryHandler_ClockCycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, false)

	rec := env.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", token, map[string]string{
		"employee_id": aliceID, "date": "2025-01-06", "time": "25:00",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", token, map[string]string{
		"employee_id": aliceID, "date": "2025-01-06", "time": "+9:00",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", token, map[string]string{
		"employee_id": aliceID, "date": "2025-01-06", "time": "09:00:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created timeentry.TimeEntryResponse
	decodeResponse(t, rec, &created)
	require.NotNil(t, created.ClockIn)
	assert.Equal(t, "09:00", *created.ClockIn)
	assert.Nil(t, created.ClockOut)

	var open timeentry.TimeEntryResponse
	rec = env.do(t, http.MethodGet, "/api/v1/time-entries/open?employee_id="+aliceID+"&date=2025-01-06", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeResponse(t, rec, &open)
	assert.Equal(t, created.ID, open.ID)

	rec = env.do(t, http.MethodPatch, "/api/v1/time-entries/"+created.ID+"/break", token, map[string]bool{"break_taken": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/time-entries/"+created.ID+"/clock-out", token, map[string]string{"time": "17:30"})
	require.Equal(t, http.StatusOK, rec.Code)
	var closed timeentry.TimeEntryResponse
	decodeResponse(t, rec, &closed)
	assert.True(t, closed.Hours.Equal(decimal.NewFromInt(8)), "got %s", closed.Hours)

	rec = env.do(t, http.MethodGet, "/api/v1/time-entries/open?employee_id="+aliceID+"&date=2025-01-06", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var listed []timeentry.TimeEntryResponse
	rec = env.do(t, http.MethodGet, "/api/v1/time-entries?employee_id="+aliceID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeResponse(t, rec, &listed)
	assert.Len(t, listed, 1)
}

func TestTimeEntryHandler_Errors(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, false)

	t.Run("unknown employee", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", token, map[string]string{
			"employee_id": "0190a1b2-0000-7000-8000-00000000ffff", "date": "2025-01-06", "time": "09:00",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown entry", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/time-entries/0190a1b2-0000-7000-8000-00000000ffff/clock-out", token, map[string]string{"time": "17:00"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("open lookup requires employee and date", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/time-entries/open", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("bad list filter", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/time-entries?date=06-01-2025", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestVacationHandler_List(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, false)

	rec := env.do(t, http.MethodGet, "/api/v1/vacation-days?employee_id="+aliceID+"&month=0&year=2025", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.vacations.lastList.Month)
	assert.Equal(t, 0, *env.vacations.lastList.Month)
	assert.Equal(t, 2025, *env.vacations.lastList.Year)

	rec = env.do(t, http.MethodGet, "/api/v1/vacation-days?month=abc&year=2025", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/vacation-days?month=3", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/vacation-days/"+aliceID, env.token(t, true), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHolidayHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, true)

	t.Run("duplicate date conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/holidays", admin, map[string]string{"date": "2025-01-01", "name": "New Year"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("import reads the uploaded file", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "holidays.xlsx")
		require.NoError(t, err)
		_, err = part.Write([]byte("workbook"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/holidays/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+admin)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "workbook", string(env.holidays.imported))
	})

	t.Run("import without file", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/holidays/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+admin)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReportHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, true)

	t.Run("monthly parses zero-based month", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/reports/monthly?month=11&year=2024", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 11, env.reports.lastMonthly.Month)
		assert.Equal(t, 2024, env.reports.lastMonthly.Year)
	})

	t.Run("monthly rejects bad parameters", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/reports/monthly?month=x&year=2024", admin, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/reports/monthly?month=12&year=2024", admin, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("export is an attachment", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/reports/monthly/export?month=0&year=2025", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="payroll_January_2025.xlsx"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "xlsx", rec.Body.String())
	})

	t.Run("employee detail not found", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/reports/employees/"+aliceID+"?month=0&year=2025", admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("close unclosed without body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/unclosed/entry-1/close", nil)
		req.Header.Set("Authorization", "Bearer "+admin)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "entry-1", env.reports.lastClose.EntryID)
		assert.Empty(t, env.reports.lastClose.Time)
	})

	t.Run("close unclosed with time", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/reports/unclosed/entry-2/close", admin, map[string]string{"time": "18:00"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "18:00", env.reports.lastClose.Time)
	})

	t.Run("wage calculator defaults the multiplier", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/reports/wage-calculator", admin, map[string]interface{}{
			"hours": 40, "hourly_rate": "25", "overtime_hours": 5, "deductions": "200",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var got report.WageCalculatorResponse
		decodeResponse(t, rec, &got)
		assert.Equal(t, "1.5", got.OvertimeMultiplier.String())
		assert.Equal(t, "1000.00", got.RegularPay.StringFixed(2))
		assert.Equal(t, "187.50", got.OvertimePay.StringFixed(2))
		assert.Equal(t, "1187.50", got.GrossPay.StringFixed(2))
		assert.Equal(t, "987.50", got.NetPay.StringFixed(2))
	})

	t.Run("wage calculator rejects negative input", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/reports/wage-calculator", admin, map[string]interface{}{
			"hours": -1, "hourly_rate": 25, "overtime_multiplier": 0.5,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = env.do(t, http.MethodPost, "/api/v1/reports/wage-calculator", admin, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wage calculator is admin only", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/reports/wage-calculator", env.token(t, false), map[string]interface{}{"hours": 1})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, "/api/v1/reports/wage-calculator", "", map[string]interface{}{"hours": 1})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRealtimeHandler_Token(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/realtime/token", env.token(t, false), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got SSETokenResponse
	decodeResponse(t, rec, &got)
	assert.Equal(t, 60, got.ExpiresIn)

	subject, err := env.jwtService.ValidateSSEToken(got.Token)
	require.NoError(t, err)
	assert.Equal(t, "kiosk-1", subject)
}

func TestRealtimeHandler_StreamRejects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/realtime/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/realtime/stream?token="+env.token(t, false), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "access tokens are not accepted on the stream")

	sseToken, _, err := env.jwtService.GenerateSSEToken("kiosk-1")
	require.NoError(t, err)
	rec = env.do(t, http.MethodGet, "/api/v1/realtime/stream?token="+sseToken+"&tables=payroll", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRealtimeHandler_StreamDeliversChanges(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	sseToken, _, err := env.jwtService.GenerateSSEToken("kiosk-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/realtime/stream?token="+sseToken+"&tables=time_entries", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return name, data
			}
		}
	}

	name, _ := readEvent()
	require.Equal(t, "connected", name)
	require.Equal(t, 1, env.hub.SubscriberCount("time_entries"))

	env.hub.Publish("employees", sse.Event{Event: "change", Data: map[string]string{"table": "employees"}})
	env.hub.Publish("time_entries", sse.Event{Event: "change", Data: map[string]string{"table": "time_entries"}})

	name, data := readEvent()
	assert.Equal(t, "change", name)
	assert.JSONEq(t, `{"table":"time_entries"}`, data)
}
