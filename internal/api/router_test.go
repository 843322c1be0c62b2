package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"fieldops.service/internal/adapters/memory"
	"fieldops.service/internal/app"
	"fieldops.service/internal/config"
	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, memory.SeedDemo(ctx, store, time.Now().UTC()))
	_, err := store.CreateAccount(ctx, "admin@example.com", "secret123", "Admin")
	require.NoError(t, err)

	cfg := config.Config{CheckInPageSize: 50, ActiveWorkerPageSize: 100, SurveyBaseURL: "https://survey.test"}
	services := app.NewServices(cfg, store, nil, storage.NewMemoryStore())
	return &testServer{t: t, router: NewRouter(services)}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) login() {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "secret123"})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndSessionGate(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Service is operational.", rr.Body.String())

	rr = s.do(http.MethodGet, "/api/v1/workers", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	s.login()
	rr = s.do(http.MethodGet, "/api/v1/workers", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(http.MethodGet, "/api/v1/workers", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginWithWrongPassword(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid email or password.", decodeBody[map[string]string](t, rr)["error"])
}

func TestRegisterSignsIn(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "New User", "email": "new@example.com", "password": "pw123456", "confirmPassword": "pw123456",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "new@example.com", decodeBody[model.User](t, rr).Email)
}

func TestWorkerRoutes(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rr := s.do(http.MethodGet, "/api/v1/workers?q=sarah", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	workers := decodeBody[[]model.Worker](t, rr)
	require.Len(t, workers, 1)
	assert.Equal(t, "w2", workers[0].ID)

	rr = s.do(http.MethodGet, "/api/v1/workers/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(http.MethodPost, "/api/v1/workers", map[string]string{"name": "Ann", "position": "Welder", "department": "Ops", "email": "bad", "phone": "1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Please enter a valid email address", decodeBody[map[string]string](t, rr)["error"])

	rr = s.do(http.MethodPost, "/api/v1/workers/w7/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.WorkerActive, decodeBody[model.Worker](t, rr).Status)

	rr = s.do(http.MethodDelete, "/api/v1/workers/w5", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(http.MethodGet, "/api/v1/workers/w5", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCheckInToggles(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rr := s.do(http.MethodPost, "/api/v1/checkins", map[string]any{"workerId": "w2", "location": map[string]any{"latitude": 40.7, "longitude": -74.0}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var result struct {
		CheckIn model.CheckIn `json:"checkIn"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, model.TypeCheckOut, result.CheckIn.Type)

	rr = s.do(http.MethodPost, "/api/v1/checkins", map[string]any{"workerId": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodGet, "/api/v1/checkins?workerId=w2&limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	records := decodeBody[[]model.CheckIn](t, rr)
	require.Len(t, records, 1)
	assert.Equal(t, model.TypeCheckOut, records[0].Type)

	rr = s.do(http.MethodGet, "/api/v1/checkins?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReportRequestAndDownload(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rr := s.do(http.MethodPost, "/api/v1/reports", map[string]any{"name": "Weekly", "type": "checkin", "format": "pdf"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodPost, "/api/v1/reports", map[string]any{"name": "Weekly", "type": "checkin", "format": "csv"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	report := decodeBody[model.Report](t, rr)
	assert.Equal(t, model.ReportCompleted, report.Status)

	rr = s.do(http.MethodGet, "/api/v1/reports/"+report.ID+"/download", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), report.ID+".csv")
	assert.Contains(t, rr.Body.String(), "Total Records")
}

func TestCaptureUpload(t *testing.T) {
	s := newTestServer(t)
	s.login()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("projectId", "p1"))
	require.NoError(t, mw.WriteField("location", "Main Site"))
	require.NoError(t, mw.WriteField("description", "Foundation poured"))
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="images"; filename="a.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/captures", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	capture := decodeBody[model.Capture](t, rr)
	require.Len(t, capture.Images, 1)
	assert.Equal(t, "image/png", capture.Images[0].ContentType)

	rr = s.do(http.MethodGet, "/api/v1/captures?projectId=p1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]model.Capture](t, rr), 1)
}

func TestSurveyRoutes(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rr := s.do(http.MethodGet, "/api/v1/surveys?status=Active", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	surveys := decodeBody[[]model.Survey](t, rr)
	require.Len(t, surveys, 1)
	assert.Equal(t, "s1", surveys[0].ID)

	rr = s.do(http.MethodGet, "/api/v1/surveys/s1/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, decodeBody[model.SurveySummary](t, rr).TotalResponses)

	rr = s.do(http.MethodPost, "/api/v1/surveys", map[string]any{"title": "", "questions": []any{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rr := s.do(http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats struct {
		TotalWorkers  int `json:"totalWorkers"`
		ActiveWorkers int `json:"activeWorkers"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 5, stats.TotalWorkers)
	assert.Equal(t, 3, stats.ActiveWorkers)
}
