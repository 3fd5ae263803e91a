package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apollostores/poplanner/internal/planner"
	"github.com/apollostores/poplanner/internal/repository/spreadsheet"
	"github.com/apollostores/poplanner/internal/service/planning"
)

func testRouter(t *testing.T) (*gin.Engine, *spreadsheet.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := spreadsheet.NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	clock := func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }
	planningSvc := planning.NewService(store, nil, planner.NewEngine(clock), nil)
	handler := NewPlanHandler(planningSvc, store, nil, nil, nil)

	r := gin.New()
	r.POST("/api/source", handler.UploadSource)
	r.GET("/api/plan", handler.GetPlan)
	r.GET("/api/plan/export", handler.ExportPlan)
	r.GET("/api/plan/deficit", handler.GetDeficits)
	r.PUT("/api/recipient", handler.SetRecipient)
	r.GET("/api/recipient", handler.GetRecipient)
	r.POST("/api/dispatch", handler.TriggerDispatch)
	return r, store
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &body, w.FormDataContentType()
}

func TestUploadThenPlan(t *testing.T) {
	r, _ := testRouter(t)

	csvData := "item_code,sales,month,year,supplier,stock_on_hand\nA1,100,1,2024,Acme,2\n"
	body, contentType := multipartUpload(t, "history.csv", csvData)

	req := httptest.NewRequest(http.MethodPost, "/api/source", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plan", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("plan status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items int `json:"items"`
		Plans []struct {
			ItemCode string `json:"item_code"`
			Status   string `json:"status"`
		} `json:"plans"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode plan response: %v", err)
	}
	if resp.Items != 1 || resp.Plans[0].ItemCode != "A1" || resp.Plans[0].Status != "DEFICIT" {
		t.Errorf("unexpected plan response: %+v", resp)
	}
}

func TestUpload_RejectsUnresolvableColumns(t *testing.T) {
	r, _ := testRouter(t)

	body, contentType := multipartUpload(t, "bad.csv", "vendor,lead_time\nAcme,5\n")
	req := httptest.NewRequest(http.MethodPost, "/api/source", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body %s", rec.Code, rec.Body.String())
	}
}

func TestGetPlan_NoSource(t *testing.T) {
	r, _ := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plan", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestExportPlan_ServesWorkbook(t *testing.T) {
	r, store := testRouter(t)

	csvData := "item_code,sales,month,year\nA1,50,1,2024\n"
	if _, err := store.SaveSource("history.csv", strings.NewReader(csvData)); err != nil {
		t.Fatalf("save source: %v", err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plan/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "po_plan_") {
		t.Errorf("missing attachment disposition: %q", rec.Header().Get("Content-Disposition"))
	}
}

func TestRecipientEndpoints(t *testing.T) {
	r, _ := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipient", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unset recipient status = %d, want 404", rec.Code)
	}

	payload := strings.NewReader(`{"email":"buyer@example.com"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/recipient", payload)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("set recipient status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipient", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "buyer@example.com") {
		t.Fatalf("get recipient = %d %s", rec.Code, rec.Body.String())
	}

	payload = strings.NewReader(`{"email":"not-an-email"}`)
	req = httptest.NewRequest(http.MethodPut, "/api/recipient", payload)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid email status = %d, want 400", rec.Code)
	}
}

func TestTriggerDispatch_UnconfiguredMailer(t *testing.T) {
	r, _ := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dispatch", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
