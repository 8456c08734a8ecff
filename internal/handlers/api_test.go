package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code       string          `json:"code"`
		Message    string          `json:"message"`
		Details    string          `json:"details"`
		Validation json.RawMessage `json:"validation"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return env
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	api, _ := createTestHandlers()

	w := httptest.NewRecorder()
	api.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	env := decodeEnvelope(t, w)
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data["status"] != "healthy" {
		t.Errorf("expected status healthy, got %q", data["status"])
	}
	if data["version"] != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", data["version"])
	}
}

func TestAPIHandlers_HandleAnalyze(t *testing.T) {
	api, _ := createTestHandlers()

	w := httptest.NewRecorder()
	api.HandleAnalyze(w, uploadRequest(t, "/api/analyze", "sales.csv", []byte(exampleCSV)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected cache-control 'no-store', got %q", cc)
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("expected success=true in response")
	}

	var resp struct {
		Filename   string `json:"filename"`
		Validation struct {
			Valid        bool    `json:"valid"`
			QualityScore float64 `json:"quality_score"`
		} `json:"validation"`
		Analytics struct {
			TotalRevenue         float64            `json:"total_revenue"`
			TopProductsByRevenue map[string]float64 `json:"top_products_by_revenue"`
			TimeAnalysis         struct {
				DailyRevenue   map[string]float64 `json:"daily_revenue"`
				MonthlyRevenue map[string]float64 `json:"monthly_revenue"`
			} `json:"time_analysis"`
		} `json:"analytics"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}

	if resp.Filename != "sales.csv" {
		t.Errorf("expected filename sales.csv, got %q", resp.Filename)
	}
	if !resp.Validation.Valid {
		t.Error("expected a valid report")
	}
	if resp.Validation.QualityScore != 85.0 {
		t.Errorf("expected quality score 85.0, got %v", resp.Validation.QualityScore)
	}
	if resp.Analytics.TotalRevenue != 65 {
		t.Errorf("expected total revenue 65, got %v", resp.Analytics.TotalRevenue)
	}
	if got := resp.Analytics.TopProductsByRevenue; got["A"] != 60 || got["B"] != 5 || len(got) != 2 {
		t.Errorf("unexpected top products: %v", got)
	}
	if got := resp.Analytics.TimeAnalysis.DailyRevenue; got["2024-01-01"] != 25 || got["2024-01-02"] != 30 || len(got) != 2 {
		t.Errorf("unexpected daily revenue: %v", got)
	}
	if got := resp.Analytics.TimeAnalysis.MonthlyRevenue; got["2024-01"] != 55 || len(got) != 1 {
		t.Errorf("unexpected monthly revenue: %v", got)
	}
	if resp.Timestamp == "" {
		t.Error("expected a timestamp")
	}
}

func TestAPIHandlers_HandleAnalyze_InvalidDataset(t *testing.T) {
	api, _ := createTestHandlers()

	w := httptest.NewRecorder()
	api.HandleAnalyze(w, uploadRequest(t, "/api/analyze", "sales.csv", []byte("date,product\n2024-01-01,A\n")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	env := decodeEnvelope(t, w)
	if env.Success || env.Error == nil {
		t.Fatal("expected an error envelope")
	}
	if env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %q", env.Error.Code)
	}
	if env.Error.Message != "Data validation failed" {
		t.Errorf("unexpected message %q", env.Error.Message)
	}

	var report struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(env.Error.Validation, &report); err != nil {
		t.Fatal(err)
	}
	if report.Valid {
		t.Error("expected the attached report to be invalid")
	}
	if len(report.Errors) != 1 || report.Errors[0] != "Missing required columns: quantity, price, customer" {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
	if strings.Contains(w.Body.String(), "analytics") {
		t.Error("an invalid dataset must not produce analytics")
	}
}

func TestAPIHandlers_HandleValidate(t *testing.T) {
	api, _ := createTestHandlers()

	w := httptest.NewRecorder()
	api.HandleValidate(w, uploadRequest(t, "/api/validate", "empty.csv", []byte("date,product,quantity,price,customer\n")))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	env := decodeEnvelope(t, w)
	var resp struct {
		Validation struct {
			Valid        bool     `json:"valid"`
			Errors       []string `json:"errors"`
			QualityScore float64  `json:"quality_score"`
		} `json:"validation"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Validation.Valid {
		t.Error("expected an invalid report")
	}
	if len(resp.Validation.Errors) != 1 || resp.Validation.Errors[0] != "Dataset is empty" {
		t.Errorf("unexpected errors: %v", resp.Validation.Errors)
	}
	if resp.Validation.QualityScore != 0 {
		t.Errorf("expected quality score 0, got %v", resp.Validation.QualityScore)
	}
}

func TestAPIHandlers_HandleQuickStats(t *testing.T) {
	api, _ := createTestHandlers()

	w := httptest.NewRecorder()
	api.HandleQuickStats(w, uploadRequest(t, "/api/quick-stats", "sales.csv", []byte(exampleCSV)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	env := decodeEnvelope(t, w)
	var resp struct {
		Filename    string           `json:"filename"`
		FileSize    int64            `json:"file_size"`
		Rows        int              `json:"rows"`
		Columns     int              `json:"columns"`
		ColumnNames []string         `json:"column_names"`
		SampleData  []map[string]any `json:"sample_data"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Rows != 4 || resp.Columns != 5 {
		t.Errorf("expected 4x5, got %dx%d", resp.Rows, resp.Columns)
	}
	if resp.FileSize != int64(len(exampleCSV)) {
		t.Errorf("expected file size %d, got %d", len(exampleCSV), resp.FileSize)
	}
	if len(resp.SampleData) != 4 {
		t.Fatalf("expected 4 sample rows, got %d", len(resp.SampleData))
	}
	if v, ok := resp.SampleData[3]["date"]; !ok || v != nil {
		t.Errorf("expected null date in last sample row, got %v", v)
	}
}

func TestAPIHandlers_UploadGate(t *testing.T) {
	api, _ := createTestHandlers()

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
		wantErr  string
	}{
		{
			name:     "unsupported extension",
			req:      uploadRequest(t, "/api/validate", "sales.pdf", []byte(exampleCSV)),
			wantCode: http.StatusUnsupportedMediaType,
			wantErr:  "UNSUPPORTED_MEDIA_TYPE",
		},
		{
			name:     "too large",
			req:      uploadRequest(t, "/api/validate", "sales.csv", []byte(strings.Repeat("x", 2<<10))),
			wantCode: http.StatusRequestEntityTooLarge,
			wantErr:  "PAYLOAD_TOO_LARGE",
		},
		{
			name:     "not multipart",
			req:      httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(exampleCSV)),
			wantCode: http.StatusBadRequest,
			wantErr:  "BAD_REQUEST",
		},
		{
			name:     "unreadable workbook",
			req:      uploadRequest(t, "/api/validate", "sales.xlsx", []byte("not a zip")),
			wantCode: http.StatusBadRequest,
			wantErr:  "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			api.HandleValidate(w, tt.req)

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantErr) {
				t.Errorf("expected %s in body, got %s", tt.wantErr, w.Body.String())
			}
		})
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	api, _ := createTestHandlers()

	api.HandleValidate(httptest.NewRecorder(), uploadRequest(t, "/api/validate", "sales.csv", []byte(exampleCSV)))

	w := httptest.NewRecorder()
	api.HandleStats(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	env := decodeEnvelope(t, w)
	var stats map[string]any
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats["datasets_validated"] != float64(1) {
		t.Errorf("expected 1 dataset validated, got %v", stats["datasets_validated"])
	}
	if stats["rows_processed"] != float64(4) {
		t.Errorf("expected 4 rows processed, got %v", stats["rows_processed"])
	}
}
