package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"sales-insight/internal/config"
	"sales-insight/internal/services"
)

const exampleCSV = "date,product,quantity,price,customer\n" +
	"2024-01-01,A,2,10,X\n" +
	"2024-01-01,B,1,5,Y\n" +
	"2024-01-02,A,3,10,X\n" +
	",A,1,10,Z\n"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Upload.MaxFileSize = 1 << 10
	return cfg
}

func createTestHandlers() (*APIHandlers, *SSEHandlers) {
	cfg := testConfig()
	sales := services.NewSales(testLogger())
	return NewAPIHandlers(sales, cfg, testLogger()), NewSSEHandlers(sales, cfg, testLogger())
}

func uploadRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
