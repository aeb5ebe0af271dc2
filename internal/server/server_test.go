package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orgscan/internal/config"
	"orgscan/internal/jobs"
	"orgscan/internal/logging"
	"orgscan/internal/server"
	"orgscan/internal/testsupport"
)

type stubDispatcher struct {
	taskID string
	err    error
	calls  int
	jobID  string
	path   string
}

func (d *stubDispatcher) Dispatch(_ context.Context, jobID, filePath string) (string, error) {
	d.calls++
	d.jobID = jobID
	d.path = filePath
	if d.err != nil {
		return "", d.err
	}
	if d.taskID == "" {
		return "task-1", nil
	}
	return d.taskID, nil
}

func (d *stubDispatcher) Close() error { return nil }

func newTestServer(t *testing.T) (*config.Config, *jobs.Store, *stubDispatcher, http.Handler) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dispatcher := &stubDispatcher{}
	s := server.New(cfg, store, dispatcher, logging.NewNop())
	return cfg, store, dispatcher, s.Router()
}

func pdfForm(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestUploadAcceptsPDF(t *testing.T) {
	cfg, store, dispatcher, router := newTestServer(t)

	body, contentType := pdfForm(t, "Annual Report 2025.pdf", []byte("%PDF-1.4 data"))
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	jobID, _ := payload["job_id"].(string)
	if jobID == "" {
		t.Fatal("response missing job_id")
	}
	if payload["status"] != "pending" {
		t.Fatalf("status = %v, want pending", payload["status"])
	}
	if payload["task_id"] != "task-1" {
		t.Fatalf("task_id = %v", payload["task_id"])
	}

	if dispatcher.calls != 1 || dispatcher.jobID != jobID {
		t.Fatalf("dispatcher calls = %d job = %s", dispatcher.calls, dispatcher.jobID)
	}
	wantPath := filepath.Join(cfg.Paths.UploadDir, jobID+"_Annual_Report_2025.pdf")
	if dispatcher.path != wantPath {
		t.Fatalf("dispatch path = %s, want %s", dispatcher.path, wantPath)
	}
	if data, err := os.ReadFile(wantPath); err != nil || !bytes.Contains(data, []byte("%PDF")) {
		t.Fatalf("saved upload: %v", err)
	}

	job, err := store.GetByID(context.Background(), jobID)
	if err != nil || job == nil {
		t.Fatalf("job lookup: %v, %v", job, err)
	}
	if job.Status != jobs.StatusPending || job.Filename != "Annual_Report_2025.pdf" {
		t.Fatalf("stored job = %+v", job)
	}
}

func TestUploadRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		build    func(t *testing.T) (*bytes.Buffer, string)
		wantCode int
		wantErr  string
	}{
		{
			name: "missing file part",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				_ = writer.WriteField("note", "no file here")
				_ = writer.Close()
				return body, writer.FormDataContentType()
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "No file part in request",
		},
		{
			name: "empty filename",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				header := make(textproto.MIMEHeader)
				header.Set("Content-Disposition", `form-data; name="file"; filename=""`)
				header.Set("Content-Type", "application/pdf")
				part, err := writer.CreatePart(header)
				if err != nil {
					t.Fatalf("create part: %v", err)
				}
				_, _ = part.Write([]byte("%PDF"))
				_ = writer.Close()
				return body, writer.FormDataContentType()
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "No file selected",
		},
		{
			name: "wrong extension",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return pdfForm(t, "notes.txt", []byte("plain text"))
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "Invalid file type. Only PDF files are allowed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, dispatcher, router := newTestServer(t)
			body, contentType := tc.build(t)
			req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantCode, rec.Body.String())
			}
			if payload := decodeBody(t, rec); payload["error"] != tc.wantErr {
				t.Fatalf("error = %v, want %q", payload["error"], tc.wantErr)
			}
			if dispatcher.calls != 0 {
				t.Fatal("dispatcher must not run for rejected uploads")
			}
		})
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Uploads.MaxBytes = 1024
	store := testsupport.MustOpenStore(t, cfg)
	dispatcher := &stubDispatcher{}
	router := server.New(cfg, store, dispatcher, logging.NewNop()).Router()

	body, contentType := pdfForm(t, "big.pdf", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["error"] != "File too large. Maximum size is 16MB" {
		t.Fatalf("error = %v", payload["error"])
	}
}

func TestStatusValidatesJobID(t *testing.T) {
	_, _, _, router := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/status/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["error"] != "Invalid job ID format" {
		t.Fatalf("error = %v", payload["error"])
	}
}

func TestStatusUnknownJob(t *testing.T) {
	_, _, _, router := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/status/00000000-0000-4000-8000-000000000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["error"] != "Job not found" {
		t.Fatalf("error = %v", payload["error"])
	}
}

func TestStatusCompletedJobCarriesEnrichment(t *testing.T) {
	_, store, _, router := newTestServer(t)
	job := testsupport.NewJob(t, store, "report.pdf")
	if _, err := store.Update(context.Background(), job.ID, func(j *jobs.Job) error {
		j.CompanyName = "google"
		if err := j.SetOrgProfile(&jobs.OrgProfile{Login: "google", Name: "Google"}); err != nil {
			return err
		}
		if err := j.SetMembers([]jobs.MemberSummary{{Login: "a"}, {Login: "b"}}); err != nil {
			return err
		}
		j.SetCompleted()
		return nil
	}); err != nil {
		t.Fatalf("seed completed job: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/documents/status/"+job.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if payload["status"] != "completed" || payload["company_name"] != "google" {
		t.Fatalf("payload = %v", payload)
	}
	org, ok := payload["github_org_data"].(map[string]any)
	if !ok || org["login"] != "google" {
		t.Fatalf("github_org_data = %v", payload["github_org_data"])
	}
	if payload["members_count"] != float64(2) {
		t.Fatalf("members_count = %v", payload["members_count"])
	}
	if _, present := payload["error_message"]; present {
		t.Fatal("completed job must not carry error_message")
	}
}

func TestStatusPendingJobOmitsEnrichment(t *testing.T) {
	_, store, _, router := newTestServer(t)
	job := testsupport.NewJob(t, store, "queued.pdf")

	req := httptest.NewRequest(http.MethodGet, "/api/documents/status/"+job.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["status"] != "pending" {
		t.Fatalf("status = %v", payload["status"])
	}
	for _, key := range []string{"company_name", "github_org_data", "github_members", "members_count", "error_message"} {
		if _, present := payload[key]; present {
			t.Fatalf("pending job must not carry %s", key)
		}
	}
}

func TestStatusFailedJobCarriesError(t *testing.T) {
	_, store, _, router := newTestServer(t)
	job := testsupport.NewJob(t, store, "bad.pdf")
	if _, err := store.Update(context.Background(), job.ID, func(j *jobs.Job) error {
		j.SetFailed("document is damaged")
		return nil
	}); err != nil {
		t.Fatalf("seed failed job: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/documents/status/"+job.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	payload := decodeBody(t, rec)
	if payload["status"] != "failed" || payload["error_message"] != "document is damaged" {
		t.Fatalf("payload = %v", payload)
	}
	if _, present := payload["github_org_data"]; present {
		t.Fatal("failed job must not carry enrichment")
	}
}

func TestListReturnsAllJobs(t *testing.T) {
	_, store, _, router := newTestServer(t)
	for i := 0; i < 3; i++ {
		testsupport.NewJob(t, store, fmt.Sprintf("doc%d.pdf", i))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	documents, ok := payload["documents"].([]any)
	if !ok || len(documents) != 3 {
		t.Fatalf("documents = %v", payload["documents"])
	}
	first, _ := documents[0].(map[string]any)
	if first["members_count"] != float64(0) {
		t.Fatalf("members_count = %v", first["members_count"])
	}
	if !strings.HasSuffix(first["pdf_filename"].(string), ".pdf") {
		t.Fatalf("pdf_filename = %v", first["pdf_filename"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, _, _, router := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["status"] != "healthy" {
		t.Fatalf("payload = %v", payload)
	}
}
