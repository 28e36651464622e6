package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocQA/internal/api"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/handlers"
	"github.com/akolanti/DocQA/internal/job"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/go-chi/chi/v5"
)

const testToken = "secret-token"

type fakeRagService struct {
	sources   map[string][]string
	records   map[string][]commonModels.ProcessedRecord
	deleted   []string
	deleteErr error
}

func (f *fakeRagService) Ingest(ctx context.Context, filePaths []string, user string) (int, error) {
	return 0, nil
}
func (f *fakeRagService) AnswerContext(ctx context.Context, user string, question string, k int) ([]commonModels.Candidate, error) {
	return nil, nil
}
func (f *fakeRagService) Rerank(ctx context.Context, answer string, candidates []commonModels.Candidate) ([]commonModels.Snippet, error) {
	return nil, nil
}
func (f *fakeRagService) DeleteSource(ctx context.Context, user string, filename string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, user+"/"+filename)
	return nil
}
func (f *fakeRagService) ListSources(ctx context.Context, user string) ([]string, error) {
	return f.sources[user], nil
}
func (f *fakeRagService) ProcessedFiles(ctx context.Context, user string) ([]commonModels.ProcessedRecord, error) {
	return f.records[user], nil
}
func (f *fakeRagService) Ask(ctx context.Context, user string, question string) (string, []commonModels.Snippet) {
	return "", nil
}
func (f *fakeRagService) ProcessRequest(ctx context.Context, j jobModel.Job) jobModel.Job { return j }
func (f *fakeRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	return j
}

var (
	testRouter  *chi.Mux
	testJobs    *job.Service
	testRag     = &fakeRagService{}
	remoteCount int64
)

func TestMain(m *testing.M) {
	config.AuthToken = testToken
	dir, err := os.MkdirTemp("", "uploads")
	if err != nil {
		panic(err)
	}
	config.UploadDir = dir

	testJobs = job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
	})
	handlers.InitJobHandler(testJobs, testRag)

	testRouter = chi.NewRouter()
	registerRoutes(testRouter)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// each request comes from its own address so the per-IP limiter stays out of the way
func do(t *testing.T, req *http.Request, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	req.RemoteAddr = fmt.Sprintf("10.0.0.%d:4000", atomic.AddInt64(&remoteCount, 1)%250)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	return rec
}

func nextJob(t *testing.T) jobModel.Job {
	t.Helper()
	select {
	case j := <-testJobs.JobChannel:
		return j
	case <-time.After(time.Second):
		t.Fatal("no job queued")
		return jobModel.Job{}
	}
}

func TestAuthRequired(t *testing.T) {
	rec := do(t, httptest.NewRequest(http.MethodGet, "/documents?user_id=u", nil), false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want 401", rec.Code)
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Error("trace id header missing")
	}
}

func TestChatQueuesJob(t *testing.T) {
	body := strings.NewReader(`{"message":"What is the warranty?","user_id":"alice@example.com"}`)
	rec := do(t, httptest.NewRequest(http.MethodPost, "/chat", body), true)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	var initResp api.InitJobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &initResp); err != nil {
		t.Fatal(err)
	}

	queued := nextJob(t)
	if queued.Id != initResp.Id || queued.JobType != jobModel.JobTypeQuery || queued.JobPayload.UserId != "alice@example.com" {
		t.Errorf("unexpected job %+v", queued)
	}

	status := do(t, httptest.NewRequest(http.MethodGet, "/status/"+initResp.Id, nil), true)
	if status.Code != http.StatusOK {
		t.Fatalf("status got %d", status.Code)
	}
	var resp api.JobResponse
	_ = json.Unmarshal(status.Body.Bytes(), &resp)
	if resp.Result.Status != string(jobModel.JobStatusQueued) {
		t.Errorf("queued job status got %q", resp.Result.Status)
	}
}

func TestChatRejectsMissingUser(t *testing.T) {
	rec := do(t, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`)), true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func TestStatusNotFound(t *testing.T) {
	rec := do(t, httptest.NewRequest(http.MethodGet, "/status/ghost", nil), true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestIngestStoresUploads(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("user_id", "bob@example.com")
	for _, name := range []string{"notes.txt", "../../escape.txt"} {
		part, err := mw.CreateFormFile("document", name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write([]byte("Introduction\nhello\n"))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(t, req, true)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}

	queued := nextJob(t)
	if queued.JobType != jobModel.JobTypeIngest || len(queued.JobPayload.IngestFilePaths) != 2 {
		t.Fatalf("unexpected job %+v", queued)
	}
	userDir := filepath.Join(config.UploadDir, vectorDB.CollectionName("bob@example.com"))
	for _, p := range queued.JobPayload.IngestFilePaths {
		if filepath.Dir(p) != userDir {
			t.Errorf("upload %s escaped %s", p, userDir)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("upload not stored: %v", err)
		}
	}
	select {
	case <-testJobs.DispatcherChannel:
	default:
		t.Error("ingestion should signal the dispatcher")
	}
}

func TestIngestRequiresDocument(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("user_id", "bob@example.com")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if rec := do(t, req, true); rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func TestListDocuments(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	testRag.sources = map[string][]string{"u": {"a.pdf", "b.docx"}}
	testRag.records = map[string][]commonModels.ProcessedRecord{"u": {
		{UserId: "u", FileName: "a.pdf", Status: commonModels.StatusProcessed, Chunks: 5, ProcessedAt: at},
	}}

	rec := do(t, httptest.NewRequest(http.MethodGet, "/documents?user_id=u", nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	var resp api.DocumentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Documents) != 2 {
		t.Fatalf("unexpected documents %+v", resp.Documents)
	}
	a := resp.Documents[0]
	if a.FileName != "a.pdf" || !a.Indexed || a.Chunks != 5 || a.ProcessedAt == nil || !a.ProcessedAt.Equal(at) {
		t.Errorf("unexpected first document %+v", a)
	}
	if b := resp.Documents[1]; b.FileName != "b.docx" || b.Status != "" {
		t.Errorf("unexpected second document %+v", b)
	}
}

func TestDeleteDocument(t *testing.T) {
	userDir := filepath.Join(config.UploadDir, vectorDB.CollectionName("carol"))
	_ = os.MkdirAll(userDir, 0o750)
	uploaded := filepath.Join(userDir, "report.pdf")
	_ = os.WriteFile(uploaded, []byte("%PDF"), 0o644)

	rec := do(t, httptest.NewRequest(http.MethodDelete, "/documents/report.pdf?user_id=carol", nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if len(testRag.deleted) == 0 || testRag.deleted[len(testRag.deleted)-1] != "carol/report.pdf" {
		t.Errorf("service delete not called: %v", testRag.deleted)
	}
	if _, err := os.Stat(uploaded); !os.IsNotExist(err) {
		t.Error("uploaded file should be removed")
	}

	testRag.deleteErr = errors.New("index down")
	defer func() { testRag.deleteErr = nil }()
	if rec := do(t, httptest.NewRequest(http.MethodDelete, "/documents/report.pdf?user_id=carol", nil), true); rec.Code != http.StatusInternalServerError {
		t.Errorf("got %d, want 500", rec.Code)
	}
}
