//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/hirelens/internal/api/handlers"
	"github.com/cloo-solutions/hirelens/internal/chunking"
	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/jobs"
	"github.com/cloo-solutions/hirelens/internal/llm"
	"github.com/cloo-solutions/hirelens/internal/repository"
	"github.com/cloo-solutions/hirelens/internal/schemas"
	"github.com/cloo-solutions/hirelens/internal/server"
	"github.com/cloo-solutions/hirelens/internal/service"
	"github.com/cloo-solutions/hirelens/internal/storage"
	"github.com/cloo-solutions/hirelens/internal/testutil"
	"github.com/cloo-solutions/hirelens/internal/vectorstore"
)

const (
	ownerID      = "e2e-owner"
	otherOwnerID = "e2e-intruder"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	MinIOC     *testutil.MinIOContainer
	Pool       *pgxpool.Pool
	S3Client   *storage.S3Client
	Model      *scriptedModel
	ServerURL  string
	BinaryDir  string
	Token      string
	OtherToken string
	HTTPClient *http.Client

	closers []func()
}

// scriptedModel answers every call with fixed JSON and counts evaluations.
type scriptedModel struct {
	evaluation string
	evals      atomic.Int32
}

func (m *scriptedModel) Evaluate(context.Context, llm.EvaluateRequest) ([]byte, error) {
	m.evals.Add(1)
	return []byte(m.evaluation), nil
}

func (m *scriptedModel) ParseCVToProfile(context.Context, string, []domain.RetrievedChunk) ([]byte, error) {
	return []byte("```json\n{\"name\":\"Grace Hopper\",\"skills\":[\"COBOL\",\"compilers\"]}\n```"), nil
}

func (m *scriptedModel) Model() string { return "scripted" }

// SetupE2EEnv starts Postgres and MinIO, wires the full server in-process and
// issues one API key per test owner.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	minioC := testutil.NewMinIOContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        minioC.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.MinIOAccessKey,
		SecretAccessKey: testutil.MinIOSecretKey,
		Bucket:          "e2e-archive",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		MinIOC:     minioC,
		Pool:       pool,
		S3Client:   s3Client,
		Model:      &scriptedModel{evaluation: sampleEvaluation},
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	env.startServer()
	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.MinIOC != nil {
		e.MinIOC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

func (e *E2ETestEnv) startServer() {
	pool := e.Pool
	candidateRepo := repository.NewCandidateRepository(pool)
	jobRepo := repository.NewJobPostingRepository(pool)
	snapshotRepo := repository.NewChunkSnapshotRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	authSvc := service.NewAuthService(repository.NewAPIKeyRepository(pool), &service.DefaultUUIDGenerator{})
	var err error
	if e.Token, err = authSvc.CreateAPIKey(e.Ctx, ownerID, "e2e"); err != nil {
		e.T.Fatalf("failed to create api key: %v", err)
	}
	if e.OtherToken, err = authSvc.CreateAPIKey(e.Ctx, otherOwnerID, "e2e"); err != nil {
		e.T.Fatalf("failed to create api key: %v", err)
	}

	retrieval := service.NewRetrievalService(vectorstore.NewMemory(), snapshotRepo, nil)
	indexing := service.NewIndexingService(candidateRepo, snapshotRepo, chunking.New(chunking.DefaultConfig()), retrieval, e.S3Client, nil)
	worker := jobs.NewWorker(jobs.NewIndexWorker(repository.NewIndexJobRepository(pool), indexing, nil), 100*time.Millisecond, nil)
	workerCtx, cancelWorker := context.WithCancel(e.Ctx)
	go worker.Start(workerCtx)
	e.closers = append(e.closers, func() {
		cancelWorker()
		worker.Stop()
	})

	cfg := service.EvaluationConfig{Retry: service.RetryPolicy{MaxAttempts: 2, BackoffBase: time.Millisecond}}
	evaluationSvc := service.NewEvaluationService(service.EvaluationDeps{
		Candidates:     candidateRepo,
		Jobs:           jobRepo,
		Evaluations:    repository.NewEvaluationRepository(pool),
		Leases:         repository.NewLeaseRepository(pool),
		Audit:          auditRepo,
		Tx:             txRunner,
		Retriever:      retrieval,
		LLM:            e.Model,
		Archive:        e.S3Client,
		ValidateOutput: schemas.ValidateEvaluation,
	}, cfg)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:     authSvc,
		JobHandler:        handlers.NewJobHandler(service.NewJobPostingService(jobRepo, nil)),
		CandidateHandler:  handlers.NewCandidateHandler(service.NewCandidateService(candidateRepo, jobRepo, snapshotRepo, txRunner)),
		ProfileHandler:    handlers.NewProfileHandler(service.NewProfileService(candidateRepo, retrieval, e.Model, auditRepo, cfg, nil)),
		EvaluationHandler: handlers.NewEvaluationHandler(evaluationSvc, e.S3Client),
		APIKeyHandler:     handlers.NewAPIKeyHandler(authSvc),
	})

	port, err := getFreePort()
	if err != nil {
		e.T.Fatalf("failed to get free port: %v", err)
	}
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.T.Logf("server error: %v", err)
		}
	}()
	e.closers = append(e.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	e.ServerURL = fmt.Sprintf("http://localhost:%d", port)
	waitForServer(e.T, e.ServerURL, 10*time.Second)
}

// BuildBinaries builds hirelensd into a temp dir.
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "hirelens-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "hirelensd"), "./cmd/hirelensd")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build hirelensd: %v\n%s", err, out)
	}
}

// RunHirelensd runs the binary with stdin input.
func (e *E2ETestEnv) RunHirelensd(input string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "hirelensd"), args...)
	cmd.Stdin = bytes.NewReader([]byte(input))
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	Status int             `json:"-"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error,omitempty"`
}

func (e *E2ETestEnv) Get(path, token string) (*APIResponse, error) {
	return e.Do(http.MethodGet, path, nil, token)
}

func (e *E2ETestEnv) Post(path string, body any, token string) (*APIResponse, error) {
	return e.Do(http.MethodPost, path, body, token)
}

func (e *E2ETestEnv) Delete(path, token string) (*APIResponse, error) {
	return e.Do(http.MethodDelete, path, nil, token)
}

// Do sends a JSON request. Responses with status >= 400 return an error that
// carries the status and message; the response is returned as well.
func (e *E2ETestEnv) Do(method, path string, body any, token string) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	apiResp := &APIResponse{Status: resp.StatusCode}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, apiResp); err != nil {
			return apiResp, fmt.Errorf("HTTP %d: %s", resp.StatusCode, respBody)
		}
	}
	if resp.StatusCode >= 400 {
		return apiResp, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}
	return apiResp, nil
}

// WaitForStatus polls the candidate until it reaches want.
func (e *E2ETestEnv) WaitForStatus(candidateID, want string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := e.Get("/candidates/"+candidateID, e.Token)
		if err == nil {
			var c struct {
				Status string `json:"status"`
			}
			if json.Unmarshal(resp.Data, &c) == nil && c.Status == want {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	e.T.Fatalf("candidate %s did not reach status %q within %v", candidateID, want, timeout)
}

func (e *E2ETestEnv) DownloadFile(url string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
