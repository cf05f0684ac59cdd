//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbital-research/bioastra/internal/api/handlers"
	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/jobs"
	"github.com/orbital-research/bioastra/internal/repository"
	"github.com/orbital-research/bioastra/internal/server"
	"github.com/orbital-research/bioastra/internal/service"
	"github.com/orbital-research/bioastra/internal/testutil"
)

const e2eAPIToken = "e2e-test-token"

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	Worker       *jobs.Worker
	HTTPClient   *http.Client
}

// stubModel is a deterministic stand-in for the OpenAI client: embeddings
// are derived from a hash of the text, and generation renders a section per
// role heading so the structurer has real blocks to match.
type stubModel struct{}

func (stubModel) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, 1536)
	for i := range embedding {
		seed = seed*1664525 + 1013904223
		embedding[i] = float32(seed%1000) / 1000
	}
	return embedding, nil
}

func (stubModel) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	role := domain.RoleScientist
	for _, candidate := range []domain.Role{domain.RoleInvestor, domain.RoleMissionArchitect} {
		if strings.Contains(prompt, domain.ProfileFor(candidate).Persona) {
			role = candidate
		}
	}

	var b strings.Builder
	for i, title := range domain.ProfileFor(role).SectionTitles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		b.WriteString(strings.Repeat("Synthetic answer text derived from the retrieved passages for this test. ", 20))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// SetupE2EEnv creates a full E2E test environment with a database container,
// a background ingest worker, and the HTTP server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	model := stubModel{}

	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	jobRepo := repository.NewIngestJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	ingestSvc := service.NewIngestService(txRunner, model, service.DefaultChunkConfig())
	assembler := service.NewContextAssembler(model, chunkRepo, 8)
	answerSvc := service.NewAnswerService(assembler, model)

	ingestWorker := jobs.NewIngestWorker(jobRepo, ingestSvc)
	worker := jobs.NewWorker(ingestWorker, 200*time.Millisecond)
	go worker.Start(ctx)

	router := server.NewRouter(server.RouterConfig{
		APIToken:        e2eAPIToken,
		AskHandler:      handlers.NewAskHandler(answerSvc),
		DocumentHandler: handlers.NewDocumentHandler(docRepo, jobRepo),
		MediaHandler:    handlers.NewMediaHandler(nil),
	})

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return &E2ETestEnv{
		T:         t,
		Ctx:       ctx,
		PostgresC: pgC,
		Pool:      pool,
		ServerURL: serverURL,
		ServerCloser: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		},
		Worker:     worker,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Worker != nil {
		e.Worker.Stop()
	}
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs an authenticated GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, int, error) {
	return e.doRequest(http.MethodGet, path, nil, e2eAPIToken)
}

// Post performs an authenticated POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, int, error) {
	return e.doRequest(http.MethodPost, path, body, e2eAPIToken)
}

// GetWithToken performs a GET request with an explicit bearer token; an
// empty token sends no Authorization header
func (e *E2ETestEnv) GetWithToken(path, token string) (*APIResponse, int, error) {
	return e.doRequest(http.MethodGet, path, nil, token)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, token string) (*APIResponse, int, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return &apiResp, resp.StatusCode, nil
}

// WaitForJob polls a job until it reaches a terminal status
func (e *E2ETestEnv) WaitForJob(jobID string, timeout time.Duration) string {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, status, err := e.Get("/jobs/" + jobID)
		if err == nil && status == http.StatusOK {
			var job struct {
				Status string `json:"status"`
			}
			if json.Unmarshal(resp.Data, &job) == nil {
				if job.Status == "completed" || job.Status == "failed" {
					return job.Status
				}
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	e.T.Fatalf("job %s did not finish within %v", jobID, timeout)
	return ""
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
