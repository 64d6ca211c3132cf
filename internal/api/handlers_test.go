package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/catalog"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/orchestrator"
	"github.com/pharmaguard-server/internal/ruletable"
	"github.com/pharmaguard-server/internal/service"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string]*domain.CacheEntry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]*domain.CacheEntry)}
}

func (s *memStore) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key], nil
}

func (s *memStore) Put(_ context.Context, entry *domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
	return nil
}

func (s *memStore) Close() error { return nil }

// newTestServer wires the pipeline with generation disabled and no
// report persistence, the minimal deployment shape.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	table, err := ruletable.New()
	require.NoError(t, err)

	cat := catalog.New()
	resolver := service.NewDiplotypeResolver(logger, cat)
	classifier := service.NewRiskClassifier(logger, resolver, table)
	explainer := service.NewExplainer(logger, newMemStore(), nil)

	orch := orchestrator.New(logger, classifier, explainer, nil, domain.OrchestratorConfig{
		Workers:      2,
		QueueSize:    16,
		DrugParallel: 2,
	})
	orch.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = orch.Shutdown(ctx)
	})

	cfg := &domain.Config{}
	cfg.Logging.Level = "info"

	return NewServer(cfg, logger, orch, nil, cat, newMemStore(), nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func submitPayload() map[string]interface{} {
	return map[string]interface{}{
		"patient_id": "PAT-001",
		"genotypes":  map[string]string{"CYP2D6": "*1/*4"},
		"drugs":      []string{"Codeine"},
	}
}

func pollUntilTerminal(t *testing.T, s *Server, jobID string) map[string]interface{} {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w := doJSON(t, s, http.MethodGet, "/api/v1/analyses/"+jobID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		state, _ := body["state"].(string)
		if state == string(domain.JOB_COMPLETED) || state == string(domain.JOB_FAILED) {
			return body
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return nil
}

func TestSubmitAndPollAnalysis(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/analyses", submitPayload())
	require.Equal(t, http.StatusAccepted, w.Code)

	body := decodeBody(t, w)
	jobID, _ := body["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, string(domain.JOB_QUEUED), body["state"])

	final := pollUntilTerminal(t, s, jobID)
	assert.Equal(t, string(domain.JOB_COMPLETED), final["state"])
	assert.Equal(t, "PAT-001", final["patient_id"])

	results, ok := final["results"].([]interface{})
	require.True(t, ok, "terminal snapshot carries results")
	require.Len(t, results, 1)

	result := results[0].(map[string]interface{})
	assert.Equal(t, "Codeine", result["drug"])
	assessment := result["assessment"].(map[string]interface{})
	assert.Equal(t, "CYP2D6", assessment["gene"])
	assert.Equal(t, string(domain.INTERMEDIATE), assessment["phenotype"])
}

func TestSubmitMissingFields(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/analyses", map[string]interface{}{
		"patient_id": "PAT-001",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrCodeInvalidInput, decodeBody(t, w)["code"])
}

func TestSubmitMalformedDiplotype(t *testing.T) {
	s := newTestServer(t)

	payload := submitPayload()
	payload["genotypes"] = map[string]string{"CYP2D6": "*1*4"}

	w := doJSON(t, s, http.MethodPost, "/api/v1/analyses", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrCodeInvalidGenotype, decodeBody(t, w)["code"])
}

func TestSubmitUnknownAllele(t *testing.T) {
	s := newTestServer(t)

	payload := submitPayload()
	payload["genotypes"] = map[string]string{"CYP2D6": "*1/*999"}

	w := doJSON(t, s, http.MethodPost, "/api/v1/analyses", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrCodeInvalidGenotype, decodeBody(t, w)["code"])
}

func TestSubmitUnknownDrug(t *testing.T) {
	s := newTestServer(t)

	payload := submitPayload()
	payload["drugs"] = []string{"Aspirin"}

	w := doJSON(t, s, http.MethodPost, "/api/v1/analyses", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrCodeInvalidInput, decodeBody(t, w)["code"])
}

func TestSubmitNormalizesGeneCasing(t *testing.T) {
	s := newTestServer(t)

	payload := submitPayload()
	payload["genotypes"] = map[string]string{"cyp2d6": "*1/*4"}

	w := doJSON(t, s, http.MethodPost, "/api/v1/analyses", payload)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestGetUnknownAnalysis(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/analyses/no-such-job", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domain.ErrCodeJobNotFound, decodeBody(t, w)["code"])
}

func TestCancelCompletedAnalysisConflicts(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/analyses", submitPayload())
	require.Equal(t, http.StatusAccepted, w.Code)
	jobID := decodeBody(t, w)["job_id"].(string)
	pollUntilTerminal(t, s, jobID)

	w = doJSON(t, s, http.MethodDelete, "/api/v1/analyses/"+jobID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelUnknownAnalysis(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodDelete, "/api/v1/analyses/no-such-job", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListDrugs(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/drugs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	drugs, ok := decodeBody(t, w)["drugs"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, drugs)

	names := make([]string, 0, len(drugs))
	for _, d := range drugs {
		entry := d.(map[string]interface{})
		names = append(names, entry["name"].(string))
		assert.NotEmpty(t, entry["genes"], entry["name"])
	}
	assert.Contains(t, names, "Codeine")
	assert.Contains(t, names, "Warfarin")
}

func TestListGenes(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/genes", nil)
	require.Equal(t, http.StatusOK, w.Code)

	genes, ok := decodeBody(t, w)["genes"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, genes, "CYP2D6")
	assert.Contains(t, genes, "SLCO1B1")
}

func TestListReportsDisabled(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/patients/PAT-001/reports", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["generator"])
	assert.Equal(t, "ready", body["cache"])
}

func TestCorrelationIDHeader(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestPreflightRequest(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyses", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestConcurrentSubmissions(t *testing.T) {
	s := newTestServer(t)

	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		payload := submitPayload()
		payload["patient_id"] = fmt.Sprintf("PAT-%03d", i)
		w := doJSON(t, s, http.MethodPost, "/api/v1/analyses", payload)
		require.Equal(t, http.StatusAccepted, w.Code)
		ids = append(ids, decodeBody(t, w)["job_id"].(string))
	}

	for _, id := range ids {
		final := pollUntilTerminal(t, s, id)
		assert.Equal(t, string(domain.JOB_COMPLETED), final["state"])
	}
}
