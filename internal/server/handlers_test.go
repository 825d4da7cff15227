package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimpilot/internal/model"
	"claimpilot/internal/store"
)

// stubProcessor returns a canned decision and records the claim it received.
type stubProcessor struct {
	result *model.ClaimDecision
	err    error
	claim  model.Claim
	calls  int
}

func (p *stubProcessor) Run(ctx context.Context, claim model.Claim) (*model.ClaimDecision, error) {
	p.calls++
	p.claim = claim
	return p.result, p.err
}

// memStore is an in-memory Store for handler tests.
type memStore struct {
	recs    map[string]*model.ClaimRecord
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{recs: map[string]*model.ClaimRecord{}}
}

func (m *memStore) Save(_ context.Context, rec *model.ClaimRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.recs[rec.ClaimID] = rec
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.ClaimRecord, error) {
	rec, ok := m.recs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (m *memStore) List(_ context.Context) ([]*model.ClaimRecord, error) {
	out := make([]*model.ClaimRecord, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func newTestServer(t *testing.T, p ClaimProcessor, st store.Store) *Server {
	t.Helper()
	cfg := model.ServerConfig{
		UploadsDir: t.TempDir(),
		BodyLimit:  10 << 20,
	}
	srv, err := New(cfg, p, st, nil, nil, nil)
	require.NoError(t, err)
	return srv
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestSubmitClaim_Success(t *testing.T) {
	proc := &stubProcessor{result: &model.ClaimDecision{
		Decision:      model.DecisionApprove,
		Explanation:   "all verified",
		PolicyContext: "policy text",
		Documents:     []model.DocumentReport{},
	}}
	st := newMemStore()
	srv := newTestServer(t, proc, st)

	body, contentType := multipartBody(t,
		map[string]string{"description": "my flight was cancelled", "metadata": "Current date: 2026-09-01"},
		map[string]string{"booking.txt": "e-ticket ABC123"},
	)
	req, _ := http.NewRequest(http.MethodPost, "/claims/", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	got := decodeBody(t, resp)
	assert.Equal(t, "APPROVE", got["decision"])
	assert.Equal(t, "all verified", got["explanation"])
	assert.Equal(t, model.StatusProcessed, got["status"])

	claimID, ok := got["claim_id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(claimID)
	assert.NoError(t, err)

	// Pipeline received the stored upload path.
	assert.Equal(t, 1, proc.calls)
	require.Len(t, proc.claim.Files, 1)
	assert.Equal(t, "booking.txt", filepath.Base(proc.claim.Files[0]))
	data, err := os.ReadFile(proc.claim.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "e-ticket ABC123", string(data))

	// Outcome persisted.
	rec, err := st.Get(context.Background(), claimID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessed, rec.Status)
	assert.Equal(t, model.DecisionApprove, rec.Decision)
}

func TestSubmitClaim_MissingDescription(t *testing.T) {
	proc := &stubProcessor{}
	srv := newTestServer(t, proc, newMemStore())

	body, contentType := multipartBody(t, map[string]string{"description": "   "}, nil)
	req, _ := http.NewRequest(http.MethodPost, "/claims/", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	got := decodeBody(t, resp)
	assert.Equal(t, "DESCRIPTION_REQUIRED", got["code"])
	assert.Equal(t, 0, proc.calls)
}

func TestSubmitClaim_UnsupportedFileType(t *testing.T) {
	proc := &stubProcessor{}
	srv := newTestServer(t, proc, newMemStore())

	body, contentType := multipartBody(t,
		map[string]string{"description": "claim"},
		map[string]string{"virus.exe": "nope"},
	)
	req, _ := http.NewRequest(http.MethodPost, "/claims/", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	got := decodeBody(t, resp)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", got["code"])
	assert.Equal(t, 0, proc.calls)
}

func TestSubmitClaim_ProcessingFailure(t *testing.T) {
	proc := &stubProcessor{err: errors.New("inference backend down")}
	st := newMemStore()
	srv := newTestServer(t, proc, st)

	body, contentType := multipartBody(t, map[string]string{"description": "claim"}, nil)
	req, _ := http.NewRequest(http.MethodPost, "/claims/", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	got := decodeBody(t, resp)
	assert.Equal(t, "PROCESSING_FAILED", got["code"])

	// The failed claim is persisted without a decision.
	records, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.StatusFailed, records[0].Status)
	assert.Empty(t, records[0].Decision)
}

func TestGetClaim(t *testing.T) {
	st := newMemStore()
	id := uuid.NewString()
	st.recs[id] = &model.ClaimRecord{ClaimID: id, Status: model.StatusProcessed, Decision: model.DecisionDeny}
	srv := newTestServer(t, &stubProcessor{}, st)

	req, _ := http.NewRequest(http.MethodGet, "/claims/"+id, nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody(t, resp)
	assert.Equal(t, id, got["claim_id"])
	assert.Equal(t, "DENY", got["decision"])
}

func TestGetClaim_InvalidID(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, newMemStore())

	req, _ := http.NewRequest(http.MethodGet, "/claims/not-a-uuid", nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	got := decodeBody(t, resp)
	assert.Equal(t, "INVALID_ID", got["code"])
}

func TestGetClaim_NotFound(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, newMemStore())

	req, _ := http.NewRequest(http.MethodGet, "/claims/"+uuid.NewString(), nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListClaims_Empty(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, newMemStore())

	req, _ := http.NewRequest(http.MethodGet, "/claims/", nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(bytes.TrimSpace(data)))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, newMemStore())

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, newMemStore())

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))
}
