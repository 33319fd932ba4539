package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mise-backend/api/middleware"
	"github.com/angelmondragon/mise-backend/internal/forecast"
	"github.com/angelmondragon/mise-backend/internal/inventory"
	"github.com/angelmondragon/mise-backend/pkg/completion"
	pkgerrors "github.com/angelmondragon/mise-backend/pkg/errors"
	"github.com/angelmondragon/mise-backend/pkg/logger"
	"github.com/angelmondragon/mise-backend/pkg/types"
)

type stubGate struct {
	allowed bool
	err     error
	calls   int
	token   string
}

func (g *stubGate) Authorize(_ context.Context, token, _ string) (bool, error) {
	g.calls++
	g.token = token
	return g.allowed, g.err
}

type stubSnapshots struct {
	snap  *inventory.Snapshot
	err   error
	calls int
}

func (s *stubSnapshots) FetchSnapshot(context.Context, uuid.UUID) (*inventory.Snapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

type scriptedChunks struct {
	chunks []string
	tail   error
}

func (s *scriptedChunks) Recv() (string, error) {
	if len(s.chunks) > 0 {
		c := s.chunks[0]
		s.chunks = s.chunks[1:]
		return c, nil
	}
	if s.tail != nil {
		return "", s.tail
	}
	return "", io.EOF
}

func (s *scriptedChunks) Close() error { return nil }

type scriptedStreamer struct {
	stream  *scriptedChunks
	openErr error
}

func (s *scriptedStreamer) StreamComplete(context.Context, string, string, completion.Params) (completion.ChunkStream, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.stream, nil
}

func newInsightService(t *testing.T, snaps *stubSnapshots, streamer completion.Streamer) forecast.Service {
	t.Helper()
	relay, err := forecast.NewRelay(streamer, nil, logger.Nop())
	require.NoError(t, err)
	svc, err := forecast.NewService(snaps, relay, logger.Nop())
	require.NoError(t, err)
	return svc
}

func lowStockSnapshot() *inventory.Snapshot {
	usage := 3.5
	return &inventory.Snapshot{Items: []inventory.Item{
		{ID: uuid.New(), Name: "Tomatoes", Quantity: 5, Unit: "kg", ParLevel: 20, ReorderPoint: 10, UsageRate: &usage},
	}}
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/inventory-insights", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithBearerToken(req.Context(), "token-1"))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error
}

func TestInventoryInsightsStreamsText(t *testing.T) {
	gate := &stubGate{allowed: true}
	streamer := &scriptedStreamer{stream: &scriptedChunks{chunks: []string{"Tomatoes: ", "order 15 kg"}}}
	handler := InventoryInsights(gate, newInsightService(t, &stubSnapshots{snap: lowStockSnapshot()}, streamer), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"`+uuid.NewString()+`","requestType":"reorder-forecast"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "Tomatoes: order 15 kg", rec.Body.String())
	assert.Equal(t, "token-1", gate.token)
}

func TestInventoryInsightsValidationBeforeVerification(t *testing.T) {
	gate := &stubGate{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "bad token")}
	snaps := &stubSnapshots{snap: lowStockSnapshot()}
	handler := InventoryInsights(gate, newInsightService(t, snaps, &scriptedStreamer{stream: &scriptedChunks{}}), logger.Nop())

	for _, body := range []string{`{"tenantId":"abc"}`, `{"requestType":"reorder-forecast"}`, `{"tenantId":"  ","requestType":"x"}`} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, postJSON(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, rec).Code)
	}
	assert.Zero(t, gate.calls)
	assert.Zero(t, snaps.calls)
}

func TestInventoryInsightsVerificationFailure(t *testing.T) {
	gate := &stubGate{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "token verification failed")}
	snaps := &stubSnapshots{snap: lowStockSnapshot()}
	handler := InventoryInsights(gate, newInsightService(t, snaps, &scriptedStreamer{stream: &scriptedChunks{}}), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"`+uuid.NewString()+`","requestType":"reorder-forecast"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, snaps.calls)
}

func TestInventoryInsightsForbiddenLeaksNothing(t *testing.T) {
	snaps := &stubSnapshots{snap: lowStockSnapshot()}
	handler := InventoryInsights(&stubGate{allowed: false}, newInsightService(t, snaps, &scriptedStreamer{stream: &scriptedChunks{}}), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"`+uuid.NewString()+`","requestType":"reorder-forecast"}`))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "Tomatoes")
	assert.NotContains(t, body, "details")
	assert.Zero(t, snaps.calls)
}

func TestInventoryInsightsMalformedTenantIsForbidden(t *testing.T) {
	handler := InventoryInsights(&stubGate{allowed: true}, newInsightService(t, &stubSnapshots{snap: lowStockSnapshot()}, &scriptedStreamer{stream: &scriptedChunks{}}), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"not-a-uuid","requestType":"reorder-forecast"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInventoryInsightsSnapshotFailureIs500(t *testing.T) {
	snaps := &stubSnapshots{err: pkgerrors.Wrap(pkgerrors.CodeUpstream, errors.New("db down"), "read inventory snapshot")}
	handler := InventoryInsights(&stubGate{allowed: true}, newInsightService(t, snaps, &scriptedStreamer{stream: &scriptedChunks{}}), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"`+uuid.NewString()+`","requestType":"reorder-forecast"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.CodeUpstream), apiErr.Code)
	assert.NotContains(t, apiErr.Message, "db down")
}

func TestInventoryInsightsSetupFailureIs500(t *testing.T) {
	streamer := &scriptedStreamer{openErr: errors.New("quota exceeded")}
	handler := InventoryInsights(&stubGate{allowed: true}, newInsightService(t, &stubSnapshots{snap: lowStockSnapshot()}, streamer), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"`+uuid.NewString()+`","requestType":"cost-optimizer"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestInventoryInsightsFailureBeforeFirstChunkIs500(t *testing.T) {
	streamer := &scriptedStreamer{stream: &scriptedChunks{tail: errors.New("stream reset")}}
	handler := InventoryInsights(&stubGate{allowed: true}, newInsightService(t, &stubSnapshots{snap: lowStockSnapshot()}, streamer), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"`+uuid.NewString()+`","requestType":"reorder-forecast"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestInventoryInsightsMidStreamFailureTruncatesBody(t *testing.T) {
	streamer := &scriptedStreamer{stream: &scriptedChunks{chunks: []string{"Tomatoes: order "}, tail: errors.New("stream reset")}}
	handler := InventoryInsights(&stubGate{allowed: true}, newInsightService(t, &stubSnapshots{snap: lowStockSnapshot()}, streamer), logger.Nop())

	srv := httptest.NewServer(middleware.Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r.WithContext(middleware.WithBearerToken(r.Context(), "token-1")))
	})))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"tenantId":"`+uuid.NewString()+`","requestType":"reorder-forecast"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "Tomatoes: order ", string(body))
	assert.Empty(t, resp.Trailer.Get(forecast.BaselineTrailer))
}

func TestInventoryInsightsCompletedStreamCarriesBaselineTrailer(t *testing.T) {
	streamer := &scriptedStreamer{stream: &scriptedChunks{chunks: []string{"Tomatoes: ", "3 days"}}}
	snap := lowStockSnapshot()
	handler := InventoryInsights(&stubGate{allowed: true}, newInsightService(t, &stubSnapshots{snap: snap}, streamer), logger.Nop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r.WithContext(middleware.WithBearerToken(r.Context(), "token-1")))
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"tenantId":"`+uuid.NewString()+`","requestType":"reorder-forecast"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Tomatoes: 3 days", string(body))

	baseline, err := forecast.DecodeBaseline(resp.Trailer.Get(forecast.BaselineTrailer))
	require.NoError(t, err)
	require.Len(t, baseline, 1)
	assert.Equal(t, snap.Items[0].ID, baseline[0].ID)
	assert.Equal(t, 10, baseline[0].DaysUntilStockout)
}

func TestInventoryInsightsEmptyInventoryCompletes(t *testing.T) {
	handler := InventoryInsights(&stubGate{allowed: true}, newInsightService(t, &stubSnapshots{snap: &inventory.Snapshot{}}, &scriptedStreamer{stream: &scriptedChunks{}}), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"`+uuid.NewString()+`","requestType":"inventory-reports"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestInventoryBaselineReturnsSuggestions(t *testing.T) {
	handler := InventoryBaseline(&stubGate{allowed: true}, newInsightService(t, &stubSnapshots{snap: lowStockSnapshot()}, &scriptedStreamer{stream: &scriptedChunks{}}), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"`+uuid.NewString()+`"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data []forecast.Suggestion `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Tomatoes", env.Data[0].Name)
	assert.Equal(t, 10, env.Data[0].DaysUntilStockout)
	assert.False(t, env.Data[0].AIEnhanced)
}

func TestInventoryBaselineForbidden(t *testing.T) {
	snaps := &stubSnapshots{snap: lowStockSnapshot()}
	handler := InventoryBaseline(&stubGate{allowed: false}, newInsightService(t, snaps, &scriptedStreamer{stream: &scriptedChunks{}}), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postJSON(`{"tenantId":"`+uuid.NewString()+`"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, snaps.calls)
}
