// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/session-foundation/config-sync/internal/adapter"
	"github.com/session-foundation/config-sync/internal/config"
	"github.com/session-foundation/config-sync/internal/crypto"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/mock"
	"github.com/session-foundation/config-sync/internal/swarm"
	"github.com/session-foundation/config-sync/internal/utils"
	"github.com/session-foundation/config-sync/models"
)

const testHashKey = "node-hash-key"

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type handlerFixture struct {
	router   http.Handler
	messages *mock.MockMessageRepository
	auth     *crypto.AuthenticationMethod
	swarm    models.SwarmPublicKey
	hasher   *utils.Hasher
}

func newHandlerFixture(t *testing.T, ctrl *gomock.Controller, hashKey string) *handlerFixture {
	t.Helper()
	identity, err := crypto.NewIdentity(strings.Repeat("01", 32))
	require.NoError(t, err)
	auth, err := identity.AuthenticationMethod(identity.UserSwarm())
	require.NoError(t, err)

	messages := mock.NewMockMessageRepository(ctrl)
	node := swarm.NewNode(messages, clockwork.NewFakeClockAt(testNow), logger.Nop())
	h := NewHandler(node, hashKey, models.NewAppBuildInfo("1.2.3", "", "abc"), logger.Nop())

	return &handlerFixture{
		router:   h.Init(),
		messages: messages,
		auth:     auth,
		swarm:    identity.UserSwarm(),
		hasher:   utils.NewHasher(testHashKey),
	}
}

func (fx *handlerFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(hashHeader, fx.hasher.SumHex(payload))
	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, req)
	return rr
}

// ── routes ───────────────────────────────────────────────────────────────────

func TestRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newHandlerFixture(t, ctrl, testHashKey)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "ping", method: http.MethodGet, path: "/api/v1/ping", wantStatus: http.StatusNoContent},
		{name: "version", method: http.MethodGet, path: "/api/v1/version", wantStatus: http.StatusOK},
		{name: "wrong method hides route", method: http.MethodGet, path: "/api/v1/batch", wantStatus: http.StatusNotFound},
		{name: "unknown path", method: http.MethodGet, path: "/api/v2/ping", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			fx.router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newHandlerFixture(t, ctrl, "")

	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/version", nil))

	var got map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, map[string]string{"version": "1.2.3", "date": "N/A", "commit": "abc"}, got)
}

// ── batch / retrieve ─────────────────────────────────────────────────────────

func TestBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newHandlerFixture(t, ctrl, testHashKey)

	req := models.SwarmRequest{
		Method: models.MethodStore,
		Store:  &models.StoreParams{Namespace: 3, Data: []byte("doc"), TTLMs: 1000},
	}
	fx.auth.Sign(&req, testNow.UnixMilli())
	fx.messages.EXPECT().Store(gomock.Any(), fx.swarm, gomock.Any()).Return(true, nil)

	rr := fx.post(t, "/api/v1/batch", models.SwarmBatch{Requests: []models.SwarmRequest{req}})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.SwarmBatchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Succeeded())
	assert.Contains(t, string(resp.Results[0].Body), crypto.MessageHash(3, []byte("doc")))
}

func TestBatch_Rejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newHandlerFixture(t, ctrl, testHashKey)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "empty batch", body: models.SwarmBatch{}, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: map[string]any{"requests": []any{}, "extra": 1}, wantStatus: http.StatusBadRequest},
		{name: "not an object", body: "nope", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := fx.post(t, "/api/v1/batch", tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRetrieve_BadSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newHandlerFixture(t, ctrl, testHashKey)

	req := models.SwarmRequest{Method: models.MethodRetrieve, Retrieve: &models.RetrieveParams{Namespace: 2}}
	fx.auth.Sign(&req, testNow.UnixMilli())
	req.Retrieve.Namespace = 5

	rr := fx.post(t, "/api/v1/retrieve", req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// TestAdapterRoundTrip drives the node through the client transport.
func TestAdapterRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newHandlerFixture(t, ctrl, testHashKey)
	srv := httptest.NewServer(fx.router)
	defer srv.Close()

	client, err := adapter.NewHTTPSwarmAdapter(
		config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: time.Second, RoutingTimeout: time.Second},
		config.ClientApp{HashKey: testHashKey},
		logger.Nop(),
	)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	store := models.SwarmRequest{Method: models.MethodStore, Store: &models.StoreParams{Namespace: 2, Data: []byte("p")}}
	del := models.SwarmRequest{Method: models.MethodDelete, Delete: &models.DeleteParams{Hashes: []string{"old"}}}
	fx.auth.Sign(&store, testNow.UnixMilli())
	fx.auth.Sign(&del, testNow.UnixMilli())

	gomock.InOrder(
		fx.messages.EXPECT().Store(gomock.Any(), fx.swarm, gomock.Any()).Return(true, nil),
		fx.messages.EXPECT().Delete(gomock.Any(), fx.swarm, []string{"old"}).Return([]string{"old"}, nil),
	)
	results, err := client.SendBatch(ctx, fx.swarm, []models.SwarmRequest{store, del})
	require.NoError(t, err)
	require.Len(t, results, 2)

	var stored models.StoreResult
	require.NoError(t, json.Unmarshal(results[0].Body, &stored))
	assert.Equal(t, crypto.MessageHash(2, []byte("p")), stored.Hash)

	retrieve := models.SwarmRequest{Method: models.MethodRetrieve, Retrieve: &models.RetrieveParams{Namespace: 2, LastHash: "h0", Limit: 5}}
	fx.auth.Sign(&retrieve, testNow.UnixMilli())
	fx.messages.EXPECT().Retrieve(gomock.Any(), fx.swarm, 2, "h0", 5).
		Return([]models.StoredMessage{{Hash: "h1", Namespace: 2, Data: []byte("d")}}, false, nil)

	res, err := client.Retrieve(ctx, retrieve)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, []byte("d"), res.Messages[0].Data)

	_, err = client.Retrieve(ctx, models.SwarmRequest{Method: models.MethodRetrieve, Retrieve: &models.RetrieveParams{}})
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
}

// ── middlewares ──────────────────────────────────────────────────────────────

func TestWithHashCheck(t *testing.T) {
	body := []byte(`{"requests":[]}`)
	good := utils.NewHasher(testHashKey).SumHex(body)

	tests := []struct {
		name       string
		hashKey    string
		header     string
		wantStatus int
	}{
		{name: "valid hash", hashKey: testHashKey, header: good, wantStatus: http.StatusTeapot},
		{name: "missing header", hashKey: testHashKey, wantStatus: http.StatusBadRequest},
		{name: "wrong hash", hashKey: testHashKey, header: strings.Repeat("0", 64), wantStatus: http.StatusBadRequest},
		{name: "not hex", hashKey: testHashKey, header: "zz", wantStatus: http.StatusBadRequest},
		{name: "check disabled", hashKey: "", wantStatus: http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(nil, tt.hashKey, models.NewAppBuildInfo("", "", ""), logger.Nop())
			var seen []byte
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusTeapot)
			})

			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
			if tt.header != "" {
				req.Header.Set(hashHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			h.withHashCheck(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusTeapot {
				assert.Equal(t, body, seen)
			}
		})
	}
}

func TestWithTraceID(t *testing.T) {
	tests := []struct {
		name      string
		incoming  string
		wantReuse bool
	}{
		{name: "reuses caller trace id", incoming: "trace-1", wantReuse: true},
		{name: "generates trace id", incoming: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{logger: logger.Nop()}
			var fromCtx string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromCtx, _ = utils.GetTraceIDFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(traceIDHeader, tt.incoming)
			}
			rr := httptest.NewRecorder()
			h.withTraceID(next).ServeHTTP(rr, req)

			got := rr.Header().Get(traceIDHeader)
			assert.NotEmpty(t, got)
			assert.Equal(t, got, fromCtx)
			if tt.wantReuse {
				assert.Equal(t, tt.incoming, got)
			}
		})
	}
}

func TestWithGZip(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	})

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	zw.Write([]byte("hello node"))
	zw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &compressed)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	withGZip(echo).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "hello node", string(got))
}

func TestWithGZip_NoBody(t *testing.T) {
	noContent := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	withGZip(noContent).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.Zero(t, rr.Body.Len())
}

func TestWithGZip_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rr := httptest.NewRecorder()
	withGZip(http.NotFoundHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResponseWriter(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rr}

	w.WriteHeader(http.StatusAccepted)
	w.WriteHeader(http.StatusInternalServerError)
	n, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	w.Write([]byte("de"))

	assert.Equal(t, 3, n)
	assert.Equal(t, http.StatusAccepted, w.status)
	assert.Equal(t, 5, w.size)
	assert.Equal(t, http.StatusAccepted, rr.Code)
}
