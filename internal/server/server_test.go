package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skilltree/internal/cache"
	"github.com/abhisek/skilltree/internal/catalog"
	"github.com/abhisek/skilltree/internal/logging"
	"github.com/abhisek/skilltree/internal/progress"
	"github.com/abhisek/skilltree/internal/render"
	"github.com/abhisek/skilltree/internal/store"
)

type fixture struct {
	server *Server
	srv    *httptest.Server
	tree   store.Tree
	token  string
	userID int
	nodeID map[string]int
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tree, err := catalog.Import(ctx, s.Trees(), catalog.Sample())
	require.NoError(t, err)
	u, err := s.Users().Create(ctx, "ada")
	require.NoError(t, err)

	g, err := s.Trees().LoadGraph(ctx, tree.ID)
	require.NoError(t, err)
	ids := make(map[string]int)
	for _, n := range g.Nodes() {
		if _, seen := ids[n.Title]; !seen {
			ids[n.Title] = n.ID
		}
	}

	reg := prometheus.NewRegistry()
	tracker := progress.NewTracker(s.Trees(), s.Progress(), progress.WithCache(cache.NewMemory()))
	server := New(s.Trees(), s.Users(), tracker, append([]Option{WithRegistry(reg)}, opts...)...)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return &fixture{server: server, srv: srv, tree: tree, token: u.Token, userID: u.ID, nodeID: ids}
}

func (f *fixture) do(t *testing.T, method, path, token string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func path(format string, id int) string {
	return strings.Replace(format, "{}", strconv.Itoa(id), 1)
}

func TestHealth(t *testing.T) {
	f := setup(t)
	resp, body := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestListTrees(t *testing.T) {
	f := setup(t)
	resp, body := f.do(t, http.MethodGet, "/api/trees", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var trees []treeSummary
	require.NoError(t, json.Unmarshal(body, &trees))
	require.Len(t, trees, 1)
	assert.Equal(t, "Leads Sentinel with n8n", trees[0].Title)
	assert.True(t, trees[0].IsFree)
}

func TestRoadmap_Anonymous(t *testing.T) {
	f := setup(t)
	resp, body := f.do(t, http.MethodGet, path("/api/trees/{}", f.tree.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v render.RoadmapView
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Len(t, v.Rows, 26)
	assert.Equal(t, progress.BeforeStart, v.Position)
	require.NotNil(t, v.Next)
	assert.Equal(t, "n8n basics", v.Next.Name)
	assert.Equal(t, "Leads Sentinel with n8n", v.Title)
}

func TestToggle_RequiresIdentity(t *testing.T) {
	f := setup(t)
	resp, _ := f.do(t, http.MethodPost, path("/api/nodes/{}/toggle", f.nodeID["n8n basics"]), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, path("/api/nodes/{}/toggle", f.nodeID["n8n basics"]), "bogus")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestToggleDone_AdvancesRoadmap(t *testing.T) {
	f := setup(t)
	first := f.nodeID["n8n basics"]

	resp, body := f.do(t, http.MethodPost, path("/api/nodes/{}/toggle", first), f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"done":true}`, string(body))

	_, body = f.do(t, http.MethodGet, path("/api/trees/{}", f.tree.ID), f.token)
	var v render.RoadmapView
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, 0, v.Position)
	require.NotNil(t, v.Next)
	assert.Equal(t, "setup botfather", v.Next.Name)

	// Completion is per skill: every node backed by "n8n basics" is done.
	doneNodes := 0
	for _, r := range v.Rows {
		if r.Name == "n8n basics" && r.Done {
			doneNodes++
		}
	}
	assert.Equal(t, 3, doneNodes)

	resp, body = f.do(t, http.MethodPost, path("/api/nodes/{}/toggle-done", first), f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"done":false}`, string(body))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.server.metrics.toggles.WithLabelValues("done", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.server.metrics.toggles.WithLabelValues("done", "false")))
}

func TestToggleIgnore(t *testing.T) {
	f := setup(t)
	node := f.nodeID["web basics"]

	resp, body := f.do(t, http.MethodPost, path("/api/nodes/{}/toggle-ignore", node), f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ignored":true}`, string(body))

	_, body = f.do(t, http.MethodGet, path("/api/trees/{}", f.tree.ID), f.token)
	var v render.RoadmapView
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, 4, v.Summary.Ignored)
}

func TestGraphPayload(t *testing.T) {
	f := setup(t)
	_, _ = f.do(t, http.MethodPost, path("/api/nodes/{}/toggle", f.nodeID["n8n basics"]), f.token)

	resp, body := f.do(t, http.MethodGet, path("/api/trees/{}/graph", f.tree.ID), f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p render.GraphPayload
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Len(t, p.Nodes, 26)
	assert.Len(t, p.Edges, 25)

	byID := make(map[string]render.NodeRecord)
	for _, n := range p.Nodes {
		byID[n.ID] = n
	}
	first := byID[render.ElementID(f.nodeID["n8n basics"])]
	assert.True(t, first.Done)
	assert.True(t, byID[render.ElementID(f.nodeID["setup botfather"])].Next)
}

func TestNotFoundAndBadRequest(t *testing.T) {
	f := setup(t)
	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/trees/9999", http.StatusNotFound},
		{http.MethodGet, "/api/trees/9999/graph", http.StatusNotFound},
		{http.MethodGet, "/api/trees/abc", http.StatusBadRequest},
		{http.MethodPost, "/api/nodes/9999/toggle", http.StatusNotFound},
		{http.MethodPost, "/api/nodes/-1/toggle", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, _ := f.do(t, tt.method, tt.path, f.token)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t)
	_, _ = f.do(t, http.MethodGet, "/api/trees", "")

	resp, body := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `skilltree_http_requests_total{method="GET",route="/api/trees",status="200"} 1`)
}

type brokenUsers struct{}

func (brokenUsers) ByToken(context.Context, string) (store.User, error) {
	return store.User{}, errors.New("db down")
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	h := New(nil, brokenUsers{}, nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestLog_RecordsUser(t *testing.T) {
	var buf bytes.Buffer
	f := setup(t, WithLogger(logging.NewWriter(&buf, slog.LevelInfo)))

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"authenticated", f.token, "user=" + strconv.Itoa(f.userID)},
		{"anonymous", "", "user=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			req := httptest.NewRequest(http.MethodGet, "/api/trees", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			f.server.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, buf.String(), "msg=request")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}
