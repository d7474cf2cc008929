package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"modelcatalog/internal/gitlab"
	"modelcatalog/internal/httpapi"
	"modelcatalog/internal/instancetype"
	"modelcatalog/internal/manager"
	"modelcatalog/internal/manifest"
	"modelcatalog/internal/registry"
)

// fixture reads a recorded MLflow response shared with the registry tests.
func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "registry", "testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(b)
}

// newFakeMLflow serves canned bodies keyed by request path; unknown paths are
// answered the way MLflow answers a missing model.
func newFakeMLflow(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error_code":"RESOURCE_DOES_NOT_EXIST"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type gitlabCommit struct {
	Path    string
	Token   string
	Branch  string          `json:"branch"`
	Message string          `json:"commit_message"`
	Actions []gitlab.Action `json:"actions"`
}

// fakeGitLab records commit requests and answers with status.
type fakeGitLab struct {
	*httptest.Server
	mu      sync.Mutex
	status  int
	commits []gitlabCommit
}

func newFakeGitLab(t *testing.T, status int) *fakeGitLab {
	t.Helper()
	g := &fakeGitLab{status: status}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var c gitlabCommit
		_ = json.NewDecoder(r.Body).Decode(&c)
		c.Path = r.URL.EscapedPath()
		c.Token = r.Header.Get("PRIVATE-TOKEN")
		g.mu.Lock()
		g.commits = append(g.commits, c)
		g.mu.Unlock()
		w.WriteHeader(g.status)
		_, _ = w.Write([]byte(`{"id":"ed899a2f4b50b4370feeea94676502b42383c746"}`))
	}))
	t.Cleanup(g.Close)
	return g
}

func (g *fakeGitLab) Commits() []gitlabCommit {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gitlabCommit(nil), g.commits...)
}

// newServer wires real upstream clients against the fakes. A nil gl leaves
// commits disabled.
func newServer(t *testing.T, mlflowURL string, gl *fakeGitLab) *httptest.Server {
	t.Helper()
	log := zerolog.Nop()
	resolver, err := instancetype.NewResolver(map[string]instancetype.Resources{
		"ml.gpu.small": {CPU: "4", Memory: "16Gi"},
	})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	cfg := manager.Config{
		Catalogs: map[string]manager.Catalog{
			manager.ProviderMLflow: registry.New(registry.Config{TrackingURI: mlflowURL}, log),
		},
		Resolver:    resolver,
		Synthesizer: manifest.Synthesizer{ServiceAccount: "kserve-sa"},
		GitOps:      manager.GitOps{ProjectID: "57850499", Branch: "main", PathPrefix: "deployments"},
		Logger:      log,
	}
	if gl != nil {
		cfg.Committer = gitlab.New(gitlab.Config{BaseURI: gl.URL, AccessToken: "glpat-test"}, log)
	}
	srv := httptest.NewServer(httpapi.NewMux(manager.New(cfg)))
	t.Cleanup(srv.Close)
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	return do(t, req)
}

func httpPostJSON(t *testing.T, url string, payload any) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json: %v body=%s", err, body)
	}
}
