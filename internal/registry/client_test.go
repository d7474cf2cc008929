package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"modelcatalog/internal/transport"
)

type recordedRequest struct {
	path  string
	query url.Values
}

// fakeMLflow serves fixture files keyed by request path and records every call.
func fakeMLflow(t *testing.T, routes map[string]string) (*Client, func() []recordedRequest) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, recordedRequest{path: r.URL.Path, query: r.URL.Query()})
		mu.Unlock()
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error_code":"RESOURCE_DOES_NOT_EXIST","message":"not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(Config{TrackingURI: srv.URL}, zerolog.Nop()), func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), calls...)
	}
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(b)
}

var (
	churnTags  = []Tag{{Key: "stage", Value: "evaluation"}, {Key: "approved", Value: "false"}}
	upliftTags = []Tag{{Key: "stage", Value: "production"}, {Key: "approved", Value: "true"}}
)

func churn(version string) ModelVersion {
	return ModelVersion{
		Name:              "churn_model",
		Version:           version,
		CreationTimestamp: 1715438791345,
		Tags:              churnTags,
		Description:       "Model to predict customer churn, currently in evaluation.",
		Source:            "mlflow-artifacts:/881970382704382419/764238746b7f4e7397a706a1f59a4016/artifacts/model",
	}
}

func uplift() ModelVersion {
	return ModelVersion{
		Name:              "uplift_model",
		Version:           "1",
		CreationTimestamp: 1715244800000,
		Tags:              upliftTags,
		Description:       "Uplift model used for predicting customer conversion probabilities.",
		Source:            "mlflow-artifacts:/916798459276195935/71153ac3ca0441a59556b061d24d1705/artifacts/uplift_model",
	}
}

func TestSearchRegisteredModels_FlattensLatestVersionsInOrder(t *testing.T) {
	c, calls := fakeMLflow(t, map[string]string{registeredModelsSearchPath: fixture(t, "registered_models.json")})
	page, err := c.SearchRegisteredModels(context.Background(), SearchOptions{
		MaxResults: 5,
		Filter:     "name LIKE '%model'",
		OrderBy:    []string{"name ASC", "last_updated_timestamp DESC"},
		PageToken:  "tok-1",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []ModelVersion{churn("1"), churn("2"), uplift()}
	if diff := cmp.Diff(want, page.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if page.NextPageToken != "eyJvZmZzZXQiOiAyfQ==" || !page.HasMore() {
		t.Fatalf("token=%q", page.NextPageToken)
	}
	if len(calls()) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(calls()))
	}
	q := calls()[0].query
	if q.Get("max_results") != "5" || q.Get("filter") != "name LIKE '%model'" || q.Get("page_token") != "tok-1" {
		t.Fatalf("unexpected query: %v", q)
	}
	if q.Get("order_by") != "name ASC,last_updated_timestamp DESC" {
		t.Fatalf("order_by=%q", q.Get("order_by"))
	}
}

func TestSearchRegisteredModels_OmitsEmptyParamsAndToken(t *testing.T) {
	c, calls := fakeMLflow(t, map[string]string{registeredModelsSearchPath: `{"registered_models":[{"name":"empty"}]}`})
	page, err := c.SearchRegisteredModels(context.Background(), SearchOptions{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Records) != 0 {
		t.Fatalf("expected no records, got %d", len(page.Records))
	}
	if page.NextPageToken != "" || page.HasMore() {
		t.Fatalf("expected absent token, got %q", page.NextPageToken)
	}
	q := calls()[0].query
	if q.Get("max_results") != "10" {
		t.Fatalf("default max_results=%q", q.Get("max_results"))
	}
	for _, k := range []string{"filter", "order_by", "page_token"} {
		if _, ok := q[k]; ok {
			t.Fatalf("unexpected %s in query: %v", k, q)
		}
	}
}

func TestSearchModelVersions(t *testing.T) {
	c, calls := fakeMLflow(t, map[string]string{modelVersionsSearchPath: fixture(t, "model_versions.json")})
	page, err := c.SearchModelVersions(context.Background(), SearchOptions{Filter: "name='churn_model'"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []ModelVersion{churn("1"), churn("2"), uplift()}
	if diff := cmp.Diff(want, page.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if page.NextPageToken != "" {
		t.Fatalf("token=%q", page.NextPageToken)
	}
	if calls()[0].path != modelVersionsSearchPath {
		t.Fatalf("path=%s", calls()[0].path)
	}
}

func TestGetLatestVersion_UpliftModel(t *testing.T) {
	c, calls := fakeMLflow(t, map[string]string{latestVersionsPath: fixture(t, "latest_versions.json")})
	mv, err := c.GetLatestVersion(context.Background(), "uplift_model")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if mv == nil {
		t.Fatalf("expected a version")
	}
	if diff := cmp.Diff(uplift(), *mv); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if calls()[0].query.Get("name") != "uplift_model" {
		t.Fatalf("name param=%q", calls()[0].query.Get("name"))
	}
}

func TestGetLatestVersion_FirstOfManyAndEmpty(t *testing.T) {
	c, _ := fakeMLflow(t, map[string]string{latestVersionsPath: fixture(t, "model_versions.json")})
	mv, err := c.GetLatestVersion(context.Background(), "churn_model")
	if err != nil || mv == nil {
		t.Fatalf("latest: %v %v", mv, err)
	}
	if mv.Version != "1" || mv.Name != "churn_model" {
		t.Fatalf("expected first record in upstream order, got %+v", mv)
	}

	c, _ = fakeMLflow(t, map[string]string{latestVersionsPath: `{}`})
	mv, err = c.GetLatestVersion(context.Background(), "churn_model")
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if mv != nil {
		t.Fatalf("expected nil, got %+v", mv)
	}
}

func TestGetLatestVersion_UnknownModelIsNotFound(t *testing.T) {
	c, _ := fakeMLflow(t, nil)
	_, err := c.GetLatestVersion(context.Background(), "ghost")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T %v", err, err)
	}
	if transport.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("upstream status not preserved: %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	c, calls := fakeMLflow(t, map[string]string{modelVersionGetPath: fixture(t, "model_version.json")})
	mv, err := c.GetVersion(context.Background(), "churn_model", "2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(churn("2"), mv); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	q := calls()[0].query
	if q.Get("name") != "churn_model" || q.Get("version") != "2" {
		t.Fatalf("query=%v", q)
	}
}

func TestGetVersion_MissingRecord(t *testing.T) {
	c, _ := fakeMLflow(t, map[string]string{modelVersionGetPath: `{"model_version":{}}`})
	_, err := c.GetVersion(context.Background(), "churn_model", "9")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Version != "9" {
		t.Fatalf("expected NotFoundError for version 9, got %v", err)
	}

	c, _ = fakeMLflow(t, nil)
	_, err = c.GetVersion(context.Background(), "churn_model", "9")
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on upstream 404, got %v", err)
	}
}

func TestUpstreamRejectionIsRegistryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":"INVALID_PARAMETER_VALUE"}`))
	}))
	defer srv.Close()
	c := New(Config{TrackingURI: srv.URL, Token: "t"}, zerolog.Nop())
	_, err := c.SearchModelVersions(context.Background(), SearchOptions{Filter: "bogus"})
	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	if re.Cause.StatusCode != http.StatusBadRequest || re.Cause.Body == "" {
		t.Fatalf("cause=%+v", re.Cause)
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		t.Fatalf("rejection must not be reported as not found")
	}
}

func TestNew_SendsBearerToken(t *testing.T) {
	auths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths <- r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c := New(Config{TrackingURI: srv.URL, Token: "abc"}, zerolog.Nop())
	if _, err := c.SearchModelVersions(context.Background(), SearchOptions{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if auth := <-auths; auth != "Bearer abc" {
		t.Fatalf("authorization=%q", auth)
	}
}

func TestNonJSONSuccessBodyIsRegistryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>proxy login</html>"))
	}))
	defer srv.Close()
	c := New(Config{TrackingURI: srv.URL}, zerolog.Nop())
	ctx := context.Background()

	calls := map[string]func() error{
		"search registered": func() error { _, err := c.SearchRegisteredModels(ctx, SearchOptions{}); return err },
		"search versions":   func() error { _, err := c.SearchModelVersions(ctx, SearchOptions{}); return err },
		"latest": func() error {
			mv, err := c.GetLatestVersion(ctx, "uplift_model")
			if mv != nil {
				t.Errorf("latest returned %+v for a non-JSON body", mv)
			}
			return err
		},
		"get": func() error { _, err := c.GetVersion(ctx, "uplift_model", "1"); return err },
	}
	for name, call := range calls {
		err := call()
		var re *Error
		if !errors.As(err, &re) {
			t.Fatalf("%s: expected *Error, got %T %v", name, err, err)
		}
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("%s: expected ErrMalformedResponse in chain: %v", name, err)
		}
		if re.Cause.StatusCode != http.StatusOK || re.Cause.Unreachable() || re.Cause.Body != "<html>proxy login</html>" {
			t.Fatalf("%s: cause=%+v", name, re.Cause)
		}
		var nf *NotFoundError
		if errors.As(err, &nf) {
			t.Fatalf("%s: malformed body must not read as not found", name)
		}
	}
}
