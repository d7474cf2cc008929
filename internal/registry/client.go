// Package registry talks to an MLflow tracking server's model registry and
// normalizes its version records into ModelVersion values.
package registry

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"modelcatalog/internal/transport"
)

const (
	apiPrefix = "/api/2.0/mlflow"

	registeredModelsSearchPath = apiPrefix + "/registered-models/search"
	latestVersionsPath         = apiPrefix + "/registered-models/get-latest-versions"
	modelVersionsSearchPath    = apiPrefix + "/model-versions/search"
	modelVersionGetPath        = apiPrefix + "/model-versions/get"
)

// ErrMalformedResponse marks a successful upstream status whose body is not JSON.
var ErrMalformedResponse = errors.New("malformed response body")

// DefaultMaxResults is sent when SearchOptions.MaxResults is not positive.
const DefaultMaxResults = 10

// Config locates the tracking server.
type Config struct {
	TrackingURI string
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
}

// SearchOptions are passed through to the upstream search endpoints verbatim.
type SearchOptions struct {
	MaxResults int
	Filter     string
	OrderBy    []string
	PageToken  string
}

// Client is an MLflow model registry client. Safe for concurrent use.
type Client struct {
	tc *transport.Client
}

// New constructs a Client.
func New(cfg Config, log zerolog.Logger) *Client {
	headers := map[string]string{}
	if cfg.Token != "" {
		headers["Authorization"] = "Bearer " + cfg.Token
	}
	tc := transport.New(transport.Target{
		Name:    "mlflow",
		BaseURI: cfg.TrackingURI,
		Headers: headers,
		Timeout: cfg.Timeout,
	}, func(e *transport.Error) error { return &Error{Cause: e} }, transport.WithLogger(log))
	return &Client{tc: tc}
}

// SearchRegisteredModels returns one page of registered models, flattened so that
// every entry of each model's latest_versions becomes its own record.
func (c *Client) SearchRegisteredModels(ctx context.Context, opts SearchOptions) (SearchPage, error) {
	resp, err := c.tc.Do(ctx, http.MethodGet, registeredModelsSearchPath, opts.values(), nil)
	if err != nil {
		return SearchPage{}, err
	}
	if err := checkBody(registeredModelsSearchPath, resp); err != nil {
		return SearchPage{}, err
	}
	doc := gjson.ParseBytes(resp.Body)
	var records []ModelVersion
	doc.Get("registered_models").ForEach(func(_, model gjson.Result) bool {
		model.Get("latest_versions").ForEach(func(_, v gjson.Result) bool {
			records = append(records, normalize(v))
			return true
		})
		return true
	})
	return SearchPage{Records: records, NextPageToken: doc.Get("next_page_token").String()}, nil
}

// SearchModelVersions returns one page of model versions.
func (c *Client) SearchModelVersions(ctx context.Context, opts SearchOptions) (SearchPage, error) {
	resp, err := c.tc.Do(ctx, http.MethodGet, modelVersionsSearchPath, opts.values(), nil)
	if err != nil {
		return SearchPage{}, err
	}
	if err := checkBody(modelVersionsSearchPath, resp); err != nil {
		return SearchPage{}, err
	}
	doc := gjson.ParseBytes(resp.Body)
	return SearchPage{
		Records:       normalizeAll(doc.Get("model_versions")),
		NextPageToken: doc.Get("next_page_token").String(),
	}, nil
}

// GetLatestVersion returns the first version listed by the upstream for name, or
// nil when the model has no versions.
func (c *Client) GetLatestVersion(ctx context.Context, name string) (*ModelVersion, error) {
	resp, err := c.tc.Do(ctx, http.MethodGet, latestVersionsPath, url.Values{"name": {name}}, nil)
	if err != nil {
		if transport.StatusOf(err) == http.StatusNotFound {
			return nil, &NotFoundError{Name: name, Err: err}
		}
		return nil, err
	}
	if err := checkBody(latestVersionsPath, resp); err != nil {
		return nil, err
	}
	first := gjson.GetBytes(resp.Body, "model_versions.0")
	if !first.Exists() {
		return nil, nil
	}
	mv := normalize(first)
	return &mv, nil
}

// GetVersion fetches one exact version.
func (c *Client) GetVersion(ctx context.Context, name, version string) (ModelVersion, error) {
	q := url.Values{"name": {name}, "version": {version}}
	resp, err := c.tc.Do(ctx, http.MethodGet, modelVersionGetPath, q, nil)
	if err != nil {
		if transport.StatusOf(err) == http.StatusNotFound {
			return ModelVersion{}, &NotFoundError{Name: name, Version: version, Err: err}
		}
		return ModelVersion{}, err
	}
	if err := checkBody(modelVersionGetPath, resp); err != nil {
		return ModelVersion{}, err
	}
	v := gjson.GetBytes(resp.Body, "model_version")
	if !v.IsObject() || len(v.Map()) == 0 {
		return ModelVersion{}, &NotFoundError{Name: name, Version: version}
	}
	return normalize(v), nil
}

// checkBody rejects bodies gjson would silently read as empty, e.g. an HTML page
// served by a proxy in front of the tracking server.
func checkBody(path string, resp *transport.Response) error {
	if gjson.ValidBytes(resp.Body) {
		return nil
	}
	return &Error{Cause: &transport.Error{
		Service:    "mlflow",
		Method:     http.MethodGet,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
		Err:        ErrMalformedResponse,
	}}
}

func (o SearchOptions) values() url.Values {
	n := o.MaxResults
	if n <= 0 {
		n = DefaultMaxResults
	}
	q := url.Values{"max_results": {strconv.Itoa(n)}}
	if len(o.OrderBy) > 0 {
		q.Set("order_by", strings.Join(o.OrderBy, ","))
	}
	if o.Filter != "" {
		q.Set("filter", o.Filter)
	}
	if o.PageToken != "" {
		q.Set("page_token", o.PageToken)
	}
	return q
}
