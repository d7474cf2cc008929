package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelcatalog/internal/registry"
	"modelcatalog/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	SearchRegisteredModels(ctx context.Context, provider string, opts registry.SearchOptions) (types.ModelsResponse, error)
	SearchModelVersions(ctx context.Context, provider string, opts registry.SearchOptions) (types.ModelsResponse, error)
	LatestVersion(ctx context.Context, provider, name string) (*types.ModelVersion, error)
	ModelVersion(ctx context.Context, provider, name, version string) (types.ModelVersion, error)
	Deploy(ctx context.Context, req types.DeploymentRequest) (types.DeploymentResponse, error)
	InstanceTypes() []types.InstanceType
}

type handlers struct {
	svc Service
}

func NewMux(svc Service) http.Handler {
	h := &handlers{svc: svc}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	api := chi.NewRouter()
	api.Route("/model-catalog/{provider}/models", func(r chi.Router) {
		r.Get("/registered", h.registeredModels)
		r.Get("/versions", h.modelVersions)
		r.Get("/{name}/latest-version", h.latestVersion)
		r.Get("/{name}/versions/{version}", h.modelVersion)
	})
	api.Post("/deployments", h.deploy)
	api.Get("/instance-types", h.instanceTypes)
	if apiPrefix == "" {
		r.Mount("/", api)
	} else {
		r.Mount(apiPrefix, api)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "Authorization"}
	}
	return cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   methods,
		AllowedHeaders:   headers,
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// registeredModels godoc
// @Summary      Search registered models
// @Description  Latest versions of every registered model matching the filter, one page at a time.
// @Tags         model-catalog
// @Produce      json
// @Param        provider     path   string  true   "Registry provider"  Enums(mlflow)
// @Param        max_results  query  int     false  "Page size"  default(10)
// @Param        filter       query  string  false  "Registry filter expression"
// @Param        order_by     query  []string false "Ordering clauses"  collectionFormat(multi)
// @Param        page_token   query  string  false  "Token from a previous page"
// @Success      200  {object}  types.ModelsResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Failure      502  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /model-catalog/{provider}/models/registered [get]
func (h *handlers) registeredModels(w http.ResponseWriter, r *http.Request) {
	opts, err := searchOptions(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	resp, err := h.svc.SearchRegisteredModels(ctx, chi.URLParam(r, "provider"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// modelVersions godoc
// @Summary      Search model versions
// @Tags         model-catalog
// @Produce      json
// @Param        provider     path   string  true   "Registry provider"  Enums(mlflow)
// @Param        max_results  query  int     false  "Page size"  default(10)
// @Param        filter       query  string  false  "Registry filter expression"
// @Param        order_by     query  []string false "Ordering clauses"  collectionFormat(multi)
// @Param        page_token   query  string  false  "Token from a previous page"
// @Success      200  {object}  types.ModelsResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      502  {object}  types.ErrorResponse
// @Router       /model-catalog/{provider}/models/versions [get]
func (h *handlers) modelVersions(w http.ResponseWriter, r *http.Request) {
	opts, err := searchOptions(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	resp, err := h.svc.SearchModelVersions(ctx, chi.URLParam(r, "provider"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// latestVersion godoc
// @Summary      Latest version of a model
// @Tags         model-catalog
// @Produce      json
// @Param        provider  path  string  true  "Registry provider"  Enums(mlflow)
// @Param        name      path  string  true  "Registered model name"
// @Success      200  {object}  types.ModelVersion
// @Success      204  "The model has no versions"
// @Failure      404  {object}  types.ErrorResponse
// @Router       /model-catalog/{provider}/models/{name}/latest-version [get]
func (h *handlers) latestVersion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	mv, err := h.svc.LatestVersion(ctx, chi.URLParam(r, "provider"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if mv == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

// modelVersion godoc
// @Summary      One model version
// @Tags         model-catalog
// @Produce      json
// @Param        provider  path  string  true  "Registry provider"  Enums(mlflow)
// @Param        name      path  string  true  "Registered model name"
// @Param        version   path  string  true  "Version number"
// @Success      200  {object}  types.ModelVersion
// @Failure      404  {object}  types.ErrorResponse
// @Router       /model-catalog/{provider}/models/{name}/versions/{version} [get]
func (h *handlers) modelVersion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	mv, err := h.svc.ModelVersion(ctx, chi.URLParam(r, "provider"), chi.URLParam(r, "name"), chi.URLParam(r, "version"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

// deploy godoc
// @Summary      Synthesize an inference service
// @Description  Renders a KServe InferenceService for a model version and optionally commits it to source control.
// @Tags         deployments
// @Accept       json
// @Produce      json
// @Produce      application/yaml
// @Param        format   query  string                   false  "Set to yaml for the raw manifest"  Enums(json, yaml)
// @Param        request  body   types.DeploymentRequest  true   "Deployment"
// @Success      200  {object}  types.DeploymentResponse
// @Success      201  {object}  types.DeploymentResponse  "Committed"
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Failure      415  {object}  types.ErrorResponse
// @Failure      422  {object}  types.ErrorResponse
// @Failure      502  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /deployments [post]
func (h *handlers) deploy(w http.ResponseWriter, r *http.Request) {
	// Content-Type check
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.DeploymentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "yaml" {
		writeJSONError(w, http.StatusBadRequest, "format must be json or yaml")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	resp, err := h.svc.Deploy(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Commit != nil {
		status = http.StatusCreated
	}
	if format == "yaml" {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp.YAML))
		return
	}
	writeJSON(w, status, resp)
}

// instanceTypes godoc
// @Summary      List instance types
// @Tags         deployments
// @Produce      json
// @Success      200  {object}  types.InstanceTypesResponse
// @Router       /instance-types [get]
func (h *handlers) instanceTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.InstanceTypesResponse{InstanceTypes: h.svc.InstanceTypes()})
}

// searchOptions reads the pagination query. order_by may repeat or be comma-separated.
func searchOptions(r *http.Request) (registry.SearchOptions, error) {
	q := r.URL.Query()
	opts := registry.SearchOptions{
		Filter:    q.Get("filter"),
		PageToken: q.Get("page_token"),
	}
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errInvalidParam("max_results must be a positive integer")
		}
		opts.MaxResults = n
	}
	for _, v := range q["order_by"] {
		for _, clause := range strings.Split(v, ",") {
			if clause = strings.TrimSpace(clause); clause != "" {
				opts.OrderBy = append(opts.OrderBy, clause)
			}
		}
	}
	return opts, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string { return string(e) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}
