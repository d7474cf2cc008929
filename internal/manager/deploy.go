package manager

import (
	"context"
	"fmt"
	"path"

	"modelcatalog/internal/gitlab"
	"modelcatalog/internal/manifest"
	"modelcatalog/internal/registry"
	"modelcatalog/pkg/types"
)

// SpecFromRequest maps the wire request onto a DeploymentSpec. Defaults are not
// applied, and omitted numeric options stay nil.
func SpecFromRequest(req types.DeploymentRequest) manifest.DeploymentSpec {
	s := manifest.DeploymentSpec{
		Name:         req.Name,
		Model:        manifest.ModelReference{Name: req.ModelName, Version: req.ModelVersion},
		StorageURI:   req.StorageURI,
		InstanceType: req.InstanceType,
		ModelFormat:  req.ModelFormat,
		Runtime:      req.Runtime,
	}
	if b := req.Batching; b != nil {
		s.Batching = &manifest.Batching{Timeout: b.Timeout, MaxBatchSize: b.MaxBatchSize, MaxLatency: b.MaxLatency}
	}
	if a := req.Autoscaling; a != nil {
		s.Autoscaling = &manifest.Autoscaling{MinReplicas: a.MinReplicas, MaxReplicas: a.MaxReplicas}
	}
	if l := req.RequestLogging; l != nil {
		s.RequestLogging = &manifest.RequestLogging{Mode: l.Mode, URL: l.URL}
	}
	if me := req.MetricsExport; me != nil {
		s.MetricsExport = &manifest.MetricsExport{Port: me.Port, Path: me.Path}
	}
	return s
}

// Render synthesizes the manifest for req without committing it. A "latest"
// version costs one registry lookup.
func (m *Manager) Render(ctx context.Context, req types.DeploymentRequest) (types.DeploymentResponse, error) {
	spec := SpecFromRequest(req).WithDefaults()
	if err := manifest.Validate(spec); err != nil {
		return types.DeploymentResponse{}, err
	}
	res, err := m.resolver.Resolve(spec.InstanceType)
	if err != nil {
		return types.DeploymentResponse{}, err
	}
	if spec.Model.IsLatest() {
		version, err := m.resolveLatest(ctx, providerOf(req), spec.Model.Name)
		if err != nil {
			return types.DeploymentResponse{}, err
		}
		spec.Model.Version = version
	}

	doc := m.synth.Synthesize(spec, res)
	y, err := manifest.ToYAML(doc)
	if err != nil {
		return types.DeploymentResponse{}, fmt.Errorf("render manifest: %w", err)
	}
	return types.DeploymentResponse{
		Name:         doc.ObjectName(),
		ModelName:    spec.Model.Name,
		ModelVersion: spec.Model.Version,
		Manifest:     doc,
		YAML:         string(y),
	}, nil
}

// Deploy renders req and, when req.Commit is set, commits the YAML to source control.
func (m *Manager) Deploy(ctx context.Context, req types.DeploymentRequest) (resp types.DeploymentResponse, err error) {
	defer func() { deploymentsTotal.WithLabelValues(outcome(resp, err)).Inc() }()

	if req.Commit != nil {
		if m.committer == nil {
			return types.DeploymentResponse{}, ErrDependencyUnavailable("source control is not configured")
		}
		if err := checkCommitAction(req.Commit.Action); err != nil {
			return types.DeploymentResponse{}, err
		}
	}
	resp, err = m.Render(ctx, req)
	if err != nil {
		return types.DeploymentResponse{}, err
	}
	if req.Commit == nil {
		m.log.Info().Str("name", resp.Name).Str("model", resp.ModelName).Str("version", resp.ModelVersion).Msg("manifest rendered")
		return resp, nil
	}

	c := m.commitFor(*req.Commit, resp)
	if c.ProjectID == "" || c.Branch == "" {
		return types.DeploymentResponse{}, manifest.NewValidationError("commit", "project_id and branch are required when no defaults are configured")
	}
	err = m.committer.Commit(ctx, c.ProjectID, c.Branch, c.Message, []gitlab.Action{{
		Action:   gitlab.ActionKind(c.Action),
		FilePath: c.FilePath,
		Content:  resp.YAML,
	}})
	if err != nil {
		return types.DeploymentResponse{}, fmt.Errorf("deploy %s: %w", resp.Name, err)
	}
	m.log.Info().Str("name", resp.Name).Str("project", c.ProjectID).Str("branch", c.Branch).Str("file", c.FilePath).Msg("manifest committed")
	resp.Commit = &c
	return resp, nil
}

func (m *Manager) resolveLatest(ctx context.Context, provider, name string) (string, error) {
	c, err := m.catalog(provider)
	if err != nil {
		return "", err
	}
	mv, err := c.GetLatestVersion(ctx, name)
	if err != nil {
		return "", err
	}
	if mv == nil {
		return "", &registry.NotFoundError{Name: name, Version: manifest.LatestVersion}
	}
	return mv.Version, nil
}

func (m *Manager) commitFor(opts types.CommitOptions, resp types.DeploymentResponse) types.CommitResult {
	c := types.CommitResult{
		ProjectID: opts.ProjectID,
		Branch:    opts.Branch,
		FilePath:  opts.FilePath,
		Action:    opts.Action,
		Message:   opts.Message,
	}
	if c.ProjectID == "" {
		c.ProjectID = m.gitops.ProjectID
	}
	if c.Branch == "" {
		c.Branch = m.gitops.Branch
	}
	if c.FilePath == "" {
		c.FilePath = path.Join(m.gitops.PathPrefix, resp.Name+".yaml")
	}
	if c.Action == "" {
		c.Action = string(defaultCommitAction)
	}
	if c.Message == "" {
		c.Message = fmt.Sprintf("Deploy %s version %s", resp.ModelName, resp.ModelVersion)
	}
	return c
}

// checkCommitAction accepts the kinds that carry manifest content.
func checkCommitAction(action string) error {
	switch gitlab.ActionKind(action) {
	case "", gitlab.ActionCreate, gitlab.ActionUpdate:
		return nil
	}
	return manifest.NewValidationError("commit.action", "must be one of [create update]")
}

func providerOf(req types.DeploymentRequest) string {
	if req.Provider == "" {
		return defaultProvider
	}
	return req.Provider
}

func outcome(resp types.DeploymentResponse, err error) string {
	switch {
	case err == nil && resp.Commit != nil:
		return resultCommitted
	case err == nil:
		return resultRendered
	case IsValidation(err) || IsUnknownInstanceType(err):
		return resultInvalid
	}
	return resultFailed
}
