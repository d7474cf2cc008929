package manager

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"modelcatalog/internal/gitlab"
	"modelcatalog/internal/manifest"
	"modelcatalog/internal/registry"
	"modelcatalog/pkg/types"
)

type fakeCatalog struct {
	mu       sync.Mutex
	page     registry.SearchPage
	latest   *registry.ModelVersion
	version  registry.ModelVersion
	err      error
	lookups  int
	lastOpts registry.SearchOptions
}

func (f *fakeCatalog) SearchRegisteredModels(_ context.Context, opts registry.SearchOptions) (registry.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = opts
	return f.page, f.err
}

func (f *fakeCatalog) SearchModelVersions(_ context.Context, opts registry.SearchOptions) (registry.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = opts
	return f.page, f.err
}

func (f *fakeCatalog) GetLatestVersion(_ context.Context, _ string) (*registry.ModelVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.latest, f.err
}

func (f *fakeCatalog) GetVersion(_ context.Context, _, _ string) (registry.ModelVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.version, f.err
}

type commitCall struct {
	projectID, branch, message string
	actions                    []gitlab.Action
}

type fakeCommitter struct {
	mu    sync.Mutex
	calls []commitCall
	err   error
}

func (f *fakeCommitter) Commit(_ context.Context, projectID, branch, message string, actions []gitlab.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, commitCall{projectID, branch, message, actions})
	return f.err
}

func newTestManager(cat *fakeCatalog, com *fakeCommitter) *Manager {
	cfg := Config{
		Catalogs:    map[string]Catalog{ProviderMLflow: cat},
		Synthesizer: manifest.Synthesizer{ServiceAccount: "sa"},
		GitOps:      GitOps{ProjectID: "57850499", Branch: "main", PathPrefix: "deployments"},
		Logger:      zerolog.Nop(),
	}
	if com != nil {
		cfg.Committer = com
	}
	return New(cfg)
}

func upliftRecord() registry.ModelVersion {
	return registry.ModelVersion{
		Name:              "uplift_model",
		Version:           "1",
		CreationTimestamp: 1715244800000,
		Tags:              []registry.Tag{{Key: "stage", Value: "production"}},
		Description:       "Uplift model used for predicting customer conversion probabilities.",
		Source:            "mlflow-artifacts:/916798459276195935/71153ac3ca0441a59556b061d24d1705/artifacts/uplift_model",
	}
}

func deployRequest() types.DeploymentRequest {
	return types.DeploymentRequest{
		ModelName:    "uplift_model",
		ModelVersion: "1",
		StorageURI:   "s3://models/uplift_model/1",
		InstanceType: "ml.cpu.small",
	}
}
