package types

// ModelTag is a key/value tag attached to a registered model version.
type ModelTag struct {
	// example: stage
	Key string `json:"key" example:"stage"`
	// example: production
	Value string `json:"value" example:"production"`
}

// ModelVersion is a normalized registry record as exposed by the catalog.
type ModelVersion struct {
	// Registered model name.
	// example: uplift_model
	Name string `json:"name" example:"uplift_model"`
	// Version number, as a string.
	// example: 1
	Version string `json:"version" example:"1"`
	// Creation time in milliseconds since the epoch.
	// example: 1715244800000
	CreationTimestamp int64 `json:"creation_timestamp" example:"1715244800000"`
	// Ordered tags.
	Tags []ModelTag `json:"tags"`
	// example: Uplift model used for predicting customer conversion probabilities.
	Description string `json:"description" example:"Uplift model used for predicting customer conversion probabilities."`
	// Artifact location inside the registry.
	// example: mlflow-artifacts:/916798459276195935/71153ac3ca0441a59556b061d24d1705/artifacts/uplift_model
	Source string `json:"source" example:"mlflow-artifacts:/916798459276195935/71153ac3ca0441a59556b061d24d1705/artifacts/uplift_model"`
	// Registry kind that produced the record.
	// example: MLflow
	Type string `json:"type" example:"MLflow"`
}

// ModelsResponse wraps one page of model versions.
type ModelsResponse struct {
	Models []ModelVersion `json:"models"`
	// Opaque token for the next page; null when there are no more results.
	// example: eyJvZmZzZXQiOiAyfQ==
	PageToken *string `json:"page_token" example:"eyJvZmZzZXQiOiAyfQ=="`
}

// Batching configures the request batcher. Omitted fields take defaults; zero is rejected.
type Batching struct {
	// Seconds to wait for a batch to fill. Defaults to 60.
	// example: 60
	Timeout *int `json:"timeout,omitempty" yaml:"timeout,omitempty" example:"60"`
	// Defaults to 32.
	// example: 32
	MaxBatchSize *int `json:"max_batch_size,omitempty" yaml:"max_batch_size,omitempty" example:"32"`
	// Milliseconds. Defaults to 500.
	// example: 500
	MaxLatency *int `json:"max_latency,omitempty" yaml:"max_latency,omitempty" example:"500"`
}

// Autoscaling bounds the replica count.
type Autoscaling struct {
	// example: 1
	MinReplicas *int `json:"min_replicas,omitempty" yaml:"min_replicas,omitempty" example:"1"`
	// example: 3
	MaxReplicas *int `json:"max_replicas,omitempty" yaml:"max_replicas,omitempty" example:"3"`
}

// RequestLogging forwards inference payloads to a sink.
type RequestLogging struct {
	// One of all, request, response. Defaults to all.
	// example: all
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" example:"all"`
	// example: http://message-dumper.default
	URL string `json:"url,omitempty" yaml:"url,omitempty" example:"http://message-dumper.default"`
}

// MetricsExport enables Prometheus scraping of the model server.
type MetricsExport struct {
	// example: 8082
	Port *int `json:"port,omitempty" yaml:"port,omitempty" example:"8082"`
	// example: /metrics
	Path string `json:"path,omitempty" yaml:"path,omitempty" example:"/metrics"`
}

// CommitOptions asks the service to commit the rendered manifest to source control.
// Empty fields fall back to the server's configured defaults.
type CommitOptions struct {
	// example: 57850499
	ProjectID string `json:"project_id,omitempty" yaml:"project_id,omitempty" example:"57850499"`
	// example: main
	Branch  string `json:"branch,omitempty" yaml:"branch,omitempty" example:"main"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// Repository path of the manifest. Defaults to <path_prefix>/<name>.yaml.
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	// One of create, update. Defaults to create.
	// example: create
	Action string `json:"action,omitempty" yaml:"action,omitempty" example:"create"`
}

// DeploymentRequest describes an inference service to synthesize.
type DeploymentRequest struct {
	// Optional service name; derived from the model when empty.
	// example: uplift-model-v1
	Name string `json:"name,omitempty" yaml:"name,omitempty" example:"uplift-model-v1"`
	// Registry provider used to resolve "latest". Defaults to mlflow.
	// example: mlflow
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty" example:"mlflow"`
	// example: uplift_model
	ModelName string `json:"model_name" yaml:"model_name" example:"uplift_model"`
	// A version number or "latest".
	// example: 1
	ModelVersion string `json:"model_version" yaml:"model_version" example:"1"`
	// example: s3://models/uplift_model/1
	StorageURI string `json:"storage_uri" yaml:"storage_uri" example:"s3://models/uplift_model/1"`
	// example: ml.cpu.small
	InstanceType string `json:"instance_type" yaml:"instance_type" example:"ml.cpu.small"`
	// example: mlflow
	ModelFormat string `json:"model_format,omitempty" yaml:"model_format,omitempty" example:"mlflow"`
	// example: kserve-mlserver
	Runtime        string          `json:"runtime,omitempty" yaml:"runtime,omitempty" example:"kserve-mlserver"`
	Batching       *Batching       `json:"batching,omitempty" yaml:"batching,omitempty"`
	Autoscaling    *Autoscaling    `json:"autoscaling,omitempty" yaml:"autoscaling,omitempty"`
	RequestLogging *RequestLogging `json:"request_logging,omitempty" yaml:"request_logging,omitempty"`
	MetricsExport  *MetricsExport  `json:"metrics_export,omitempty" yaml:"metrics_export,omitempty"`
	Commit         *CommitOptions  `json:"commit,omitempty" yaml:"commit,omitempty"`
}

// CommitResult reports where a manifest was committed.
type CommitResult struct {
	ProjectID string `json:"project_id"`
	Branch    string `json:"branch"`
	FilePath  string `json:"file_path"`
	Action    string `json:"action"`
	Message   string `json:"message"`
}

// DeploymentResponse carries the synthesized manifest.
type DeploymentResponse struct {
	// example: uplift-model-v1
	Name string `json:"name" example:"uplift-model-v1"`
	// example: uplift_model
	ModelName string `json:"model_name" example:"uplift_model"`
	// Concrete version after resolving "latest".
	// example: 1
	ModelVersion string `json:"model_version" example:"1"`
	// The InferenceService document.
	Manifest any `json:"manifest" swaggertype:"object"`
	// The same document rendered as YAML.
	YAML   string        `json:"yaml"`
	Commit *CommitResult `json:"commit,omitempty"`
}

// InstanceType is a named compute tier.
type InstanceType struct {
	// example: ml.cpu.small
	Name string `json:"name" example:"ml.cpu.small"`
	// example: 1
	CPU string `json:"cpu" example:"1"`
	// example: 2Gi
	Memory string `json:"memory" example:"2Gi"`
	// example: ml.cpu.small 1 Cores, 2 GB (RAM)
	Description string `json:"description" example:"ml.cpu.small 1 Cores, 2 GB (RAM)"`
}

// InstanceTypesResponse lists the available instance types in table order.
type InstanceTypesResponse struct {
	InstanceTypes []InstanceType `json:"instance_types"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Status returned by the upstream service, when one was involved.
	// example: 404
	UpstreamStatus int `json:"upstream_status,omitempty" example:"404"`
	// Per-field validation failures.
	Fields []FieldError `json:"fields,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	// example: batching.timeout
	Field string `json:"field" example:"batching.timeout"`
	// example: must be greater than 0
	Message string `json:"message" example:"must be greater than 0"`
}
