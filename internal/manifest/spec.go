package manifest

// Defaults applied to omitted fields of a DeploymentSpec.
const (
	DefaultModelFormat  = "mlflow"
	DefaultRuntime      = "kserve-mlserver"
	DefaultBatchTimeout = 60
	DefaultMaxBatchSize = 32
	DefaultMaxLatency   = 500
	DefaultReplicas     = 1
	DefaultLoggerMode   = LoggerModeAll
	DefaultMetricsPort  = 8082
	DefaultMetricsPath  = "/metrics"

	// LatestVersion refers to the newest registered version of a model.
	LatestVersion = "latest"
)

// Request logger modes.
const (
	LoggerModeAll      = "all"
	LoggerModeRequest  = "request"
	LoggerModeResponse = "response"
)

// ModelReference names a registered model version. Version may be "latest".
type ModelReference struct {
	Name    string `json:"name" yaml:"name" validate:"required"`
	Version string `json:"version" yaml:"version" validate:"required,modelversion"`
}

// IsLatest reports whether the reference still needs resolving.
func (m ModelReference) IsLatest() bool { return m.Version == LatestVersion }

// Batching enables the request batcher in front of the model server. Nil fields
// take defaults; an explicit zero is kept and rejected by Validate.
type Batching struct {
	Timeout      *int `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"required,gt=0"`
	MaxBatchSize *int `json:"max_batch_size,omitempty" yaml:"max_batch_size,omitempty" validate:"required,gt=0"`
	MaxLatency   *int `json:"max_latency,omitempty" yaml:"max_latency,omitempty" validate:"required,gt=0"`
}

// Autoscaling bounds the replica count. MaxReplicas defaults to MinReplicas.
type Autoscaling struct {
	MinReplicas *int `json:"min_replicas,omitempty" yaml:"min_replicas,omitempty" validate:"required,gt=0"`
	MaxReplicas *int `json:"max_replicas,omitempty" yaml:"max_replicas,omitempty" validate:"required,gt=0"`
}

// RequestLogging forwards inference payloads to a logging sink.
type RequestLogging struct {
	Mode string `json:"mode" yaml:"mode" validate:"oneof=all request response"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
}

// MetricsExport exposes model server metrics for Prometheus scraping.
type MetricsExport struct {
	Port *int   `json:"port,omitempty" yaml:"port,omitempty" validate:"required,gt=0,lte=65535"`
	Path string `json:"path" yaml:"path" validate:"abspath"`
}

// DeploymentSpec is the caller's description of an inference deployment.
// Optional sections are independent of one another.
type DeploymentSpec struct {
	// Name overrides the derived service name.
	Name           string          `json:"name,omitempty" yaml:"name,omitempty" validate:"omitempty,dns1035"`
	Model          ModelReference  `json:"model" yaml:"model"`
	StorageURI     string          `json:"storage_uri" yaml:"storage_uri" validate:"required,storageuri"`
	InstanceType   string          `json:"instance_type" yaml:"instance_type" validate:"required"`
	ModelFormat    string          `json:"model_format" yaml:"model_format" validate:"required"`
	Runtime        string          `json:"runtime" yaml:"runtime" validate:"required"`
	Batching       *Batching       `json:"batching,omitempty" yaml:"batching,omitempty"`
	Autoscaling    *Autoscaling    `json:"autoscaling,omitempty" yaml:"autoscaling,omitempty"`
	RequestLogging *RequestLogging `json:"request_logging,omitempty" yaml:"request_logging,omitempty"`
	MetricsExport  *MetricsExport  `json:"metrics_export,omitempty" yaml:"metrics_export,omitempty"`
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func orDefault(p *int, def int) *int {
	if p == nil {
		return Int(def)
	}
	return Int(*p)
}

// WithDefaults returns a copy of s with omitted fields of every supplied section
// filled in. Sections that were not supplied stay nil. Explicit zero values are
// kept so that Validate can reject them.
func (s DeploymentSpec) WithDefaults() DeploymentSpec {
	out := s
	if out.ModelFormat == "" {
		out.ModelFormat = DefaultModelFormat
	}
	if out.Runtime == "" {
		out.Runtime = DefaultRuntime
	}
	if s.Batching != nil {
		out.Batching = &Batching{
			Timeout:      orDefault(s.Batching.Timeout, DefaultBatchTimeout),
			MaxBatchSize: orDefault(s.Batching.MaxBatchSize, DefaultMaxBatchSize),
			MaxLatency:   orDefault(s.Batching.MaxLatency, DefaultMaxLatency),
		}
	}
	if s.Autoscaling != nil {
		lo := orDefault(s.Autoscaling.MinReplicas, DefaultReplicas)
		out.Autoscaling = &Autoscaling{MinReplicas: lo, MaxReplicas: orDefault(s.Autoscaling.MaxReplicas, *lo)}
	}
	if s.RequestLogging != nil {
		l := *s.RequestLogging
		if l.Mode == "" {
			l.Mode = DefaultLoggerMode
		}
		out.RequestLogging = &l
	}
	if s.MetricsExport != nil {
		m := *s.MetricsExport
		m.Port = orDefault(m.Port, DefaultMetricsPort)
		if m.Path == "" {
			m.Path = DefaultMetricsPath
		}
		out.MetricsExport = &m
	}
	return out
}
