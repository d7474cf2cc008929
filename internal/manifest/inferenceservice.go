package manifest

import (
	"strconv"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"modelcatalog/internal/instancetype"
)

const (
	APIVersion = "serving.kserve.io/v1beta1"
	Kind       = "InferenceService"

	AnnotationPrometheusScraping = "serving.kserve.io/enable-prometheus-scraping"
	AnnotationPrometheusPort     = "prometheus.kserve.io/port"
	AnnotationPrometheusPath     = "prometheus.kserve.io/path"
)

// InferenceService is the rendered resource. Field order follows declaration order.
type InferenceService struct {
	APIVersion string               `json:"apiVersion" yaml:"apiVersion"`
	Kind       string               `json:"kind" yaml:"kind"`
	Metadata   ObjectMeta           `json:"metadata" yaml:"metadata"`
	Spec       InferenceServiceSpec `json:"spec" yaml:"spec"`
}

type ObjectMeta struct {
	Name        string            `json:"name" yaml:"name"`
	Annotations map[string]string `json:"annotations" yaml:"annotations"`
}

type InferenceServiceSpec struct {
	Predictor   PredictorSpec     `json:"predictor" yaml:"predictor"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

type PredictorSpec struct {
	Model              ModelSpec   `json:"model" yaml:"model"`
	ServiceAccountName string      `json:"serviceAccountName" yaml:"serviceAccountName"`
	Batcher            *Batcher    `json:"batcher,omitempty" yaml:"batcher,omitempty"`
	Logger             *LoggerSpec `json:"logger,omitempty" yaml:"logger,omitempty"`
	MinReplicas        *int        `json:"minReplicas,omitempty" yaml:"minReplicas,omitempty"`
	MaxReplicas        *int        `json:"maxReplicas,omitempty" yaml:"maxReplicas,omitempty"`
}

type ModelSpec struct {
	ModelFormat ModelFormat          `json:"modelFormat" yaml:"modelFormat"`
	Runtime     string               `json:"runtime" yaml:"runtime"`
	StorageURI  string               `json:"storageUri" yaml:"storageUri"`
	Resources   ResourceRequirements `json:"resources" yaml:"resources"`
}

type ModelFormat struct {
	Name string `json:"name" yaml:"name"`
}

type ResourceRequirements struct {
	Requests ResourceList `json:"requests" yaml:"requests"`
	Limits   ResourceList `json:"limits" yaml:"limits"`
}

type ResourceList struct {
	CPU    string `json:"cpu" yaml:"cpu"`
	Memory string `json:"memory" yaml:"memory"`
}

type Batcher struct {
	Timeout      int `json:"timeout" yaml:"timeout"`
	MaxBatchSize int `json:"maxBatchSize" yaml:"maxBatchSize"`
	MaxLatency   int `json:"maxLatency" yaml:"maxLatency"`
}

type LoggerSpec struct {
	Mode string `json:"mode" yaml:"mode"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// GroupVersionKind implements Resource.
func (s *InferenceService) GroupVersionKind() schema.GroupVersionKind {
	return schema.FromAPIVersionAndKind(s.APIVersion, s.Kind)
}

// ObjectName implements Resource.
func (s *InferenceService) ObjectName() string { return s.Metadata.Name }

// Synthesizer builds InferenceService documents. ServiceAccount is written into
// every predictor.
type Synthesizer struct {
	ServiceAccount string
}

// Synthesize builds the document for a validated spec and its resolved resources.
// Requests and limits are identical.
func (s Synthesizer) Synthesize(spec DeploymentSpec, res instancetype.Resources) *InferenceService {
	name := spec.Name
	if name == "" {
		name = ServiceName(spec.Model.Name, spec.Model.Version)
	}
	list := ResourceList{CPU: res.CPU, Memory: res.Memory}
	isvc := &InferenceService{
		APIVersion: APIVersion,
		Kind:       Kind,
		Metadata:   ObjectMeta{Name: name, Annotations: map[string]string{}},
		Spec: InferenceServiceSpec{
			Predictor: PredictorSpec{
				Model: ModelSpec{
					ModelFormat: ModelFormat{Name: spec.ModelFormat},
					Runtime:     spec.Runtime,
					StorageURI:  spec.StorageURI,
					Resources:   ResourceRequirements{Requests: list, Limits: list},
				},
				ServiceAccountName: s.ServiceAccount,
			},
		},
	}
	p := &isvc.Spec.Predictor
	if b := spec.Batching; b != nil {
		p.Batcher = &Batcher{Timeout: *b.Timeout, MaxBatchSize: *b.MaxBatchSize, MaxLatency: *b.MaxLatency}
	}
	if l := spec.RequestLogging; l != nil {
		p.Logger = &LoggerSpec{Mode: l.Mode, URL: l.URL}
	}
	if a := spec.Autoscaling; a != nil {
		lo, hi := *a.MinReplicas, *a.MaxReplicas
		p.MinReplicas, p.MaxReplicas = &lo, &hi
	}
	if m := spec.MetricsExport; m != nil {
		isvc.Metadata.Annotations[AnnotationPrometheusScraping] = "true"
		isvc.Spec.Annotations = map[string]string{
			AnnotationPrometheusPort: strconv.Itoa(*m.Port),
			AnnotationPrometheusPath: m.Path,
		}
	}
	return isvc
}
