package manifest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"modelcatalog/internal/instancetype"
)

var small = instancetype.Resources{CPU: "1", Memory: "2Gi"}

func intPtr(i int) *int { return &i }

func baseSpec() DeploymentSpec {
	return DeploymentSpec{
		Name:         "test-service",
		Model:        ModelReference{Name: "churn_model", Version: "2"},
		StorageURI:   "s3://bucket/model",
		InstanceType: "ml.cpu.small",
	}.WithDefaults()
}

func TestSynthesize_AllSections(t *testing.T) {
	spec := baseSpec()
	spec.Batching = &Batching{Timeout: Int(120), MaxBatchSize: Int(64), MaxLatency: Int(1000)}
	spec.Autoscaling = &Autoscaling{MinReplicas: Int(2), MaxReplicas: Int(5)}
	spec.RequestLogging = &RequestLogging{Mode: "all", URL: "http://logger"}
	spec.MetricsExport = &MetricsExport{Port: Int(9090), Path: "/metrics"}

	got := Synthesizer{ServiceAccount: "default"}.Synthesize(spec, small)
	want := &InferenceService{
		APIVersion: "serving.kserve.io/v1beta1",
		Kind:       "InferenceService",
		Metadata: ObjectMeta{
			Name:        "test-service",
			Annotations: map[string]string{"serving.kserve.io/enable-prometheus-scraping": "true"},
		},
		Spec: InferenceServiceSpec{
			Predictor: PredictorSpec{
				Model: ModelSpec{
					ModelFormat: ModelFormat{Name: "mlflow"},
					Runtime:     "kserve-mlserver",
					StorageURI:  "s3://bucket/model",
					Resources: ResourceRequirements{
						Requests: ResourceList{CPU: "1", Memory: "2Gi"},
						Limits:   ResourceList{CPU: "1", Memory: "2Gi"},
					},
				},
				ServiceAccountName: "default",
				Batcher:            &Batcher{Timeout: 120, MaxBatchSize: 64, MaxLatency: 1000},
				Logger:             &LoggerSpec{Mode: "all", URL: "http://logger"},
				MinReplicas:        intPtr(2),
				MaxReplicas:        intPtr(5),
			},
			Annotations: map[string]string{
				"prometheus.kserve.io/port": "9090",
				"prometheus.kserve.io/path": "/metrics",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesize_RequiredOnly(t *testing.T) {
	got := Synthesizer{ServiceAccount: "default"}.Synthesize(baseSpec(), small)
	b, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"apiVersion":"serving.kserve.io/v1beta1","kind":"InferenceService",` +
		`"metadata":{"name":"test-service","annotations":{}},` +
		`"spec":{"predictor":{"model":{"modelFormat":{"name":"mlflow"},"runtime":"kserve-mlserver",` +
		`"storageUri":"s3://bucket/model","resources":{"requests":{"cpu":"1","memory":"2Gi"},` +
		`"limits":{"cpu":"1","memory":"2Gi"}}},"serviceAccountName":"default"}}}`
	if string(b) != want {
		t.Fatalf("json mismatch:\n got %s\nwant %s", b, want)
	}
}

func TestSynthesize_SectionsAreIndependent(t *testing.T) {
	syn := Synthesizer{ServiceAccount: "sa"}

	spec := baseSpec()
	spec.Batching = &Batching{Timeout: Int(1), MaxBatchSize: Int(2), MaxLatency: Int(3)}
	doc := syn.Synthesize(spec, small)
	p := doc.Spec.Predictor
	if p.Batcher == nil {
		t.Fatalf("batcher missing")
	}
	if p.MinReplicas != nil || p.MaxReplicas != nil || p.Logger != nil {
		t.Fatalf("unexpected sections: %+v", p)
	}
	if len(doc.Metadata.Annotations) != 0 || doc.Spec.Annotations != nil {
		t.Fatalf("unexpected metrics annotations: %+v / %+v", doc.Metadata.Annotations, doc.Spec.Annotations)
	}

	spec = baseSpec()
	spec.MetricsExport = &MetricsExport{Port: Int(8082), Path: "/metrics"}
	spec.RequestLogging = &RequestLogging{Mode: "request"}
	doc = syn.Synthesize(spec, small)
	p = doc.Spec.Predictor
	if p.Batcher != nil || p.MinReplicas != nil {
		t.Fatalf("unexpected sections: %+v", p)
	}
	if p.Logger == nil || p.Logger.Mode != "request" || p.Logger.URL != "" {
		t.Fatalf("logger=%+v", p.Logger)
	}
	if doc.Metadata.Annotations[AnnotationPrometheusScraping] != "true" || doc.Spec.Annotations[AnnotationPrometheusPort] != "8082" {
		t.Fatalf("metrics annotations missing")
	}
}

func TestSynthesize_DerivesNameAndDoesNotAlias(t *testing.T) {
	spec := baseSpec()
	spec.Name = ""
	spec.Model = ModelReference{Name: "uplift_model", Version: "1"}
	spec.Autoscaling = &Autoscaling{MinReplicas: Int(1), MaxReplicas: Int(3)}
	doc := Synthesizer{}.Synthesize(spec, small)
	if doc.Metadata.Name != "uplift-model-v1" {
		t.Fatalf("name=%q", doc.Metadata.Name)
	}
	*spec.Autoscaling.MaxReplicas = 10
	if *doc.Spec.Predictor.MaxReplicas != 3 {
		t.Fatalf("document shares memory with its input")
	}
}

func TestToYAML_KeyOrder(t *testing.T) {
	spec := baseSpec()
	spec.Batching = &Batching{Timeout: Int(60), MaxBatchSize: Int(32), MaxLatency: Int(500)}
	spec.Autoscaling = &Autoscaling{MinReplicas: Int(1), MaxReplicas: Int(2)}
	doc := Synthesizer{ServiceAccount: "default"}.Synthesize(spec, small)

	out, err := ToYAML(doc)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(out, &root); err != nil {
		t.Fatalf("parse: %v", err)
	}
	top := root.Content[0]
	if diff := cmp.Diff([]string{"apiVersion", "kind", "metadata", "spec"}, keys(top)); diff != "" {
		t.Fatalf("top-level order (-want +got):\n%s", diff)
	}
	predictor := lookup(lookup(top, "spec"), "predictor")
	want := []string{"model", "serviceAccountName", "batcher", "minReplicas", "maxReplicas"}
	if diff := cmp.Diff(want, keys(predictor)); diff != "" {
		t.Fatalf("predictor order (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(string(out), "apiVersion: serving.kserve.io/v1beta1\nkind: InferenceService\n") {
		t.Fatalf("unexpected yaml head:\n%s", out)
	}

	again, _ := ToYAML(Synthesizer{ServiceAccount: "default"}.Synthesize(spec, small))
	if string(out) != string(again) {
		t.Fatalf("rendering is not deterministic")
	}
}

func TestGroupVersionKind(t *testing.T) {
	doc := Synthesizer{}.Synthesize(baseSpec(), small)
	var r Resource = doc
	gvk := r.GroupVersionKind()
	if gvk.Group != "serving.kserve.io" || gvk.Version != "v1beta1" || gvk.Kind != "InferenceService" {
		t.Fatalf("gvk=%v", gvk)
	}
	if r.ObjectName() != "test-service" {
		t.Fatalf("name=%q", r.ObjectName())
	}
	if _, err := ToJSON(r); err != nil {
		t.Fatalf("json: %v", err)
	}
}

func keys(m *yaml.Node) []string {
	var out []string
	for i := 0; i+1 < len(m.Content); i += 2 {
		out = append(out, m.Content[i].Value)
	}
	return out
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return &yaml.Node{}
}
