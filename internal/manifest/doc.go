// Package manifest turns a DeploymentSpec into a KServe InferenceService
// document. Synthesis is pure: no I/O, no shared state, and the same input
// always yields the same document with the same field order.
//
//   - spec.go: DeploymentSpec, its optional sections and defaults.
//   - validate.go: struct validation and ValidationError.
//   - inferenceservice.go: the InferenceService document and Synthesizer.
//   - resource.go: the Resource capability and YAML/JSON rendering.
//   - name.go: DNS-1035 service names derived from model references.
package manifest
