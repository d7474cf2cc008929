// Package manager is the orchestration layer between the HTTP API and the
// upstream clients. It is structured into small files by concern:
//
//   - manager.go: Manager type, constructor, provider lookup.
//   - config.go: Config, the Catalog and Committer seams, package defaults.
//   - browse.go: registry search and lookup, converted to wire types.
//   - deploy.go: the deploy flow (defaults, validation, instance type,
//     "latest" resolution, synthesis, optional commit).
//   - errors.go: error constructors and IsXxx predicates used for status mapping.
//   - metrics.go: deployment counters.
//
// Every operation is synchronous and performs at most the upstream calls it
// names; nothing is cached or retried.
package manager
