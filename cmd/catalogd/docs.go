package main

// General API documentation for swaggo. Run `swag init -g cmd/catalogd/docs.go` to generate docs.
//
// @title           catalogd API
// @version         1.0
// @description     Browse models registered in MLflow and synthesize KServe InferenceService manifests.
//
// @contact.name   catalogd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /api/v1
//
// @schemes http https
