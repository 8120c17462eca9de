// Package api содержит OpenAPI-описание протокола, отдаваемое роутером.
package api

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
