// Package api embeds the HTTP API description served at /openapi.json.
package api

import _ "embed"

// Spec is the OpenAPI 3 document in YAML form.
//
//go:embed openapi.yaml
var Spec []byte
