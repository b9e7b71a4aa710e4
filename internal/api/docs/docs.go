// Package docs embeds the OpenAPI description of the HTTP API.
package docs

import _ "embed"

// OpenAPI is the OpenAPI 3 document served at /docs/openapi.json.
//
//go:embed openapi.json
var OpenAPI []byte
