// internal/workers/enrichment/search-companies/validation.go
package searchcompanies

import "enrichment-workers/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["clientId"],
  "properties": {
    "clientId": {"type": "string", "minLength": 1},
    "query": {"type": "string"},
    "industries": {"type": "array", "items": {"type": "string"}},
    "countries": {"type": "array", "items": {"type": "string"}},
    "minEmployees": {"type": "integer", "minimum": 0},
    "maxEmployees": {"type": "integer", "minimum": 0},
    "technologies": {"type": "array", "items": {"type": "string"}},
    "limit": {"type": "integer", "minimum": 0, "maximum": 100},
    "cursor": {"type": "string"}
  }
}`)
