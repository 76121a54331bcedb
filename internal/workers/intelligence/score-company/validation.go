// internal/workers/intelligence/score-company/validation.go
package scorecompany

import "enrichment-workers/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["company"],
  "properties": {
    "company": {
      "type": "object",
      "required": ["name"],
      "properties": {"name": {"type": "string"}}
    },
    "icpFilters": {
      "type": "object",
      "properties": {
        "industries": {"type": "array", "items": {"type": "string"}},
        "minEmployees": {"type": "integer", "minimum": 0},
        "maxEmployees": {"type": "integer", "minimum": 0},
        "minRevenue": {"type": "number", "minimum": 0},
        "maxRevenue": {"type": "number", "minimum": 0},
        "countries": {"type": "array", "items": {"type": "string"}},
        "technologies": {"type": "array", "items": {"type": "string"}}
      }
    },
    "signals": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "strength"],
        "properties": {
          "type": {"type": "string", "minLength": 1},
          "strength": {"type": "number", "minimum": 0, "maximum": 1},
          "eventDate": {"type": "string", "format": "date-time"},
          "source": {"type": "string"}
        }
      }
    },
    "providersUsed": {"type": "array", "items": {"type": "string"}},
    "enrichmentCost": {"type": "number", "minimum": 0},
    "scoringWeights": {
      "type": "object",
      "properties": {
        "icpFit": {"type": "number", "minimum": 0},
        "signals": {"type": "number", "minimum": 0},
        "originality": {"type": "number", "minimum": 0},
        "costEfficiency": {"type": "number", "minimum": 0}
      }
    },
    "signalPriorities": {
      "type": "object",
      "additionalProperties": {"type": "number", "minimum": 0}
    }
  }
}`)
