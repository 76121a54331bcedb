// internal/workers/enrichment/verify-email/validation.go
package verifyemail

import "enrichment-workers/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["clientId", "email"],
  "properties": {
    "clientId": {"type": "string", "minLength": 1},
    "email": {"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+$", "maxLength": 320}
  }
}`)
