// internal/service/service.go
package service

import "github.com/google/uuid"

// idShort renders an identity for audit log lines without spraying full
// uuids through the logs.
func idShort(id uuid.UUID) string {
	return id.String()[:8]
}
