package auditlog

import (
	"time"
)

// AuditEvent is a device-management audit record from the tenant.
type AuditEvent struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"displayName"`
	Category        string    `json:"category"`
	ActivityType    string    `json:"activityType"`
	ActivityResult  string    `json:"activityResult"`
	Actor           string    `json:"actor"`
	ActivityDate    time.Time `json:"activityDateTime"`
	ResourceID      string    `json:"resourceId,omitempty"`
	ResourceDisplay string    `json:"resourceDisplayName,omitempty"`
}

// Filter narrows an audit event listing.
type Filter struct {
	Category string
	From     *time.Time
	To       *time.Time
}
