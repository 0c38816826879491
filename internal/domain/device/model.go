package device

import (
	"time"
)

// ManagedDevice is a device enrolled in Intune. The console only browses
// devices; the assignment engine never writes to them.
type ManagedDevice struct {
	ID                string    `json:"id"`
	DeviceName        string    `json:"deviceName"`
	OperatingSystem   string    `json:"operatingSystem"`
	OSVersion         string    `json:"osVersion"`
	ComplianceState   string    `json:"complianceState"`
	EnrollmentType    string    `json:"enrollmentType"`
	ManagementAgent   string    `json:"managementAgent"`
	AzureADDeviceID   string    `json:"azureADDeviceId"`
	UserPrincipalName string    `json:"userPrincipalName"`
	LastSyncDateTime  time.Time `json:"lastSyncDateTime"`
}
