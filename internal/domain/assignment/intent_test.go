package assignment

import (
	"testing"

	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestValidateIntent(t *testing.T) {
	tests := []struct {
		name      string
		appType   types.AppType
		platforms []types.DevicePlatform
		intent    types.AssignmentIntent
		wantValid bool
	}{
		{
			name:      "required is valid everywhere",
			appType:   types.AppTypeWin32Lob,
			platforms: []types.DevicePlatform{types.PlatformWindows},
			intent:    types.IntentRequired,
			wantValid: true,
		},
		{
			name:      "uninstall valid for win32",
			appType:   types.AppTypeWin32Lob,
			platforms: []types.DevicePlatform{types.PlatformWindows},
			intent:    types.IntentUninstall,
			wantValid: true,
		},
		{
			name:      "uninstall invalid for web links",
			appType:   types.AppTypeWebLink,
			platforms: []types.DevicePlatform{types.PlatformWeb},
			intent:    types.IntentUninstall,
			wantValid: false,
		},
		{
			name:      "uninstall invalid for store-for-business",
			appType:   types.AppTypeWindowsStore,
			platforms: []types.DevicePlatform{types.PlatformWindows},
			intent:    types.IntentUninstall,
			wantValid: false,
		},
		{
			name:      "available without enrollment valid for ios store",
			appType:   types.AppTypeIOSStore,
			platforms: []types.DevicePlatform{types.PlatformIOS},
			intent:    types.IntentAvailableWithoutEnrollment,
			wantValid: true,
		},
		{
			name:      "available without enrollment invalid for win32",
			appType:   types.AppTypeWin32Lob,
			platforms: []types.DevicePlatform{types.PlatformWindows},
			intent:    types.IntentAvailableWithoutEnrollment,
			wantValid: false,
		},
		{
			name:      "platform outside app type support is invalid",
			appType:   types.AppTypeIOSStore,
			platforms: []types.DevicePlatform{types.PlatformAndroid},
			intent:    types.IntentRequired,
			wantValid: false,
		},
		{
			name:      "unknown intent is invalid",
			appType:   types.AppTypeIOSStore,
			platforms: []types.DevicePlatform{types.PlatformIOS},
			intent:    types.AssignmentIntent("sideload"),
			wantValid: false,
		},
		{
			name:      "unknown app type is invalid",
			appType:   types.AppType("frobnicatorApp"),
			platforms: nil,
			intent:    types.IntentRequired,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateIntent(tt.appType, tt.platforms, tt.intent)
			assert.Equal(t, tt.wantValid, got.Valid)
			if !tt.wantValid {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

// Every app type must have an entry in both rule tables so new catalog types
// cannot silently skip validation.
func TestIntentRuleTablesAreExhaustive(t *testing.T) {
	for _, appType := range types.AllAppTypes() {
		_, ok := silentUninstallSupported[appType]
		assert.Truef(t, ok, "missing uninstall rule for %s", appType)

		_, ok = unenrolledInstallSupported[appType]
		assert.Truef(t, ok, "missing unenrolled-install rule for %s", appType)
	}
}
