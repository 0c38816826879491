package assignment

import (
	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/samber/lo"
)

// silentUninstallSupported lists the app types Intune can uninstall without
// user interaction. Web links and store-for-business entries cannot be
// silently removed, so the uninstall intent is rejected for them.
var silentUninstallSupported = map[types.AppType]bool{
	types.AppTypeIOSStore:           true,
	types.AppTypeIOSVPP:             true,
	types.AppTypeIOSLob:             true,
	types.AppTypeAndroidStore:       true,
	types.AppTypeAndroidManagedPlay: true,
	types.AppTypeAndroidLob:         true,
	types.AppTypeWin32Lob:           true,
	types.AppTypeWindowsMSI:         true,
	types.AppTypeWindowsStore:       false,
	types.AppTypeWinGet:             true,
	types.AppTypeMacOSDmg:           true,
	types.AppTypeMacOSPkg:           true,
	types.AppTypeOfficeSuite:        false,
	types.AppTypeWebLink:            false,
}

// unenrolledInstallSupported lists the app types that can be offered through
// the Company Portal on devices that are not MDM-enrolled. Everything that
// needs the management agent on the device requires full enrollment.
var unenrolledInstallSupported = map[types.AppType]bool{
	types.AppTypeIOSStore:           true,
	types.AppTypeIOSVPP:             true,
	types.AppTypeIOSLob:             true,
	types.AppTypeAndroidStore:       true,
	types.AppTypeAndroidManagedPlay: false,
	types.AppTypeAndroidLob:         true,
	types.AppTypeWin32Lob:           false,
	types.AppTypeWindowsMSI:         false,
	types.AppTypeWindowsStore:       false,
	types.AppTypeWinGet:             false,
	types.AppTypeMacOSDmg:           false,
	types.AppTypeMacOSPkg:           false,
	types.AppTypeOfficeSuite:        false,
	types.AppTypeWebLink:            true,
}

// IntentValidation is the outcome of validating an intent against an app
// type and platform set.
type IntentValidation struct {
	Valid  bool
	Reason string
}

// ValidateIntent decides whether the requested intent is legal for the app
// type / platform combination. Pure: called once per (application, intent)
// pair before a task is admitted into the execution plan.
func ValidateIntent(appType types.AppType, platforms []types.DevicePlatform, intent types.AssignmentIntent) IntentValidation {
	if err := intent.Validate(); err != nil {
		return IntentValidation{Valid: false, Reason: "unknown intent " + intent.String()}
	}
	if err := appType.Validate(); err != nil {
		return IntentValidation{Valid: false, Reason: "unknown app type " + appType.String()}
	}

	// The declared platforms must be ones the app type can actually target.
	supported := appType.Platforms()
	for _, p := range platforms {
		if !lo.Contains(supported, p) {
			return IntentValidation{
				Valid:  false,
				Reason: appType.String() + " cannot target platform " + p.String(),
			}
		}
	}

	switch intent {
	case types.IntentUninstall:
		if !silentUninstallSupported[appType] {
			return IntentValidation{
				Valid:  false,
				Reason: appType.String() + " does not support silent uninstallation",
			}
		}
	case types.IntentAvailableWithoutEnrollment:
		if !unenrolledInstallSupported[appType] {
			return IntentValidation{
				Valid:  false,
				Reason: appType.String() + " requires full enrollment",
			}
		}
	}

	return IntentValidation{Valid: true}
}
