package types

import (
	"github.com/intunedeck/intunedeck/internal/errors"
	"github.com/samber/lo"
)

// AppType identifies the kind of mobile app in the catalog. The values mirror
// the Graph @odata.type discriminators without the #microsoft.graph prefix.
type AppType string

const (
	AppTypeIOSStore           AppType = "iosStoreApp"
	AppTypeIOSVPP             AppType = "iosVppApp"
	AppTypeIOSLob             AppType = "iosLobApp"
	AppTypeAndroidStore       AppType = "androidStoreApp"
	AppTypeAndroidManagedPlay AppType = "androidManagedStoreApp"
	AppTypeAndroidLob         AppType = "androidLobApp"
	AppTypeWin32Lob           AppType = "win32LobApp"
	AppTypeWindowsMSI         AppType = "windowsMobileMSI"
	AppTypeWindowsStore       AppType = "microsoftStoreForBusinessApp"
	AppTypeWinGet             AppType = "winGetApp"
	AppTypeMacOSDmg           AppType = "macOSDmgApp"
	AppTypeMacOSPkg           AppType = "macOSPkgApp"
	AppTypeOfficeSuite        AppType = "officeSuiteApp"
	AppTypeWebLink            AppType = "webApp"
)

func (t AppType) String() string {
	return string(t)
}

func (t AppType) Validate() error {
	if !lo.Contains(AllAppTypes(), t) {
		return errors.New(errors.ErrCodeValidation, "invalid app type")
	}
	return nil
}

// ODataType returns the fully qualified Graph type discriminator.
func (t AppType) ODataType() string {
	return "#microsoft.graph." + string(t)
}

func AllAppTypes() []AppType {
	return []AppType{
		AppTypeIOSStore,
		AppTypeIOSVPP,
		AppTypeIOSLob,
		AppTypeAndroidStore,
		AppTypeAndroidManagedPlay,
		AppTypeAndroidLob,
		AppTypeWin32Lob,
		AppTypeWindowsMSI,
		AppTypeWindowsStore,
		AppTypeWinGet,
		AppTypeMacOSDmg,
		AppTypeMacOSPkg,
		AppTypeOfficeSuite,
		AppTypeWebLink,
	}
}

// DevicePlatform is the operating system family an app can be deployed to.
type DevicePlatform string

const (
	PlatformIOS     DevicePlatform = "ios"
	PlatformAndroid DevicePlatform = "android"
	PlatformWindows DevicePlatform = "windows"
	PlatformMacOS   DevicePlatform = "macos"
	PlatformWeb     DevicePlatform = "web"
)

func (p DevicePlatform) String() string {
	return string(p)
}

func (p DevicePlatform) Validate() error {
	allowed := []DevicePlatform{
		PlatformIOS,
		PlatformAndroid,
		PlatformWindows,
		PlatformMacOS,
		PlatformWeb,
	}
	if !lo.Contains(allowed, p) {
		return errors.New(errors.ErrCodeValidation, "invalid device platform")
	}
	return nil
}

// Platforms returns the device platforms an app type can target.
func (t AppType) Platforms() []DevicePlatform {
	switch t {
	case AppTypeIOSStore, AppTypeIOSVPP, AppTypeIOSLob:
		return []DevicePlatform{PlatformIOS}
	case AppTypeAndroidStore, AppTypeAndroidManagedPlay, AppTypeAndroidLob:
		return []DevicePlatform{PlatformAndroid}
	case AppTypeWin32Lob, AppTypeWindowsMSI, AppTypeWindowsStore, AppTypeWinGet, AppTypeOfficeSuite:
		return []DevicePlatform{PlatformWindows}
	case AppTypeMacOSDmg, AppTypeMacOSPkg:
		return []DevicePlatform{PlatformMacOS}
	case AppTypeWebLink:
		return []DevicePlatform{PlatformIOS, PlatformAndroid, PlatformWindows, PlatformMacOS, PlatformWeb}
	default:
		return nil
	}
}
