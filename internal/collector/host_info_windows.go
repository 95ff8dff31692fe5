//go:build windows

package collector

import (
	"time"

	"golang.org/x/sys/windows/registry"
)

const currentVersionKey = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`

func getPlatformInfo() (platform, version, build string) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, currentVersionKey, registry.QUERY_VALUE)
	if err != nil {
		return "", "", ""
	}
	defer k.Close()

	platform, _, _ = k.GetStringValue("ProductName")
	version, _, _ = k.GetStringValue("DisplayVersion")
	if version == "" {
		// Before 20H2 the feature update was only in ReleaseId.
		version, _, _ = k.GetStringValue("ReleaseId")
	}
	build, _, _ = k.GetStringValue("CurrentBuildNumber")

	return platform, version, build
}

func platformUptime() (time.Duration, error) {
	ret, _, _ := procGetTickCount64.Call()
	return time.Duration(ret) * time.Millisecond, nil
}
