//go:build windows

package collector

import (
	"golang.org/x/sys/windows"
)

const (
	// Disk: Drive Types

	driveUnknown   = 0
	driveNoRootDir = 1
	driveRemovable = 2
	driveFixed     = 3
	driveRemote    = 4
	driveCdrom     = 5
	driveRamdisk   = 6
)

// --- DLL & Procedure Handles

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	// System

	procGetTickCount64 = kernel32.NewProc("GetTickCount64")

	// Filesystem/Disk

	procGetLogicalDrives     = kernel32.NewProc("GetLogicalDrives")
	procGetDriveType         = kernel32.NewProc("GetDriveTypeW")
	procGetVolumeInformation = kernel32.NewProc("GetVolumeInformationW")
	procGetDiskFreeSpaceEx   = kernel32.NewProc("GetDiskFreeSpaceExW")
)
