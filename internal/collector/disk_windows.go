//go:build windows

package collector

import (
	"context"
	"math/bits"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// ListFixedVolumes walks the drive letter bitmask and keeps DRIVE_FIXED
// volumes that report a capacity.
func ListFixedVolumes(ctx context.Context) ([]Volume, error) {
	// Get bitmask of all available drives
	ret, _, callErr := procGetLogicalDrives.Call()
	driveMask := uint32(ret)

	if driveMask == 0 {
		return nil, errors.Errorf("GetLogicalDrives failed: %v", callErr)
	}

	result := make([]Volume, 0, bits.OnesCount32(driveMask))

	for i := range 26 {
		if driveMask&(1<<i) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rootPath := string(rune('A'+i)) + ":\\"
		rootPathPtr, _ := windows.UTF16PtrFromString(rootPath)

		typeRet, _, _ := procGetDriveType.Call(uintptr(unsafe.Pointer(rootPathPtr)))
		if uint32(typeRet) != driveFixed {
			continue
		}

		var volNameBuf [256]uint16
		var fsNameBuf [256]uint16

		// A failure leaves the label and filesystem empty; capacity still counts.
		procGetVolumeInformation.Call(
			uintptr(unsafe.Pointer(rootPathPtr)),
			uintptr(unsafe.Pointer(&volNameBuf[0])),
			uintptr(len(volNameBuf)),
			0,
			0,
			0,
			uintptr(unsafe.Pointer(&fsNameBuf[0])),
			uintptr(len(fsNameBuf)),
		)

		var freeBytesAvailable, totalNumberOfBytes, totalNumberOfFreeBytes uint64

		ret, _, _ := procGetDiskFreeSpaceEx.Call(
			uintptr(unsafe.Pointer(rootPathPtr)),
			uintptr(unsafe.Pointer(&freeBytesAvailable)),
			uintptr(unsafe.Pointer(&totalNumberOfBytes)),
			uintptr(unsafe.Pointer(&totalNumberOfFreeBytes)),
		)
		if ret == 0 {
			continue
		}

		result = append(result, Volume{
			Drive:      strings.TrimSuffix(rootPath, "\\"),
			Label:      windows.UTF16ToString(volNameBuf[:]),
			Filesystem: strings.ToUpper(windows.UTF16ToString(fsNameBuf[:])),
			Total:      totalNumberOfBytes,
			Free:       totalNumberOfFreeBytes,
		})
	}

	return result, nil
}
