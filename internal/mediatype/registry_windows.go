//go:build windows

package mediatype

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows/registry"
)

const diskEnumKey = `SYSTEM\CurrentControlSet\Services\disk\Enum`

// diskEnum reads the device instance paths the disk class driver has
// enumerated.
type diskEnum struct{}

func (diskEnum) DiskDeviceIDs(ctx context.Context) ([]string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, diskEnumKey, registry.QUERY_VALUE)
	if err != nil {
		return nil, unavailable(err, "open HKLM\\%s", diskEnumKey)
	}
	defer k.Close()

	count, _, err := k.GetIntegerValue("Count")
	if err != nil {
		return nil, withKind(ErrNoMatch, err, "read %s\\Count", diskEnumKey)
	}

	return enumDeviceIDs(ctx, count, func(i uint64) (string, bool, error) {
		id, _, err := k.GetStringValue(strconv.FormatUint(i, 10))
		if errors.Is(err, registry.ErrNotExist) {
			return "", false, nil
		}
		if err != nil {
			return "", false, unavailable(err, "read %s\\%d", diskEnumKey, i)
		}
		return id, true, nil
	})
}
