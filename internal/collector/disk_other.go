//go:build !windows

package collector

import "context"

// ListFixedVolumes needs the Win32 volume APIs.
func ListFixedVolumes(ctx context.Context) ([]Volume, error) {
	return nil, errUnsupported
}
