//go:build !windows

package collector

import (
	"context"

	"github.com/nhdewitt/drivescope/internal/protocol"
)

func CollectVirtualization(ctx context.Context) (protocol.Section, error) {
	return nil, errUnsupported
}
