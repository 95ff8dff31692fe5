package collector

import (
	"context"

	"github.com/nhdewitt/drivescope/internal/protocol"
)

// Section names in run order.
const (
	SectionOS             = "os"
	SectionCPU            = "cpu"
	SectionMemory         = "memory"
	SectionDisks          = "disks"
	SectionVirtualization = "virtualization"
	SectionBoot           = "boot"
)

// SystemTasks returns the default collection pass with disks classified by
// the given collector.
func SystemTasks(disks *DiskCollector) []Task {
	return []Task{
		{SectionOS, CollectHostInfo},
		{SectionCPU, CollectCPUInfo},
		{SectionMemory, CollectMemoryInfo},
		{SectionDisks, disks.Collect},
		{SectionVirtualization, CollectVirtualization},
		{SectionBoot, CollectBootInfo},
	}
}

// CollectSystemInfo runs the default pass once.
func CollectSystemInfo(ctx context.Context, disks *DiskCollector, opts ...Option) (protocol.SystemReport, error) {
	return New(SystemTasks(disks), opts...).Run(ctx)
}
