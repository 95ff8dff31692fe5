package collector

import (
	"context"
	"runtime"
	"time"

	"github.com/nhdewitt/drivescope/internal/protocol"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Mockable in tests.
var (
	hostInfo   = host.InfoWithContext
	cpuInfo    = cpu.InfoWithContext
	cpuCounts  = cpu.CountsWithContext
	memInfo    = mem.VirtualMemoryWithContext
	bootTimeFn = host.BootTimeWithContext
	nowFunc    = time.Now
)

// CollectHostInfo reports the operating system. On Windows the marketing name
// and feature update come from the registry, which gopsutil does not expose.
func CollectHostInfo(ctx context.Context) (protocol.Section, error) {
	info, err := hostInfo(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "host info")
	}

	out := protocol.HostInfo{
		Hostname:   info.Hostname,
		Platform:   info.Platform,
		Version:    info.PlatformVersion,
		Build:      info.KernelVersion,
		KernelArch: info.KernelArch,
	}
	if out.KernelArch == "" {
		out.KernelArch = runtime.GOARCH
	}

	if platform, version, build := getPlatformInfo(); platform != "" {
		out.Platform = platform
		if version != "" {
			out.Version = version
		}
		if build != "" {
			out.Build = build
		}
	}

	return out, nil
}

func CollectCPUInfo(ctx context.Context) (protocol.Section, error) {
	infos, err := cpuInfo(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cpu info")
	}

	out := protocol.CPUInfo{Sockets: len(infos)}
	for _, ci := range infos {
		if out.Model == "" {
			out.Model = ci.ModelName
			out.MHz = ci.Mhz
		}
		out.Cores += int(ci.Cores)
	}

	if n, err := cpuCounts(ctx, false); err == nil && n > 0 {
		out.Cores = n
	}
	if n, err := cpuCounts(ctx, true); err == nil && n > 0 {
		out.Threads = n
	} else {
		out.Threads = runtime.NumCPU()
	}

	return out, nil
}

func CollectMemoryInfo(ctx context.Context) (protocol.Section, error) {
	vm, err := memInfo(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "virtual memory")
	}

	return protocol.MemoryInfo{
		Total:     vm.Total,
		Used:      vm.Total - vm.Available,
		Available: vm.Available,
		UsedPct:   percent(vm.Total-vm.Available, vm.Total),
	}, nil
}

// CollectBootInfo reports boot time, falling back to the platform uptime
// counter when gopsutil cannot read it.
func CollectBootInfo(ctx context.Context) (protocol.Section, error) {
	now := nowFunc()

	if secs, err := bootTimeFn(ctx); err == nil && secs > 0 {
		boot := time.Unix(int64(secs), 0)
		return protocol.BootInfo{
			BootTime: boot,
			Uptime:   now.Sub(boot).Truncate(time.Second),
			Source:   "gopsutil",
		}, nil
	}

	uptime, err := platformUptime()
	if err != nil {
		return nil, errors.Wrap(err, "boot time")
	}
	return protocol.BootInfo{
		BootTime: now.Add(-uptime).Truncate(time.Second),
		Uptime:   uptime.Truncate(time.Second),
		Source:   "tick count",
	}, nil
}
