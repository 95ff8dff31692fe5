package collector

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/nhdewitt/drivescope/internal/protocol"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swap replaces *target with v for the duration of the test.
func swap[T any](t *testing.T, target *T, v T) {
	t.Helper()
	old := *target
	*target = v
	t.Cleanup(func() { *target = old })
}

func TestCollectHostInfo(t *testing.T) {
	swap(t, &hostInfo, func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{
			Hostname:        "bench-01",
			Platform:        "Microsoft Windows 11 Pro",
			PlatformVersion: "10.0.22631",
			KernelVersion:   "10.0.22631 Build 22631",
		}, nil
	})

	section, err := CollectHostInfo(context.Background())
	require.NoError(t, err)

	info := section.(protocol.HostInfo)
	assert.Equal(t, "bench-01", info.Hostname)
	assert.Equal(t, runtime.GOARCH, info.KernelArch, "empty arch falls back to GOARCH")
	if runtime.GOOS != "windows" {
		assert.Equal(t, "Microsoft Windows 11 Pro", info.Platform)
		assert.Equal(t, "10.0.22631", info.Version)
	}
}

func TestCollectHostInfo_Error(t *testing.T) {
	swap(t, &hostInfo, func(context.Context) (*host.InfoStat, error) {
		return nil, errors.New("wmi down")
	})

	_, err := CollectHostInfo(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host info: wmi down")
}

func TestCollectCPUInfo(t *testing.T) {
	tests := []struct {
		name        string
		infos       []cpu.InfoStat
		physical    int
		logical     int
		countErr    error
		wantCores   int
		wantThreads int
	}{
		{
			name:        "Single socket",
			infos:       []cpu.InfoStat{{ModelName: "Ryzen 7 5800X", Cores: 8, Mhz: 3800}},
			physical:    8,
			logical:     16,
			wantCores:   8,
			wantThreads: 16,
		},
		{
			name: "Dual socket without counts",
			infos: []cpu.InfoStat{
				{ModelName: "Xeon Gold 6230", Cores: 20, Mhz: 2100},
				{ModelName: "Xeon Gold 6230", Cores: 20, Mhz: 2100},
			},
			countErr:    errors.New("unavailable"),
			wantCores:   40,
			wantThreads: runtime.NumCPU(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			swap(t, &cpuInfo, func(context.Context) ([]cpu.InfoStat, error) { return tt.infos, nil })
			swap(t, &cpuCounts, func(_ context.Context, logical bool) (int, error) {
				if tt.countErr != nil {
					return 0, tt.countErr
				}
				if logical {
					return tt.logical, nil
				}
				return tt.physical, nil
			})

			section, err := CollectCPUInfo(context.Background())
			require.NoError(t, err)

			info := section.(protocol.CPUInfo)
			assert.Equal(t, tt.infos[0].ModelName, info.Model)
			assert.Equal(t, tt.infos[0].Mhz, info.MHz)
			assert.Equal(t, len(tt.infos), info.Sockets)
			assert.Equal(t, tt.wantCores, info.Cores)
			assert.Equal(t, tt.wantThreads, info.Threads)
		})
	}
}

func TestCollectMemoryInfo(t *testing.T) {
	swap(t, &memInfo, func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 16 << 30, Available: 4 << 30}, nil
	})

	section, err := CollectMemoryInfo(context.Background())
	require.NoError(t, err)

	info := section.(protocol.MemoryInfo)
	assert.Equal(t, uint64(16<<30), info.Total)
	assert.Equal(t, uint64(12<<30), info.Used)
	assert.Equal(t, uint64(4<<30), info.Available)
	assert.Equal(t, 75.0, info.UsedPct)
}

func TestCollectBootInfo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	swap(t, &nowFunc, func() time.Time { return now })

	t.Run("gopsutil", func(t *testing.T) {
		boot := now.Add(-26 * time.Hour)
		swap(t, &bootTimeFn, func(context.Context) (uint64, error) { return uint64(boot.Unix()), nil })

		section, err := CollectBootInfo(context.Background())
		require.NoError(t, err)

		info := section.(protocol.BootInfo)
		assert.Equal(t, "gopsutil", info.Source)
		assert.Equal(t, 26*time.Hour, info.Uptime)
		assert.True(t, info.BootTime.Equal(boot))
	})

	t.Run("fallback", func(t *testing.T) {
		swap(t, &bootTimeFn, func(context.Context) (uint64, error) { return 0, errors.New("no boot time") })

		section, err := CollectBootInfo(context.Background())
		if runtime.GOOS != "windows" {
			require.ErrorIs(t, err, errUnsupported)
			return
		}
		require.NoError(t, err)

		info := section.(protocol.BootInfo)
		assert.Equal(t, "tick count", info.Source)
		assert.Positive(t, info.Uptime)
	})
}

func TestState(t *testing.T) {
	s := state(true, "registry")
	assert.True(t, s.Known())
	assert.Equal(t, "Enabled", s.String())
	assert.Equal(t, "registry", s.Source)

	assert.Equal(t, "Disabled", state(false, "wmi").String())
	assert.Equal(t, "Unknown", protocol.FeatureState{}.String())
}
