//go:build windows

package collector

import (
	"context"

	"github.com/nhdewitt/drivescope/internal/protocol"
	"github.com/yusufpapurcu/wmi"
	"golang.org/x/sys/windows/registry"
)

type win32Processor struct {
	VirtualizationFirmwareEnabled bool
}

type win32ComputerSystem struct {
	HypervisorPresent bool
}

// registryFlag names a DWORD whose value 1 means enabled. A missing key or
// value reads as disabled, matching how Windows treats these settings.
type registryFlag struct {
	key   string
	value string
}

var (
	hyperVFlag    = registryFlag{`SOFTWARE\Microsoft\Windows\CurrentVersion\OptionalFeatures\Microsoft-Hyper-V-All`, "Enabled"}
	wslFlag       = registryFlag{`SOFTWARE\Microsoft\Windows\CurrentVersion\OptionalFeatures\Microsoft-Windows-Subsystem-Linux`, "Enabled"}
	vbsFlag       = registryFlag{`SYSTEM\CurrentControlSet\Control\DeviceGuard`, "EnableVirtualizationBasedSecurity"}
	vbsPolicyFlag = registryFlag{`SOFTWARE\Policies\Microsoft\Windows\DeviceGuard`, "EnableVirtualizationBasedSecurity"}
	hvciFlag      = registryFlag{`SYSTEM\CurrentControlSet\Control\DeviceGuard\Scenarios\HypervisorEnforcedCodeIntegrity`, "Enabled"}
)

// CollectVirtualization reads firmware, hypervisor and optional feature state.
// Nothing is changed on the machine.
func CollectVirtualization(ctx context.Context) (protocol.Section, error) {
	var out protocol.VirtualizationInfo

	var procs []win32Processor
	if err := wmi.Query("SELECT VirtualizationFirmwareEnabled FROM Win32_Processor", &procs); err == nil && len(procs) > 0 {
		out.Firmware = state(procs[0].VirtualizationFirmwareEnabled, "Win32_Processor")
	}
	if ctx.Err() != nil {
		return out, ctx.Err()
	}

	var systems []win32ComputerSystem
	if err := wmi.Query("SELECT HypervisorPresent FROM Win32_ComputerSystem", &systems); err == nil && len(systems) > 0 {
		out.HypervisorPresent = state(systems[0].HypervisorPresent, "Win32_ComputerSystem")
	}

	out.HyperV = hyperVFlag.read()
	out.WSL = wslFlag.read()
	out.VBS = vbsFlag.read()
	if policy := vbsPolicyFlag.read(); policy.Known() && *policy.Enabled {
		out.VBS = policy
	}
	out.MemoryIntegrity = hvciFlag.read()

	return out, nil
}

func (f registryFlag) read() protocol.FeatureState {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, f.key, registry.QUERY_VALUE)
	if err == registry.ErrNotExist {
		return state(false, "registry")
	}
	if err != nil {
		return protocol.FeatureState{Source: "registry"}
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue(f.value)
	if err == registry.ErrNotExist {
		return state(false, "registry")
	}
	if err != nil {
		return protocol.FeatureState{Source: "registry"}
	}
	return state(v == 1, "registry")
}
