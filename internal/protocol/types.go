package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Section is implemented by every part of a SystemReport.
type Section interface {
	SectionName() string
}

func (HostInfo) SectionName() string           { return "os" }
func (CPUInfo) SectionName() string            { return "cpu" }
func (MemoryInfo) SectionName() string         { return "memory" }
func (DriveList) SectionName() string          { return "disks" }
func (VirtualizationInfo) SectionName() string { return "virtualization" }
func (BootInfo) SectionName() string           { return "boot" }

type HostInfo struct {
	Hostname   string `json:"hostname"`
	Platform   string `json:"platform"`    // "Windows 11 Pro"
	Version    string `json:"version"`     // "23H2"
	Build      string `json:"build"`       // "22631"
	KernelArch string `json:"kernel_arch"` // "x86_64"
}

type CPUInfo struct {
	Model   string  `json:"model"`
	Cores   int     `json:"cores"`
	Threads int     `json:"threads"`
	MHz     float64 `json:"mhz,omitempty"`
	Sockets int     `json:"sockets,omitempty"`
}

type MemoryInfo struct {
	Total     uint64  `json:"ram_total"`
	Used      uint64  `json:"ram_used"`
	Available uint64  `json:"ram_available"`
	UsedPct   float64 `json:"ram_used_pct"`
}

// DriveInfo is one row of the disk table.
type DriveInfo struct {
	Drive       string   `json:"drive"` // "C:"
	Label       string   `json:"label,omitempty"`
	Filesystem  string   `json:"filesystem,omitempty"`
	Type        string   `json:"disk_type"` // "SSD (NVMe)", "HDD", "Unknown", ...
	Method      string   `json:"method,omitempty"`
	DiskIndex   int      `json:"disk_index"` // -1 when unresolved
	Note        string   `json:"note,omitempty"`
	Total       uint64   `json:"disk_total"`
	Used        uint64   `json:"disk_used"`
	Available   uint64   `json:"disk_available"`
	UsedPct     float64  `json:"disk_used_pct"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

type DriveList struct {
	Drives []DriveInfo `json:"drives"`
}

// FeatureState is a tri-state flag; a nil pointer means "could not be read".
type FeatureState struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Known reports whether the state could be read.
func (f FeatureState) Known() bool {
	return f.Enabled != nil
}

func (f FeatureState) String() string {
	switch {
	case f.Enabled == nil:
		return "Unknown"
	case *f.Enabled:
		return "Enabled"
	default:
		return "Disabled"
	}
}

type VirtualizationInfo struct {
	Firmware          FeatureState `json:"firmware"`
	HypervisorPresent FeatureState `json:"hypervisor_present"`
	HyperV            FeatureState `json:"hyper_v"`
	VBS               FeatureState `json:"vbs"`
	MemoryIntegrity   FeatureState `json:"memory_integrity"`
	WSL               FeatureState `json:"wsl"`
}

type BootInfo struct {
	BootTime time.Time     `json:"boot_time"`
	Uptime   time.Duration `json:"uptime"`
	Source   string        `json:"source"`
}

// SectionStatus records how one section of a collection pass ended.
type SectionStatus struct {
	Name     string        `json:"name"`
	OK       bool          `json:"ok"`
	TimedOut bool          `json:"timed_out,omitempty"`
	Error    string        `json:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// SystemReport is the result of one system-info collection pass.
type SystemReport struct {
	ID        uuid.UUID       `json:"id"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	TimedOut  bool            `json:"timed_out"`
	Sections  []SectionStatus `json:"sections"`
	Data      []Section       `json:"-"`
}

// MarshalJSON emits the collected sections keyed by SectionName.
func (r SystemReport) MarshalJSON() ([]byte, error) {
	type Alias SystemReport
	data := make(map[string]any, len(r.Data))
	for _, s := range r.Data {
		data[s.SectionName()] = s
	}
	return json.Marshal(&struct {
		Alias
		Data map[string]any `json:"data"`
	}{
		Alias: Alias(r),
		Data:  data,
	})
}

// Host returns the OS section, if it was collected.
func (r *SystemReport) Host() (HostInfo, bool) {
	return find[HostInfo](r.Data)
}

func (r *SystemReport) CPU() (CPUInfo, bool) {
	return find[CPUInfo](r.Data)
}

func (r *SystemReport) Memory() (MemoryInfo, bool) {
	return find[MemoryInfo](r.Data)
}

func (r *SystemReport) Drives() (DriveList, bool) {
	return find[DriveList](r.Data)
}

func (r *SystemReport) Virtualization() (VirtualizationInfo, bool) {
	return find[VirtualizationInfo](r.Data)
}

func (r *SystemReport) Boot() (BootInfo, bool) {
	return find[BootInfo](r.Data)
}

func find[T Section](sections []Section) (T, bool) {
	for _, s := range sections {
		if v, ok := s.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
