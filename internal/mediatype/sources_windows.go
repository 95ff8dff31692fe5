//go:build windows

package mediatype

// SystemSources returns the providers backed by WMI, the registry and the
// disk driver.
func SystemSources() Sources {
	return Sources{
		Storage:    wmiStorage{},
		DiskDrives: wmiDiskDrives{},
		Partitions: wmiPartitions{},
		Registry:   diskEnum{},
		Latency:    LatencyChain{wmiLatency{}, ioctlLatency{}},
	}
}
