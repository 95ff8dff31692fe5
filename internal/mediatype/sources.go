package mediatype

import (
	"context"

	"go.uber.org/multierr"
)

// StorageProvider reads MSFT_PhysicalDisk records from the storage
// management provider.
type StorageProvider interface {
	// PhysicalDisk returns the records whose DeviceId equals index.
	PhysicalDisk(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error)
	// PhysicalDisks returns every record the provider reports.
	PhysicalDisks(ctx context.Context) ([]DiskDescriptor, error)
}

// DiskDriveProvider reads Win32_DiskDrive records.
type DiskDriveProvider interface {
	DiskDrive(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error)
}

// PartitionProvider walks the logical disk -> partition -> physical disk
// association graph.
type PartitionProvider interface {
	// PartitionsOfLogicalDisk follows Win32_LogicalDiskToPartition from a
	// logical disk ("C:") to partition device ids.
	PartitionsOfLogicalDisk(ctx context.Context, logicalDisk string) ([]string, error)
	// DisksOfPartition follows Win32_DiskDriveToDiskPartition from a
	// partition to physical disk indexes.
	DisksOfPartition(ctx context.Context, partitionID string) ([]DiskIndex, error)
	// Partitions lists every Win32_DiskPartition.
	Partitions(ctx context.Context) ([]Partition, error)
	// LogicalDisksOfPartition follows Win32_LogicalDiskToPartition in
	// reverse, from a partition to logical disk ids.
	LogicalDisksOfPartition(ctx context.Context, partitionID string) ([]string, error)
}

// RegistryProvider lists the disk device ids enumerated under the disk
// service key, in ordinal order.
type RegistryProvider interface {
	DiskDeviceIDs(ctx context.Context) ([]string, error)
}

// LatencyProvider samples average read and write latency per physical disk.
type LatencyProvider interface {
	Latency(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error)
}

// Sources bundles every collaborator of the resolver. A nil field is treated
// as an unavailable provider.
type Sources struct {
	Storage    StorageProvider
	DiskDrives DiskDriveProvider
	Partitions PartitionProvider
	Registry   RegistryProvider
	Latency    LatencyProvider
}

// LatencyChain asks each provider in turn and returns the samples of the
// first one that reports a complete read and write latency.
type LatencyChain []LatencyProvider

func (c LatencyChain) Latency(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error) {
	var (
		errs    error
		partial []DiskDescriptor
	)
	for _, p := range c {
		if p == nil {
			continue
		}
		samples, err := p.Latency(ctx, index)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, s := range samples {
			if s.ReadLatency != nil && s.WriteLatency != nil {
				return samples, nil
			}
		}
		if partial == nil {
			partial = samples
		}
	}
	if partial != nil {
		return partial, nil
	}
	return nil, errs
}
