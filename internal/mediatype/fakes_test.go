package mediatype

import (
	"context"
	"sync"
	"time"
)

// calls counts provider invocations by method name.
type calls struct {
	mu sync.Mutex
	n  map[string]int
}

func (c *calls) hit(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == nil {
		c.n = make(map[string]int)
	}
	c.n[name]++
}

func (c *calls) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[name]
}

type fakeStorage struct {
	calls
	byIndex map[DiskIndex][]DiskDescriptor
	all     []DiskDescriptor
	err     error
	allErr  error
	delay   time.Duration
}

func (f *fakeStorage) PhysicalDisk(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error) {
	f.hit("PhysicalDisk")
	if err := pause(ctx, f.delay); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.byIndex[index], nil
}

func (f *fakeStorage) PhysicalDisks(ctx context.Context) ([]DiskDescriptor, error) {
	f.hit("PhysicalDisks")
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.all, nil
}

type fakeDiskDrives struct {
	calls
	byIndex map[DiskIndex][]DiskDescriptor
	err     error
	panics  bool
}

func (f *fakeDiskDrives) DiskDrive(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error) {
	f.hit("DiskDrive")
	if f.panics {
		panic("provider blew up")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.byIndex[index], nil
}

// fakePartitions models logical disk -> partition -> disk links.
type fakePartitions struct {
	calls
	// forward: logical disk -> partition ids
	forward map[string][]string
	// disks: partition id -> disk indexes
	disks map[string][]DiskIndex
	// partitions for the reverse walk, with their logical disks
	partitions []Partition
	logicals   map[string][]string
	forwardErr error
	delay      time.Duration
}

func (f *fakePartitions) PartitionsOfLogicalDisk(ctx context.Context, logical string) ([]string, error) {
	f.hit("PartitionsOfLogicalDisk")
	if err := pause(ctx, f.delay); err != nil {
		return nil, err
	}
	if f.forwardErr != nil {
		return nil, f.forwardErr
	}
	return f.forward[logical], nil
}

func (f *fakePartitions) DisksOfPartition(ctx context.Context, id string) ([]DiskIndex, error) {
	f.hit("DisksOfPartition")
	return f.disks[id], nil
}

func (f *fakePartitions) Partitions(ctx context.Context) ([]Partition, error) {
	f.hit("Partitions")
	return f.partitions, nil
}

func (f *fakePartitions) LogicalDisksOfPartition(ctx context.Context, id string) ([]string, error) {
	f.hit("LogicalDisksOfPartition")
	return f.logicals[id], nil
}

// onDisk links drive to index through a single partition.
func onDisk(drive string, index DiskIndex) *fakePartitions {
	part := "Disk #0, Partition #1"
	return &fakePartitions{
		forward: map[string][]string{drive: {part}},
		disks:   map[string][]DiskIndex{part: {index}},
	}
}

type fakeRegistry struct {
	calls
	ids []string
	err error
}

func (f *fakeRegistry) DiskDeviceIDs(ctx context.Context) ([]string, error) {
	f.hit("DiskDeviceIDs")
	return f.ids, f.err
}

type fakeLatency struct {
	calls
	samples map[DiskIndex][]DiskDescriptor
	err     error
	block   bool
}

func (f *fakeLatency) Latency(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error) {
	f.hit("Latency")
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.samples[index], nil
}

// pause sleeps for d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func ms(f float64) *time.Duration {
	d := time.Duration(f * float64(time.Millisecond))
	return &d
}
