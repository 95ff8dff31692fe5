//go:build windows

package mediatype

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-ole/go-ole"
	"github.com/pkg/errors"
	"github.com/yusufpapurcu/wmi"
)

const (
	namespaceCIMv2   = `root\cimv2`
	namespaceStorage = `root\Microsoft\Windows\Storage`
)

// WBEM status codes that are not provider failures.
const (
	wbemNotFound         = 0x80041002
	wbemInvalidParameter = 0x80041008
	wbemInvalidQuery     = 0x80041017
	wbemInvalidQueryType = 0x80041018
)

// MSFT_PhysicalDisk maps to the storage management class.
type MSFT_PhysicalDisk struct {
	DeviceId     string
	FriendlyName string
	Model        string
	MediaType    uint16
	BusType      uint16
}

type Win32_DiskDrive struct {
	Index         uint32
	Model         string
	MediaType     string
	InterfaceType string
	PNPDeviceID   string
	SerialNumber  string
}

type Win32_DiskPartition struct {
	DeviceID  string
	DiskIndex uint32
}

type Win32_LogicalDisk struct {
	DeviceID string
}

// Win32_PerfRawData_PerfDisk_PhysicalDisk holds PERF_AVERAGE_TIMER counters:
// seconds = value / Frequency_PerfTime / base.
type Win32_PerfRawData_PerfDisk_PhysicalDisk struct {
	Name                    string
	AvgDiskSecPerRead       uint32
	AvgDiskSecPerRead_Base  uint32
	AvgDiskSecPerWrite      uint32
	AvgDiskSecPerWrite_Base uint32
	Frequency_PerfTime      uint64
}

// queryWMI runs query on its own goroutine so that ctx bounds the wait. The
// wmi package serializes queries and has no cancellation; an abandoned query
// finishes in the background and its rows are dropped.
func queryWMI[T any](ctx context.Context, namespace, query string) ([]T, error) {
	type result struct {
		rows []T
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		var rows []T
		err := wmi.QueryNamespace(query, &rows, namespace)
		ch <- result{rows: rows, err: err}
	}()

	select {
	case r := <-ch:
		var mismatch *wmi.ErrFieldMismatch
		if errors.As(r.err, &mismatch) {
			// Rows are still loaded; missing optional properties stay zero.
			return r.rows, nil
		}
		if r.err != nil {
			return nil, wmiError(r.err, query)
		}
		return r.rows, nil
	case <-ctx.Done():
		return nil, unavailable(ctx.Err(), "wmi %q", query)
	}
}

// wmiError maps a provider failure onto the error taxonomy by HRESULT.
func wmiError(err error, query string) error {
	var oleErr *ole.OleError
	if !errors.As(err, &oleErr) {
		return unavailable(err, "wmi %q", query)
	}

	code := uint32(oleErr.Code())
	if ex, ok := oleErr.SubError().(ole.EXCEPINFO); ok && ex.SCODE() != 0 {
		code = ex.SCODE()
	}

	switch code {
	case wbemInvalidQuery, wbemInvalidQueryType, wbemInvalidParameter:
		return withKind(ErrQueryMalformed, err, "wmi %q (0x%08X)", query, code)
	case wbemNotFound:
		return withKind(ErrNoMatch, err, "wmi %q (0x%08X)", query, code)
	default:
		// Access denied, missing namespace or class, RPC failures.
		return unavailable(err, "wmi %q (0x%08X)", query, code)
	}
}

// quoteWQL escapes s for use inside a single-quoted WQL literal.
func quoteWQL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// wmiStorage reads MSFT_PhysicalDisk.
type wmiStorage struct{}

func (wmiStorage) PhysicalDisk(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error) {
	q := fmt.Sprintf("SELECT DeviceId, FriendlyName, Model, MediaType, BusType FROM MSFT_PhysicalDisk WHERE DeviceId = %s",
		quoteWQL(strconv.Itoa(int(index))))
	rows, err := queryWMI[MSFT_PhysicalDisk](ctx, namespaceStorage, q)
	if err != nil {
		return nil, err
	}
	return storageDescriptors(rows), nil
}

func (wmiStorage) PhysicalDisks(ctx context.Context) ([]DiskDescriptor, error) {
	q := "SELECT DeviceId, FriendlyName, Model, MediaType, BusType FROM MSFT_PhysicalDisk"
	rows, err := queryWMI[MSFT_PhysicalDisk](ctx, namespaceStorage, q)
	if err != nil {
		return nil, err
	}
	return storageDescriptors(rows), nil
}

func storageDescriptors(rows []MSFT_PhysicalDisk) []DiskDescriptor {
	out := make([]DiskDescriptor, 0, len(rows))
	for _, r := range rows {
		idx := NoDiskIndex
		if n, err := strconv.Atoi(strings.TrimSpace(r.DeviceId)); err == nil {
			idx = DiskIndex(n)
		}
		out = append(out, DiskDescriptor{
			Index:        idx,
			MediaKind:    MediaKind(r.MediaType),
			BusKind:      BusKind(r.BusType),
			FriendlyName: strings.TrimSpace(r.FriendlyName),
			Model:        strings.TrimSpace(r.Model),
		})
	}
	return out
}

// wmiDiskDrives reads Win32_DiskDrive.
type wmiDiskDrives struct{}

func (wmiDiskDrives) DiskDrive(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error) {
	q := fmt.Sprintf("SELECT Index, Model, MediaType, InterfaceType, PNPDeviceID, SerialNumber FROM Win32_DiskDrive WHERE Index = %d", index)
	rows, err := queryWMI[Win32_DiskDrive](ctx, namespaceCIMv2, q)
	if err != nil {
		return nil, err
	}

	out := make([]DiskDescriptor, 0, len(rows))
	for _, r := range rows {
		out = append(out, DiskDescriptor{
			Index:      DiskIndex(r.Index),
			Model:      strings.TrimSpace(r.Model),
			MediaType:  strings.TrimSpace(r.MediaType),
			Interface:  strings.TrimSpace(r.InterfaceType),
			DevicePath: strings.TrimSpace(r.PNPDeviceID),
			Serial:     strings.TrimSpace(r.SerialNumber),
		})
	}
	return out, nil
}

// wmiPartitions walks the CIM association classes.
type wmiPartitions struct{}

func (wmiPartitions) PartitionsOfLogicalDisk(ctx context.Context, logicalDisk string) ([]string, error) {
	q := fmt.Sprintf("ASSOCIATORS OF {Win32_LogicalDisk.DeviceID=%s} WHERE AssocClass = Win32_LogicalDiskToPartition",
		quoteWQL(logicalDisk))
	rows, err := queryWMI[Win32_DiskPartition](ctx, namespaceCIMv2, q)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.DeviceID)
	}
	return ids, nil
}

func (wmiPartitions) DisksOfPartition(ctx context.Context, partitionID string) ([]DiskIndex, error) {
	q := fmt.Sprintf("ASSOCIATORS OF {Win32_DiskPartition.DeviceID=%s} WHERE AssocClass = Win32_DiskDriveToDiskPartition",
		quoteWQL(partitionID))
	rows, err := queryWMI[struct{ Index uint32 }](ctx, namespaceCIMv2, q)
	if err != nil {
		return nil, err
	}

	out := make([]DiskIndex, 0, len(rows))
	for _, r := range rows {
		out = append(out, DiskIndex(r.Index))
	}
	return out, nil
}

func (wmiPartitions) Partitions(ctx context.Context) ([]Partition, error) {
	rows, err := queryWMI[Win32_DiskPartition](ctx, namespaceCIMv2, "SELECT DeviceID, DiskIndex FROM Win32_DiskPartition")
	if err != nil {
		return nil, err
	}

	out := make([]Partition, 0, len(rows))
	for _, r := range rows {
		out = append(out, Partition{DeviceID: r.DeviceID, DiskIndex: DiskIndex(r.DiskIndex)})
	}
	return out, nil
}

func (wmiPartitions) LogicalDisksOfPartition(ctx context.Context, partitionID string) ([]string, error) {
	q := fmt.Sprintf("ASSOCIATORS OF {Win32_DiskPartition.DeviceID=%s} WHERE AssocClass = Win32_LogicalDiskToPartition",
		quoteWQL(partitionID))
	rows, err := queryWMI[Win32_LogicalDisk](ctx, namespaceCIMv2, q)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.DeviceID)
	}
	return out, nil
}

// wmiLatency reads the raw physical disk performance counters.
type wmiLatency struct{}

func (wmiLatency) Latency(ctx context.Context, index DiskIndex) ([]DiskDescriptor, error) {
	rows, err := queryWMI[Win32_PerfRawData_PerfDisk_PhysicalDisk](ctx, namespaceCIMv2,
		"SELECT Name, AvgDiskSecPerRead, AvgDiskSecPerRead_Base, AvgDiskSecPerWrite, AvgDiskSecPerWrite_Base, Frequency_PerfTime FROM Win32_PerfRawData_PerfDisk_PhysicalDisk")
	if err != nil {
		return nil, err
	}

	var out []DiskDescriptor
	for _, r := range rows {
		if !perfInstanceMatches(r.Name, index) {
			continue
		}
		out = append(out, DiskDescriptor{
			Index:        index,
			ReadLatency:  averageTimer(r.AvgDiskSecPerRead, r.AvgDiskSecPerRead_Base, r.Frequency_PerfTime),
			WriteLatency: averageTimer(r.AvgDiskSecPerWrite, r.AvgDiskSecPerWrite_Base, r.Frequency_PerfTime),
		})
	}
	return out, nil
}

// perfInstanceMatches checks instance names like "0 C:" or "1 D: E:".
func perfInstanceMatches(name string, index DiskIndex) bool {
	fields := strings.Fields(name)
	return len(fields) > 0 && fields[0] == strconv.Itoa(int(index))
}

func averageTimer(value, base uint32, freq uint64) *time.Duration {
	if base == 0 || freq == 0 {
		return nil
	}
	d := time.Duration(float64(value) * float64(time.Second) / (float64(freq) * float64(base)))
	return &d
}
