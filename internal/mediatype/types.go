package mediatype

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Classification is the verdict reported for a drive.
type Classification string

const (
	Unknown      Classification = "Unknown"
	HDD          Classification = "HDD"
	SSD          Classification = "SSD"
	SSDNVMe      Classification = "SSD (NVMe)"
	SCM          Classification = "SCM"
	SSDEstimated Classification = "SSD (estimated)"
)

// Definitive reports whether c ends the resolution chain.
func (c Classification) Definitive() bool {
	return c != "" && c != Unknown
}

func (c Classification) String() string {
	if c == "" {
		return string(Unknown)
	}
	return string(c)
}

// MediaKind is the MSFT_PhysicalDisk.MediaType enumeration.
type MediaKind uint16

const (
	MediaUnspecified MediaKind = 0
	MediaHDD         MediaKind = 3
	MediaSSD         MediaKind = 4
	MediaSCM         MediaKind = 5
)

func (m MediaKind) String() string {
	switch m {
	case MediaHDD:
		return "HDD"
	case MediaSSD:
		return "SSD"
	case MediaSCM:
		return "SCM"
	case MediaUnspecified:
		return "Unspecified"
	default:
		return fmt.Sprintf("MediaKind(%d)", uint16(m))
	}
}

// BusKind represents the hardware interface (USB, SATA, NVMe, etc.)
type BusKind uint16

const (
	BusUnknown           BusKind = 0x00
	BusScsi              BusKind = 0x01
	BusAtapi             BusKind = 0x02
	BusAta               BusKind = 0x03
	Bus1394              BusKind = 0x04
	BusSsa               BusKind = 0x05
	BusFibre             BusKind = 0x06
	BusUsb               BusKind = 0x07
	BusRAID              BusKind = 0x08
	BusiScsi             BusKind = 0x09
	BusSas               BusKind = 0x0A
	BusSata              BusKind = 0x0B
	BusSd                BusKind = 0x0C
	BusMmc               BusKind = 0x0D
	BusVirtual           BusKind = 0x0E
	BusFileBackedVirtual BusKind = 0x0F
	BusSpaces            BusKind = 0x10
	BusNvme              BusKind = 0x11
	BusSCM               BusKind = 0x12
	BusUfs               BusKind = 0x13
)

var busNames = map[BusKind]string{
	BusUnknown:           "Unknown",
	BusScsi:              "SCSI",
	BusAtapi:             "ATAPI",
	BusAta:               "ATA",
	Bus1394:              "1394",
	BusSsa:               "SSA",
	BusFibre:             "Fibre Channel",
	BusUsb:               "USB",
	BusRAID:              "RAID",
	BusiScsi:             "iSCSI",
	BusSas:               "SAS",
	BusSata:              "SATA",
	BusSd:                "SD",
	BusMmc:               "MMC",
	BusVirtual:           "Virtual",
	BusFileBackedVirtual: "File Backed Virtual",
	BusSpaces:            "Storage Spaces",
	BusNvme:              "NVMe",
	BusSCM:               "SCM",
	BusUfs:               "UFS",
}

func (b BusKind) String() string {
	if name, ok := busNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BusKind(%d)", uint16(b))
}

// DiskIndex is the OS ordinal of a physical disk (\\.\PhysicalDriveN).
type DiskIndex int

// NoDiskIndex marks an index that could not be resolved.
const NoDiskIndex DiskIndex = -1

func (d DiskIndex) Known() bool {
	return d >= 0
}

// DiskDescriptor is what one information source reports about one
// physical disk. Descriptors from different sources are never merged.
type DiskDescriptor struct {
	Index        DiskIndex
	MediaKind    MediaKind
	BusKind      BusKind
	FriendlyName string
	Model        string
	MediaType    string // free-text Win32_DiskDrive.MediaType
	Interface    string
	DevicePath   string // PNPDeviceID
	Serial       string

	// Latency samples; nil when the source does not report them.
	ReadLatency  *time.Duration
	WriteLatency *time.Duration
}

// Partition is a Win32_DiskPartition row.
type Partition struct {
	DeviceID  string
	DiskIndex DiskIndex
}

// Method names one classifier in the resolution chain.
type Method string

const (
	MethodAuthoritative Method = "storage-provider"
	MethodAllDisks      Method = "storage-provider-all"
	MethodRegistry      Method = "registry"
	MethodTopology      Method = "topology"
	MethodDiskDrive     Method = "disk-drive"
	MethodLatency       Method = "latency"
)

// Diagnostic records one classifier attempt.
type Diagnostic struct {
	Method  Method
	Verdict Classification
	Kind    ErrorKind
	Err     error
	Detail  string
	Elapsed time.Duration
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Method, d.Verdict)
	if d.Detail != "" {
		fmt.Fprintf(&b, " (%s)", d.Detail)
	}
	if d.Err != nil {
		fmt.Fprintf(&b, " [%s: %v]", d.Kind, d.Err)
	}
	fmt.Fprintf(&b, " in %s", d.Elapsed.Round(time.Microsecond))
	return b.String()
}

// Result is the outcome of one Resolve call.
type Result struct {
	Drive          string
	Classification Classification
	Method         Method // empty when nothing was conclusive
	DiskIndex      DiskIndex
	Diagnostics    []Diagnostic
}

// Err combines every error recorded while resolving. A non-nil value does not
// mean the classification is wrong; earlier sources may simply have failed.
func (r Result) Err() error {
	var err error
	for _, d := range r.Diagnostics {
		if d.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", d.Method, d.Err))
		}
	}
	return err
}

// Annotation is a short free-text note for Unknown verdicts.
func (r Result) Annotation() string {
	if r.Classification.Definitive() {
		return ""
	}
	errs := multierr.Errors(r.Err())
	if len(errs) == 0 {
		return ""
	}
	return errs[len(errs)-1].Error()
}

// Report joins the diagnostic records, one per line.
func (r Result) Report() string {
	lines := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

func (r Result) String() string {
	return r.Classification.String()
}
