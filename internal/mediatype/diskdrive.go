package mediatype

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ClassifyFromDiskDriveRecord applies the free-text heuristics to the legacy
// Win32_DiskDrive record at index.
func ClassifyFromDiskDriveRecord(ctx context.Context, p DiskDriveProvider, h *Heuristics, index DiskIndex) (Verdict, error) {
	if p == nil {
		return unknown(""), errors.Wrap(ErrProviderUnavailable, "no disk drive provider")
	}
	if !index.Known() {
		return unknown(""), errors.Wrap(ErrNoMatch, "physical disk index not resolved")
	}

	drives, err := p.DiskDrive(ctx, index)
	if err != nil {
		return unknown(""), errors.Wrapf(err, "disk drive %d", index)
	}
	if len(drives) == 0 {
		return unknown(""), errors.Wrapf(ErrNoMatch, "disk drive %d not reported", index)
	}

	for _, d := range drives {
		if v := classifyDiskDrive(d, h); v.Classification.Definitive() {
			return v, nil
		}
	}
	return unknown(""), errors.Wrapf(ErrDataAmbiguous, "disk drive %d: no heuristic matched", index)
}

// classifyDiskDrive runs the tiers in order; the first hit wins.
func classifyDiskDrive(d DiskDescriptor, h *Heuristics) Verdict {
	if containsFold(d.MediaType, "SSD") {
		return Verdict{SSD, fmt.Sprintf("media type %q", d.MediaType)}
	}

	if containsFold(d.DevicePath, "NVMe") {
		return Verdict{SSDNVMe, "device path contains NVMe"}
	}
	if containsFold(d.DevicePath, "SSD") {
		return Verdict{SSD, "device path contains SSD"}
	}

	if tok, ok := firstToken(h.ModelKeywords, d.Model); ok {
		if containsFold(d.Model, "NVMe") {
			return Verdict{SSDNVMe, fmt.Sprintf("model keyword %q", tok)}
		}
		return Verdict{SSD, fmt.Sprintf("model keyword %q", tok)}
	}

	if rule, ok := h.matchPattern(d.Model); ok {
		if rule.NVMe || containsFold(d.Model, "NVMe") || h.isNVMeFamily(d.Model) {
			return Verdict{SSDNVMe, fmt.Sprintf("model pattern %q", rule.Pattern)}
		}
		return Verdict{SSD, fmt.Sprintf("model pattern %q", rule.Pattern)}
	}

	// NVMe disks commonly surface through the SCSI miniport.
	if containsFold(d.Interface, "SCSI") {
		if containsFold(d.Model, "NVMe") || containsFold(d.Model, "PCIe") {
			return Verdict{SSDNVMe, "SCSI interface, PCIe/NVMe model"}
		}
		if code, ok := firstToken(h.SCSINVMeCodes, d.Model); ok {
			return Verdict{SSDNVMe, fmt.Sprintf("SCSI interface, model code %q", code)}
		}
	}

	if containsFold(d.Serial, "SSD") {
		return Verdict{SSD, "serial number contains SSD"}
	}

	return unknown("")
}
