package mediatype

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Verdict is a classifier's answer with a short note on what decided it.
type Verdict struct {
	Classification Classification
	Detail         string
}

func unknown(detail string) Verdict {
	return Verdict{Classification: Unknown, Detail: detail}
}

// ClassifyAuthoritative asks the storage provider about the disk at index.
func ClassifyAuthoritative(ctx context.Context, p StorageProvider, h *Heuristics, index DiskIndex) (Verdict, error) {
	if p == nil {
		return unknown(""), errors.Wrap(ErrProviderUnavailable, "no storage provider")
	}
	if !index.Known() {
		return unknown(""), errors.Wrap(ErrNoMatch, "physical disk index not resolved")
	}

	disks, err := p.PhysicalDisk(ctx, index)
	if err != nil {
		return unknown(""), errors.Wrapf(err, "physical disk %d", index)
	}
	if len(disks) == 0 {
		return unknown(""), errors.Wrapf(ErrNoMatch, "physical disk %d not reported", index)
	}

	for _, d := range disks {
		if v := classifyStorageRecord(d, h); v.Classification.Definitive() {
			return v, nil
		}
	}
	return unknown(""), errors.Wrapf(ErrDataAmbiguous, "physical disk %d: no media kind or indicator", index)
}

// ClassifyAllDisks scans every disk the storage provider reports. It cannot
// tell which disk backs the drive, so policy decides whether the answer is
// trusted.
func ClassifyAllDisks(ctx context.Context, p StorageProvider, h *Heuristics, policy FallbackPolicy) (Verdict, error) {
	if policy == FallbackNever {
		return unknown("all-disks fallback disabled"), nil
	}
	if p == nil {
		return unknown(""), errors.Wrap(ErrProviderUnavailable, "no storage provider")
	}

	disks, err := p.PhysicalDisks(ctx)
	if err != nil {
		return unknown(""), errors.Wrap(err, "list physical disks")
	}
	if len(disks) == 0 {
		return unknown(""), errors.Wrap(ErrNoMatch, "storage provider reported no disks")
	}

	verdicts := make([]Verdict, 0, len(disks))
	for _, d := range disks {
		verdicts = append(verdicts, classifyStorageRecord(d, h))
	}

	v, ok := policy.pick(verdicts)
	if !ok {
		return unknown(""), errors.Wrapf(ErrDataAmbiguous, "%d disks do not agree (%s policy)", len(disks), policy)
	}
	return v, nil
}

func classifyStorageRecord(d DiskDescriptor, h *Heuristics) Verdict {
	switch d.MediaKind {
	case MediaSSD:
		if d.BusKind == BusNvme {
			return Verdict{SSDNVMe, fmt.Sprintf("disk %d MediaType=%d BusType=%d", d.Index, d.MediaKind, d.BusKind)}
		}
		return Verdict{SSD, fmt.Sprintf("disk %d MediaType=%d BusType=%d", d.Index, d.MediaKind, d.BusKind)}
	case MediaHDD:
		return Verdict{HDD, fmt.Sprintf("disk %d MediaType=%d", d.Index, d.MediaKind)}
	case MediaSCM:
		return Verdict{SCM, fmt.Sprintf("disk %d MediaType=%d", d.Index, d.MediaKind)}
	}

	tok, ok := firstToken(h.StorageIndicators, d.FriendlyName, d.Model)
	if !ok {
		return unknown("")
	}
	if containsFold(d.FriendlyName, "NVMe") || containsFold(d.Model, "NVMe") {
		return Verdict{SSDNVMe, fmt.Sprintf("disk %d name token %q", d.Index, tok)}
	}
	return Verdict{SSD, fmt.Sprintf("disk %d name token %q", d.Index, tok)}
}
