package mediatype

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// NormalizeDrive turns "c", "C:" or `C:\` into the logical disk id "C:".
func NormalizeDrive(drive string) (string, error) {
	d := strings.TrimSpace(drive)
	d = strings.TrimRight(d, `\/`)
	d = strings.TrimSuffix(d, ":")
	if len(d) != 1 {
		return "", errors.Wrapf(ErrQueryMalformed, "invalid drive %q", drive)
	}
	c := d[0] &^ 0x20 // upper-case ASCII
	if c < 'A' || c > 'Z' {
		return "", errors.Wrapf(ErrQueryMalformed, "invalid drive %q", drive)
	}
	return string(c) + ":", nil
}

// FindPhysicalDiskIndex resolves the physical disk backing a logical drive.
// The forward walk (logical disk -> partition -> disk) runs first; when it
// finds nothing every partition is checked in reverse. Provider errors only
// end up in the returned error; callers treat any error as "not found".
func FindPhysicalDiskIndex(ctx context.Context, p PartitionProvider, drive string) (DiskIndex, error) {
	logical, err := NormalizeDrive(drive)
	if err != nil {
		return NoDiskIndex, err
	}
	if p == nil {
		return NoDiskIndex, errors.Wrap(ErrProviderUnavailable, "no partition provider")
	}

	idx, fwdErr := forwardWalk(ctx, p, logical)
	if idx.Known() {
		return idx, nil
	}

	idx, revErr := reverseWalk(ctx, p, logical)
	if idx.Known() {
		return idx, nil
	}

	if err := multierr.Combine(fwdErr, revErr); err != nil {
		return NoDiskIndex, err
	}
	return NoDiskIndex, errors.Wrapf(ErrNoMatch, "no physical disk behind %s", logical)
}

func forwardWalk(ctx context.Context, p PartitionProvider, logical string) (DiskIndex, error) {
	partitions, err := p.PartitionsOfLogicalDisk(ctx, logical)
	if err != nil {
		return NoDiskIndex, errors.Wrapf(err, "partitions of %s", logical)
	}

	var errs error
	for _, part := range partitions {
		disks, err := p.DisksOfPartition(ctx, part)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "disks of %s", part))
			continue
		}
		for _, d := range disks {
			if d.Known() {
				return d, nil
			}
		}
	}
	return NoDiskIndex, errs
}

func reverseWalk(ctx context.Context, p PartitionProvider, logical string) (DiskIndex, error) {
	partitions, err := p.Partitions(ctx)
	if err != nil {
		return NoDiskIndex, errors.Wrap(err, "list partitions")
	}

	var errs error
	for _, part := range partitions {
		if ctx.Err() != nil {
			return NoDiskIndex, multierr.Append(errs, ctx.Err())
		}
		logicals, err := p.LogicalDisksOfPartition(ctx, part.DeviceID)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "logical disks of %s", part.DeviceID))
			continue
		}
		for _, l := range logicals {
			if strings.EqualFold(l, logical) && part.DiskIndex.Known() {
				return part.DiskIndex, nil
			}
		}
	}
	return NoDiskIndex, errs
}
