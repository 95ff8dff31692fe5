package collector

import (
	"context"
	"runtime"

	"github.com/nhdewitt/drivescope/internal/mediatype"
	"github.com/nhdewitt/drivescope/internal/protocol"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var errUnsupported = errors.New("not supported on " + runtime.GOOS)

// Volume is a fixed logical drive with its capacity.
type Volume struct {
	Drive      string // "C:"
	Label      string
	Filesystem string
	Total      uint64
	Free       uint64
}

// Resolver classifies the media behind a logical drive.
type Resolver interface {
	Resolve(ctx context.Context, drive string) mediatype.Result
}

// VolumeLister enumerates fixed drives.
type VolumeLister func(ctx context.Context) ([]Volume, error)

// DiskCollector builds the disk table: one row per fixed drive, with the
// resolver's verdict in the Type column.
type DiskCollector struct {
	Resolver    Resolver
	Volumes     VolumeLister
	Diagnostics bool
	Log         logrus.FieldLogger
	// OnDrive, when set, is called after each drive is classified.
	OnDrive func(protocol.DriveInfo)
}

func (d *DiskCollector) Collect(ctx context.Context) (protocol.Section, error) {
	list := d.Volumes
	if list == nil {
		list = ListFixedVolumes
	}

	vols, err := list(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list volumes")
	}

	out := protocol.DriveList{Drives: make([]protocol.DriveInfo, 0, len(vols))}
	for _, v := range vols {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		row := driveRow(v)
		if d.Resolver != nil {
			res := d.Resolver.Resolve(ctx, v.Drive)
			applyResult(&row, res, d.Diagnostics)
			if d.Log != nil && !res.Classification.Definitive() {
				d.Log.WithField("drive", v.Drive).Debugf("media type unresolved: %v", res.Err())
			}
		}

		out.Drives = append(out.Drives, row)
		if d.OnDrive != nil {
			d.OnDrive(row)
		}
	}

	return out, nil
}

func driveRow(v Volume) protocol.DriveInfo {
	used := v.Total - v.Free
	if v.Free > v.Total {
		used = 0
	}
	return protocol.DriveInfo{
		Drive:      v.Drive,
		Label:      v.Label,
		Filesystem: v.Filesystem,
		Type:       mediatype.Unknown.String(),
		DiskIndex:  int(mediatype.NoDiskIndex),
		Total:      v.Total,
		Used:       used,
		Available:  v.Free,
		UsedPct:    percent(used, v.Total),
	}
}

func applyResult(row *protocol.DriveInfo, res mediatype.Result, diagnostics bool) {
	row.Type = res.Classification.String()
	row.Method = string(res.Method)
	row.DiskIndex = int(res.DiskIndex)
	row.Note = res.Annotation()

	if diagnostics {
		row.Diagnostics = make([]string, 0, len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			row.Diagnostics = append(row.Diagnostics, d.String())
		}
	}
}
