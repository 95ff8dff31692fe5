package mediatype

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ClassifyFromRegistry inspects the disk device ids enumerated by the disk
// service. The key carries no drive letter linkage, so the scan is
// system-wide and policy applies as for ClassifyAllDisks.
func ClassifyFromRegistry(ctx context.Context, p RegistryProvider, h *Heuristics, policy FallbackPolicy) (Verdict, error) {
	if policy == FallbackNever {
		return unknown("registry scan disabled"), nil
	}
	if p == nil {
		return unknown(""), errors.Wrap(ErrProviderUnavailable, "no registry provider")
	}

	ids, err := p.DiskDeviceIDs(ctx)
	if err != nil {
		return unknown(""), errors.Wrap(err, "disk enum")
	}
	if len(ids) == 0 {
		return unknown(""), errors.Wrap(ErrNoMatch, "disk enum is empty")
	}

	verdicts := make([]Verdict, 0, len(ids))
	for _, id := range ids {
		verdicts = append(verdicts, registryVerdict(id, h))
	}

	v, ok := policy.pick(verdicts)
	if !ok {
		return unknown(""), errors.Wrapf(ErrNoMatch, "%d device ids, no consistent match (%s policy)", len(ids), policy)
	}
	return v, nil
}

func registryVerdict(id string, h *Heuristics) Verdict {
	if id == "" {
		return unknown("")
	}
	if containsFold(id, "NVMe") {
		return Verdict{SSDNVMe, fmt.Sprintf("device id %s", id)}
	}
	if containsFold(id, "SSD") {
		return Verdict{SSD, fmt.Sprintf("device id %s", id)}
	}
	if tok, ok := firstToken(h.RegistryVendorIDs, id); ok {
		return Verdict{SSD, fmt.Sprintf("device id %s vendor %s", id, tok)}
	}
	return unknown("")
}

// maxEnumeratedDisks caps the Count value read from the disk enum key.
const maxEnumeratedDisks uint64 = 256

// enumDeviceIDs reads the ordinal values "0".."count-1" through value, which
// reports false for a missing ordinal. count is untrusted.
func enumDeviceIDs(ctx context.Context, count uint64, value func(i uint64) (string, bool, error)) ([]string, error) {
	n := min(count, maxEnumeratedDisks)
	ids := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, unavailable(err, "disk enum")
		}
		id, ok, err := value(i)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
