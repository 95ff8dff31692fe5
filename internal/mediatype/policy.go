package mediatype

import (
	"fmt"
	"strings"
)

// FallbackPolicy governs sources that scan every disk on the machine instead
// of the one backing the drive.
type FallbackPolicy int

const (
	// FallbackUnanimous trusts a system-wide scan only when every disk it
	// sees yields the same definitive verdict.
	FallbackUnanimous FallbackPolicy = iota
	// FallbackFirst returns the first definitive verdict found, whichever
	// disk produced it.
	FallbackFirst
	// FallbackNever skips system-wide scans.
	FallbackNever
)

func (p FallbackPolicy) String() string {
	switch p {
	case FallbackUnanimous:
		return "unanimous"
	case FallbackFirst:
		return "first"
	case FallbackNever:
		return "never"
	default:
		return fmt.Sprintf("FallbackPolicy(%d)", int(p))
	}
}

// ParseFallbackPolicy accepts the names printed by String.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unanimous":
		return FallbackUnanimous, nil
	case "first":
		return FallbackFirst, nil
	case "never":
		return FallbackNever, nil
	}
	return FallbackUnanimous, fmt.Errorf("unknown fallback policy %q", s)
}

func (p FallbackPolicy) pick(verdicts []Verdict) (Verdict, bool) {
	switch p {
	case FallbackFirst:
		for _, v := range verdicts {
			if v.Classification.Definitive() {
				return v, true
			}
		}
	case FallbackUnanimous:
		if len(verdicts) == 0 {
			return Verdict{}, false
		}
		first := verdicts[0]
		for _, v := range verdicts {
			if !v.Classification.Definitive() || v.Classification != first.Classification {
				return Verdict{}, false
			}
		}
		return first, true
	}
	return Verdict{}, false
}
