package collector

import "github.com/nhdewitt/drivescope/internal/protocol"

func state(enabled bool, source string) protocol.FeatureState {
	return protocol.FeatureState{Enabled: &enabled, Source: source}
}
