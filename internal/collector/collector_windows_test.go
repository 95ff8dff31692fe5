//go:build windows

package collector

import (
	"context"
	"testing"
)

func TestListFixedVolumes_Integration(t *testing.T) {
	vols, err := ListFixedVolumes(context.Background())
	if err != nil {
		t.Fatalf("ListFixedVolumes failed: %v", err)
	}
	if len(vols) == 0 {
		t.Fatal("expected at least one fixed drive")
	}

	for _, v := range vols {
		t.Logf("%s %q %s total=%d free=%d", v.Drive, v.Label, v.Filesystem, v.Total, v.Free)
		if len(v.Drive) != 2 || v.Drive[1] != ':' {
			t.Errorf("unexpected drive name %q", v.Drive)
		}
		if v.Free > v.Total {
			t.Errorf("%s: free %d exceeds total %d", v.Drive, v.Free, v.Total)
		}
	}
}

func TestGetPlatformInfo_Integration(t *testing.T) {
	platform, version, build := getPlatformInfo()
	t.Logf("platform=%q version=%q build=%q", platform, version, build)

	if platform == "" {
		t.Error("ProductName should be readable")
	}
	if build == "" {
		t.Error("CurrentBuildNumber should be readable")
	}
}

func TestPlatformUptime_Integration(t *testing.T) {
	uptime, err := platformUptime()
	if err != nil {
		t.Fatalf("platformUptime failed: %v", err)
	}
	if uptime <= 0 {
		t.Errorf("uptime = %v, want positive", uptime)
	}
}

func TestCollectVirtualization_Integration(t *testing.T) {
	section, err := CollectVirtualization(context.Background())
	if err != nil {
		t.Fatalf("CollectVirtualization failed: %v", err)
	}

	if section.SectionName() != SectionVirtualization {
		t.Fatalf("unexpected section %T", section)
	}
	t.Logf("%+v", section)
}

func TestRegistryFlag_Missing(t *testing.T) {
	s := registryFlag{`SOFTWARE\drivescope-test\does-not-exist`, "Enabled"}.read()
	if !s.Known() || *s.Enabled {
		t.Errorf("missing key should read as disabled, got %s", s)
	}
}
