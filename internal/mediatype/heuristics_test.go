package mediatype

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHeuristics(t *testing.T) {
	h := DefaultHeuristics()

	require.NotNil(t, h)
	assert.NotEmpty(t, h.Version)
	assert.Contains(t, h.StorageIndicators, "SHGS31")
	assert.Contains(t, h.RegistryVendorIDs, "SAMSUNG_SSD")
	assert.Contains(t, h.SCSINVMeCodes, "BG4")
	assert.Same(t, h, DefaultHeuristics())

	for _, rule := range h.ModelPatterns {
		assert.NotNil(t, rule.re, "pattern %q not compiled", rule.Pattern)
	}
}

func TestHeuristics_NVMeFamily(t *testing.T) {
	h := DefaultHeuristics()

	tests := []struct {
		model string
		want  bool
	}{
		{"Samsung 980 PRO 1TB", true},
		{"Samsung SSD 970 EVO Plus", true},
		{"WDC WDS100T2B0C SN550", true},
		{"Solidigm P41 Plus", true},
		{"SAMSUNG MZVL2512HCJQ PM9A1", true},
		{"Samsung SSD 860 EVO", false},
		{"Crucial CT500MX500SSD1", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, h.isNVMeFamily(tt.model))
		})
	}
}

func TestLoadHeuristics(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "minimal",
			yaml: "version: test\nmodel_patterns:\n  - pattern: Acme.*Disk\n    nvme: true\n",
		},
		{
			name:    "missing version",
			yaml:    "model_keywords: [SSD]\n",
			wantErr: "version is required",
		},
		{
			name:    "bad regex",
			yaml:    "version: x\nmodel_patterns:\n  - pattern: \"([\"\n",
			wantErr: "model pattern",
		},
		{
			name:    "bad family regex",
			yaml:    "version: x\nnvme_families: [\"(\"]\n",
			wantErr: "nvme family",
		},
		{
			name:    "unknown field",
			yaml:    "version: x\nmodel_keyword: [SSD]\n",
			wantErr: "decode heuristics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := LoadHeuristics(strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			rule, ok := h.matchPattern("ACME fast disk")
			require.True(t, ok)
			assert.True(t, rule.NVMe)
		})
	}
}

func TestLoadHeuristicsFile_RoundTrip(t *testing.T) {
	data, err := DefaultHeuristics().Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	h, err := LoadHeuristicsFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultHeuristics().Version, h.Version)
	assert.Len(t, h.ModelPatterns, len(DefaultHeuristics().ModelPatterns))

	got := classifyDiskDrive(DiskDescriptor{Model: "Samsung 980 PRO 1TB"}, h)
	assert.Equal(t, SSDNVMe, got.Classification)
}

func TestLoadHeuristicsFile_Missing(t *testing.T) {
	_, err := LoadHeuristicsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolve_CustomHeuristics(t *testing.T) {
	h, err := LoadHeuristics(strings.NewReader("version: site\nmodel_patterns:\n  - pattern: ^ACME-X\n    nvme: true\n"))
	require.NoError(t, err)

	r := newTestResolver(Sources{
		Partitions: onDisk("C:", 0),
		DiskDrives: &fakeDiskDrives{byIndex: map[DiskIndex][]DiskDescriptor{
			0: {{Model: "ACME-X 512"}},
		}},
	}, WithHeuristics(h))

	res := r.Resolve(t.Context(), "C")
	assert.Equal(t, SSDNVMe, res.Classification)
	assert.Same(t, h, r.Heuristics())
}
