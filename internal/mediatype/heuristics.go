package mediatype

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default_heuristics.yaml
var defaultHeuristicsYAML []byte

// PatternRule is one model-name regular expression. NVMe marks rules whose
// match alone is enough to call the drive NVMe.
type PatternRule struct {
	Pattern string `yaml:"pattern"`
	NVMe    bool   `yaml:"nvme,omitempty"`

	re *regexp.Regexp
}

// Heuristics is the versioned free-text matching data. A loaded value is
// read-only and safe to share between concurrent resolutions.
type Heuristics struct {
	Version           string        `yaml:"version"`
	StorageIndicators []string      `yaml:"storage_indicators"`
	RegistryVendorIDs []string      `yaml:"registry_vendor_ids"`
	ModelKeywords     []string      `yaml:"model_keywords"`
	ModelPatterns     []PatternRule `yaml:"model_patterns"`
	NVMeFamilies      []string      `yaml:"nvme_families"`
	SCSINVMeCodes     []string      `yaml:"scsi_nvme_codes"`

	families []*regexp.Regexp
}

var defaultHeuristics = sync.OnceValues(func() (*Heuristics, error) {
	return LoadHeuristics(bytes.NewReader(defaultHeuristicsYAML))
})

// DefaultHeuristics returns the data set compiled into the binary.
func DefaultHeuristics() *Heuristics {
	h, err := defaultHeuristics()
	if err != nil {
		panic("mediatype: embedded heuristics: " + err.Error())
	}
	return h
}

// LoadHeuristics decodes and compiles a YAML heuristic data set.
func LoadHeuristics(r io.Reader) (*Heuristics, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var h Heuristics
	if err := dec.Decode(&h); err != nil {
		return nil, errors.Wrap(err, "decode heuristics")
	}
	if err := h.compile(); err != nil {
		return nil, err
	}
	return &h, nil
}

// LoadHeuristicsFile reads a data set from path.
func LoadHeuristicsFile(path string) (*Heuristics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open heuristics")
	}
	defer f.Close()

	h, err := LoadHeuristics(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return h, nil
}

func (h *Heuristics) compile() error {
	if strings.TrimSpace(h.Version) == "" {
		return errors.New("heuristics: version is required")
	}

	for i := range h.ModelPatterns {
		re, err := regexp.Compile("(?i)" + h.ModelPatterns[i].Pattern)
		if err != nil {
			return errors.Wrapf(err, "heuristics: model pattern %q", h.ModelPatterns[i].Pattern)
		}
		h.ModelPatterns[i].re = re
	}

	h.families = make([]*regexp.Regexp, 0, len(h.NVMeFamilies))
	for _, f := range h.NVMeFamilies {
		re, err := regexp.Compile("(?i)" + f)
		if err != nil {
			return errors.Wrapf(err, "heuristics: nvme family %q", f)
		}
		h.families = append(h.families, re)
	}

	return nil
}

// Marshal renders the data set as YAML.
func (h *Heuristics) Marshal() ([]byte, error) {
	return yaml.Marshal(h)
}

// isNVMeFamily reports whether model names a known NVMe product family.
func (h *Heuristics) isNVMeFamily(model string) bool {
	for _, re := range h.families {
		if re.MatchString(model) {
			return true
		}
	}
	return false
}

// matchPattern returns the first model pattern matching model.
func (h *Heuristics) matchPattern(model string) (PatternRule, bool) {
	for _, rule := range h.ModelPatterns {
		if rule.re != nil && rule.re.MatchString(model) {
			return rule, true
		}
	}
	return PatternRule{}, false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// firstToken returns the first token contained in any of the fields.
func firstToken(tokens []string, fields ...string) (string, bool) {
	for _, tok := range tokens {
		for _, f := range fields {
			if f != "" && containsFold(f, tok) {
				return tok, true
			}
		}
	}
	return "", false
}
