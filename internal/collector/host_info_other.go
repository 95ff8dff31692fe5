//go:build !windows

package collector

import (
	"time"

	"github.com/pkg/errors"
)

func getPlatformInfo() (platform, version, build string) {
	return "", "", ""
}

func platformUptime() (time.Duration, error) {
	return 0, errors.Wrap(errUnsupported, "uptime counter")
}
