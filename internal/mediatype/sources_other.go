//go:build !windows

package mediatype

// SystemSources returns no providers; every classifier reports
// ProviderUnavailable and drives resolve to Unknown.
func SystemSources() Sources {
	return Sources{}
}
