// Package mediatype classifies the storage media behind a Windows drive
// letter as HDD, SSD, SSD (NVMe), SCM or Unknown.
//
// Resolve tries the storage provider for the drive's own disk, a scan of
// every disk the provider reports, the disk service's registry enumeration,
// the legacy Win32_DiskDrive record and finally I/O latency, stopping at the
// first definitive verdict.
//
// The all-disks and registry scans are not tied to the drive. Under the
// default FallbackUnanimous they only count when every disk agrees;
// FallbackFirst restores first-match-wins, and FallbackNever skips them.
package mediatype
