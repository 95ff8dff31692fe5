package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/nhdewitt/drivescope/internal/mediatype"
	"github.com/nhdewitt/drivescope/internal/protocol"
)

var sectionTitles = map[string]string{
	"os":             "Operating System",
	"cpu":            "Processor",
	"memory":         "Memory",
	"disks":          "Disks",
	"virtualization": "Virtualization",
	"boot":           "Boot",
}

// writeReport renders the report section by section in collection order. A
// section that failed shows its error in place of the data.
func writeReport(w io.Writer, r protocol.SystemReport, diagnostics bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, status := range r.Sections {
		title := sectionTitles[status.Name]
		if title == "" {
			title = status.Name
		}
		fmt.Fprintf(tw, "[%s]\n", title)

		if !status.OK {
			fmt.Fprintf(tw, "collection failed: %s\n\n", status.Error)
			continue
		}

		switch status.Name {
		case "os":
			if h, ok := r.Host(); ok {
				writeHost(tw, h)
			}
		case "cpu":
			if c, ok := r.CPU(); ok {
				writeCPU(tw, c)
			}
		case "memory":
			if m, ok := r.Memory(); ok {
				writeMemory(tw, m)
			}
		case "disks":
			if d, ok := r.Drives(); ok {
				writeDrives(tw, d, diagnostics)
			}
		case "virtualization":
			if v, ok := r.Virtualization(); ok {
				writeVirtualization(tw, v)
			}
		case "boot":
			if b, ok := r.Boot(); ok {
				writeBoot(tw, b)
			}
		}
		fmt.Fprintln(tw)
	}

	if r.TimedOut {
		fmt.Fprintf(tw, "Collection stopped after %s; the report is incomplete.\n", r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func writeHost(w io.Writer, h protocol.HostInfo) {
	fmt.Fprintf(w, "Hostname:\t%s\n", h.Hostname)
	fmt.Fprintf(w, "OS:\t%s\n", h.Platform)
	if h.Version != "" {
		fmt.Fprintf(w, "Version:\t%s\n", h.Version)
	}
	if h.Build != "" {
		fmt.Fprintf(w, "Build:\t%s\n", h.Build)
	}
	fmt.Fprintf(w, "Architecture:\t%s\n", h.KernelArch)
}

func writeCPU(w io.Writer, c protocol.CPUInfo) {
	fmt.Fprintf(w, "Model:\t%s\n", c.Model)
	fmt.Fprintf(w, "Cores:\t%d\n", c.Cores)
	fmt.Fprintf(w, "Threads:\t%d\n", c.Threads)
	if c.MHz > 0 {
		fmt.Fprintf(w, "Clock:\t%.0f MHz\n", c.MHz)
	}
}

func writeMemory(w io.Writer, m protocol.MemoryInfo) {
	fmt.Fprintf(w, "Total:\t%s\n", formatBytes(m.Total))
	fmt.Fprintf(w, "Used:\t%s (%.1f%%)\n", formatBytes(m.Used), m.UsedPct)
	fmt.Fprintf(w, "Available:\t%s\n", formatBytes(m.Available))
}

func writeDrives(w io.Writer, d protocol.DriveList, diagnostics bool) {
	if len(d.Drives) == 0 {
		fmt.Fprintln(w, "No fixed drives found.")
		return
	}

	fmt.Fprintln(w, "DRIVE\tTYPE\tFS\tTOTAL\tUSED\tFREE\tLABEL")
	for _, row := range d.Drives {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\t%s\t%s\n",
			row.Drive, row.Type, row.Filesystem,
			formatBytes(row.Total), row.UsedPct, formatBytes(row.Available), row.Label)
	}

	for _, row := range d.Drives {
		if row.Note != "" {
			fmt.Fprintf(w, "  %s %s\n", row.Drive, row.Note)
		}
		if diagnostics {
			for _, line := range row.Diagnostics {
				fmt.Fprintf(w, "  %s %s\n", row.Drive, line)
			}
		}
	}
}

func writeVirtualization(w io.Writer, v protocol.VirtualizationInfo) {
	fmt.Fprintf(w, "Firmware support:\t%s\n", v.Firmware)
	fmt.Fprintf(w, "Hypervisor present:\t%s\n", v.HypervisorPresent)
	fmt.Fprintf(w, "Hyper-V:\t%s\n", v.HyperV)
	fmt.Fprintf(w, "Virtualization-based security:\t%s\n", v.VBS)
	fmt.Fprintf(w, "Memory integrity:\t%s\n", v.MemoryIntegrity)
	fmt.Fprintf(w, "WSL:\t%s\n", v.WSL)
}

func writeBoot(w io.Writer, b protocol.BootInfo) {
	fmt.Fprintf(w, "Boot time:\t%s\n", b.BootTime.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Uptime:\t%s\n", formatUptime(b.Uptime))
}

// writeResults renders the type subcommand output.
func writeResults(w io.Writer, results []mediatype.Result, diagnostics bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DRIVE\tTYPE\tMETHOD\tDISK\tNOTE")

	for _, r := range results {
		method := string(r.Method)
		if method == "" {
			method = "-"
		}
		disk := "-"
		if r.DiskIndex.Known() {
			disk = fmt.Sprintf("%d", r.DiskIndex)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Drive, r.Classification, method, disk, r.Annotation())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if diagnostics {
		for _, r := range results {
			if len(r.Diagnostics) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s\n%s\n", r.Drive, indent(r.Report(), "  "))
		}
	}
	return nil
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
