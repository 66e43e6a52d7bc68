package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const diskCommand = "LC_ALL=C df -P -x tmpfs -x devtmpfs"

// MountEntry is one row of POSIX df output. Sizes are in 1024-byte blocks.
type MountEntry struct {
	Filesystem string
	SizeKB     uint64
	UsedKB     uint64
	AvailKB    uint64
	UsePercent float64
	MountPoint string
}

// DiskInfo lists the mounted filesystems of a host.
type DiskInfo struct {
	Mounts []MountEntry
}

func (d *DiskInfo) Kind() Kind { return KindDisk }

// TotalBytes returns the sum of all mount sizes in bytes.
func (d *DiskInfo) TotalBytes() uint64 {
	var sum uint64
	for _, m := range d.Mounts {
		sum += m.SizeKB * 1024
	}
	return sum
}

// UsedBytes returns the sum of used space across mounts in bytes.
func (d *DiskInfo) UsedBytes() uint64 {
	var sum uint64
	for _, m := range d.Mounts {
		sum += m.UsedKB * 1024
	}
	return sum
}

// AvailBytes returns the sum of available space across mounts in bytes.
func (d *DiskInfo) AvailBytes() uint64 {
	var sum uint64
	for _, m := range d.Mounts {
		sum += m.AvailKB * 1024
	}
	return sum
}

// UsedPercent returns aggregate usage, 0 when the total size is 0.
func (d *DiskInfo) UsedPercent() float64 {
	return percent(float64(d.UsedBytes()), float64(d.TotalBytes()))
}

func (d *DiskInfo) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Disk: %s / %s (%.1f%%), %s available\n",
		humanize.IBytes(d.UsedBytes()), humanize.IBytes(d.TotalBytes()), d.UsedPercent(), humanize.IBytes(d.AvailBytes()))
	if len(d.Mounts) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	for _, m := range d.Mounts {
		fmt.Fprintf(&b, "%-20s %10s / %-10s %5.1f%%\n",
			truncate(m.MountPoint, 20), humanize.IBytes(m.UsedKB*1024), humanize.IBytes(m.SizeKB*1024), m.UsePercent)
	}
	return b.String()
}

// parseDisk never fails. The first non-blank line is the header, whatever
// its language; rows with fewer than six columns are skipped and
// unparseable numbers become 0.
func parseDisk(raw string) (Sample, error) {
	info := &DiskInfo{}
	header := true
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if header {
			header = false
			continue
		}
		if len(fields) < 6 {
			continue
		}
		info.Mounts = append(info.Mounts, MountEntry{
			Filesystem: fields[0],
			SizeKB:     parseUintOrZero(fields[1]),
			UsedKB:     parseUintOrZero(fields[2]),
			AvailKB:    parseUintOrZero(fields[3]),
			UsePercent: parseFloatOrZero(strings.TrimSuffix(fields[4], "%")),
			MountPoint: strings.Join(fields[5:], " "),
		})
	}
	return info, nil
}

func parseUintOrZero(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
