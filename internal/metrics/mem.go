package metrics

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const memCommand = "cat /proc/meminfo"

// MemInfo is a parsed /proc/meminfo reading. Values are in KiB as reported
// by the kernel. Optional fields are nil when the key was absent.
type MemInfo struct {
	TotalKB     uint64
	FreeKB      uint64
	AvailableKB *uint64
	BuffersKB   *uint64
	CachedKB    *uint64
	SwapTotalKB *uint64
	SwapFreeKB  *uint64
	// Other holds every numeric key from /proc/meminfo, including the ones
	// promoted to fields above.
	Other map[string]uint64
}

func (m *MemInfo) Kind() Kind { return KindMem }

// UsedKB returns total minus available, or total minus free when the kernel
// does not report MemAvailable. Never negative.
func (m *MemInfo) UsedKB() uint64 {
	avail := m.FreeKB
	if m.AvailableKB != nil {
		avail = *m.AvailableKB
	}
	return satSub(m.TotalKB, avail)
}

// UsedPercent returns used memory as a percentage of total, 0 when total is 0.
func (m *MemInfo) UsedPercent() float64 {
	return percent(float64(m.UsedKB()), float64(m.TotalKB))
}

// SwapUsedPercent returns swap usage, or false when swap is absent or disabled.
func (m *MemInfo) SwapUsedPercent() (float64, bool) {
	if m.SwapTotalKB == nil || m.SwapFreeKB == nil || *m.SwapTotalKB == 0 {
		return 0, false
	}
	return percent(float64(satSub(*m.SwapTotalKB, *m.SwapFreeKB)), float64(*m.SwapTotalKB)), true
}

func (m *MemInfo) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Memory: %s / %s (%.1f%%)\n",
		humanize.IBytes(m.UsedKB()*1024), humanize.IBytes(m.TotalKB*1024), m.UsedPercent())
	if m.AvailableKB != nil {
		fmt.Fprintf(&b, "Available: %s\n", humanize.IBytes(*m.AvailableKB*1024))
	} else {
		fmt.Fprintf(&b, "Free: %s\n", humanize.IBytes(m.FreeKB*1024))
	}
	if pct, ok := m.SwapUsedPercent(); ok {
		fmt.Fprintf(&b, "Swap: %.1f%% of %s\n", pct, humanize.IBytes(*m.SwapTotalKB*1024))
	}
	return b.String()
}

// parseMem parses "Key:   value kB" lines. MemTotal and MemFree are required.
func parseMem(raw string) (Sample, error) {
	values := make(map[string]uint64)
	for _, line := range strings.Split(raw, "\n") {
		key, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		v, ok := leadingUint(rest)
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = v
	}

	total, ok := values["MemTotal"]
	if !ok {
		return nil, parseErrorf(KindMem, "MemTotal missing")
	}
	free, ok := values["MemFree"]
	if !ok {
		return nil, parseErrorf(KindMem, "MemFree missing")
	}

	return &MemInfo{
		TotalKB:     total,
		FreeKB:      free,
		AvailableKB: lookupKB(values, "MemAvailable"),
		BuffersKB:   lookupKB(values, "Buffers"),
		CachedKB:    lookupKB(values, "Cached"),
		SwapTotalKB: lookupKB(values, "SwapTotal"),
		SwapFreeKB:  lookupKB(values, "SwapFree"),
		Other:       values,
	}, nil
}

func lookupKB(values map[string]uint64, key string) *uint64 {
	v, ok := values[key]
	if !ok {
		return nil
	}
	return &v
}

func satSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
