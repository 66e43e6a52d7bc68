package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxTopProcesses bounds the process list kept with a CPU sample.
const MaxTopProcesses = 10

func cpuCommand() string {
	return fmt.Sprintf("cat /proc/stat; echo '%s'; sleep %s; cat /proc/stat; echo '%s'; ps -eo pid,comm,%%cpu,%%mem --sort=-%%cpu | head -n %d",
		SnapshotSeparator, pauseArg(), SectionSeparator, MaxTopProcesses+1)
}

// CPUCounters holds the aggregate jiffy counters from one "cpu " line of /proc/stat.
type CPUCounters struct {
	User    uint64
	Nice    uint64
	System  uint64
	Idle    uint64
	IOWait  uint64
	IRQ     uint64
	SoftIRQ uint64
}

// Total returns the sum of all tracked counters.
func (c CPUCounters) Total() uint64 {
	return c.User + c.Nice + c.System + c.Idle + c.IOWait + c.IRQ + c.SoftIRQ
}

// IdleAll returns idle plus iowait time.
func (c CPUCounters) IdleAll() uint64 {
	return c.Idle + c.IOWait
}

// ProcessInfo is one row of the top-processes list.
type ProcessInfo struct {
	PID        int
	Name       string
	CPUPercent float64
	MemPercent float64
}

// CPUInfo is the result of two /proc/stat readings taken SamplePause apart.
type CPUInfo struct {
	UsagePercent float64
	// Raw counters from the second reading.
	User   uint64
	System uint64
	Idle   uint64
	// TopProcesses is ordered by CPU usage, at most MaxTopProcesses entries.
	TopProcesses []ProcessInfo
}

func (c *CPUInfo) Kind() Kind { return KindCPU }

// UsedPercent returns UsagePercent.
func (c *CPUInfo) UsedPercent() float64 { return c.UsagePercent }

func (c *CPUInfo) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CPU Usage: %.1f%%\n", c.UsagePercent)
	if len(c.TopProcesses) == 0 {
		return b.String()
	}
	b.WriteString("\nTop processes:\n")
	fmt.Fprintf(&b, "%7s  %-20s %6s %6s\n", "PID", "COMMAND", "%CPU", "%MEM")
	for _, p := range c.TopProcesses {
		fmt.Fprintf(&b, "%7d  %-20s %6.1f %6.1f\n", p.PID, truncate(p.Name, 20), p.CPUPercent, p.MemPercent)
	}
	return b.String()
}

// CPUUsage computes busy time as a percentage of total time between two
// readings. Counter decreases are treated as zero progress. The result is
// always within [0, 100].
func CPUUsage(first, second CPUCounters) float64 {
	totalDelta := satSub(second.Total(), first.Total())
	if totalDelta == 0 {
		return 0
	}
	idleDelta := satSub(second.IdleAll(), first.IdleAll())
	usage := float64(totalDelta-min(idleDelta, totalDelta)) / float64(totalDelta) * 100
	return clamp(usage, 0, 100)
}

func parseCPU(raw string) (Sample, error) {
	sections := splitSections(raw, SectionSeparator)

	var readings []CPUCounters
	for _, line := range strings.Split(sections[0], "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		c, err := parseStatLine(line)
		if err != nil {
			return nil, err
		}
		readings = append(readings, c)
	}
	if len(readings) < 2 {
		return nil, parseErrorf(KindCPU, "expected two /proc/stat readings, found %d", len(readings))
	}

	first, second := readings[0], readings[1]
	info := &CPUInfo{
		UsagePercent: CPUUsage(first, second),
		User:         second.User,
		System:       second.System,
		Idle:         second.Idle,
	}
	if len(sections) > 1 {
		info.TopProcesses = parseProcesses(sections[1])
	}
	return info, nil
}

// parseStatLine parses "cpu  user nice system idle iowait irq softirq ...".
func parseStatLine(line string) (CPUCounters, error) {
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return CPUCounters{}, parseErrorf(KindCPU, "aggregate cpu line has %d fields, need 8", len(fields))
	}
	var vals [7]uint64
	for i := range vals {
		v, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return CPUCounters{}, parseErrorf(KindCPU, "invalid counter %q", fields[i+1])
		}
		vals[i] = v
	}
	return CPUCounters{
		User: vals[0], Nice: vals[1], System: vals[2], Idle: vals[3],
		IOWait: vals[4], IRQ: vals[5], SoftIRQ: vals[6],
	}, nil
}

// parseProcesses parses ps output with columns "PID COMMAND %CPU %MEM".
// Command names may contain spaces. Malformed rows are skipped.
func parseProcesses(out string) []ProcessInfo {
	var procs []ProcessInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue // header
		}
		cpu, err := strconv.ParseFloat(fields[len(fields)-2], 64)
		if err != nil {
			continue
		}
		mem, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			continue
		}
		procs = append(procs, ProcessInfo{
			PID:        pid,
			Name:       strings.Join(fields[1:len(fields)-2], " "),
			CPUPercent: cpu,
			MemPercent: mem,
		})
		if len(procs) == MaxTopProcesses {
			break
		}
	}
	return procs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
