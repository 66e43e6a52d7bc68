package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// procNetDevHeader starts the first header line of /proc/net/dev.
const procNetDevHeader = "Inter-|"

func netCommand() string {
	return fmt.Sprintf("cat /proc/net/dev; echo '%s'; sleep %s; cat /proc/net/dev", SnapshotSeparator, pauseArg())
}

// NetInterface holds the counters and derived rates of one interface.
type NetInterface struct {
	Name string
	// RxBytes and TxBytes are the counters from the second reading.
	RxBytes uint64
	TxBytes uint64
	// RxRate and TxRate are bytes per second between the two readings.
	RxRate float64
	TxRate float64
}

// NetInfo lists interfaces present in both readings, in the order of the first.
type NetInfo struct {
	Interfaces []NetInterface
}

func (n *NetInfo) Kind() Kind { return KindNet }

func (n *NetInfo) Summary() string {
	if len(n.Interfaces) == 0 {
		return "No network interfaces\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %14s %14s\n", "IFACE", "RX/s", "TX/s")
	for _, iface := range n.Interfaces {
		fmt.Fprintf(&b, "%-12s %14s %14s\n", truncate(iface.Name, 12), formatRate(iface.RxRate), formatRate(iface.TxRate))
	}
	return b.String()
}

// Rate returns bytes per second between two counter readings taken elapsed
// apart. A counter that went backwards (wrap or reset) yields 0.
func Rate(first, second uint64, elapsed time.Duration) float64 {
	if second < first || elapsed <= 0 {
		return 0
	}
	return float64(second-first) / elapsed.Seconds()
}

type netCounters struct {
	rx, tx uint64
}

func parseNet(raw string) (Sample, error) {
	snapshots := splitSections(raw, SnapshotSeparator)
	if len(snapshots) < 2 {
		snapshots = splitOnHeader(raw)
	}
	if len(snapshots) < 2 {
		return nil, parseErrorf(KindNet, "expected two /proc/net/dev readings, found %d", len(snapshots))
	}

	firstOrder, first := parseNetDev(snapshots[0])
	_, second := parseNetDev(snapshots[1])

	info := &NetInfo{}
	for _, name := range firstOrder {
		a := first[name]
		b, ok := second[name]
		if !ok {
			continue
		}
		info.Interfaces = append(info.Interfaces, NetInterface{
			Name:    name,
			RxBytes: b.rx,
			TxBytes: b.tx,
			RxRate:  Rate(a.rx, b.rx, SamplePause),
			TxRate:  Rate(a.tx, b.tx, SamplePause),
		})
	}
	return info, nil
}

// splitOnHeader splits concatenated /proc/net/dev dumps at each header line.
func splitOnHeader(raw string) []string {
	return strings.Split(raw, procNetDevHeader)[1:]
}

// parseNetDev returns interface names in file order and their counters.
// Lines without a colon and rows with fewer than nine counters are skipped.
func parseNetDev(section string) ([]string, map[string]netCounters) {
	var order []string
	counters := make(map[string]netCounters)
	for _, line := range strings.Split(section, "\n") {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		fields := strings.Fields(rest)
		if name == "" || len(fields) < 9 {
			continue
		}
		if _, dup := counters[name]; !dup {
			order = append(order, name)
		}
		counters[name] = netCounters{
			rx: parseUintOrZero(fields[0]),
			tx: parseUintOrZero(fields[8]),
		}
	}
	return order, counters
}

func formatRate(bps float64) string {
	if bps < 1024 {
		return fmt.Sprintf("%.1f B/s", bps)
	}
	return humanize.IBytes(uint64(bps)) + "/s"
}
