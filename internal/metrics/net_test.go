package metrics

import (
	"testing"
	"time"

	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const netDevHeader = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
`

func netDev(rows ...string) string {
	out := netDevHeader
	for _, r := range rows {
		out += r + "\n"
	}
	return out
}

func TestParseNet(t *testing.T) {
	input := netDev(
		"    lo:     500       5    0    0    0     0          0         0      500       5    0    0    0     0       0          0",
		"  eth0:    1000      10    0    0    0     0          0         0     2000      20    0    0    0     0       0          0",
	) + "===\n" + netDev(
		"    lo:     500       5    0    0    0     0          0         0      500       5    0    0    0     0       0          0",
		"  eth0:    1200      12    0    0    0     0          0         0     2400      24    0    0    0     0       0          0",
	)

	s, err := parseNet(input)
	require.NoError(t, err)
	n := s.(*NetInfo)

	require.Len(t, n.Interfaces, 2)
	assert.Equal(t, "lo", n.Interfaces[0].Name)
	assert.Equal(t, 0.0, n.Interfaces[0].RxRate)

	eth0 := n.Interfaces[1]
	assert.Equal(t, "eth0", eth0.Name)
	assert.Equal(t, uint64(1200), eth0.RxBytes)
	assert.Equal(t, uint64(2400), eth0.TxBytes)
	assert.InDelta(t, 1000.0, eth0.RxRate, 0.001)
	assert.InDelta(t, 2000.0, eth0.TxRate, 0.001)
}

func TestParseNet_HeaderFallback(t *testing.T) {
	// two concatenated dumps without the snapshot separator
	input := netDev("  eth0: 1000 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0") +
		netDev("  eth0: 1200 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0")

	s, err := parseNet(input)
	require.NoError(t, err)
	n := s.(*NetInfo)
	require.Len(t, n.Interfaces, 1)
	assert.InDelta(t, 1000.0, n.Interfaces[0].RxRate, 0.001)
}

func TestParseNet_InterfaceMissingFromOneReading(t *testing.T) {
	input := netDev(
		"  eth0: 1000 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
		"  wlan0: 1000 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
	) + "===\n" + netDev(
		"  eth0: 1200 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
		"  tun0: 1200 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
	)

	s, err := parseNet(input)
	require.NoError(t, err)
	n := s.(*NetInfo)
	require.Len(t, n.Interfaces, 1)
	assert.Equal(t, "eth0", n.Interfaces[0].Name)
}

func TestParseNet_SkipsShortRows(t *testing.T) {
	input := netDev("  eth0: 1000 0 0", "  eth1: 5 0 0 0 0 0 0 0 5 0 0 0 0 0 0 0") +
		"===\n" + netDev("  eth0: 1200 0 0", "  eth1: 5 0 0 0 0 0 0 0 5 0 0 0 0 0 0 0")

	s, err := parseNet(input)
	require.NoError(t, err)
	n := s.(*NetInfo)
	require.Len(t, n.Interfaces, 1)
	assert.Equal(t, "eth1", n.Interfaces[0].Name)
}

func TestParseNet_SingleReading(t *testing.T) {
	_, err := parseNet(netDev("  eth0: 1000 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrParse))
}

func TestRate(t *testing.T) {
	tests := []struct {
		name          string
		first, second uint64
		elapsed       time.Duration
		expected      float64
	}{
		{name: "steady growth", first: 1000, second: 1200, elapsed: 200 * time.Millisecond, expected: 1000},
		{name: "no change", first: 1000, second: 1000, elapsed: time.Second, expected: 0},
		{name: "counter reset", first: 5000, second: 10, elapsed: time.Second, expected: 0},
		{name: "zero elapsed", first: 0, second: 10, elapsed: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Rate(tt.first, tt.second, tt.elapsed), 0.001)
		})
	}
}

func TestNetInfo_Summary(t *testing.T) {
	n := &NetInfo{Interfaces: []NetInterface{
		{Name: "eth0", RxRate: 1000, TxRate: 2 * 1024 * 1024},
	}}
	out := n.Summary()
	assert.Contains(t, out, "eth0")
	assert.Contains(t, out, "1000.0 B/s")
	assert.Contains(t, out, "2.0 MiB/s")

	assert.Equal(t, "No network interfaces\n", (&NetInfo{}).Summary())
}
