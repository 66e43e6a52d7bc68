package metrics

import (
	"strings"
	"testing"

	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCPUOutput = `cpu  100 0 100 800 0 0 0 0 0 0
cpu0 50 0 50 400 0 0 0 0 0 0
intr 12345
===
cpu  150 0 150 900 0 0 0 0 0 0
cpu0 75 0 75 450 0 0 0 0 0 0
---
    PID COMMAND         %CPU %MEM
   1234 postgres        45.5  3.2
    987 Web Content     12.0  8.1
     42 kworker/0:1      0.5  0.0
`

func TestParseCPU(t *testing.T) {
	s, err := parseCPU(sampleCPUOutput)
	require.NoError(t, err)
	c := s.(*CPUInfo)

	// total delta 200, idle delta 100
	assert.InDelta(t, 50.0, c.UsagePercent, 0.001)
	assert.Equal(t, uint64(150), c.User, "counters come from the second reading")
	assert.Equal(t, uint64(150), c.System)
	assert.Equal(t, uint64(900), c.Idle)

	require.Len(t, c.TopProcesses, 3)
	assert.Equal(t, ProcessInfo{PID: 1234, Name: "postgres", CPUPercent: 45.5, MemPercent: 3.2}, c.TopProcesses[0])
	assert.Equal(t, "Web Content", c.TopProcesses[1].Name)
	assert.Equal(t, "kworker/0:1", c.TopProcesses[2].Name)
}

func TestParseCPU_WithoutProcessSection(t *testing.T) {
	s, err := parseCPU("cpu 1 2 3 4 5 6 7\ncpu 2 2 3 5 5 6 7\n")
	require.NoError(t, err)
	c := s.(*CPUInfo)
	assert.InDelta(t, 50.0, c.UsagePercent, 0.001)
	assert.Empty(t, c.TopProcesses)
}

func TestParseCPU_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "empty output", input: "", wantMsg: "found 0"},
		{name: "single reading", input: "cpu 1 2 3 4 5 6 7\n---\n", wantMsg: "found 1"},
		{name: "short aggregate line", input: "cpu 1 2 3\ncpu 1 2 3\n", wantMsg: "need 8"},
		{name: "non-numeric counter", input: "cpu 1 2 x 4 5 6 7\ncpu 1 2 3 4 5 6 7\n", wantMsg: "invalid counter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCPU(tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrParse))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCPUUsage(t *testing.T) {
	tests := []struct {
		name          string
		first, second CPUCounters
		expected      float64
	}{
		{
			name:     "zero total delta yields zero",
			first:    CPUCounters{User: 10, Idle: 10},
			second:   CPUCounters{User: 10, Idle: 10},
			expected: 0,
		},
		{
			name:     "fully busy",
			first:    CPUCounters{User: 0, Idle: 100},
			second:   CPUCounters{User: 100, Idle: 100},
			expected: 100,
		},
		{
			name:     "fully idle",
			first:    CPUCounters{Idle: 100},
			second:   CPUCounters{Idle: 200},
			expected: 0,
		},
		{
			name:     "iowait counts as idle",
			first:    CPUCounters{},
			second:   CPUCounters{User: 25, Idle: 50, IOWait: 25},
			expected: 25,
		},
		{
			name:     "counters going backwards do not go negative",
			first:    CPUCounters{User: 500, Idle: 500},
			second:   CPUCounters{User: 100, Idle: 900},
			expected: 0,
		},
		{
			name:     "idle jump larger than total is clamped",
			first:    CPUCounters{User: 100, Idle: 0},
			second:   CPUCounters{User: 50, Idle: 100},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CPUUsage(tt.first, tt.second)
			assert.InDelta(t, tt.expected, got, 0.001)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestParseProcesses_Bounded(t *testing.T) {
	var b strings.Builder
	b.WriteString("PID COMMAND %CPU %MEM\n")
	for i := 1; i <= 15; i++ {
		b.WriteString("100 proc 1.0 1.0\n")
	}
	b.WriteString("bad row\n")
	procs := parseProcesses(b.String())
	assert.Len(t, procs, MaxTopProcesses)
}

func TestCPUInfo_Summary(t *testing.T) {
	s, err := parseCPU(sampleCPUOutput)
	require.NoError(t, err)

	out := s.Summary()
	assert.True(t, strings.HasPrefix(out, "CPU Usage: 50.0%"))
	assert.Contains(t, out, "Top processes:")
	assert.Contains(t, out, "postgres")
	assert.Contains(t, out, "45.5")
}

func TestCPUCommand(t *testing.T) {
	cmd := Command(KindCPU)
	assert.Contains(t, cmd, "cat /proc/stat")
	assert.Contains(t, cmd, "sleep 0.2")
	assert.Contains(t, cmd, "echo '==='")
	assert.Contains(t, cmd, "echo '---'")
	assert.Contains(t, cmd, "head -n 11")
	assert.Contains(t, cmd, "%cpu,%mem --sort=-%cpu")
}
