// Package metrics defines the four metric kinds hostwatch samples, the remote
// command that produces each one, and the parsers that turn raw command
// output into typed samples.
package metrics

import (
	"fmt"
	"strings"
	"time"
)

// SamplePause is the pause between the two readings of a two-phase command.
// Rates derived from those readings divide by this duration.
const SamplePause = 200 * time.Millisecond

// Separators written between sections of batched command output.
const (
	// SnapshotSeparator separates the first and second reading of a two-phase command.
	SnapshotSeparator = "==="
	// SectionSeparator separates unrelated sections (e.g. /proc/stat and ps output).
	SectionSeparator = "---"
)

// Sample is a successfully parsed reading for one metric kind.
// The concrete types are *MemInfo, *CPUInfo, *DiskInfo and *NetInfo.
type Sample interface {
	Kind() Kind
	// Summary returns the human-readable multi-line text shown in the dashboard.
	Summary() string
}

// Gauge is implemented by samples that reduce to a single 0-100 percentage.
// Network samples are rates and do not implement it.
type Gauge interface {
	UsedPercent() float64
}

// Percent returns the sample's gauge value, if it has one.
func Percent(s Sample) (float64, bool) {
	g, ok := s.(Gauge)
	if !ok {
		return 0, false
	}
	return g.UsedPercent(), true
}

// Codec pairs the remote command for a kind with the parser for its output.
type Codec struct {
	Kind    Kind
	Command string
	Parse   func(raw string) (Sample, error)
}

var codecs = [NumKinds]Codec{
	KindMem:  {Kind: KindMem, Command: memCommand, Parse: parseMem},
	KindCPU:  {Kind: KindCPU, Command: cpuCommand(), Parse: parseCPU},
	KindDisk: {Kind: KindDisk, Command: diskCommand, Parse: parseDisk},
	KindNet:  {Kind: KindNet, Command: netCommand(), Parse: parseNet},
}

// Lookup returns the codec for kind.
func Lookup(kind Kind) (Codec, bool) {
	if !kind.Valid() {
		return Codec{}, false
	}
	return codecs[kind], true
}

// Command returns the remote command line for kind, or "" for an unknown kind.
func Command(kind Kind) string {
	c, ok := Lookup(kind)
	if !ok {
		return ""
	}
	return c.Command
}

// Parse parses raw command output for kind.
func Parse(kind Kind, raw string) (Sample, error) {
	c, ok := Lookup(kind)
	if !ok {
		return nil, parseErrorf(kind, "no parser for %s", kind)
	}
	return c.Parse(raw)
}

// pauseArg formats SamplePause as a sleep(1) argument, e.g. "0.2".
func pauseArg() string {
	return fmt.Sprintf("%g", SamplePause.Seconds())
}

// splitSections splits output on lines consisting solely of sep.
// Always returns at least one section.
func splitSections(output, sep string) []string {
	var sections []string
	var cur []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == sep {
			sections = append(sections, strings.Join(cur, "\n"))
			cur = cur[:0]
			continue
		}
		cur = append(cur, line)
	}
	return append(sections, strings.Join(cur, "\n"))
}

// leadingUint extracts the first run of ASCII digits in s.
func leadingUint(s string) (uint64, bool) {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	var v uint64
	for _, c := range s[start:end] {
		d := uint64(c - '0')
		if v > (^uint64(0)-d)/10 {
			return 0, false
		}
		v = v*10 + d
	}
	return v, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
