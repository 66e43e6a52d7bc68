package metrics

import (
	"fmt"
	"strings"
)

// Kind identifies one of the four metric families sampled on each host.
// It is a small comparable value and is used directly as a map key.
type Kind uint8

const (
	KindMem Kind = iota
	KindCPU
	KindDisk
	KindNet
)

// NumKinds is the number of metric kinds. Kind values are 0..NumKinds-1.
const NumKinds = 4

// Kinds returns all metric kinds in display order.
func Kinds() []Kind {
	return []Kind{KindMem, KindCPU, KindDisk, KindNet}
}

// String returns the config name of the kind ("mem", "cpu", "disk", "net").
func (k Kind) String() string {
	switch k {
	case KindMem:
		return "mem"
	case KindCPU:
		return "cpu"
	case KindDisk:
		return "disk"
	case KindNet:
		return "net"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Label returns the short upper-case label shown in the metric selector.
func (k Kind) Label() string {
	switch k {
	case KindMem:
		return "MEM"
	case KindCPU:
		return "CPU"
	case KindDisk:
		return "DISK"
	case KindNet:
		return "NET"
	default:
		return "?"
	}
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	return k < NumKinds
}

// ParseKind converts a config name to a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mem", "memory":
		return KindMem, nil
	case "cpu":
		return KindCPU, nil
	case "disk":
		return KindDisk, nil
	case "net", "network":
		return KindNet, nil
	default:
		return 0, fmt.Errorf("unknown monitor kind: %q (want one of %s)", s, strings.Join(KindNames(), ", "))
	}
}

// KindNames returns the config names of all kinds.
func KindNames() []string {
	names := make([]string, 0, NumKinds)
	for _, k := range Kinds() {
		names = append(names, k.String())
	}
	return names
}

// KindAt returns the kind at display index i, clamped to the valid range.
func KindAt(i int) Kind {
	if i < 0 {
		return KindMem
	}
	if i >= NumKinds {
		return KindNet
	}
	return Kind(i)
}
