package util

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	bytes  int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses a human-readable size such as "25MB", "1.5GB" or "4096"
// into bytes. Units are binary; an "iB" spelling ("MiB") is accepted. It
// returns defaultBytes for empty, malformed or negative input.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}
	s = strings.Replace(s, "IB", "B", 1)

	multiplier := int64(1)
	for _, u := range sizeUnits {
		if num, ok := strings.CutSuffix(s, u.suffix); ok {
			multiplier = u.bytes
			s = strings.TrimSpace(num)
			break
		}
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil || val < 0 {
		return defaultBytes
	}
	return int64(val * float64(multiplier))
}

// FormatSize renders n bytes with the largest unit that keeps the value at
// or above one, e.g. 26214400 as "25.0MB".
func FormatSize(n int64) string {
	for _, u := range sizeUnits[:len(sizeUnits)-1] {
		if n >= u.bytes {
			return fmt.Sprintf("%.1f%s", float64(n)/float64(u.bytes), u.suffix)
		}
	}
	return fmt.Sprintf("%dB", n)
}
