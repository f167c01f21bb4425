package util

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseSize reads a byte size such as "25MB", "512KiB" or "1024".
// Decimal suffixes are powers of 1000, IEC suffixes powers of 1024.
// Empty or unparsable input yields fallback.
func ParseSize(s string, fallback int64) int64 {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return int64(n)
}

// FormatSize renders n bytes for people, e.g. "25 MB".
func FormatSize(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(n))
}

// MaskSecret keeps the first visible bytes of s and masks the rest. Values
// no longer than visible are masked entirely.
func MaskSecret(s string, visible int) string {
	if len(s) <= visible {
		return "***"
	}
	return s[:visible] + "***"
}
