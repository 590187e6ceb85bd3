package hwinfo

import (
	"fmt"
	"strings"
)

// bytesToGB converts a raw byte count to a "%.2f GB" string.
func bytesToGB(b uint64) string {
	return fmt.Sprintf("%.2f GB", float64(b)/(1024*1024*1024))
}

// mhzString tags a clock value with its unit.
func mhzString(v uint64) string {
	return fmt.Sprintf("%d MHz", v)
}

// orNotAvailable trims s and substitutes the placeholder when nothing is left.
func orNotAvailable(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotAvailable
	}
	return s
}
