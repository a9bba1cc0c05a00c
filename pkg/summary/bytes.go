package summary

import "fmt"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with two decimals and a binary unit, e.g.
// "1023.00 B" or "1.50 MB". Values past TB are shown in PB.
func FormatBytes(n int64) string {
	size := float64(n)
	for _, unit := range byteUnits {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f PB", size)
}
