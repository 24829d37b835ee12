// Package utils provides shared formatting helpers
package utils

import (
	"fmt"
	"time"
)

// DateLayout is the layout used for modification times in listings.
const DateLayout = "2006-01-02 15:04:05"

// Placeholder is shown for values that are absent.
const Placeholder = "-"

// FormatBytes converts bytes to human-readable format (e.g., "1.5 GB")
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatTime renders t in UTC, or the placeholder when t is zero
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.UTC().Format(DateLayout)
}
