package format

import "fmt"

// FormatBytes renders b with binary units.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatSpeedup renders how many times faster other is than baseline, for
// example "3.25x". A non-positive duration yields "N/A".
func FormatSpeedup(baseline, other float64) string {
	if baseline <= 0 || other <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2fx", baseline/other)
}

// FormatThousands inserts a comma every three digits.
func FormatThousands(v uint64) string {
	s := fmt.Sprintf("%d", v)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, s[:lead]...)
	for i := lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
