package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const placeholderText = "Chart visualization available in interactive dashboard"

// FormatMetric renders a metric value the way the dashboard does.
func FormatMetric(value interface{}, format string) string {
	if value == nil {
		return "-"
	}
	if s, ok := value.(string); ok {
		if format == "currency" {
			return "$" + s
		}
		return s
	}
	n, ok := number(value)
	if !ok {
		return fmt.Sprint(value)
	}
	switch format {
	case "currency":
		return "$" + localeNumber(n)
	case "percent":
		return strconv.FormatFloat(n, 'f', 1, 64) + "%"
	case "number":
		return localeNumber(n)
	}
	return fmt.Sprint(value)
}

func TrendClass(trend string) string {
	switch trend {
	case "up":
		return "trend-up"
	case "down":
		return "trend-down"
	}
	return "trend-stable"
}

func TrendIcon(trend string) string {
	switch trend {
	case "up":
		return "↑"
	case "down":
		return "↓"
	}
	return "→"
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// localeNumber groups thousands and keeps up to three decimals.
func localeNumber(n float64) string {
	neg := n < 0
	n = math.Abs(n)
	whole := math.Floor(n)
	frac := math.Round((n-whole)*1000) / 1000
	if frac >= 1 {
		whole++
		frac = 0
	}
	out := groupDigits(int64(whole))
	if frac > 0 {
		out += strings.TrimPrefix(strings.TrimRight(strconv.FormatFloat(frac, 'f', 3, 64), "0"), "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupDigits(n int64) string {
	s := itoa(n)
	if n < 0 {
		return "-" + groupDigits(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
