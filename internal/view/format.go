package view

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatGBP renders an amount as pounds with two decimals. Non-finite
// values render as £0.00.
func FormatGBP(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return "£" + strconv.FormatFloat(v, 'f', 2, 64)
}

// SafeStringify pretty-prints a JSON value with two-space indentation.
// Input that is not valid JSON is returned as is.
func SafeStringify(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// FormatCount renders a whole count with thousands separators. Negative
// values render as 0.
func FormatCount(n float64) string {
	r := math.Round(n)
	if math.IsNaN(r) || r < 0 {
		r = 0
	}
	return humanize.Comma(int64(r))
}

// jsonText encodes v without HTML escaping.
func jsonText(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil
	}
	return []byte(strings.TrimRight(buf.String(), "\n"))
}
