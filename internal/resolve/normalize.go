// Package resolve implements the account-matching core: identifier
// normalization, sibling-id linkage expansion, activity-presence probing, and
// result ranking.
package resolve

import (
	"math"
	"strconv"
	"strings"
)

// ParseAMPID parses raw AMP customer-id text into a canonical id.
//
// The purchasing feed records ids inconsistently: plain integers ("4471"),
// float renderings ("4471.0"), and the legacy 0 sentinel that means "no id".
// All of those collapse here and nowhere else: integer and integral-float
// forms return the integer, while empty text, 0, and anything non-numeric
// return nil (a malformed id is treated as absent, never an error).
func ParseAMPID(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return CanonicalAMPID(&n)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	n := int64(f)
	return CanonicalAMPID(&n)
}

// CanonicalAMPID maps the 0 sentinel to nil so that downstream code has a
// single representation of "absent". Real ids pass through unchanged.
func CanonicalAMPID(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

// AMPIDString renders a canonical AMP id as the decimal string used for
// presence-map keys and display. Absent ids render as "".
func AMPIDString(id *int64) string {
	if id == nil || *id == 0 {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

// SplitIDs splits a possibly comma-joined identifier field into individual
// trimmed ids. Some master rows factually hold several ids in one column;
// each one is probed and keyed independently.
func SplitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
