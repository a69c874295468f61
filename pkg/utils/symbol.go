package utils

import "strings"

// NormalizeSymbol canonicalizes an instrument/column name: trimmed and
// upper-cased, so "reliance.ns " and "RELIANCE.NS" select the same column.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SplitSymbols splits a comma-separated symbol list, normalizing each entry
// and dropping empties.
func SplitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if sym := NormalizeSymbol(p); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}
