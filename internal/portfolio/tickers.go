// Package portfolio holds the pure helpers shared by the page controllers:
// ticker derivation, display formatting and analysis payload assembly.
package portfolio

import (
	"strings"
	"unicode"

	"github.com/dukerupert/andre/internal/model"
)

// UniqueTickers returns each ticker in txs once, in order of first occurrence.
// Blank tickers are skipped.
func UniqueTickers(txs []model.Transaction) []string {
	seen := make(map[string]struct{}, len(txs))
	var out []string
	for _, tx := range txs {
		t := strings.TrimSpace(tx.Ticker)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseTickers splits user-entered text on commas and whitespace, upper-cases
// each symbol and drops duplicates, keeping first-occurrence order.
func ParseTickers(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, f := range fields {
		t := strings.ToUpper(f)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
