package pipeline

import (
	"strings"

	"github.com/finkraft/expense-exporter/internal/infrastructure/tabular"
)

// linkSeparators are the characters a multi-link attachment cell may use
const linkSeparators = ",;|"

// SplitLinks tokenizes an attachment cell into individual links. Empty
// tokens produced by stray separators are dropped.
func SplitLinks(cell string) []string {
	tokens := strings.FieldsFunc(cell, func(r rune) bool {
		return strings.ContainsRune(linkSeparators, r)
	})
	links := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if trimmed := strings.TrimSpace(tok); trimmed != "" {
			links = append(links, trimmed)
		}
	}
	return links
}

// ExpandRows rewrites the table so every row holds at most one link in the
// attachment column. A row whose cell carries N links becomes N rows, each
// a copy of the original differing only in that cell. Rows with zero or one
// link pass through unchanged, so every source row survives expansion.
func ExpandRows(t *tabular.Table, column string) *tabular.Table {
	out := &tabular.Table{Headers: t.Headers}
	for _, row := range t.Rows {
		links := SplitLinks(row.Get(column))
		if len(links) <= 1 {
			out.Rows = append(out.Rows, row)
			continue
		}
		for _, link := range links {
			clone := row.Clone()
			clone.Set(column, link)
			out.Rows = append(out.Rows, clone)
		}
	}
	return out
}
