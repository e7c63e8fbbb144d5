package pipeline

import (
	"testing"

	"github.com/finkraft/expense-exporter/internal/infrastructure/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLinks(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want []string
	}{
		{"single link", "https://a.example/1.pdf", []string{"https://a.example/1.pdf"}},
		{"comma separated", "a.pdf,b.pdf", []string{"a.pdf", "b.pdf"}},
		{"semicolon separated", "a.pdf;b.pdf", []string{"a.pdf", "b.pdf"}},
		{"pipe separated", "a.pdf|b.pdf", []string{"a.pdf", "b.pdf"}},
		{"mixed separators with spaces", "a.pdf, b.pdf ;c.pdf | d.pdf", []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}},
		{"trailing separator", "a.pdf,", []string{"a.pdf"}},
		{"empty cell", "", []string{}},
		{"only separators", ",;|", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLinks(tt.cell))
		})
	}
}

func TestExpandRowsMultiLinkCell(t *testing.T) {
	table := &tabular.Table{
		Headers: []string{"BOOKING_ID", "invoice_url"},
		Rows: []*tabular.Row{
			{Line: 2, Data: map[string]string{"BOOKING_ID": "BK-1", "invoice_url": "a.pdf,b.pdf,c.pdf"}},
			{Line: 3, Data: map[string]string{"BOOKING_ID": "BK-2", "invoice_url": "d.pdf"}},
			{Line: 4, Data: map[string]string{"BOOKING_ID": "BK-3", "invoice_url": ""}},
		},
	}

	expanded := ExpandRows(table, "invoice_url")

	require.Equal(t, 5, expanded.Len())

	// Expanded rows carry the full source row, one link each
	assert.Equal(t, "a.pdf", expanded.Rows[0].Get("invoice_url"))
	assert.Equal(t, "b.pdf", expanded.Rows[1].Get("invoice_url"))
	assert.Equal(t, "c.pdf", expanded.Rows[2].Get("invoice_url"))
	for _, row := range expanded.Rows[:3] {
		assert.Equal(t, "BK-1", row.Get("BOOKING_ID"))
		assert.Equal(t, 2, row.Line)
	}

	// Single-link and empty rows pass through unchanged
	assert.Same(t, table.Rows[1], expanded.Rows[3])
	assert.Same(t, table.Rows[2], expanded.Rows[4])
}

func TestExpandRowsClonesAreIndependent(t *testing.T) {
	table := &tabular.Table{
		Headers: []string{"invoice_url"},
		Rows: []*tabular.Row{
			{Line: 2, Data: map[string]string{"invoice_url": "a.pdf|b.pdf"}},
		},
	}

	expanded := ExpandRows(table, "invoice_url")
	require.Equal(t, 2, expanded.Len())

	expanded.Rows[0].Set("status", "SUCCESS")
	_, ok := expanded.Rows[1].Data["status"]
	assert.False(t, ok, "sibling rows must not share cell maps")
}
