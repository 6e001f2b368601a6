package cli

import (
	"reflect"
	"testing"
)

func TestTableRender(t *testing.T) {
	tests := []struct {
		name  string
		table func() *Table
		want  string
	}{
		{
			name: "regions with numeric columns right aligned",
			table: func() *Table {
				tb := NewTable([]string{"ID", "COLOUR", "AREA", "BOUNDS"})
				tb.SetColumnAlignRight(0)
				tb.SetColumnAlignRight(2)
				tb.AddRow([]string{"0", "#ffffff", "84", "0,0-9,9"})
				tb.AddRow([]string{"1", "#ff0000", "16", "3,3-6,6"})
				return tb
			},
			want: "ID  COLOUR   AREA  BOUNDS\n" +
				"--  -------  ----  -------\n" +
				" 0  #ffffff    84  0,0-9,9\n" +
				" 1  #ff0000    16  3,3-6,6\n",
		},
		{
			name: "wrapped column",
			table: func() *Table {
				tb := NewTable([]string{"FLAG", "DESCRIPTION"})
				tb.SetColumnMaxWidth(1, 10)
				tb.AddRow([]string{"--mode", "trace regions as runs"})
				return tb
			},
			want: "FLAG    DESCRIPTION\n" +
				"------  -----------\n" +
				"--mode  trace\n" +
				"        regions as\n" +
				"        runs\n",
		},
		{
			name: "short and long rows fitted to headers",
			table: func() *Table {
				tb := NewTable([]string{"A", "B"})
				tb.AddRow([]string{"a"})
				tb.AddRow([]string{"a", "b", "c"})
				return tb
			},
			want: "A  B\n-  -\na\na  b\n",
		},
		{
			name:  "no rows",
			table: func() *Table { return NewTable([]string{"A", "B"}) },
			want:  "A  B\n-  -\n",
		},
		{
			name:  "no headers",
			table: func() *Table { return NewTable(nil) },
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.table().Render(); got != tt.want {
				t.Errorf("Render() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		s           string
		width       int
		right, left string
	}{
		{"ab", 4, "ab  ", "  ab"},
		{"abcd", 4, "abcd", "abcd"},
		{"abcdef", 4, "abcdef", "abcdef"},
		{"", 2, "  ", "  "},
	}

	for _, tt := range tests {
		if got := padRight(tt.s, tt.width); got != tt.right {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.right)
		}
		if got := padLeft(tt.s, tt.width); got != tt.left {
			t.Errorf("padLeft(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.left)
		}
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"a b", 0, []string{"a b"}},
		{"", 5, []string{""}},
		{"fits", 10, []string{"fits"}},
		{"trace regions as runs", 10, []string{"trace", "regions as", "runs"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"x abcdefgh", 4, []string{"x", "abcd", "efgh"}},
	}

	for _, tt := range tests {
		if got := wrapText(tt.text, tt.width); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}
