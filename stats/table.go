package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// table 兩欄的終端表格，寬度以 runewidth 計算，中日韓字元不會錯位
type table struct {
	title string
	rows  [][2]string
}

func newTable(title string) *table { return &table{title: title} }

func (t *table) add(k, v string) *table {
	t.rows = append(t.rows, [2]string{k, v})
	return t
}

func (t *table) String() string {
	kw, vw := runewidth.StringWidth(t.title), 0
	for _, r := range t.rows {
		kw = max(kw, runewidth.StringWidth(r[0]))
		vw = max(vw, runewidth.StringWidth(r[1]))
	}
	kw, vw = kw+2, vw+2
	inner := kw + 1 + vw

	var sb strings.Builder
	sb.WriteString("+" + strings.Repeat("-", inner) + "+\n")
	left := (inner - runewidth.StringWidth(t.title)) / 2
	sb.WriteString("|" + runewidth.FillRight(strings.Repeat(" ", left)+t.title, inner) + "|\n")
	divider := "+" + strings.Repeat("-", kw) + "+" + strings.Repeat("-", vw) + "+\n"
	sb.WriteString(divider)
	for _, r := range t.rows {
		sb.WriteString("| " + runewidth.FillRight(r[0], kw-2) + " | " + runewidth.FillRight(r[1], vw-2) + " |\n")
	}
	sb.WriteString(divider)
	return sb.String()
}
