package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// maxCell bounds payload and detail columns in the terminal table
const maxCell = 48

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxCell {
		return s
	}
	return string(r[:maxCell-3]) + "..."
}

// SummaryTable prints one row per record followed by the verdict totals
func SummaryTable(w io.Writer, records []Record) {
	var tableData [][]string
	for _, r := range rowsOf(records) {
		tableData = append(tableData, []string{
			strconv.Itoa(r.Index),
			r.Mode,
			clip(r.Payload),
			clip(r.Raw),
			clip(r.Clean),
			r.Verdict,
		})
	}

	s := Summarize(records)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Mode", "Payload", "Raw", "Clean", "Verdict"})
	table.SetAutoWrapText(false)
	table.SetBorder(true)
	table.AppendBulk(tableData)
	table.SetFooter([]string{
		"", "", "total " + strconv.Itoa(s.Total),
		"exec " + strconv.Itoa(s.RawExecuted),
		"exec " + strconv.Itoa(s.CleanExecuted),
		"errors " + strconv.Itoa(s.Errors),
	})
	table.Render()
}
