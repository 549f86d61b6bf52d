package compose

import (
	"slices"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
)

var attachmentSections = []struct {
	id         core.SectionID
	title      string
	collection core.Collection
}{
	{core.SectionAttendance, "Attendance List", core.AttendanceFiles},
	{core.SectionBrochure, "Event Brochure", core.BrochureFiles},
	{core.SectionApproval, "Notice for Approval", core.ApprovalFiles},
	{core.SectionFeedback, "Feedback Analysis", core.FeedbackFiles},
}

// attachments lays out one attachment collection. Page images fill the
// content width; spreadsheet rows become a grid table.
func attachments(id core.SectionID, title string, assets []core.NormalizedAsset, maxColumns int) *core.Section {
	if len(assets) == 0 {
		return nil
	}
	s := &core.Section{
		ID:       id,
		Kind:     core.LayoutImage,
		Title:    title,
		Elements: []core.Element{text(core.StyleCenteredTitle, title)},
	}
	for _, a := range assets {
		for i := range a.Pages {
			s.Elements = append(s.Elements, core.Element{Kind: core.ElementImage, Image: &a.Pages[i], Role: core.RoleAttachment})
		}
		if len(a.Rows) > 0 {
			s.Elements = append(s.Elements, table(rowsTable(a, maxColumns)))
		}
		if Has(a.Caption) {
			s.Elements = append(s.Elements, text(core.StyleCaption, strings.TrimSpace(a.Caption)))
		}
	}
	return s
}

// Columns returns the displayed columns of a spreadsheet asset: the keys of
// its first row, in source column order, capped at limit.
func Columns(a core.NormalizedAsset, limit int) []string {
	if len(a.Rows) == 0 {
		return nil
	}
	first := a.Rows[0]
	cols := make([]string, 0, len(first))
	seen := make(map[string]bool, len(first))
	for _, c := range a.Columns {
		if _, ok := first[c]; ok && !seen[c] {
			cols = append(cols, c)
			seen[c] = true
		}
	}
	var extra []string
	for k := range first {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	cols = append(cols, extra...)

	if limit > 0 && len(cols) > limit {
		cols = cols[:limit]
	}
	return cols
}

func rowsTable(a core.NormalizedAsset, maxColumns int) *core.Table {
	cols := Columns(a, maxColumns)
	t := &core.Table{Style: core.TableGrid, Header: cols}
	for _, row := range a.Rows {
		cells := make([]core.Cell, len(cols))
		for i, c := range cols {
			cells[i] = core.Cell{Text: orPlaceholder(row[c])}
		}
		t.Rows = append(t.Rows, core.Row{Cells: cells})
	}
	return t
}
