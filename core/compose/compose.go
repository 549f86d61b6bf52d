// Package compose implements the Document Compositor.
//
// Compose is a pure function: it reads a ReportRecord and returns a fresh
// Composition listing the sections of the fixed report template in order.
// It performs no I/O, never fails, and never mutates its input. Missing or
// blank data simply yields a shorter document.
package compose

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// Placeholder is displayed for blank table cells and is itself treated as blank.
const Placeholder = "—"

// DefaultMaxColumns caps the width of spreadsheet tables. Wider sheets are
// truncated, not wrapped.
const DefaultMaxColumns = 5

// Header is the fixed letterhead at the top of the first page.
type Header struct {
	Institution string `json:"institution" yaml:"institution"`
	School      string `json:"school" yaml:"school"`
	Department  string `json:"department" yaml:"department"`
	Title       string `json:"title" yaml:"title"`
}

// DefaultHeader returns the department letterhead.
func DefaultHeader() Header {
	return Header{
		Institution: "CHRIST (Deemed to be University), Bangalore",
		School:      "School of Engineering and Technology",
		Department:  "Department of AI, ML & Data Science",
		Title:       "ACTIVITY REPORT",
	}
}

// Options configures composition.
type Options struct {
	Header     Header
	MaxColumns int
}

func (o *Options) defaults() {
	if o.Header == (Header{}) {
		o.Header = DefaultHeader()
	}
	if o.MaxColumns <= 0 {
		o.MaxColumns = DefaultMaxColumns
	}
}

// Compose lays out the report. Calling it twice on an unchanged record
// yields identical compositions.
func Compose(r core.ReportRecord, opts Options) core.Composition {
	opts.defaults()

	var sections []core.Section
	add := func(s *core.Section) {
		if s != nil {
			sections = append(sections, *s)
		}
	}
	addOnNewPage := func(s *core.Section) {
		if s != nil {
			sections = append(sections, pageBreak(), *s)
		}
	}

	add(header(opts.Header))
	add(generalInformation(r))
	add(speakerDetails(r.Speakers))
	add(participantsProfile(r.ParticipantProfiles))
	add(synopsis(r))
	add(preparedBy(r.Preparers))
	addOnNewPage(speakerProfile(r.Speakers))
	addOnNewPage(activityPhotos(r, opts.MaxColumns))
	for _, a := range attachmentSections {
		addOnNewPage(attachments(a.id, a.title, r.Assets(a.collection), opts.MaxColumns))
	}

	return core.Composition{
		Sections: sections,
		Footer:   core.Footer{Format: "Page %d"},
	}
}

// Has reports whether a value passes the inclusion rule: non-empty after
// trimming whitespace and not the placeholder.
func Has(v string) bool {
	t := strings.TrimSpace(v)
	return t != "" && t != Placeholder
}

func pageBreak() core.Section {
	return core.Section{ID: core.SectionPageBreak, Kind: core.LayoutPageBreak}
}

func header(h Header) *core.Section {
	s := &core.Section{ID: core.SectionHeader, Kind: core.LayoutFreeform}
	lines := []struct {
		style core.TextStyle
		text  string
	}{
		{core.StyleInstitution, h.Institution},
		{core.StyleSchool, h.School},
		{core.StyleDepartment, h.Department},
		{core.StyleReportTitle, h.Title},
	}
	for _, l := range lines {
		if Has(l.text) {
			s.Elements = append(s.Elements, text(l.style, l.text))
		}
	}
	return s
}

func generalInformation(r core.ReportRecord) *core.Section {
	s := &core.Section{
		ID:       core.SectionGeneralInfo,
		Kind:     core.LayoutTable,
		Title:    "General Information",
		Elements: []core.Element{text(core.StyleSectionTitle, "General Information")},
	}
	t := labelValueTable([]field{
		{"Title of the Activity", r.ActivityTitle},
		{"Activity Type", r.ActivityType},
		{"Sub Category", r.SubCategory},
		{"Venue", r.Venue},
		{"Collaboration/Sponsor", r.Collaboration},
		{"Date/s", span(r.Date, r.EndDate, " to ")},
		{"Time", span(r.Time, r.EndTime, " - ")},
	})
	if t != nil {
		s.Elements = append(s.Elements, table(t))
	}
	return s
}

func speakerDetails(speakers []core.Speaker) *core.Section {
	var blocks []core.Element
	for _, sp := range speakers {
		if !Has(sp.Name) {
			continue
		}
		t := labelValueTable([]field{
			{"Name", sp.Name},
			{"Title/Position", sp.Title},
			{"Organization", sp.Organization},
			{"Contact Info", sp.Contact},
			{"Title of Presentation", sp.Presentation},
		})
		blocks = append(blocks, block(table(t)))
	}
	if len(blocks) == 0 {
		return nil
	}
	return &core.Section{
		ID:       core.SectionSpeakers,
		Kind:     core.LayoutTable,
		Title:    "Speaker/Guest/Presenter Details",
		Elements: append([]core.Element{text(core.StyleSectionTitle, "Speaker/Guest/Presenter Details")}, blocks...),
	}
}

func participantsProfile(profiles []core.ParticipantProfile) *core.Section {
	t := &core.Table{
		Style:  core.TableGrid,
		Header: []string{"Type of Participants", "No. of Participants"},
	}
	for _, p := range profiles {
		if p.Blank() {
			continue
		}
		t.Rows = append(t.Rows, core.Row{Cells: []core.Cell{
			{Text: orPlaceholder(string(p.Type))},
			{Text: fmt.Sprintf("%d", p.Count)},
		}})
	}
	if len(t.Rows) == 0 {
		return nil
	}
	return &core.Section{
		ID:       core.SectionParticipants,
		Kind:     core.LayoutTable,
		Title:    "Participants profile",
		Elements: []core.Element{text(core.StyleSectionTitle, "Participants profile"), table(t)},
	}
}

func synopsis(r core.ReportRecord) *core.Section {
	t := labelValueTable([]field{
		{"Highlights", r.Highlights},
		{"Key Takeaways", r.Takeaways},
		{"Summary", r.Summary},
		{"Follow-up plan", r.FollowUp},
	})
	if t == nil {
		return nil
	}
	return &core.Section{
		ID:       core.SectionSynopsis,
		Kind:     core.LayoutTable,
		Title:    "Synopsis of the Activity",
		Elements: []core.Element{text(core.StyleSectionTitle, "Synopsis of the Activity"), table(t)},
	}
}

func preparedBy(preparers []core.Preparer) *core.Section {
	var blocks []core.Element
	for _, p := range preparers {
		t := labelValueTable([]field{
			{"Name", p.Name},
			{"Designation", p.Designation},
		})
		hasSignature := !p.Signature.Empty()
		if t == nil && !hasSignature {
			continue
		}
		if t == nil {
			t = &core.Table{Style: core.TableLabelValue}
		}
		signature := core.Cell{Text: Placeholder}
		if hasSignature {
			signature = core.Cell{Image: p.Signature, Role: core.RoleSignature}
		}
		t.Rows = append(t.Rows, core.Row{Cells: []core.Cell{{Text: "Digital Signature"}, signature}})
		blocks = append(blocks, block(table(t)))
	}
	if len(blocks) == 0 {
		return nil
	}
	return &core.Section{
		ID:       core.SectionPreparedBy,
		Kind:     core.LayoutTable,
		Title:    "Report prepared by",
		Elements: append([]core.Element{text(core.StyleSectionTitle, "Report prepared by")}, blocks...),
	}
}

func speakerProfile(speakers []core.Speaker) *core.Section {
	var blocks []core.Element
	for _, sp := range speakers {
		hasPhoto := !sp.Photo.Empty()
		if !hasPhoto && !Has(sp.About) {
			continue
		}
		var children []core.Element
		if hasPhoto {
			children = append(children, core.Element{Kind: core.ElementImage, Image: sp.Photo, Role: core.RolePortrait})
		}
		if Has(sp.About) {
			children = append(children, text(core.StyleBody, strings.TrimSpace(sp.About)))
		}
		blocks = append(blocks, block(children...))
	}
	if len(blocks) == 0 {
		return nil
	}
	return &core.Section{
		ID:       core.SectionSpeakerProfile,
		Kind:     core.LayoutFreeform,
		Title:    "Speaker Profile",
		Elements: append([]core.Element{text(core.StyleCenteredTitle, "Speaker Profile")}, blocks...),
	}
}

func activityPhotos(r core.ReportRecord, maxColumns int) *core.Section {
	if len(r.ActivityPhotos) == 0 {
		return nil
	}
	kind, date := "Activity", "Date"
	if Has(r.ActivityType) {
		kind = strings.TrimSpace(r.ActivityType)
	}
	if d := span(r.Date, r.EndDate, " to "); Has(d) {
		date = d
	}

	s := &core.Section{
		ID:    core.SectionActivityPhotos,
		Kind:  core.LayoutImage,
		Title: "Photos of the activity",
		Elements: []core.Element{
			text(core.StyleCenteredTitle, "Photos of the activity"),
			text(core.StyleSubtitle, fmt.Sprintf("(%s - %s)", kind, date)),
		},
	}
	for _, photo := range r.ActivityPhotos {
		for i := range photo.Pages {
			children := []core.Element{{Kind: core.ElementImage, Image: &photo.Pages[i], Role: core.RolePhoto}}
			if i == len(photo.Pages)-1 && Has(photo.Caption) {
				children = append(children, text(core.StyleCaption, strings.TrimSpace(photo.Caption)))
			}
			s.Elements = append(s.Elements, block(children...))
		}
		if len(photo.Rows) > 0 {
			s.Elements = append(s.Elements, table(rowsTable(photo, maxColumns)))
		}
	}
	return s
}

type field struct {
	label string
	value string
}

// labelValueTable keeps the rows whose value passes the inclusion rule and
// returns nil when none do.
func labelValueTable(fields []field) *core.Table {
	var rows []core.Row
	for _, f := range fields {
		if !Has(f.value) {
			continue
		}
		rows = append(rows, core.Row{Cells: []core.Cell{
			{Text: f.label},
			{Text: strings.TrimSpace(f.value)},
		}})
	}
	if len(rows) == 0 {
		return nil
	}
	return &core.Table{Style: core.TableLabelValue, Rows: rows}
}

// span joins a start and end value, dropping whichever is blank.
func span(start, end, sep string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case Has(start) && Has(end) && start != end:
		return start + sep + end
	case Has(start):
		return start
	case Has(end):
		return end
	}
	return ""
}

func orPlaceholder(v string) string {
	if Has(v) {
		return strings.TrimSpace(v)
	}
	return Placeholder
}

func text(style core.TextStyle, s string) core.Element {
	return core.Element{Kind: core.ElementText, Style: style, Text: s}
}

func table(t *core.Table) core.Element {
	return core.Element{Kind: core.ElementTable, Table: t}
}

// block groups elements that must stay on one page.
func block(children ...core.Element) core.Element {
	return core.Element{Kind: core.ElementBlock, Children: children, KeepTogether: true}
}
