package compose

import (
	"encoding/json"
	"testing"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/fixture"
	"github.com/gaurav-prasanna/reportpipe/core/record"
)

func sectionIDs(c core.Composition) []core.SectionID {
	ids := make([]core.SectionID, len(c.Sections))
	for i, s := range c.Sections {
		ids[i] = s.ID
	}
	return ids
}

func tables(s core.Section) []*core.Table {
	var out []*core.Table
	var walk func([]core.Element)
	walk = func(els []core.Element) {
		for _, e := range els {
			if e.Table != nil {
				out = append(out, e.Table)
			}
			walk(e.Children)
		}
	}
	walk(s.Elements)
	return out
}

func equalIDs(a, b []core.SectionID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestComposeTitleOnly(t *testing.T) {
	r := record.New()
	r.ActivityTitle = "Orientation Day"

	c := Compose(r, Options{})

	want := []core.SectionID{core.SectionHeader, core.SectionGeneralInfo}
	if got := sectionIDs(c); !equalIDs(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
	gi, _ := c.Section(core.SectionGeneralInfo)
	ts := tables(gi)
	if len(ts) != 1 || len(ts[0].Rows) != 1 {
		t.Fatalf("general information tables = %+v", ts)
	}
	row := ts[0].Rows[0]
	if row.Cells[0].Text != "Title of the Activity" || row.Cells[1].Text != "Orientation Day" {
		t.Errorf("row = %+v", row)
	}
}

func TestComposeEmptyRecord(t *testing.T) {
	c := Compose(record.New(), Options{})

	want := []core.SectionID{core.SectionHeader, core.SectionGeneralInfo}
	if got := sectionIDs(c); !equalIDs(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
	hdr, _ := c.Section(core.SectionHeader)
	if len(hdr.Elements) != 4 || hdr.Elements[0].Text != DefaultHeader().Institution {
		t.Errorf("header = %+v", hdr.Elements)
	}
	if c.Footer.Format != "Page %d" {
		t.Errorf("footer = %q", c.Footer.Format)
	}
}

func TestComposeCustomHeader(t *testing.T) {
	c := Compose(record.New(), Options{Header: Header{Institution: "Acme Institute", Title: "EVENT REPORT"}})
	hdr, _ := c.Section(core.SectionHeader)
	if len(hdr.Elements) != 2 {
		t.Fatalf("header elements = %+v", hdr.Elements)
	}
	if hdr.Elements[1].Style != core.StyleReportTitle || hdr.Elements[1].Text != "EVENT REPORT" {
		t.Errorf("title = %+v", hdr.Elements[1])
	}
}

func TestInclusionRule(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Seminar", true},
		{"  Seminar  ", true},
		{"", false},
		{"   \t\n", false},
		{"—", false},
		{" — ", false},
		{"-", true},
	}
	for _, tc := range cases {
		if got := Has(tc.in); got != tc.want {
			t.Errorf("Has(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestGeneralInformationRows(t *testing.T) {
	r := record.New()
	r.ActivityTitle = "Hackathon"
	r.Venue = "   "
	r.Collaboration = "—"
	r.Date = "2024-03-01"
	r.EndDate = "2024-03-02"
	r.Time = "10:00"

	gi, _ := Compose(r, Options{}).Section(core.SectionGeneralInfo)
	rows := tables(gi)[0].Rows

	want := [][2]string{
		{"Title of the Activity", "Hackathon"},
		{"Date/s", "2024-03-01 to 2024-03-02"},
		{"Time", "10:00"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %+v", rows)
	}
	for i, w := range want {
		if rows[i].Cells[0].Text != w[0] || rows[i].Cells[1].Text != w[1] {
			t.Errorf("row %d = %+v, want %v", i, rows[i], w)
		}
	}
}

func TestSpan(t *testing.T) {
	cases := []struct{ start, end, want string }{
		{"a", "b", "a to b"},
		{"a", "a", "a"},
		{"a", "", "a"},
		{"", "b", "b"},
		{" ", "—", ""},
	}
	for _, tc := range cases {
		if got := span(tc.start, tc.end, " to "); got != tc.want {
			t.Errorf("span(%q, %q) = %q, want %q", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestSpeakers(t *testing.T) {
	tests := []struct {
		name        string
		about       string
		photo       bool
		wantProfile bool
	}{
		{name: "no bio or photo", wantProfile: false},
		{name: "bio", about: "Researcher in NLP.", wantProfile: true},
		{name: "photo", photo: true, wantProfile: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := record.New()
			second := core.Speaker{Name: "Dr. Rao", Organization: "IISc", About: tt.about}
			if tt.photo {
				second.Photo = fixture.Image(40, 60)
			}
			r.Speakers = []core.Speaker{{Name: "  ", Organization: "Unnamed Org"}, second}

			c := Compose(r, Options{})

			details, ok := c.Section(core.SectionSpeakers)
			if !ok {
				t.Fatal("speaker details missing")
			}
			ts := tables(details)
			if len(ts) != 1 {
				t.Fatalf("got %d speaker tables, want 1", len(ts))
			}
			if ts[0].Rows[0].Cells[1].Text != "Dr. Rao" {
				t.Errorf("speaker table = %+v", ts[0].Rows)
			}
			for _, e := range details.Elements[1:] {
				if e.Kind != core.ElementBlock || !e.KeepTogether {
					t.Errorf("speaker element %+v is not an atomic block", e)
				}
			}

			_, hasProfile := c.Section(core.SectionSpeakerProfile)
			if hasProfile != tt.wantProfile {
				t.Errorf("speaker profile present = %v, want %v", hasProfile, tt.wantProfile)
			}
		})
	}
}

func TestSpeakerProfileBlocks(t *testing.T) {
	r := record.New()
	photo := fixture.Image(40, 40)
	r.Speakers = []core.Speaker{
		{Name: "Dr. Rao", About: "  Works on vision.  ", Photo: photo},
		{Name: "Ms. Iyer", About: "Data engineer."},
		{Name: "No profile"},
	}
	s, ok := Compose(r, Options{}).Section(core.SectionSpeakerProfile)
	if !ok {
		t.Fatal("speaker profile missing")
	}
	blocks := s.Elements[1:]
	if len(blocks) != 2 {
		t.Fatalf("got %d profile blocks, want 2", len(blocks))
	}

	first := blocks[0].Children
	if len(first) != 2 || first[0].Image != photo || first[0].Role != core.RolePortrait || first[1].Text != "Works on vision." {
		t.Errorf("photo profile = %+v", first)
	}
	second := blocks[1].Children
	if len(second) != 1 || second[0].Style != core.StyleBody || second[0].Text != "Data engineer." {
		t.Errorf("bio-only profile = %+v", second)
	}
	for _, b := range blocks {
		for _, ch := range b.Children {
			if ch.Style == core.StyleCaption {
				t.Errorf("profile block carries a caption %q", ch.Text)
			}
		}
	}
}

func TestParticipants(t *testing.T) {
	r := record.New()
	r.ParticipantProfiles = []core.ParticipantProfile{
		{Type: core.Student, Count: 120},
		{},
		{Type: core.Faculty},
		{Count: 4},
	}
	s, ok := Compose(r, Options{}).Section(core.SectionParticipants)
	if !ok {
		t.Fatal("participants missing")
	}
	tb := tables(s)[0]
	if tb.Header[0] != "Type of Participants" || tb.Header[1] != "No. of Participants" {
		t.Errorf("header = %v", tb.Header)
	}
	want := [][2]string{{"Student", "120"}, {"Faculty", "0"}, {Placeholder, "4"}}
	if len(tb.Rows) != len(want) {
		t.Fatalf("rows = %+v", tb.Rows)
	}
	for i, w := range want {
		if tb.Rows[i].Cells[0].Text != w[0] || tb.Rows[i].Cells[1].Text != w[1] {
			t.Errorf("row %d = %+v, want %v", i, tb.Rows[i], w)
		}
	}

	r.ParticipantProfiles = []core.ParticipantProfile{{}}
	if _, ok := Compose(r, Options{}).Section(core.SectionParticipants); ok {
		t.Error("blank participants should be omitted")
	}
}

func TestSynopsis(t *testing.T) {
	r := record.New()
	r.Highlights = " \n "
	if _, ok := Compose(r, Options{}).Section(core.SectionSynopsis); ok {
		t.Fatal("blank synopsis should be omitted")
	}
	r.Summary = "Went well."
	s, ok := Compose(r, Options{}).Section(core.SectionSynopsis)
	if !ok {
		t.Fatal("synopsis missing")
	}
	rows := tables(s)[0].Rows
	if len(rows) != 1 || rows[0].Cells[0].Text != "Summary" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestPreparedBy(t *testing.T) {
	r := record.New()
	sig := fixture.Image(80, 30)
	r.Preparers = []core.Preparer{
		{Name: "Asha", Designation: "Assistant Professor", Signature: sig},
		{},
		{Name: "Ravi", Designation: "HoD"},
	}
	s, ok := Compose(r, Options{}).Section(core.SectionPreparedBy)
	if !ok {
		t.Fatal("prepared by missing")
	}
	ts := tables(s)
	if len(ts) != 2 {
		t.Fatalf("got %d preparer tables, want 2", len(ts))
	}
	last := ts[0].Rows[len(ts[0].Rows)-1]
	if last.Cells[0].Text != "Digital Signature" || last.Cells[1].Image != sig || last.Cells[1].Role != core.RoleSignature {
		t.Errorf("signature row = %+v", last)
	}
	rows := ts[1].Rows
	if len(rows) != 3 || rows[0].Cells[1].Text != "Ravi" || rows[1].Cells[1].Text != "HoD" {
		t.Fatalf("unsigned preparer rows = %+v", rows)
	}
	placeholder := rows[2].Cells
	if placeholder[0].Text != "Digital Signature" || placeholder[1].Text != Placeholder || placeholder[1].Image != nil {
		t.Errorf("missing signature row = %+v", placeholder)
	}
}

func TestPageBreaksPrecedeAnchoredSections(t *testing.T) {
	r := record.New()
	r.ActivityTitle = "Expo"
	r.Speakers = []core.Speaker{{Name: "Dr. Rao", About: "Bio."}}
	r.ActivityPhotos = []core.NormalizedAsset{{ID: "p1", Kind: core.KindImage, Pages: []core.Image{*fixture.Image(30, 20)}, Caption: "Opening"}}
	r.AttendanceFiles = []core.NormalizedAsset{{ID: "a1", Kind: core.KindPDF, Pages: []core.Image{*fixture.Image(60, 84), *fixture.Image(60, 84)}}}
	r.FeedbackFiles = []core.NormalizedAsset{{ID: "f1", Kind: core.KindSpreadsheet, Columns: []string{"Q"}, Rows: []map[string]string{{"Q": "Good"}}}}

	c := Compose(r, Options{})

	want := []core.SectionID{
		core.SectionHeader, core.SectionGeneralInfo, core.SectionSpeakers,
		core.SectionPageBreak, core.SectionSpeakerProfile,
		core.SectionPageBreak, core.SectionActivityPhotos,
		core.SectionPageBreak, core.SectionAttendance,
		core.SectionPageBreak, core.SectionFeedback,
	}
	if got := sectionIDs(c); !equalIDs(got, want) {
		t.Fatalf("sections = %v\nwant %v", got, want)
	}

	photos, _ := c.Section(core.SectionActivityPhotos)
	if photos.Elements[1].Text != "(Activity - Date)" {
		t.Errorf("subtitle = %q", photos.Elements[1].Text)
	}
	shot := photos.Elements[2]
	if !shot.KeepTogether || len(shot.Children) != 2 || shot.Children[1].Text != "Opening" {
		t.Errorf("photo block = %+v", shot)
	}

	att, _ := c.Section(core.SectionAttendance)
	pages := 0
	for _, e := range att.Elements {
		if e.Kind == core.ElementImage && e.Role == core.RoleAttachment {
			pages++
		}
	}
	if pages != 2 {
		t.Errorf("attendance pages = %d, want 2", pages)
	}
}

func TestAttachmentTable(t *testing.T) {
	asset := core.NormalizedAsset{
		ID:      "s1",
		Kind:    core.KindSpreadsheet,
		Columns: []string{"Name", "Roll No", "A", "B", "C", "D"},
		Rows: []map[string]string{
			{"Name": "Asha", "Roll No": "1", "A": "a", "B": "b", "C": "c", "D": "d"},
			{"Name": "Ravi", "Roll No": "", "A": "a", "B": "b", "C": "c", "D": "d", "Late": "x"},
		},
	}
	r := record.New()
	r.AttendanceFiles = []core.NormalizedAsset{asset}

	s, _ := Compose(r, Options{}).Section(core.SectionAttendance)
	tb := tables(s)[0]
	wantHeader := []string{"Name", "Roll No", "A", "B", "C"}
	if len(tb.Header) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", tb.Header, wantHeader)
	}
	for i := range wantHeader {
		if tb.Header[i] != wantHeader[i] {
			t.Fatalf("header = %v, want %v", tb.Header, wantHeader)
		}
	}
	if got := tb.Rows[1].Cells[1].Text; got != Placeholder {
		t.Errorf("blank cell = %q, want %q", got, Placeholder)
	}
	for _, row := range tb.Rows {
		if len(row.Cells) != 5 {
			t.Errorf("row width = %d, want 5", len(row.Cells))
		}
	}

	narrow := Compose(r, Options{MaxColumns: 2})
	s, _ = narrow.Section(core.SectionAttendance)
	if got := len(tables(s)[0].Header); got != 2 {
		t.Errorf("max columns 2: header width = %d", got)
	}
}

func TestColumnsFirstRowKeys(t *testing.T) {
	a := core.NormalizedAsset{
		Columns: []string{"Name", "Dept"},
		Rows: []map[string]string{
			{"Name": "Asha", "Zone": "N", "Extra": "1"},
			{"Name": "Ravi", "Dept": "CSE"},
		},
	}
	got := Columns(a, 5)
	want := []string{"Name", "Extra", "Zone"}
	if len(got) != len(want) {
		t.Fatalf("Columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Columns = %v, want %v", got, want)
		}
	}
	if Columns(core.NormalizedAsset{}, 5) != nil {
		t.Error("no rows should give no columns")
	}
}

func TestComposeIsPureAndRepeatable(t *testing.T) {
	r := record.New()
	r.ActivityTitle = "Workshop"
	r.ActivityType = "Seminar"
	r.Speakers = []core.Speaker{{ID: "s1", Name: "Dr. Rao", Photo: fixture.Image(50, 50)}}
	r.AttendanceFiles = []core.NormalizedAsset{{ID: "a1", Kind: core.KindSpreadsheet, Columns: []string{"Name"}, Rows: []map[string]string{{"Name": "Asha"}}}}

	before, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}

	first := Compose(r, Options{})
	second := Compose(r, Options{})
	if first.Fingerprint() != second.Fingerprint() {
		t.Error("compose is not repeatable")
	}

	after, _ := json.Marshal(r)
	if string(before) != string(after) {
		t.Error("compose mutated its input")
	}
}

func TestRemovingAssetKeepsOrder(t *testing.T) {
	r := record.New()
	for _, id := range []string{"a", "b", "c"} {
		r = record.AppendAssets(r, core.ActivityPhotos, core.NormalizedAsset{
			ID: id, Kind: core.KindImage, Pages: []core.Image{*fixture.Image(10, 10)}, Caption: "photo " + id,
		})
	}
	r, ok := record.RemoveAsset(r, core.ActivityPhotos, "b")
	if !ok {
		t.Fatal("asset b not removed")
	}

	s, _ := Compose(r, Options{}).Section(core.SectionActivityPhotos)
	var captions []string
	for _, e := range s.Elements {
		for _, ch := range e.Children {
			if ch.Style == core.StyleCaption {
				captions = append(captions, ch.Text)
			}
		}
	}
	if len(captions) != 2 || captions[0] != "photo a" || captions[1] != "photo c" {
		t.Errorf("captions = %v", captions)
	}
}
