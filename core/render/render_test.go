package render

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/compose"
	"github.com/gaurav-prasanna/reportpipe/core/fixture"
	"github.com/gaurav-prasanna/reportpipe/core/record"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func fullRecord() core.ReportRecord {
	r := record.New()
	r.ActivityTitle = "Orientation Day"
	r.ActivityType = "Workshop"
	r.Venue = "Block 4, R&D Lab"
	r.Date = "2024-08-01"
	r.Speakers = []core.Speaker{{ID: "s1", Name: "Dr. Rao", Organization: "IISc", About: "Works on language models.", Photo: fixture.Image(40, 60)}}
	r.ParticipantProfiles = []core.ParticipantProfile{{Type: core.Student, Count: 120}}
	r.Summary = "Students were introduced to the department."
	r.Preparers = []core.Preparer{{Name: "Asha", Designation: "Assistant Professor", Signature: fixture.Image(80, 30)}}
	r.ActivityPhotos = []core.NormalizedAsset{{ID: "p1", Kind: core.KindImage, Pages: []core.Image{*fixture.Image(120, 80)}, Caption: "Inauguration"}}
	r.AttendanceFiles = []core.NormalizedAsset{
		{ID: "a1", Kind: core.KindPDF, Pages: []core.Image{*fixture.Image(60, 84), *fixture.Image(60, 84)}},
		{ID: "a2", Kind: core.KindSpreadsheet, Columns: []string{"Name", "Roll No"}, Rows: []map[string]string{{"Name": "Asha", "Roll No": "1"}, {"Name": "Ravi", "Roll No": ""}}},
	}
	return r
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("pdfcpu: %v", err)
	}
	return n
}

func TestPDFLayout(t *testing.T) {
	c := compose.Compose(fullRecord(), compose.Options{})
	doc, err := NewPDFRenderer().Layout(c)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if got := pageCount(t, doc.Data); got != doc.Pages {
		t.Errorf("pdfcpu counts %d pages, layout reports %d", got, doc.Pages)
	}

	for i, s := range doc.Sections {
		if s.FirstPage < 1 || s.LastPage < s.FirstPage || s.LastPage > doc.Pages {
			t.Errorf("section %s has span %d-%d of %d pages", s.ID, s.FirstPage, s.LastPage, doc.Pages)
		}
		if i == 0 {
			continue
		}
		prev := doc.Sections[i-1]
		if s.FirstPage < prev.LastPage {
			t.Errorf("section %s starts before %s ends", s.ID, prev.ID)
		}
	}
}

func TestPDFPageBreakAnchors(t *testing.T) {
	c := compose.Compose(fullRecord(), compose.Options{})
	doc, err := NewPDFRenderer().Layout(c)
	if err != nil {
		t.Fatal(err)
	}

	anchored := map[core.SectionID]bool{
		core.SectionSpeakerProfile: true,
		core.SectionActivityPhotos: true,
		core.SectionAttendance:     true,
	}
	seen := 0
	for i, s := range doc.Sections {
		if !anchored[s.ID] {
			continue
		}
		seen++
		prev := doc.Sections[i-1]
		if s.FirstPage != prev.LastPage+1 {
			t.Errorf("%s starts on page %d, previous section %s ends on %d", s.ID, s.FirstPage, prev.ID, prev.LastPage)
		}
	}
	if seen != len(anchored) {
		t.Errorf("found %d anchored sections, want %d", seen, len(anchored))
	}

	first := doc.Spans(core.SectionGeneralInfo)
	if len(first) != 1 || first[0].FirstPage != 1 {
		t.Errorf("general information spans = %+v", first)
	}
}

func TestPDFDeterministic(t *testing.T) {
	c := compose.Compose(fullRecord(), compose.Options{})
	a, err := NewPDFRenderer().Render(c)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewPDFRenderer().Render(compose.Compose(fullRecord(), compose.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical compositions produced different PDFs")
	}
}

func TestPDFEmptyComposition(t *testing.T) {
	doc, err := NewPDFRenderer().Layout(compose.Compose(record.New(), compose.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Pages != 1 {
		t.Errorf("pages = %d, want 1", doc.Pages)
	}
}

func TestPDFKeepTogether(t *testing.T) {
	// An attachment page 200mm tall leaves too little room for the photo block.
	tall := fixture.Image(100, 126)
	c := core.Composition{
		Footer: core.Footer{Format: "Page %d"},
		Sections: []core.Section{
			{ID: core.SectionAttendance, Kind: core.LayoutImage, Elements: []core.Element{
				{Kind: core.ElementImage, Image: tall, Role: core.RoleAttachment},
			}},
			{ID: core.SectionActivityPhotos, Kind: core.LayoutImage, Elements: []core.Element{
				{Kind: core.ElementBlock, KeepTogether: true, Children: []core.Element{
					{Kind: core.ElementText, Style: core.StyleCaption, Text: "Caption first"},
					{Kind: core.ElementImage, Image: fixture.Image(100, 80), Role: core.RolePhoto},
				}},
			}},
		},
	}
	doc, err := NewPDFRenderer().Layout(c)
	if err != nil {
		t.Fatal(err)
	}
	photos := doc.Spans(core.SectionActivityPhotos)[0]
	if photos.FirstPage != 2 || photos.LastPage != 2 {
		t.Errorf("photo block span = %d-%d, want 2-2", photos.FirstPage, photos.LastPage)
	}
}

func TestPDFLongTable(t *testing.T) {
	rows := make([]map[string]string, 120)
	for i := range rows {
		rows[i] = map[string]string{"Name": "Student", "Roll No": "R"}
	}
	r := record.New()
	r.AttendanceFiles = []core.NormalizedAsset{{ID: "a", Kind: core.KindSpreadsheet, Columns: []string{"Name", "Roll No"}, Rows: rows}}
	r.Summary = strings.Repeat("A very long summary sentence. ", 900)

	doc, err := NewPDFRenderer().Layout(compose.Compose(r, compose.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	syn := doc.Spans(core.SectionSynopsis)[0]
	if syn.LastPage <= syn.FirstPage {
		t.Errorf("oversized synopsis row should split across pages, span %d-%d", syn.FirstPage, syn.LastPage)
	}
	att := doc.Spans(core.SectionAttendance)[0]
	if att.LastPage <= att.FirstPage {
		t.Errorf("120-row attendance table fits on one page? span %d-%d", att.FirstPage, att.LastPage)
	}
	if got := pageCount(t, doc.Data); got != doc.Pages {
		t.Errorf("pdfcpu counts %d pages, layout reports %d", got, doc.Pages)
	}
}

func TestEmbeddableSixteenBitPNG(t *testing.T) {
	img := image.NewRGBA64(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	src, err := core.NewImage(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if plainPNG(src.Data) {
		t.Fatal("fixture should be a 16-bit PNG")
	}
	out, kind, err := embeddable(src)
	if err != nil {
		t.Fatal(err)
	}
	if kind != "PNG" || !plainPNG(out) {
		t.Errorf("embeddable returned %s, plain=%v", kind, plainPNG(out))
	}
}

func TestCoverSquare(t *testing.T) {
	sq, err := coverSquare(fixture.Image(40, 90), 64)
	if err != nil {
		t.Fatal(err)
	}
	if sq.Width != 64 || sq.Height != 64 {
		t.Errorf("portrait is %dx%d, want 64x64", sq.Width, sq.Height)
	}
}

func TestHTMLSelfContained(t *testing.T) {
	out, err := NewHTMLRenderer().Render(compose.Compose(fullRecord(), compose.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)

	for _, want := range []string{
		"<!DOCTYPE html>",
		`src="data:image/png;base64,`,
		`counter(page)`,
		`<section id="general_information"`,
		"R&amp;D Lab",
		`data-role="signature"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	for _, banned := range []string{"http://", "https://", "#ZgotmplZ"} {
		if strings.Contains(html, banned) {
			t.Errorf("html contains %q", banned)
		}
	}

	brk := strings.Index(html, `class="page-break"`)
	profile := strings.Index(html, `<section id="speaker_profile"`)
	prepared := strings.Index(html, `<section id="prepared_by"`)
	if brk < 0 || profile < 0 || !(prepared < brk && brk < profile) {
		t.Errorf("page break not between prepared_by (%d) and speaker_profile (%d): %d", prepared, profile, brk)
	}
}

func TestMarkdownHasNoImageData(t *testing.T) {
	out, err := NewMarkdownRenderer().Render(compose.Compose(fullRecord(), compose.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	md := string(out)
	for _, want := range []string{"Orientation Day", "General Information", "Dr. Rao", "(signed)"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	for _, banned := range []string{"data:image", "base64", "<style", "counter(page)"} {
		if strings.Contains(md, banned) {
			t.Errorf("markdown contains %q", banned)
		}
	}
}

func TestJSONPlan(t *testing.T) {
	c := compose.Compose(fullRecord(), compose.Options{})
	out, err := NewJSONRenderer().Render(c)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out, []byte(`"id": "activity_photos"`)) {
		t.Error("plan is missing the photos section")
	}
}

func TestForFormat(t *testing.T) {
	for format, ext := range map[string]string{"pdf": ".pdf", "html": ".html", "markdown": ".md", "md": ".md", "json": ".json"} {
		r, err := ForFormat(format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if r.Extension() != ext {
			t.Errorf("%s: extension %s, want %s", format, r.Extension(), ext)
		}
	}
	if _, err := ForFormat("docx"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestRenderErrorsWrapErrRender(t *testing.T) {
	broken := &core.Image{Data: []byte("not an image"), Format: core.ImagePNG, Width: 10, Height: 10}
	c := core.Composition{Sections: []core.Section{{ID: core.SectionActivityPhotos, Kind: core.LayoutImage, Elements: []core.Element{
		{Kind: core.ElementImage, Image: broken, Role: core.RolePhoto},
	}}}}
	_, err := NewPDFRenderer().Render(c)
	if !errors.Is(err, core.ErrRender) {
		t.Errorf("err = %v, want ErrRender", err)
	}
}
