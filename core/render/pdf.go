package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/jung-kurt/gofpdf"
)

// Page geometry in millimetres.
const (
	pageHeight   = 297.0
	marginSide   = 25.4
	marginTop    = 25.4
	marginBottom = 30.0
	footerOffset = 15.0
	contentWidth = 210.0 - 2*marginSide

	contentHeight = pageHeight - marginTop - marginBottom

	ptToMM  = 25.4 / 72
	cellPad = 1.5
	gap     = 3.0

	photoMaxHeight  = 400 * ptToMM
	portraitSide    = 150 * ptToMM
	portraitPixels  = 300
	signatureWidth  = 40.0
	signatureHeight = 15.0

	fontFamily = "Times"
)

// Epoch is the creation date stamped into PDFs when none is configured, so
// identical compositions produce identical bytes.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SectionSpan records the pages a section was laid out on.
type SectionSpan struct {
	ID        core.SectionID `json:"id"`
	FirstPage int            `json:"firstPage"`
	LastPage  int            `json:"lastPage"`
}

// Document is a laid-out PDF together with its pagination report.
type Document struct {
	Data     []byte
	Pages    int
	Sections []SectionSpan
}

// Spans returns every span recorded for a section id, in layout order.
func (d *Document) Spans(id core.SectionID) []SectionSpan {
	var out []SectionSpan
	for _, s := range d.Sections {
		if s.ID == id {
			out = append(out, s)
		}
	}
	return out
}

// PDFRenderer lays a Composition out on A4 pages with gofpdf.
// Table rows and keep-together blocks are never split across pages unless a
// single one is taller than a whole page.
type PDFRenderer struct {
	Title     string
	CreatedAt time.Time
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts a Composition into PDF bytes.
func (r *PDFRenderer) Render(c core.Composition) ([]byte, error) {
	doc, err := r.Layout(c)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// Layout renders the composition and reports where each section landed.
func (r *PDFRenderer) Layout(c core.Composition) (*Document, error) {
	created := r.CreatedAt
	if created.IsZero() {
		created = Epoch
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(false, marginBottom)
	if r.Title != "" {
		pdf.SetTitle(r.Title, true)
	}

	l := &pdfLayout{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: make(map[string]bool),
	}
	if format := c.Footer.Format; format != "" {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-footerOffset)
			pdf.SetFont(fontFamily, "", 10)
			pdf.CellFormat(0, 5, l.tr(fmt.Sprintf(format, pdf.PageNo())), "", 0, "C", false, 0, "")
		})
	}

	doc := &Document{}
	l.newPage()
	for _, s := range c.Sections {
		if s.Kind == core.LayoutPageBreak {
			if !l.pageEmpty {
				l.newPage()
			}
			continue
		}
		l.span = &SectionSpan{ID: s.ID}
		l.elements(s.Elements)
		if l.span.FirstPage == 0 {
			l.span.FirstPage, l.span.LastPage = pdf.PageNo(), pdf.PageNo()
		}
		doc.Sections = append(doc.Sections, *l.span)
		l.space(gap)
		if !pdf.Ok() {
			break
		}
	}
	doc.Pages = pdf.PageNo()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: pdf: %w", core.ErrRender, err)
	}
	doc.Data = buf.Bytes()
	return doc, nil
}

type textStyle struct {
	font   string
	size   float64
	align  string
	before float64
	after  float64
}

var textStyles = map[core.TextStyle]textStyle{
	core.StyleInstitution:   {font: "B", size: 16, align: "C"},
	core.StyleSchool:        {font: "B", size: 14, align: "C"},
	core.StyleDepartment:    {font: "B", size: 13, align: "C", after: 2},
	core.StyleReportTitle:   {font: "BU", size: 14, align: "C", before: 2, after: 4},
	core.StyleSectionTitle:  {font: "B", size: 13, align: "L", before: 3, after: 2},
	core.StyleCenteredTitle: {font: "B", size: 16, align: "C", after: 3},
	core.StyleSubtitle:      {font: "I", size: 12, align: "C", after: 4},
	core.StyleBody:          {font: "", size: 12, align: "L", after: 2},
	core.StyleCaption:       {font: "B", size: 11, align: "C", before: 1, after: 3},
}

func styleOf(s core.TextStyle) textStyle {
	if st, ok := textStyles[s]; ok {
		return st
	}
	return textStyles[core.StyleBody]
}

func lineHeight(size float64) float64 {
	return size * ptToMM * 1.3
}

// pdfLayout is the pagination state of one Layout call.
type pdfLayout struct {
	pdf       *gofpdf.Fpdf
	tr        func(string) string
	images    map[string]bool
	span      *SectionSpan
	pageEmpty bool
}

func (l *pdfLayout) newPage() {
	l.pdf.AddPage()
	l.pdf.SetXY(marginSide, marginTop)
	l.pageEmpty = true
}

func (l *pdfLayout) bottom() float64 { return pageHeight - marginBottom }

func (l *pdfLayout) remaining() float64 { return l.bottom() - l.pdf.GetY() }

// ensure starts a new page when h does not fit below the cursor.
func (l *pdfLayout) ensure(h float64) {
	if h > l.remaining() && !l.pageEmpty {
		l.newPage()
	}
}

// touch marks the current page as holding content of the current section.
func (l *pdfLayout) touch() {
	page := l.pdf.PageNo()
	if l.span != nil {
		if l.span.FirstPage == 0 {
			l.span.FirstPage = page
		}
		l.span.LastPage = page
	}
	l.pageEmpty = false
}

func (l *pdfLayout) space(h float64) {
	if l.pageEmpty {
		return
	}
	y := l.pdf.GetY() + h
	if y > l.bottom() {
		y = l.bottom()
	}
	l.pdf.SetY(y)
}

func (l *pdfLayout) elements(els []core.Element) {
	for _, e := range els {
		l.element(e)
	}
}

func (l *pdfLayout) element(e core.Element) {
	switch e.Kind {
	case core.ElementText:
		l.text(e.Style, e.Text)
	case core.ElementTable:
		if e.Table != nil {
			l.table(e.Table)
		}
	case core.ElementImage:
		l.image(e.Image, e.Role)
	case core.ElementBlock:
		if e.KeepTogether {
			l.ensure(l.measure(e.Children))
		}
		l.elements(e.Children)
	}
}

// measure returns the height the elements would occupy if laid out unbroken.
func (l *pdfLayout) measure(els []core.Element) float64 {
	var h float64
	for _, e := range els {
		switch e.Kind {
		case core.ElementText:
			st := styleOf(e.Style)
			h += st.before + float64(len(l.lines(st.font, st.size, contentWidth, e.Text)))*lineHeight(st.size) + st.after
		case core.ElementTable:
			if e.Table != nil {
				widths := columnWidths(e.Table)
				if len(e.Table.Header) > 0 {
					h += l.headerRow(e.Table.Header, widths).height
				}
				for _, row := range e.Table.Rows {
					h += l.row(e.Table.Style, row, widths).height
				}
				h += gap
			}
		case core.ElementImage:
			if !e.Image.Empty() {
				_, ih := imageSize(e.Image, e.Role, contentWidth)
				h += ih + gap
			}
		case core.ElementBlock:
			h += l.measure(e.Children)
		}
	}
	return h
}

func (l *pdfLayout) lines(font string, size, w float64, s string) [][]byte {
	l.pdf.SetFont(fontFamily, font, size)
	return l.pdf.SplitLines([]byte(l.tr(s)), w)
}

func (l *pdfLayout) text(style core.TextStyle, s string) {
	st := styleOf(style)
	lh := lineHeight(st.size)
	lines := l.lines(st.font, st.size, contentWidth, s)
	if len(lines) == 0 {
		return
	}
	switch style {
	case core.StyleSectionTitle, core.StyleCenteredTitle:
		// Keep a heading with at least a few lines of what follows.
		l.ensure(st.before + float64(len(lines))*lh + 20)
	default:
		l.ensure(st.before + lh)
	}
	l.space(st.before)
	for _, line := range lines {
		if lh > l.remaining() {
			l.newPage()
		}
		l.touch()
		l.pdf.SetFont(fontFamily, st.font, st.size)
		l.pdf.SetX(marginSide)
		l.pdf.CellFormat(contentWidth, lh, string(line), "", 2, st.align, false, 0, "")
	}
	l.space(st.after)
}

// imageSize returns the drawn size in millimetres for an image of the given
// role laid out in a box of width w.
func imageSize(img *core.Image, role core.ImageRole, w float64) (float64, float64) {
	if img.Width <= 0 || img.Height <= 0 {
		return 0, 0
	}
	aspect := float64(img.Height) / float64(img.Width)
	fit := func(maxW, maxH float64) (float64, float64) {
		iw, ih := maxW, maxW*aspect
		if ih > maxH {
			ih = maxH
			iw = ih / aspect
		}
		return iw, ih
	}
	switch role {
	case core.RolePortrait:
		side := portraitSide
		if side > w {
			side = w
		}
		return side, side
	case core.RolePhoto:
		return fit(w, photoMaxHeight)
	case core.RoleSignature:
		return fit(min(w, signatureWidth), signatureHeight)
	default:
		return fit(w, contentHeight)
	}
}

func (l *pdfLayout) image(img *core.Image, role core.ImageRole) {
	if img.Empty() {
		return
	}
	iw, ih := imageSize(img, role, contentWidth)
	if role == core.RolePortrait {
		square, err := coverSquare(img, portraitPixels)
		if err != nil {
			l.pdf.SetError(fmt.Errorf("speaker portrait: %w", err))
			return
		}
		img = square
	}
	name := l.register(img)
	if name == "" {
		return
	}
	l.ensure(ih)
	l.touch()
	y := l.pdf.GetY()
	l.pdf.ImageOptions(name, marginSide+(contentWidth-iw)/2, y, iw, ih, false, gofpdf.ImageOptions{}, 0, "")
	l.pdf.SetXY(marginSide, y+ih)
	l.space(gap)
}

// register adds the image to the document once and returns its name.
func (l *pdfLayout) register(img *core.Image) string {
	sum := sha256.Sum256(img.Data)
	name := hex.EncodeToString(sum[:12])
	if l.images[name] {
		return name
	}
	data, kind, err := embeddable(img)
	if err != nil {
		l.pdf.SetError(err)
		return ""
	}
	l.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: kind}, bytes.NewReader(data))
	if !l.pdf.Ok() {
		return ""
	}
	l.images[name] = true
	return name
}

type cellBox struct {
	lines  [][]byte
	font   string
	size   float64
	align  string
	fill   bool
	img    *core.Image
	iw, ih float64
}

type rowBox struct {
	cells  []cellBox
	height float64
}

func columnWidths(t *core.Table) []float64 {
	n := len(t.Header)
	for _, r := range t.Rows {
		n = max(n, len(r.Cells))
	}
	if n == 0 {
		return nil
	}
	if t.Style == core.TableLabelValue && n == 2 {
		return []float64{contentWidth * 0.35, contentWidth * 0.65}
	}
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = contentWidth / float64(n)
	}
	return widths
}

func (l *pdfLayout) headerRow(header []string, widths []float64) rowBox {
	rb := rowBox{}
	for i, h := range header {
		c := cellBox{font: "B", size: 11, align: "C", fill: true}
		c.lines = l.lines(c.font, c.size, widths[i], h)
		rb.add(c)
	}
	return rb
}

func (l *pdfLayout) row(style core.TableStyle, r core.Row, widths []float64) rowBox {
	rb := rowBox{}
	for i := range widths {
		var cell core.Cell
		if i < len(r.Cells) {
			cell = r.Cells[i]
		}
		c := cellBox{size: 12, align: "L"}
		if style == core.TableLabelValue && i == 0 {
			c.font = "B"
		}
		if !cell.Image.Empty() {
			c.img = cell.Image
			c.iw, c.ih = imageSize(cell.Image, cell.Role, widths[i]-2*cellPad)
		} else {
			c.lines = l.lines(c.font, c.size, widths[i], cell.Text)
		}
		rb.add(c)
	}
	return rb
}

func (rb *rowBox) add(c cellBox) {
	h := c.ih
	if c.img == nil {
		h = float64(max(1, len(c.lines))) * lineHeight(c.size)
	}
	rb.height = max(rb.height, h+2*cellPad)
	rb.cells = append(rb.cells, c)
}

func (l *pdfLayout) table(t *core.Table) {
	widths := columnWidths(t)
	if widths == nil {
		return
	}
	var header *rowBox
	if len(t.Header) > 0 {
		hb := l.headerRow(t.Header, widths)
		header = &hb
		first := 0.0
		if len(t.Rows) > 0 {
			first = l.row(t.Style, t.Rows[0], widths).height
		}
		l.ensure(hb.height + first)
		l.drawRow(hb, widths)
	}
	for _, r := range t.Rows {
		l.placeRow(l.row(t.Style, r, widths), widths, header)
	}
	l.space(gap)
}

// placeRow draws a row on the current page if it fits, otherwise on the next
// one. Only a row taller than an entire page is split.
func (l *pdfLayout) placeRow(rb rowBox, widths []float64, header *rowBox) {
	if rb.height > l.remaining() && !l.pageEmpty {
		l.continueTable(widths, header)
	}
	if rb.height <= l.remaining() {
		l.drawRow(rb, widths)
		return
	}
	l.splitRow(rb, widths, header)
}

func (l *pdfLayout) continueTable(widths []float64, header *rowBox) {
	l.newPage()
	if header != nil {
		l.drawRow(*header, widths)
	}
}

func (l *pdfLayout) splitRow(rb rowBox, widths []float64, header *rowBox) {
	rest := make([][][]byte, len(rb.cells))
	for i, c := range rb.cells {
		rest[i] = c.lines
	}
	first := true
	for {
		chunk := rowBox{}
		avail := l.remaining() - 2*cellPad
		for i, c := range rb.cells {
			part := c
			part.lines = nil
			if c.img != nil {
				if !first {
					part.img = nil
					part.ih = 0
				}
			} else {
				n := max(0, min(len(rest[i]), int(avail/lineHeight(c.size))))
				part.lines, rest[i] = rest[i][:n], rest[i][n:]
			}
			chunk.add(part)
		}
		l.drawRow(chunk, widths)
		first = false

		done := true
		for _, r := range rest {
			if len(r) > 0 {
				done = false
			}
		}
		if done {
			return
		}
		l.continueTable(widths, header)
	}
}

func (l *pdfLayout) drawRow(rb rowBox, widths []float64) {
	l.touch()
	y := l.pdf.GetY()
	x := marginSide
	l.pdf.SetDrawColor(0, 0, 0)
	l.pdf.SetLineWidth(0.2)
	for i, c := range rb.cells {
		w := widths[i]
		if c.fill {
			l.pdf.SetFillColor(230, 230, 230)
			l.pdf.Rect(x, y, w, rb.height, "FD")
		} else {
			l.pdf.Rect(x, y, w, rb.height, "D")
		}
		if c.img != nil {
			if name := l.register(c.img); name != "" {
				l.pdf.ImageOptions(name, x+cellPad, y+cellPad, c.iw, c.ih, false, gofpdf.ImageOptions{}, 0, "")
			}
		} else {
			lh := lineHeight(c.size)
			l.pdf.SetFont(fontFamily, c.font, c.size)
			for j, line := range c.lines {
				l.pdf.SetXY(x, y+cellPad+float64(j)*lh)
				l.pdf.CellFormat(w, lh, string(line), "", 0, c.align, false, 0, "")
			}
		}
		x += w
	}
	l.pdf.SetXY(marginSide, y+rb.height)
}
