// Package fixture builds small, deterministic documents for tests: PNG and
// JPEG images, multi-page PDFs, XLSX workbooks and CSV files.
package fixture

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync/atomic"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/xuri/excelize/v2"
)

// Epoch is the fixed timestamp written into generated PDFs.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// PNG encodes a solid w×h PNG.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Solid(w, h, color.NRGBA{R: 40, G: 90, B: 160, A: 255})); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEG encodes a solid w×h JPEG.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Solid(w, h, color.NRGBA{R: 200, G: 120, B: 30, A: 255}), &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Image returns a PNG wrapped as an embeddable core.Image.
func Image(w, h int) *core.Image {
	img, err := core.NewImage(PNG(w, h))
	if err != nil {
		panic(err)
	}
	return img
}

// PDF builds an A4 document with the given number of pages.
func PDF(pages int) []byte {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(Epoch)
	pdf.SetModificationDate(Epoch)
	pdf.SetCatalogSort(true)
	pdf.SetFont("Helvetica", "", 24)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Cell(60, 12, fmt.Sprintf("Attendance sheet %d", i+1))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// XLSX builds a single-sheet workbook with a header row and data rows.
func XLSX(header []string, rows ...[]string) []byte {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	all := append([][]string{header}, rows...)
	for i, rec := range all {
		vals := make([]interface{}, len(rec))
		for j, v := range rec {
			vals[j] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			panic(err)
		}
		if err := f.SetSheetRow(sheet, axis, &vals); err != nil {
			panic(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// CSV writes a header row and data rows as CSV.
func CSV(header []string, rows ...[]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, r := range rows {
		_ = w.Write(r)
	}
	w.Flush()
	return buf.Bytes()
}

// Rasterizer is a stand-in PDF rasterizer that renders one solid page per
// source page without MuPDF or poppler.
type Rasterizer struct {
	Width, Height int
	calls         atomic.Int32
}

func (r *Rasterizer) Name() string { return "fixture" }

// Calls reports how many documents were rasterized.
func (r *Rasterizer) Calls() int { return int(r.calls.Load()) }

func (r *Rasterizer) Rasterize(ctx context.Context, pdf []byte, scale float64) ([]image.Image, error) {
	r.calls.Add(1)
	n, err := api.PageCount(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return nil, err
	}
	w, h := r.Width, r.Height
	if w == 0 || h == 0 {
		w, h = 60, 84
	}
	pages := make([]image.Image, n)
	for i := range pages {
		pages[i] = Solid(int(float64(w)*scale), int(float64(h)*scale), color.White)
	}
	return pages, nil
}
