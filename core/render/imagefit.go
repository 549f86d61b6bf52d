package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/gaurav-prasanna/reportpipe/core"
	"golang.org/x/image/draw"
)

// embeddable returns image bytes gofpdf can register along with their type.
// gofpdf rejects 16-bit and interlaced PNGs, so those are re-encoded.
func embeddable(img *core.Image) ([]byte, string, error) {
	switch img.Format {
	case core.ImageJPEG:
		return img.Data, "JPG", nil
	case core.ImagePNG:
		if plainPNG(img.Data) {
			return img.Data, "PNG", nil
		}
		src, _, err := image.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return nil, "", fmt.Errorf("decoding png: %w", err)
		}
		dst := image.NewNRGBA(src.Bounds())
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		var buf bytes.Buffer
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", fmt.Errorf("encoding png: %w", err)
		}
		return buf.Bytes(), "PNG", nil
	}
	return nil, "", fmt.Errorf("image format %q is not embeddable", img.Format)
}

// plainPNG reads the IHDR chunk: bit depth at offset 24, interlace at 28.
func plainPNG(data []byte) bool {
	return len(data) > 28 && data[24] <= 8 && data[28] == 0
}

// coverSquare center-crops the image to a square and scales it to side pixels,
// the way a portrait frame with object-fit: cover shows it.
func coverSquare(img *core.Image, side int) (*core.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	b := src.Bounds()
	s := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-s)/2
	y0 := b.Min.Y + (b.Dy()-s)/2
	crop := image.Rect(x0, y0, x0+s, y0+s)

	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding portrait: %w", err)
	}
	return core.NewImage(buf.Bytes())
}
