package ingest

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/gaurav-prasanna/reportpipe/core"
	"golang.org/x/image/draw"
)

// pngEncoder is shared so every page is written with identical parameters.
var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// decodeImage fully decodes an upload to reject corrupt files, then returns
// an embeddable page. JPEGs are kept byte-for-byte. PNGs are re-encoded as
// 8-bit non-interlaced images because PDF writers reject interlaced and
// 16-bit PNGs. Dimensions are never changed.
func decodeImage(data []byte) (*core.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	switch format {
	case "jpeg":
		return core.NewImage(data)
	case "png":
		return encodePNG(img)
	default:
		return nil, fmt.Errorf("image format %q is not embeddable", format)
	}
}

// encodePNG writes img as an 8-bit PNG page.
func encodePNG(img image.Image) (*core.Image, error) {
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, to8Bit(img)); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	b := img.Bounds()
	return &core.Image{
		Data:   buf.Bytes(),
		Format: core.ImagePNG,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func to8Bit(img image.Image) image.Image {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Gray, *image.Paletted:
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
