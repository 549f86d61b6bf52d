package core

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// ImageFormat is the encoding of an embeddable raster.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

// MIME returns the media type used in data URLs.
func (f ImageFormat) MIME() string {
	return "image/" + string(f)
}

// Image is raster data that can be embedded literally into a document.
// In JSON snapshots it is a data URL, so snapshots never reference the network.
type Image struct {
	Data   []byte
	Format ImageFormat
	Width  int
	Height int
}

// NewImage inspects encoded PNG or JPEG bytes and records their format and size.
// The bytes are kept as-is; no resampling happens.
func NewImage(data []byte) (*Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	var f ImageFormat
	switch format {
	case "png":
		f = ImagePNG
	case "jpeg":
		f = ImageJPEG
	default:
		return nil, fmt.Errorf("image format %q is not embeddable", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	return &Image{Data: data, Format: f, Width: cfg.Width, Height: cfg.Height}, nil
}

// Empty reports whether the image carries no data.
func (img *Image) Empty() bool {
	return img == nil || len(img.Data) == 0
}

// DataURL encodes the image as a self-contained data URL.
func (img Image) DataURL() string {
	return "data:" + img.Format.MIME() + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ParseDataURL decodes a base64 data URL holding a PNG or JPEG.
func ParseDataURL(s string) (*Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URL has no payload")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding data URL: %w", err)
	}
	return NewImage(data)
}

func (img Image) MarshalJSON() ([]byte, error) {
	if len(img.Data) == 0 {
		return []byte(`""`), nil
	}
	return json.Marshal(img.DataURL())
}

func (img *Image) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("image must be a data URL string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*img = Image{}
		return nil
	}
	parsed, err := ParseDataURL(s)
	if err != nil {
		return err
	}
	*img = *parsed
	return nil
}
