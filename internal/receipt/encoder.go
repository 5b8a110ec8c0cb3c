package receipt

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"fintrack/pkg/config"
)

// Encoder turns a captured image into upload bytes. It is a capability
// interface: which codec is available depends on the runtime environment,
// so the choice is made once at construction, not inline at call sites.
type Encoder interface {
	Encode(img image.Image) (data []byte, contentType string, err error)
}

// NewEncoder selects the encoder for the configured upload format.
// Anything other than "png" falls back to JPEG.
func NewEncoder(cfg config.ReceiptConfig) Encoder {
	if cfg.Format == "png" {
		return &PNGEncoder{}
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &JPEGEncoder{Quality: quality}
}

type JPEGEncoder struct {
	Quality int
}

func (e *JPEGEncoder) Encode(img image.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.Quality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}

type PNGEncoder struct{}

func (e *PNGEncoder) Encode(img image.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/png", nil
}
