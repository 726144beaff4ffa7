// Package avatar normalizes uploaded profile images to a fixed encoding
// and dimensions before they are persisted.
package avatar

import (
	"bytes"

	"github.com/disintegration/imaging"

	"github.com/dmitrijs2005/taskit/internal/common"
)

// Normalized avatar dimensions.
const (
	Width  = 250
	Height = 250
)

// ContentType of every normalized avatar.
const ContentType = "image/png"

// Normalizer converts arbitrary uploaded image bytes into the canonical
// avatar representation.
type Normalizer interface {
	// Normalize decodes data and returns a 250x250 PNG. Undecodable input
	// yields a field-level validation error.
	Normalize(data []byte) ([]byte, error)
}

// PNGNormalizer implements Normalizer with the imaging library.
type PNGNormalizer struct{}

// NewPNGNormalizer returns a ready-to-use normalizer.
func NewPNGNormalizer() *PNGNormalizer {
	return &PNGNormalizer{}
}

func (n *PNGNormalizer) Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, common.FieldError("avatar", "unsupported image format")
	}

	resized := imaging.Resize(img, Width, Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
