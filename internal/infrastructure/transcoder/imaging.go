package transcoder

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	_maxDimension = 1600
	_jpegQuality  = 85
)

// Transcoder normalizes incoming images to the managed format: fit within
// _maxDimension on the long side (never enlarging), re-encode as JPEG.
type Transcoder struct {
}

func New() *Transcoder {
	return &Transcoder{}
}

func (t *Transcoder) Normalize(ctx context.Context, data []byte) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("Transcoder - Normalize - imaging.Decode: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > _maxDimension || bounds.Dy() > _maxDimension {
		img = imaging.Fit(img, _maxDimension, _maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(_jpegQuality))
	if err != nil {
		return nil, "", fmt.Errorf("Transcoder - Normalize - imaging.Encode: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}
