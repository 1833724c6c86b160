package transcoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize_ReencodesAsJPEG(t *testing.T) {
	t.Parallel()

	tr := New()

	encoded, contentType, err := tr.Normalize(context.Background(), pngBytes(t, 100, 80))

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)

	decoded, format, err := image.Decode(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 80, decoded.Bounds().Dy())
}

func TestNormalize_FitsOversizedImages(t *testing.T) {
	t.Parallel()

	tr := New()

	encoded, _, err := tr.Normalize(context.Background(), pngBytes(t, 3200, 1600))

	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, 1600, decoded.Bounds().Dx())
	assert.Equal(t, 800, decoded.Bounds().Dy())
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	t.Parallel()

	tr := New()

	_, _, err := tr.Normalize(context.Background(), []byte("not an image"))

	assert.Error(t, err)
}
