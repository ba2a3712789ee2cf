package testutils

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// PNG returns a blank w×h PNG image.
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))), "Setup: failed to encode PNG")
	return buf.Bytes()
}

// JPEG returns a blank w×h JPEG image.
func JPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil), "Setup: failed to encode JPEG")
	return buf.Bytes()
}

// GIF returns a black w×h GIF image.
func GIF(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
	require.NoError(t, gif.Encode(&buf, img, nil), "Setup: failed to encode GIF")
	return buf.Bytes()
}
