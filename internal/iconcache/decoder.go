package iconcache

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Register the formats served by the showcase feed.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ErrUndecodable is returned when bytes are not a supported image.
var ErrUndecodable = errors.New("data is not a supported image")

// Image is a decoded icon: its original bytes and what the decoder learned about them.
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Decoder turns raw bytes into an Image.
type Decoder interface {
	Decode(data []byte) (Image, error)
}

// StdDecoder decodes the image formats registered in the image package.
type StdDecoder struct{}

// Decode fully decodes data so that truncated or corrupt images are rejected. Pixels are then discarded.
func (StdDecoder) Decode(data []byte) (Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, errors.Join(ErrUndecodable, fmt.Errorf("could not decode image: %v", err))
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Image{}, errors.Join(ErrUndecodable, fmt.Errorf("invalid image size %dx%d", b.Dx(), b.Dy()))
	}

	return Image{
		Data:   data,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}
