// Package avatar normalizes uploaded profile images into a canonical form:
// a 250x250 PNG, whatever the input format or aspect ratio.
package avatar

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"
)

const Size = 250

// ContentType is the media type of every stored avatar.
const ContentType = "image/png"

// Normalize decodes the uploaded image, crops and scales it to a Size×Size
// square and re-encodes it as PNG.
func Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	square := imaging.Fill(img, Size, Size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, square); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}

	return buf.Bytes(), nil
}
