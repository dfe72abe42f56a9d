// Package imaging converts client-submitted image bytes into the fixed
// tensor shape the classifier expects.
package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"strings"

	"github.com/nfnt/resize"

	"github.com/digitnet/digitnet-go/internal/errors"
)

const (
	// Width and Height are the canonical input dimensions of the
	// classifier. Changing them breaks the model contract.
	Width  = 28
	Height = 28

	// TensorSize is the flat length of a normalized tensor.
	TensorSize = Width * Height
)

// DecodeBase64 decodes a base64-encoded image payload. A data-URL prefix
// ("data:image/png;base64,...") is tolerated and stripped.
func DecodeBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.Newf("empty image payload").
			Component("imaging").
			Category(errors.CategoryImageDecode).
			Build()
	}

	if idx := strings.Index(s, ","); idx != -1 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.New(err).
			Component("imaging").
			Category(errors.CategoryImageDecode).
			Context("payload_length", len(s)).
			Build()
	}
	return raw, nil
}

// Normalize decodes raw image bytes and converts them into a flat 28x28
// grayscale tensor with values in [0,1]. The input may be any dimension,
// color mode and encoding the standard image decoders understand; decoding
// failures are reported as image-decode errors and never reach the
// classifier. Normalize is a pure function and safe for concurrent use.
func Normalize(raw []byte) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.New(err).
			Component("imaging").
			Category(errors.CategoryImageDecode).
			Context("input_bytes", len(raw)).
			Build()
	}

	resized := resize.Resize(Width, Height, img, resize.Lanczos3)

	bounds := resized.Bounds()
	tensor := make([]float32, TensorSize)

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// ITU-R BT.601 luminance on 16-bit channel values,
			// rescaled to [0,1].
			lum := 0.299*float32(r) + 0.587*float32(g) + 0.114*float32(b)
			tensor[y*Width+x] = lum / 65535.0
		}
	}

	return tensor, nil
}
