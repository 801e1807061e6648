package ioutils

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration (YouTube thumbnails)
)

// CoverQualitySteps is the descending JPEG quality sequence tried when
// shrinking a cover below its byte cap.
var CoverQualitySteps = []int{85, 75, 65, 55, 45}

// CoverLimits bounds the size of an embedded cover image.
//
// Old car stereos and portable players choke on large embedded pictures,
// so covers are kept small in both dimensions and bytes.
type CoverLimits struct {
	// MaxPixels caps both width and height.
	MaxPixels int

	// MaxBytes caps the encoded size.
	MaxBytes int
}

// DefaultCoverLimits is 300x300 pixels and 80KB.
var DefaultCoverLimits = CoverLimits{MaxPixels: 300, MaxBytes: 80 * 1024}

// ShrinkCover fits an image within the given limits.
//
// The pipeline is:
//  1. Images already within both limits are returned unchanged.
//  2. The image is composited over a white background, which drops any
//     alpha channel.
//  3. It is scaled down with Catmull-Rom to fit MaxPixels, keeping the
//     aspect ratio. Images are never scaled up.
//  4. It is encoded as JPEG at each of CoverQualitySteps until the result
//     fits MaxBytes. If no step fits, the smallest encoding is returned.
//
// Returns an error only if the data cannot be decoded or encoded.
//
// Example:
//
//	small, err := ShrinkCover(original, DefaultCoverLimits)
//	// A 1200x1200 PNG becomes a 300x300 JPEG under 80KB
func ShrinkCover(data []byte, limits CoverLimits) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), limits.MaxPixels)
	if width == bounds.Dx() && height == bounds.Dy() && len(data) <= limits.MaxBytes {
		return data, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var smallest []byte
	for _, quality := range CoverQualitySteps {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
		if buf.Len() <= limits.MaxBytes {
			return buf.Bytes(), nil
		}
		if smallest == nil || buf.Len() < len(smallest) {
			smallest = buf.Bytes()
		}
	}

	return smallest, nil
}

// fitWithin scales width and height down so neither exceeds maxSide.
func fitWithin(width, height, maxSide int) (int, int) {
	if maxSide <= 0 || (width <= maxSide && height <= maxSide) {
		return width, height
	}
	if width >= height {
		h := max(int(float64(height)*float64(maxSide)/float64(width)), 1)
		return maxSide, h
	}
	w := max(int(float64(width)*float64(maxSide)/float64(height)), 1)
	return w, maxSide
}
