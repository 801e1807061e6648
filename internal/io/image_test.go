package ioutils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

func noise(w, h int) image.Image {
	r := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(r.Intn(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func TestShrinkCoverFitsLimits(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, gradient(1200, 900))
	out, err := ShrinkCover(data, DefaultCoverLimits)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 225, img.Bounds().Dy())
	assert.LessOrEqual(t, len(out), DefaultCoverLimits.MaxBytes)
}

func TestShrinkCoverKeepsSmallImage(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, gradient(100, 100))
	require.Less(t, len(data), DefaultCoverLimits.MaxBytes)

	out, err := ShrinkCover(data, DefaultCoverLimits)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestShrinkCoverFlattensAlphaOverWhite(t *testing.T) {
	t.Parallel()

	transparent := image.NewNRGBA(image.Rect(0, 0, 600, 600))
	data := encodePNG(t, transparent)

	out, err := ShrinkCover(data, DefaultCoverLimits)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, b, _ := img.At(150, 150).RGBA()
	assert.GreaterOrEqual(t, r>>8, uint32(250))
	assert.GreaterOrEqual(t, g>>8, uint32(250))
	assert.GreaterOrEqual(t, b>>8, uint32(250))
}

func TestShrinkCoverUnreachableCapKeepsSmallest(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, noise(600, 600))

	loose, err := ShrinkCover(data, CoverLimits{MaxPixels: 300, MaxBytes: 1 << 30})
	require.NoError(t, err)

	tight, err := ShrinkCover(data, CoverLimits{MaxPixels: 300, MaxBytes: 10})
	require.NoError(t, err)

	assert.Greater(t, len(tight), 10)
	assert.Less(t, len(tight), len(loose))

	img, err := jpeg.Decode(bytes.NewReader(tight))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 300), img.Bounds())
}

func TestShrinkCoverInvalidData(t *testing.T) {
	t.Parallel()

	_, err := ShrinkCover([]byte("not an image"), DefaultCoverLimits)
	assert.Error(t, err)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{1500, 1000, 300, 300, 200},
		{1000, 1500, 300, 200, 300},
		{800, 800, 300, 300, 300},
		{200, 100, 300, 200, 100},
		{3000, 2, 300, 300, 1},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}
