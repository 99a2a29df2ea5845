package images

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestBlob_ShapeAndChannelOrder(t *testing.T) {
	img := solidImage(80, 40, color.RGBA{R: 255, G: 0, B: 51, A: 255})

	data, err := Blob(img, 32)
	require.NoError(t, err)
	require.Len(t, data, 3*32*32)

	plane := 32 * 32
	for i := 0; i < plane; i++ {
		assert.InDelta(t, 1.0, data[i], 0.01, "red plane")
		assert.InDelta(t, 0.0, data[plane+i], 0.01, "green plane")
		assert.InDelta(t, 0.2, data[2*plane+i], 0.01, "blue plane")
	}
}

func TestBlob_InvalidInput(t *testing.T) {
	_, err := Blob(solidImage(4, 4, color.RGBA{}), 0)
	assert.Error(t, err)

	_, err = Blob(image.NewRGBA(image.Rect(0, 0, 0, 0)), 16)
	assert.Error(t, err)

	_, err = Blob(nil, 16)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solidImage(64, 48, color.RGBA{G: 255, A: 255})))
	require.NoError(t, f.Close())

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
