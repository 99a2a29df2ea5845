package images

import (
	"image"
	// Register the standard decoders picked up by imaging.Open.
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Load decodes the image file at path, applying the EXIF orientation tag so that the
// returned dimensions match what a viewer would display.
//
// Arguments:
//   - path: Path to a JPEG, PNG, BMP or WebP file.
//
// Returns:
//   - The decoded image.
//   - An error if the file cannot be opened or decoded.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load image %s", path)
	}
	return img, nil
}

// Blob converts img into a float32 NCHW tensor of shape [1, 3, size, size].
//
// The image is stretched to size x size without preserving its aspect ratio (no
// letterbox), channels are emitted in RGB order and scaled by 1/255. Detections decoded
// from the resulting model output must therefore be mapped back with independent
// horizontal and vertical scale factors.
//
// Arguments:
//   - img: The source image.
//   - size: The square model input resolution, e.g. 640.
//
// Returns:
//   - The blob data, channel-major.
//   - An error if size is not positive or img is empty.
func Blob(img image.Image, size int) ([]float32, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid input size %d", size)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("image is empty")
	}

	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)
	bounds := resized.Bounds()
	plane := size * size
	data := make([]float32, 3*plane)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*size + x
			data[i] = float32(r>>8) / 255.0
			data[plane+i] = float32(g>>8) / 255.0
			data[2*plane+i] = float32(b>>8) / 255.0
		}
	}

	return data, nil
}
