// Package transcode produces the canonical public rendition of an uploaded
// image: orientation-corrected, bounded in size, JPEG-encoded.
package transcode

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"server/config"

	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"
)

// Reencode decodes the staged bytes and re-encodes them as the distribution
// JPEG. Orientation correction is best-effort; a missing or unreadable
// orientation tag only skips the correction.
func Reencode(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	img = applyOrientation(img, readOrientation(raw))
	img = resize.Thumbnail(uint(config.MAX_IMAGE_DIM), uint(config.MAX_IMAGE_DIM), img, resize.Lanczos3)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: config.JPEG_QUALITY}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func readOrientation(raw []byte) int {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}
	return orientation
}

// applyOrientation undoes the EXIF orientation so pixels are stored upright.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return transform(img, flipH)
	case 3:
		return transform(img, rotate180)
	case 4:
		return transform(img, flipV)
	case 5:
		return transform(img, transpose)
	case 6:
		return transform(img, rotate90)
	case 7:
		return transform(img, transverse)
	case 8:
		return transform(img, rotate270)
	}
	return img
}

// mapper returns destination bounds for a source rectangle and maps a
// destination pixel back to its source pixel.
type mapper struct {
	bounds func(w, h int) (int, int)
	at     func(x, y, w, h int) (int, int)
}

var (
	flipH      = mapper{func(w, h int) (int, int) { return w, h }, func(x, y, w, h int) (int, int) { return w - 1 - x, y }}
	flipV      = mapper{func(w, h int) (int, int) { return w, h }, func(x, y, w, h int) (int, int) { return x, h - 1 - y }}
	rotate180  = mapper{func(w, h int) (int, int) { return w, h }, func(x, y, w, h int) (int, int) { return w - 1 - x, h - 1 - y }}
	rotate90   = mapper{func(w, h int) (int, int) { return h, w }, func(x, y, w, h int) (int, int) { return y, h - 1 - x }}
	rotate270  = mapper{func(w, h int) (int, int) { return h, w }, func(x, y, w, h int) (int, int) { return w - 1 - y, x }}
	transpose  = mapper{func(w, h int) (int, int) { return h, w }, func(x, y, w, h int) (int, int) { return y, x }}
	transverse = mapper{func(w, h int) (int, int) { return h, w }, func(x, y, w, h int) (int, int) { return w - 1 - y, h - 1 - x }}
)

func transform(img image.Image, m mapper) image.Image {
	srcBounds := img.Bounds()
	w := srcBounds.Dx()
	h := srcBounds.Dy()
	dw, dh := m.bounds(w, h)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			sx, sy := m.at(x, y, w, h)
			dst.Set(x, y, img.At(srcBounds.Min.X+sx, srcBounds.Min.Y+sy))
		}
	}
	return dst
}
