// Package colormeta finds the dominant color of an encoded image and
// classifies it into one of seven named families by hue.
package colormeta

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/nfnt/resize"
)

type Profile struct {
	Hue        int // degrees [0,360)
	R, G, B    int
	Saturation float64 // rounded to 2 decimals
	Brightness float64 // rounded to 2 decimals
	Family     string
}

const sampleSize = 64

// Extract returns nil when the image cannot be decoded or holds no pixels;
// extraction failure never carries more detail than that.
func Extract(encoded []byte) *Profile {
	img, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil
	}
	small := resize.Thumbnail(sampleSize, sampleSize, img, resize.Lanczos3)
	r, g, b, ok := dominantColor(small)
	if !ok {
		return nil
	}
	h, s, v := rgbToHSV(r, g, b)
	hue := int(math.Round(h*360)) % 360
	return &Profile{
		Hue:        hue,
		R:          r,
		G:          g,
		B:          b,
		Saturation: math.Round(s*100) / 100,
		Brightness: math.Round(v*100) / 100,
		Family:     ClassifyHue(hue),
	}
}

// dominantColor quantizes to 4 bits per channel, picks the most populated
// bucket and averages the pixels that landed in it.
func dominantColor(img image.Image) (r, g, b int, ok bool) {
	type bucket struct {
		count   int
		r, g, b int
	}
	buckets := map[uint16]*bucket{}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pr, pg, pb, _ := img.At(x, y).RGBA()
			r8 := int(pr >> 8)
			g8 := int(pg >> 8)
			b8 := int(pb >> 8)
			key := uint16(r8>>4)<<8 | uint16(g8>>4)<<4 | uint16(b8>>4)
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += r8
			bk.g += g8
			bk.b += b8
		}
	}
	var best *bucket
	for _, bk := range buckets {
		if best == nil || bk.count > best.count {
			best = bk
		}
	}
	if best == nil || best.count == 0 {
		return 0, 0, 0, false
	}
	return best.r / best.count, best.g / best.count, best.b / best.count, true
}

// rgbToHSV returns H, S, V all in [0,1].
func rgbToHSV(r, g, b int) (h, s, v float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	v = max
	delta := max - min
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case rf:
		h = math.Mod((gf-bf)/delta, 6)
	case gf:
		h = (bf-rf)/delta + 2
	default:
		h = (rf-gf)/delta + 4
	}
	h /= 6
	if h < 0 {
		h++
	}
	return h, s, v
}

// ClassifyHue maps a hue in degrees onto the fixed 7-way palette. The red
// band wraps: it covers [345,360) as well as [0,15).
func ClassifyHue(hue int) string {
	switch {
	case hue < 15 || hue >= 345:
		return "red"
	case hue < 45:
		return "orange"
	case hue < 75:
		return "yellow"
	case hue < 150:
		return "green"
	case hue < 210:
		return "blue"
	case hue < 270:
		return "purple"
	default:
		return "pink"
	}
}
